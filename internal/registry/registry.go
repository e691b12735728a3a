// Package registry checks extracted registration codes against a
// ground-truth register of licensed practitioners.
package registry

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/MeKo-Tech/credex/internal/extract"
	"github.com/MeKo-Tech/credex/internal/regcode"
	anyascii "github.com/anyascii/go"
	"golang.org/x/text/cases"
)

// ErrNotFound is returned when a code is not registered.
var ErrNotFound = errors.New("registration not found")

// Record is one register entry.
type Record struct {
	RegistrationNumber string `json:"registration_number" yaml:"registration_number"`
	FullName           string `json:"full_name" yaml:"full_name"`
	FatherName         string `json:"father_name" yaml:"father_name"`
	Status             string `json:"status,omitempty" yaml:"status,omitempty"`
	ValidDate          string `json:"valid_date,omitempty" yaml:"valid_date,omitempty"`
}

// Registry looks up records by canonical registration code.
type Registry interface {
	Lookup(ctx context.Context, code string) (*Record, error)
}

// Verification is the outcome of checking an extraction against a registry.
// A name is only compared when it was extracted; the *Checked flags tell a
// mismatch apart from a name that was never compared.
type Verification struct {
	Found             bool     `json:"found"`
	MatchedCode       string   `json:"matched_code,omitempty"`
	Tried             []string `json:"tried"`
	Record            *Record  `json:"record,omitempty"`
	Expired           bool     `json:"expired"`
	NameChecked       bool     `json:"name_checked"`
	NameMatch         bool     `json:"name_match"`
	FatherNameChecked bool     `json:"father_name_checked"`
	FatherNameMatch   bool     `json:"father_name_match"`
}

// Valid reports whether the registration was found, is not expired and every
// compared name agrees.
func (v *Verification) Valid() bool {
	if v == nil || !v.Found || v.Expired {
		return false
	}
	if v.NameChecked && !v.NameMatch {
		return false
	}
	return !v.FatherNameChecked || v.FatherNameMatch
}

// Option configures Verify.
type Option func(*verifyOptions)

type verifyOptions struct {
	now func() time.Time
}

// WithClock sets the clock used to decide whether a licence has expired.
func WithClock(now func() time.Time) Option {
	return func(o *verifyOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// Layouts accepted in Record.ValidDate.
var validDateLayouts = []string{"2006-01-02", time.RFC3339, "02/01/2006", "02-01-2006"}

// Expired reports whether rec's valid date lies before the day of now (UTC).
// Records without a parseable date never expire.
func Expired(rec *Record, now time.Time) bool {
	if rec == nil {
		return false
	}
	raw := strings.TrimSpace(rec.ValidDate)
	if raw == "" {
		return false
	}
	for _, layout := range validDateLayouts {
		d, err := time.Parse(layout, raw)
		if err != nil {
			continue
		}
		valid := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
		n := now.UTC()
		today := time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
		return valid.Before(today)
	}
	return false
}

// Verify tries every code variant of res in order and compares the names of
// the first registered one. A result without codes is reported as not found.
func Verify(ctx context.Context, reg Registry, res *extract.Result, opts ...Option) (*Verification, error) {
	o := verifyOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	v := &Verification{Tried: []string{}}
	if res == nil {
		return v, nil
	}

	for _, code := range res.RegistrationCodes {
		v.Tried = append(v.Tried, code)
		rec, err := reg.Lookup(ctx, code)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		v.Found = true
		v.MatchedCode = code
		v.Record = rec
		v.Expired = Expired(rec, o.now())
		if name, ok := res.Value(extract.FieldName); ok {
			v.NameChecked = true
			v.NameMatch = SameName(name, rec.FullName)
		}
		if father, ok := res.Value(extract.FieldFatherName); ok {
			v.FatherNameChecked = true
			v.FatherNameMatch = SameName(father, rec.FatherName)
		}
		return v, nil
	}
	return v, nil
}

// VerifyCode canonicalizes the code found in raw and looks up each of its
// variants.
func VerifyCode(ctx context.Context, reg Registry, raw string, opts ...Option) (*Verification, error) {
	codes, err := regcode.ExpandText(raw)
	if err != nil {
		return nil, err
	}
	return Verify(ctx, reg, &extract.Result{RegistrationCodes: regcode.Strings(codes)}, opts...)
}

// SameName compares names ignoring case, diacritics, punctuation and spacing.
func SameName(a, b string) bool {
	na, nb := nameKey(a), nameKey(b)
	return na != "" && na == nb
}

func nameKey(s string) string {
	folded := cases.Fold().String(anyascii.Transliterate(s))
	fields := strings.FieldsFunc(folded, func(r rune) bool {
		return r == ' ' || r == '.' || r == ',' || r == '-' || r == '\t'
	})
	return strings.Join(fields, " ")
}

// key normalizes a register's code column for indexing. Codes that do not
// canonicalize are indexed as written, upper-cased.
func key(code string) string {
	if c, err := regcode.Canonicalize(strings.TrimSpace(code)); err == nil {
		return string(c)
	}
	return strings.ToUpper(strings.TrimSpace(code))
}
