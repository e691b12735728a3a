// Package extract locates credential field labels among unordered OCR tokens
// and associates each label with the value printed to its right.
package extract

import (
	"errors"
	"log/slog"

	"github.com/MeKo-Tech/credex/internal/geometry"
	"github.com/MeKo-Tech/credex/internal/regcode"
	"github.com/MeKo-Tech/credex/internal/textnorm"
)

// Issue kinds.
const (
	KindInvalidGeometry = "invalid_geometry"
	KindMalformedCode   = "malformed_code"
	KindInvalidCode     = "invalid_code"
)

// Options configures an Extractor.
type Options struct {
	MinConfidence float64          // candidates must score strictly above this
	Canonicalize  bool             // derive registration code variants
	ScanAllTokens bool             // fall back to any code-shaped token
	Text          textnorm.Options // token text preparation
	Logger        *slog.Logger     // nil uses slog.Default()
}

// DefaultOptions returns the extraction defaults.
func DefaultOptions() Options {
	return Options{
		MinConfidence: DefaultMinConfidence,
		Canonicalize:  true,
		Text:          textnorm.DefaultOptions(),
	}
}

// Extractor runs label-anchored field extraction. It holds no per-call state
// and is safe for concurrent use.
type Extractor struct {
	opts Options
}

// New creates an Extractor.
func New(opts Options) *Extractor {
	return &Extractor{opts: opts}
}

// Options returns the extractor's configuration.
func (e *Extractor) Options() Options {
	return e.opts
}

func (e *Extractor) logger() *slog.Logger {
	if e.opts.Logger != nil {
		return e.opts.Logger
	}
	return slog.Default()
}

// Parse summarises geometry and cleans text for every token. Tokens whose
// polygon is unusable are dropped and reported as issues.
func Parse(tokens []Token, opts textnorm.Options) ([]ParsedToken, []Issue) {
	parsed := make([]ParsedToken, 0, len(tokens))
	var issues []Issue
	for i, t := range tokens {
		stats, err := geometry.Summarize(t.Polygon)
		if err != nil {
			issues = append(issues, Issue{
				Token: i,
				Text:  t.Text,
				Kind:  KindInvalidGeometry,
				Error: err.Error(),
			})
			continue
		}
		parsed = append(parsed, ParsedToken{
			Token: t,
			Index: i,
			Clean: textnorm.Clean(t.Text, opts),
			Stats: stats,
		})
	}
	return parsed, issues
}

// Extract finds the registration number, name and father name in tokens.
// Missing labels or candidates leave the field nil; malformed tokens are
// recorded in Result.Issues and never fail the call.
func (e *Extractor) Extract(tokens []Token) *Result {
	log := e.logger()
	parsed, issues := Parse(tokens, e.opts.Text)
	for _, is := range issues {
		log.Debug("discarding token", "index", is.Token, "kind", is.Kind, "error", is.Error)
	}

	res := &Result{Issues: issues}
	for _, rule := range Rules() {
		m, value := e.field(parsed, rule)
		if m == nil {
			continue
		}
		res.Matches = append(res.Matches, *m)
		if value == nil {
			continue
		}
		text := value.Clean
		switch rule.Field {
		case FieldRegistration:
			res.Registration = &text
		case FieldName:
			res.Name = &text
		case FieldFatherName:
			res.FatherName = &text
		}
	}

	if e.opts.Canonicalize {
		e.registrationCodes(parsed, res)
	}
	return res
}

// field locates rule's label and its associated value. A nil Match means the
// label is absent; a nil value means no candidate qualified.
func (e *Extractor) field(parsed []ParsedToken, rule Rule) (*Match, *ParsedToken) {
	label, ok := Locate(parsed, rule)
	if !ok {
		return nil, nil
	}
	m := &Match{Field: rule.Field, LabelIndex: label.Index, ValueIndex: -1}
	value, ok := Associate(label, parsed, e.opts.MinConfidence)
	if !ok {
		return m, nil
	}
	m.ValueIndex = value.Index
	return m, &value
}

// registrationCodes canonicalizes the registration value and, when enabled,
// falls back to the first code-shaped token anywhere on the document.
func (e *Extractor) registrationCodes(parsed []ParsedToken, res *Result) {
	if res.Registration != nil {
		if shaped, ok := regcode.Find(*res.Registration); ok {
			codes, err := regcode.Expand(shaped)
			if err == nil {
				res.RegistrationCodes = regcode.Strings(codes)
				return
			}
			res.Issues = append(res.Issues, codeIssue(registrationValueIndex(res), shaped, err))
			e.logger().Debug("registration value rejected", "text", shaped, "error", err)
		}
	}

	if !e.opts.ScanAllTokens {
		return
	}
	for _, t := range parsed {
		shaped, ok := regcode.Find(t.Clean)
		if !ok {
			continue
		}
		codes, err := regcode.Expand(shaped)
		if err != nil {
			e.logger().Debug("code-shaped token rejected", "index", t.Index, "text", shaped, "error", err)
			continue
		}
		res.RegistrationCodes = regcode.Strings(codes)
		return
	}
}

func registrationValueIndex(res *Result) int {
	for _, m := range res.Matches {
		if m.Field == FieldRegistration {
			return m.ValueIndex
		}
	}
	return -1
}

func codeIssue(index int, text string, err error) Issue {
	kind := KindInvalidCode
	if errors.Is(err, regcode.ErrMalformedCode) {
		kind = KindMalformedCode
	}
	return Issue{
		Field: FieldRegistration,
		Token: index,
		Text:  text,
		Kind:  kind,
		Error: err.Error(),
	}
}
