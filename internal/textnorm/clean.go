package textnorm

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Options controls token text preparation.
type Options struct {
	UnicodeForm string // "NFC" (default), "NFKC", "NFD", "NFKD", "none" to disable
	Trim        bool   // trim leading/trailing whitespace
}

// DefaultOptions returns the preparation used for extraction.
func DefaultOptions() Options {
	return Options{
		UnicodeForm: "NFC",
		Trim:        true,
	}
}

// Clean prepares raw token text for matching: unicode normalization, the
// misread rewrite table, then trimming.
func Clean(s string, opts Options) string {
	if s == "" {
		return s
	}
	s = applyUnicodeForm(s, opts.UnicodeForm)
	s = Normalize(s)
	if opts.Trim {
		s = strings.TrimSpace(s)
	}
	return s
}

func applyUnicodeForm(s, form string) string {
	switch strings.ToUpper(form) {
	case "NFC", "":
		return norm.NFC.String(s)
	case "NFKC":
		return norm.NFKC.String(s)
	case "NFD":
		return norm.NFD.String(s)
	case "NFKD":
		return norm.NFKD.String(s)
	}
	return s
}

// ValidUnicodeForm reports whether form is accepted by Clean.
func ValidUnicodeForm(form string) bool {
	switch strings.ToUpper(form) {
	case "", "NFC", "NFKC", "NFD", "NFKD", "NONE":
		return true
	}
	return false
}
