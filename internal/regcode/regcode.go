// Package regcode canonicalizes OCR-read professional registration codes of
// the form DIGITS-LETTER and enumerates equally plausible readings.
package regcode

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// ErrMalformedCode is returned when code-shaped text has no separator.
	ErrMalformedCode = errors.New("malformed registration code")
	// ErrInvalidCode is returned when a segment fails validation after correction.
	ErrInvalidCode = errors.New("invalid registration code")
)

// CodeError describes why a string could not be canonicalized.
type CodeError struct {
	Input  string
	Reason string
	Err    error
}

func (e *CodeError) Error() string {
	return fmt.Sprintf("%v %q: %s", e.Err, e.Input, e.Reason)
}

func (e *CodeError) Unwrap() error { return e.Err }

// Code is a canonical registration code, DIGITS-LETTER.
type Code string

// Digits returns the numeric segment.
func (c Code) Digits() string {
	left, _, _ := strings.Cut(string(c), "-")
	return left
}

// Letter returns the trailing letter segment.
func (c Code) Letter() string {
	_, right, _ := strings.Cut(string(c), "-")
	return right
}

func (c Code) String() string { return string(c) }

const enDash = "–"

var codePattern = regexp.MustCompile(`[0-9A-Z]{4,6}[-\x{2013}][0-9A-Z]`)

// digitFromLetter corrects the numeric segment character by character.
var digitFromLetter = map[rune]rune{
	'O': '0',
	'I': '1',
	'L': '1',
	'S': '5',
	'B': '8',
	'G': '6',
	'Z': '2',
}

// letterFromDigit corrects the letter segment as a whole.
var letterFromDigit = map[string]string{
	"0": "D",
	"5": "S",
	"1": "I",
	"2": "Z",
	"8": "B",
	"6": "G",
}

// Find returns the first registration-code-shaped substring of text, matched
// case-insensitively. The result is upper-cased but otherwise uncorrected.
func Find(text string) (string, bool) {
	m := codePattern.FindString(strings.ToUpper(text))
	if m == "" {
		return "", false
	}
	return m, true
}

// Canonicalize corrects OCR digit/letter confusion in a code-shaped string.
// The segment before the separator is always numeric and the one after it a
// single letter, so each side gets its own confusion table.
func Canonicalize(s string) (Code, error) {
	up := strings.ReplaceAll(strings.ToUpper(s), enDash, "-")

	left, right, ok := strings.Cut(up, "-")
	if !ok {
		return "", &CodeError{Input: s, Reason: "no separator", Err: ErrMalformedCode}
	}

	left = correctDigits(left)
	if mapped, found := letterFromDigit[right]; found {
		right = mapped
	}

	if left == "" || !allDigits(left) {
		return "", &CodeError{Input: s, Reason: fmt.Sprintf("numeric segment %q", left), Err: ErrInvalidCode}
	}
	if !singleLetter(right) {
		return "", &CodeError{Input: s, Reason: fmt.Sprintf("letter segment %q", right), Err: ErrInvalidCode}
	}

	return Code(left + "-" + right), nil
}

func correctDigits(seg string) string {
	var b strings.Builder
	b.Grow(len(seg))
	for _, r := range seg {
		if d, ok := digitFromLetter[r]; ok {
			b.WriteRune(d)
			continue
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func singleLetter(s string) bool {
	if utf8.RuneCountInString(s) != 1 {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsLetter(r)
}
