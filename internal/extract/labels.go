package extract

import (
	"strings"

	"golang.org/x/text/cases"
)

// Rule recognises the label token of a field from its cleaned text.
type Rule struct {
	Field Field
	Match func(text string) bool
}

// fold returns a caseless form of s. A Caser is stateful, so each call gets its own.
func fold(s string) string {
	return cases.Fold().String(s)
}

func containsFold(phrase string) func(string) bool {
	want := fold(phrase)
	return func(text string) bool {
		return strings.Contains(fold(text), want)
	}
}

func equalsFold(word string) func(string) bool {
	want := fold(word)
	return func(text string) bool {
		return fold(strings.TrimSpace(text)) == want
	}
}

var (
	// RegistrationLabel matches any text containing "registration number".
	RegistrationLabel = Rule{Field: FieldRegistration, Match: containsFold("registration number")}
	// NameLabel matches text that is exactly "name", so "Father Name" is not taken.
	NameLabel = Rule{Field: FieldName, Match: equalsFold("name")}
	// FatherNameLabel matches any text containing "father name".
	FatherNameLabel = Rule{Field: FieldFatherName, Match: containsFold("father name")}
)

// Rules returns the label rules in extraction order.
func Rules() []Rule {
	return []Rule{RegistrationLabel, NameLabel, FatherNameLabel}
}

// Locate returns the first token, in slice order, whose cleaned text
// satisfies rule. Later matches are ignored.
func Locate(tokens []ParsedToken, rule Rule) (ParsedToken, bool) {
	for _, t := range tokens {
		if rule.Match(t.Clean) {
			return t, true
		}
	}
	return ParsedToken{}, false
}
