// Package textnorm rewrites known OCR misreads of fixed label text before any
// label matching happens.
package textnorm

import "strings"

// Replacement is one literal substring rewrite.
type Replacement struct {
	From string
	To   string
}

// replacements is applied top to bottom. Entries whose From contains another
// entry's From must come first: "Reg. N0." has to expand before "N0." is
// rewritten, otherwise the abbreviation is never recognised.
var replacements = []Replacement{
	// Abbreviated registration label, with and without the zero misread.
	{From: "REG. N0.", To: "REGISTRATION NUMBER"},
	{From: "REG. NO.", To: "REGISTRATION NUMBER"},
	{From: "Reg. N0.", To: "Registration Number"},
	{From: "Reg. No.", To: "Registration Number"},

	{From: "REGISTRATI0N", To: "REGISTRATION"},
	{From: "Registrati0n", To: "Registration"},
	{From: "NUMB3R", To: "NUMBER"},
	{From: "Numb3r", To: "Number"},

	{From: "C0UNC1L", To: "COUNCIL"},
	{From: "C0UNCIL", To: "COUNCIL"},
	{From: "COUNC1L", To: "COUNCIL"},
	{From: "C0uncil", To: "Council"},
	{From: "Counc1l", To: "Council"},

	{From: "V1DE", To: "VIDE"},
	{From: "VlDE", To: "VIDE"},
	{From: "V1de", To: "Vide"},

	{From: "N0.", To: "NO."},
	{From: "N0", To: "NO"},
}

// Replacements returns a copy of the rewrite table in application order.
func Replacements() []Replacement {
	return append([]Replacement(nil), replacements...)
}

// Normalize applies the rewrite table to s. Characters outside the table's
// matches are left untouched.
func Normalize(s string) string {
	return Apply(s, replacements)
}

// Apply rewrites s with table, one entry after another in slice order.
func Apply(s string, table []Replacement) string {
	if s == "" {
		return s
	}
	for _, r := range table {
		if r.From == "" {
			continue
		}
		s = strings.ReplaceAll(s, r.From, r.To)
	}
	return s
}
