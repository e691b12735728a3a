package regcode

// ambiguousLetters lists trailing glyphs that print and scan almost
// identically on the credential, with the readings to try alongside them.
var ambiguousLetters = map[string][]string{
	"O": {"D"},
	"D": {"O"},
	"Q": {"O"},
}

// Variants returns code followed by every alternate reading of its trailing
// letter. The result never contains duplicates and always starts with code.
func Variants(code Code) []Code {
	out := []Code{code}
	seen := map[Code]struct{}{code: {}}

	for _, alt := range ambiguousLetters[code.Letter()] {
		v := Code(code.Digits() + "-" + alt)
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Expand canonicalizes s and returns its variant set.
func Expand(s string) ([]Code, error) {
	code, err := Canonicalize(s)
	if err != nil {
		return nil, err
	}
	return Variants(code), nil
}

// ExpandText expands the first code-shaped run in text, or all of text when
// nothing in it looks like a code.
func ExpandText(text string) ([]Code, error) {
	if found, ok := Find(text); ok {
		text = found
	}
	return Expand(text)
}

// Strings converts codes to plain strings.
func Strings(codes []Code) []string {
	if codes == nil {
		return nil
	}
	out := make([]string, len(codes))
	for i, c := range codes {
		out[i] = string(c)
	}
	return out
}
