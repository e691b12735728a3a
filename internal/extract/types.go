package extract

import (
	"github.com/MeKo-Tech/credex/internal/geometry"
)

// Field names one of the extracted credential fields.
type Field string

const (
	FieldRegistration Field = "registration_number"
	FieldName         Field = "name"
	FieldFatherName   Field = "father_name"
)

// Token is one OCR-recognized text region as delivered by the OCR engine.
type Token struct {
	Polygon    []geometry.Point `json:"polygon" yaml:"polygon"`
	Text       string           `json:"text" yaml:"text"`
	Confidence float64          `json:"confidence" yaml:"confidence"`
}

// ParsedToken is a Token with its geometry summarised and its text cleaned.
// Index is the token's position in the original input.
type ParsedToken struct {
	Token
	Index int            `json:"index"`
	Clean string         `json:"clean"`
	Stats geometry.Stats `json:"stats"`
}

// Match records which tokens were used for a field. ValueIndex is -1 when no
// candidate qualified.
type Match struct {
	Field      Field `json:"field"`
	LabelIndex int   `json:"label_index"`
	ValueIndex int   `json:"value_index"`
}

// Issue records a token that was discarded as a candidate because it was
// structurally unusable. Issues never abort an extraction.
type Issue struct {
	Field Field  `json:"field,omitempty"`
	Token int    `json:"token"`
	Text  string `json:"text,omitempty"`
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

// Result is the outcome of one extraction. A nil field means the field was
// not found on the document.
type Result struct {
	Registration      *string  `json:"registration_number"`
	Name              *string  `json:"name"`
	FatherName        *string  `json:"father_name"`
	RegistrationCodes []string `json:"registration_codes,omitempty"`
	Matches           []Match  `json:"matches,omitempty"`
	Issues            []Issue  `json:"issues,omitempty"`
}

// CanonicalCode returns the canonical registration code, or "" when none was
// derived.
func (r *Result) CanonicalCode() string {
	if r == nil || len(r.RegistrationCodes) == 0 {
		return ""
	}
	return r.RegistrationCodes[0]
}

// Value returns the extracted value for f.
func (r *Result) Value(f Field) (string, bool) {
	if r == nil {
		return "", false
	}
	var p *string
	switch f {
	case FieldRegistration:
		p = r.Registration
	case FieldName:
		p = r.Name
	case FieldFatherName:
		p = r.FatherName
	}
	if p == nil {
		return "", false
	}
	return *p, true
}

// Found counts the fields that received a value.
func (r *Result) Found() int {
	n := 0
	for _, f := range Fields() {
		if _, ok := r.Value(f); ok {
			n++
		}
	}
	return n
}

// Fields returns the extracted fields in extraction order.
func Fields() []Field {
	return []Field{FieldRegistration, FieldName, FieldFatherName}
}
