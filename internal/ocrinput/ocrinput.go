// Package ocrinput decodes token lists produced by an OCR engine into
// extraction tokens.
package ocrinput

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/MeKo-Tech/credex/internal/extract"
	"github.com/MeKo-Tech/credex/internal/geometry"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// Format identifies a token document layout.
type Format string

const (
	FormatAuto    Format = "auto"
	FormatTuple   Format = "tuple"   // [[polygon, text, confidence], ...]
	FormatObject  Format = "object"  // {"tokens":[{"polygon":..,"text":..,"confidence":..}]}
	FormatRegions Format = "regions" // {"regions":[{"polygon":[{"X":..,"Y":..}],"text":..,"rec_confidence":..}]}
	FormatYAML    Format = "yaml"
)

var (
	// ErrUnsupportedFormat is returned for unknown format names or undetectable documents.
	ErrUnsupportedFormat = errors.New("unsupported token format")
	// ErrInvalidDocument is returned when a document does not have the expected shape.
	ErrInvalidDocument = errors.New("invalid token document")
)

// Formats lists the accepted format names.
func Formats() []Format {
	return []Format{FormatAuto, FormatTuple, FormatObject, FormatRegions, FormatYAML}
}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return FormatAuto, nil
	}
	f := Format(strings.ToLower(s))
	for _, known := range Formats() {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// FormatForPath guesses a format from a file extension.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatAuto
}

// Decode reads a whole token document from r.
func Decode(r io.Reader, format Format) ([]extract.Token, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read token document: %w", err)
	}
	return DecodeBytes(data, format)
}

// DecodeBytes decodes a token document held in memory.
func DecodeBytes(data []byte, format Format) ([]extract.Token, error) {
	if format == "" || format == FormatAuto {
		detected, err := detect(data)
		if err != nil {
			return nil, err
		}
		format = detected
	}

	switch format {
	case FormatTuple:
		return decodeTuples(data)
	case FormatObject:
		return decodeObject(data)
	case FormatRegions:
		return decodeRegions(data)
	case FormatYAML:
		return decodeYAML(data)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// detect sniffs the JSON layout from the first significant byte and the top-level keys.
func detect(data []byte) (Format, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return "", fmt.Errorf("%w: empty document", ErrInvalidDocument)
	}
	switch trimmed[0] {
	case '[':
		return FormatTuple, nil
	case '{':
		var top map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &top); err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
		if _, ok := top["tokens"]; ok {
			return FormatObject, nil
		}
		if _, ok := top["regions"]; ok {
			return FormatRegions, nil
		}
		return "", fmt.Errorf("%w: object has neither \"tokens\" nor \"regions\"", ErrUnsupportedFormat)
	}
	return FormatYAML, nil
}

func decodeTuples(data []byte) ([]extract.Token, error) {
	var rows [][]json.RawMessage
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	tokens := make([]extract.Token, 0, len(rows))
	for i, row := range rows {
		if len(row) != 3 {
			return nil, fmt.Errorf("%w: entry %d has %d elements, want 3", ErrInvalidDocument, i, len(row))
		}
		var pairs [][]float64
		if err := json.Unmarshal(row[0], &pairs); err != nil {
			return nil, fmt.Errorf("%w: entry %d polygon: %v", ErrInvalidDocument, i, err)
		}
		poly, err := pairsToPolygon(pairs)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrInvalidDocument, i, err)
		}
		var tok extract.Token
		tok.Polygon = poly
		if err := json.Unmarshal(row[1], &tok.Text); err != nil {
			return nil, fmt.Errorf("%w: entry %d text: %v", ErrInvalidDocument, i, err)
		}
		if err := json.Unmarshal(row[2], &tok.Confidence); err != nil {
			return nil, fmt.Errorf("%w: entry %d confidence: %v", ErrInvalidDocument, i, err)
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}

type objectToken struct {
	Polygon    [][]float64 `json:"polygon" yaml:"polygon"`
	Text       string      `json:"text" yaml:"text"`
	Confidence float64     `json:"confidence" yaml:"confidence"`
}

type objectDocument struct {
	Tokens []objectToken `json:"tokens" yaml:"tokens"`
}

func decodeObject(data []byte) ([]extract.Token, error) {
	if err := validateObject(data); err != nil {
		return nil, err
	}
	var doc objectDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return objectTokens(doc)
}

func decodeYAML(data []byte) ([]extract.Token, error) {
	var doc objectDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return objectTokens(doc)
}

func objectTokens(doc objectDocument) ([]extract.Token, error) {
	tokens := make([]extract.Token, 0, len(doc.Tokens))
	for i, t := range doc.Tokens {
		poly, err := pairsToPolygon(t.Polygon)
		if err != nil {
			return nil, fmt.Errorf("%w: token %d: %v", ErrInvalidDocument, i, err)
		}
		tokens = append(tokens, extract.Token{Polygon: poly, Text: t.Text, Confidence: t.Confidence})
	}
	return tokens, nil
}

type regionDocument struct {
	Regions []struct {
		Polygon       []geometry.Point `json:"polygon"`
		Text          string           `json:"text"`
		RecConfidence float64          `json:"rec_confidence"`
	} `json:"regions"`
}

func decodeRegions(data []byte) ([]extract.Token, error) {
	var doc regionDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	tokens := make([]extract.Token, 0, len(doc.Regions))
	for _, r := range doc.Regions {
		tokens = append(tokens, extract.Token{
			Polygon:    append([]geometry.Point(nil), r.Polygon...),
			Text:       r.Text,
			Confidence: r.RecConfidence,
		})
	}
	return tokens, nil
}

// pairsToPolygon converts [[x,y],...] pairs. An empty polygon is passed
// through so extraction can report it against the token.
func pairsToPolygon(pairs [][]float64) ([]geometry.Point, error) {
	poly := make([]geometry.Point, 0, len(pairs))
	for j, p := range pairs {
		if len(p) != 2 {
			return nil, fmt.Errorf("vertex %d has %d coordinates, want 2", j, len(p))
		}
		poly = append(poly, geometry.Point{X: p[0], Y: p[1]})
	}
	return poly, nil
}

//go:embed schema.json
var objectSchemaJSON []byte

var (
	objectSchemaOnce sync.Once
	objectSchema     *jsonschema.Schema
	objectSchemaErr  error
)

func compiledObjectSchema() (*jsonschema.Schema, error) {
	objectSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("tokens.json", bytes.NewReader(objectSchemaJSON)); err != nil {
			objectSchemaErr = fmt.Errorf("failed to load token schema: %w", err)
			return
		}
		objectSchema, objectSchemaErr = compiler.Compile("tokens.json")
	})
	return objectSchema, objectSchemaErr
}

func validateObject(data []byte) error {
	schema, err := compiledObjectSchema()
	if err != nil {
		return err
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return nil
}
