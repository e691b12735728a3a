package batch

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/MeKo-Tech/credex/internal/extract"
	"github.com/MeKo-Tech/credex/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }

func sampleItems() []Item {
	full := &extract.Result{
		Registration:      strp("PMD-12O45-D"),
		Name:              strp("Muhammad Ali"),
		FatherName:        strp("Ahmed Ali"),
		RegistrationCodes: []string{"12045-D", "12045-O"},
	}
	partial := &extract.Result{
		Name: strp("Sara, Khan"),
		Issues: []extract.Issue{
			{Field: extract.FieldRegistration, Token: 4, Kind: extract.KindInvalidCode, Error: "bad code"},
		},
	}
	return []Item{
		NewItem("a.json", full, &registry.Verification{Found: true, MatchedCode: "12045-D", NameChecked: true, NameMatch: true, Tried: []string{"12045-D"}}),
		NewItem("b.json", partial, nil),
		Item{}.fail(errors.New("decode failed")),
	}
}

func TestFormat_JSON(t *testing.T) {
	out, err := Format(sampleItems(), FormatJSON, false)
	require.NoError(t, err)

	var doc struct {
		Files []struct {
			File         string                 `json:"file"`
			Result       *extract.Result        `json:"result"`
			Verification *registry.Verification `json:"verification"`
			Error        string                 `json:"error"`
		} `json:"files"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	require.Len(t, doc.Files, 3)
	assert.Equal(t, "12045-D", doc.Files[0].Verification.MatchedCode)
	assert.Nil(t, doc.Files[1].Result.Registration)
	assert.Equal(t, "decode failed", doc.Files[2].Error)

	empty, err := Format(nil, FormatJSON, true)
	require.NoError(t, err)
	assert.Contains(t, empty, `"files": []`)
}

func TestFormat_CSV(t *testing.T) {
	out, err := Format(sampleItems(), FormatCSV, false)
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, []string{"a.json", "PMD-12O45-D", "12045-D", "12045-D|12045-O", "Muhammad Ali", "Ahmed Ali",
		"true", "12045-D", "false", "true", "", ""}, rows[1])
	assert.Equal(t, "Sara, Khan", rows[2][4], "commas survive quoting")
	assert.Equal(t, "", rows[2][8], "no verification, no expiry")
	assert.Equal(t, "decode failed", rows[3][11])
}

func TestFormat_Text(t *testing.T) {
	out, err := Format(sampleItems(), FormatText, false)
	require.NoError(t, err)

	assert.Contains(t, out, "# a.json\nregistration_number: PMD-12O45-D\nname: Muhammad Ali\nfather_name: Ahmed Ali\n")
	assert.Contains(t, out, "registration_codes: 12045-D, 12045-O")
	assert.Contains(t, out, "verification: found 12045-D (expired: false, name match: true, father name match: not checked)")
	assert.Contains(t, out, "registration_number: (not found)")
	assert.Contains(t, out, "issue: token 4 invalid_code: bad code")
	assert.Contains(t, out, "error: decode failed")
}

func TestFormat_Unsupported(t *testing.T) {
	_, err := Format(nil, "xml", false)
	assert.Error(t, err)
}

func TestFormatItem(t *testing.T) {
	it := sampleItems()[0]

	out, err := FormatItem(it, FormatJSON, false)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, `{"file":"a.json","result":{`))

	text, err := FormatItem(it, FormatText, false)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(text, "# a.json\n"))
}
