package batch

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/MeKo-Tech/credex/internal/extract"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatText = "text"
	FormatCSV  = "csv"
)

// Format renders items as json, text or csv.
func Format(items []Item, format string, pretty bool) (string, error) {
	switch format {
	case FormatJSON, "":
		return formatJSON(items, pretty)
	case FormatCSV:
		return formatCSV(items)
	case FormatText:
		return formatText(items), nil
	}
	return "", fmt.Errorf("unsupported output format: %s", format)
}

// FormatItem renders a single item. JSON output is the bare item object
// rather than a one-element file list.
func FormatItem(it Item, format string, pretty bool) (string, error) {
	if format == FormatJSON || format == "" {
		return marshal(it, pretty)
	}
	return Format([]Item{it}, format, pretty)
}

func formatJSON(items []Item, pretty bool) (string, error) {
	doc := struct {
		Files []Item `json:"files"`
	}{Files: items}
	if doc.Files == nil {
		doc.Files = []Item{}
	}
	return marshal(doc, pretty)
}

func marshal(v any, pretty bool) (string, error) {
	var (
		bts []byte
		err error
	)
	if pretty {
		bts, err = json.MarshalIndent(v, "", "  ")
	} else {
		bts, err = json.Marshal(v)
	}
	if err != nil {
		return "", err
	}
	return string(bts) + "\n", nil
}

var csvHeader = []string{
	"file", "registration_number", "canonical_code", "variants", "name", "father_name",
	"verified", "matched_code", "expired", "name_match", "father_name_match", "error",
}

func formatCSV(items []Item) (string, error) {
	var output strings.Builder
	writer := csv.NewWriter(&output)
	if err := writer.Write(csvHeader); err != nil {
		return "", err
	}

	for _, it := range items {
		row := make([]string, len(csvHeader))
		row[0] = it.File
		if res := it.Result; res != nil {
			row[1] = value(res, extract.FieldRegistration)
			row[2] = res.CanonicalCode()
			row[3] = strings.Join(res.RegistrationCodes, "|")
			row[4] = value(res, extract.FieldName)
			row[5] = value(res, extract.FieldFatherName)
		}
		if v := it.Verification; v != nil {
			row[6] = strconv.FormatBool(v.Found)
			row[7] = v.MatchedCode
			if v.Found {
				row[8] = strconv.FormatBool(v.Expired)
			}
			row[9] = checked(v.NameChecked, v.NameMatch)
			row[10] = checked(v.FatherNameChecked, v.FatherNameMatch)
		}
		row[11] = it.Error
		if err := writer.Write(row); err != nil {
			return "", err
		}
	}

	writer.Flush()
	return output.String(), writer.Error()
}

func formatText(items []Item) string {
	var output strings.Builder
	for i, it := range items {
		if i > 0 {
			output.WriteString("\n")
		}
		if it.File != "" {
			fmt.Fprintf(&output, "# %s\n", it.File)
		}
		if it.Error != "" {
			fmt.Fprintf(&output, "error: %s\n", it.Error)
			continue
		}
		writeResultText(&output, it)
	}
	return output.String()
}

func writeResultText(b *strings.Builder, it Item) {
	res := it.Result
	if res == nil {
		return
	}
	for _, f := range extract.Fields() {
		v, ok := res.Value(f)
		if !ok {
			v = "(not found)"
		}
		fmt.Fprintf(b, "%s: %s\n", f, v)
	}
	if len(res.RegistrationCodes) > 0 {
		fmt.Fprintf(b, "registration_codes: %s\n", strings.Join(res.RegistrationCodes, ", "))
	}
	for _, is := range res.Issues {
		fmt.Fprintf(b, "issue: token %d %s: %s\n", is.Token, is.Kind, is.Error)
	}
	if v := it.Verification; v != nil {
		if v.Found {
			fmt.Fprintf(b, "verification: found %s (expired: %t, name match: %s, father name match: %s)\n",
				v.MatchedCode, v.Expired, matchText(v.NameChecked, v.NameMatch), matchText(v.FatherNameChecked, v.FatherNameMatch))
		} else {
			fmt.Fprintf(b, "verification: not found (tried %s)\n", strings.Join(v.Tried, ", "))
		}
	}
}

// checked renders a comparison for CSV; an empty cell means it was not made.
func checked(done, match bool) string {
	if !done {
		return ""
	}
	return strconv.FormatBool(match)
}

func matchText(done, match bool) string {
	if !done {
		return "not checked"
	}
	return strconv.FormatBool(match)
}

func value(res *extract.Result, f extract.Field) string {
	v, _ := res.Value(f)
	return v
}
