package support

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/MeKo-Tech/credex/internal/extract"
	"github.com/MeKo-Tech/credex/internal/ocrinput"
	"github.com/MeKo-Tech/credex/internal/testutil"
	"github.com/cucumber/godog"
)

func (testCtx *TestContext) theSampleCredentialCard() error {
	testCtx.Tokens = testutil.SampleCard()
	return nil
}

func (testCtx *TestContext) theTokenFixture(name string) error {
	path := filepath.Join(testCtx.FixturesDir, name)
	data, err := os.ReadFile(path) //nolint:gosec // G304: fixture paths are controlled by feature files
	if err != nil {
		return err
	}
	tokens, err := ocrinput.DecodeBytes(data, ocrinput.FormatForPath(path))
	if err != nil {
		return err
	}
	testCtx.Tokens = tokens
	return nil
}

// theTokens reads a table with columns text, x, y, width, height, confidence.
func (testCtx *TestContext) theTokens(table *godog.Table) error {
	testCtx.Tokens = nil
	for i, row := range table.Rows {
		if i == 0 {
			continue
		}
		if len(row.Cells) != 6 {
			return fmt.Errorf("row %d: want 6 cells, got %d", i, len(row.Cells))
		}
		var nums [5]float64
		for j := range nums {
			v, err := strconv.ParseFloat(row.Cells[j+1].Value, 64)
			if err != nil {
				return fmt.Errorf("row %d column %d: %w", i, j+2, err)
			}
			nums[j] = v
		}
		testCtx.Tokens = append(testCtx.Tokens, testutil.Token(row.Cells[0].Value, nums[0], nums[1], nums[2], nums[3], nums[4]))
	}
	return nil
}

func (testCtx *TestContext) aTokenWithoutGeometry(text string) error {
	testCtx.Tokens = append(testCtx.Tokens, extract.Token{Text: text, Confidence: 0.9})
	return nil
}

func (testCtx *TestContext) theMinimumConfidenceIs(v float64) error {
	testCtx.Options.MinConfidence = v
	return nil
}

func (testCtx *TestContext) canonicalizationIs(state string) error {
	testCtx.Options.Canonicalize = state == "enabled"
	return nil
}

func (testCtx *TestContext) scanningAllTokensIsEnabled() error {
	testCtx.Options.ScanAllTokens = true
	return nil
}

func (testCtx *TestContext) iExtractTheFields() error {
	testCtx.Result = extract.New(testCtx.Options).Extract(testCtx.Tokens)
	return nil
}

func (testCtx *TestContext) theFieldIs(field, want string) error {
	got, ok := testCtx.Result.Value(extract.Field(field))
	if !ok {
		return fmt.Errorf("field %s is absent, want %q", field, want)
	}
	if got != want {
		return fmt.Errorf("field %s is %q, want %q", field, got, want)
	}
	return nil
}

func (testCtx *TestContext) theFieldIsAbsent(field string) error {
	if got, ok := testCtx.Result.Value(extract.Field(field)); ok {
		return fmt.Errorf("field %s is %q, want absent", field, got)
	}
	return nil
}

func (testCtx *TestContext) theRegistrationCodesAre(list string) error {
	want := splitList(list)
	got := testCtx.Result.RegistrationCodes
	if strings.Join(got, ",") != strings.Join(want, ",") {
		return fmt.Errorf("registration codes are %v, want %v", got, want)
	}
	return nil
}

func (testCtx *TestContext) thereAreNoRegistrationCodes() error {
	if codes := testCtx.Result.RegistrationCodes; len(codes) != 0 {
		return fmt.Errorf("registration codes are %v, want none", codes)
	}
	return nil
}

func (testCtx *TestContext) anIssueOfKindIsReported(kind string) error {
	for _, is := range testCtx.Result.Issues {
		if is.Kind == kind {
			return nil
		}
	}
	return fmt.Errorf("no %s issue in %+v", kind, testCtx.Result.Issues)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// RegisterExtractSteps registers extraction step definitions.
func (testCtx *TestContext) RegisterExtractSteps(sc *godog.ScenarioContext) {
	sc.Step(`^the sample credential card$`, testCtx.theSampleCredentialCard)
	sc.Step(`^the token fixture "([^"]*)"$`, testCtx.theTokenFixture)
	sc.Step(`^the tokens:$`, testCtx.theTokens)
	sc.Step(`^a token "([^"]*)" without geometry$`, testCtx.aTokenWithoutGeometry)
	sc.Step(`^the minimum confidence is ([0-9.]+)$`, testCtx.theMinimumConfidenceIs)
	sc.Step(`^canonicalization is (enabled|disabled)$`, testCtx.canonicalizationIs)
	sc.Step(`^scanning all tokens is enabled$`, testCtx.scanningAllTokensIsEnabled)
	sc.Step(`^I extract the fields$`, testCtx.iExtractTheFields)
	sc.Step(`^the "([^"]*)" field is "([^"]*)"$`, testCtx.theFieldIs)
	sc.Step(`^the "([^"]*)" field is absent$`, testCtx.theFieldIsAbsent)
	sc.Step(`^the registration codes are "([^"]*)"$`, testCtx.theRegistrationCodesAre)
	sc.Step(`^there are no registration codes$`, testCtx.thereAreNoRegistrationCodes)
	sc.Step(`^an issue of kind "([^"]*)" is reported$`, testCtx.anIssueOfKindIsReported)
}
