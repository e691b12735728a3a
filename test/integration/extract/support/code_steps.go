package support

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MeKo-Tech/credex/internal/regcode"
	"github.com/cucumber/godog"
)

func (testCtx *TestContext) iCanonicalize(code string) error {
	testCtx.Codes, testCtx.CodeErr = regcode.Expand(code)
	return nil
}

func (testCtx *TestContext) theCanonicalCodeIs(want string) error {
	if testCtx.CodeErr != nil {
		return fmt.Errorf("canonicalization failed: %w", testCtx.CodeErr)
	}
	if got := testCtx.Codes[0].String(); got != want {
		return fmt.Errorf("canonical code is %q, want %q", got, want)
	}
	return nil
}

func (testCtx *TestContext) theVariantsAre(list string) error {
	if testCtx.CodeErr != nil {
		return fmt.Errorf("canonicalization failed: %w", testCtx.CodeErr)
	}
	got := strings.Join(regcode.Strings(testCtx.Codes), ",")
	if want := strings.Join(splitList(list), ","); got != want {
		return fmt.Errorf("variants are %s, want %s", got, want)
	}
	return nil
}

func (testCtx *TestContext) canonicalizationFailsAs(kind string) error {
	want := regcode.ErrInvalidCode
	if kind == "malformed" {
		want = regcode.ErrMalformedCode
	}
	if !errors.Is(testCtx.CodeErr, want) {
		return fmt.Errorf("got error %v, want %v", testCtx.CodeErr, want)
	}
	return nil
}

func (testCtx *TestContext) findingACodeInReturns(text, want string) error {
	got, ok := regcode.Find(text)
	if !ok {
		got = "nothing"
	}
	if got != want {
		return fmt.Errorf("found %q in %q, want %q", got, text, want)
	}
	return nil
}

// RegisterCodeSteps registers canonicalization step definitions.
func (testCtx *TestContext) RegisterCodeSteps(sc *godog.ScenarioContext) {
	sc.Step(`^I canonicalize "([^"]*)"$`, testCtx.iCanonicalize)
	sc.Step(`^the canonical code is "([^"]*)"$`, testCtx.theCanonicalCodeIs)
	sc.Step(`^the variants are "([^"]*)"$`, testCtx.theVariantsAre)
	sc.Step(`^canonicalization fails as (malformed|invalid)$`, testCtx.canonicalizationFailsAs)
	sc.Step(`^finding a code in "([^"]*)" returns "([^"]*)"$`, testCtx.findingACodeInReturns)
}
