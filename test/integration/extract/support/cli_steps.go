package support

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/MeKo-Tech/credex/cmd/credex/cmd"
	"github.com/cucumber/godog"
)

// iRunCredexWith runs the CLI in-process. {fixtures} and {tmp} in args are
// replaced with the fixture and scenario directories.
func (testCtx *TestContext) iRunCredexWith(args string) error {
	root := cmd.NewRootCommand()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(strings.Fields(testCtx.expand(args)))

	testCtx.LastError = root.Execute()
	testCtx.LastOutput = stdout.String()
	testCtx.LastStderr = stderr.String()
	return nil
}

func (testCtx *TestContext) theCommandShouldSucceed() error {
	if testCtx.LastError != nil {
		return fmt.Errorf("command failed: %w\nstderr: %s", testCtx.LastError, testCtx.LastStderr)
	}
	return nil
}

func (testCtx *TestContext) theCommandShouldFail() error {
	if testCtx.LastError == nil {
		return fmt.Errorf("command succeeded, output: %s", testCtx.LastOutput)
	}
	return nil
}

func (testCtx *TestContext) theOutputShouldContain(want string) error {
	if !strings.Contains(testCtx.LastOutput, want) {
		return fmt.Errorf("output does not contain %q:\n%s", want, testCtx.LastOutput)
	}
	return nil
}

func (testCtx *TestContext) theErrorShouldMention(want string) error {
	if testCtx.LastError == nil || !strings.Contains(testCtx.LastError.Error(), want) {
		return fmt.Errorf("error %v does not mention %q", testCtx.LastError, want)
	}
	return nil
}

func (testCtx *TestContext) theFileShouldExist(path string) error {
	path = testCtx.expand(path)
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("file %s: %w", path, err)
	}
	return nil
}

// RegisterCLISteps registers command execution step definitions.
func (testCtx *TestContext) RegisterCLISteps(sc *godog.ScenarioContext) {
	sc.Step(`^I run credex with "([^"]*)"$`, testCtx.iRunCredexWith)
	sc.Step(`^the command should succeed$`, testCtx.theCommandShouldSucceed)
	sc.Step(`^the command should fail$`, testCtx.theCommandShouldFail)
	sc.Step(`^the output should contain "(.*)"$`, testCtx.theOutputShouldContain)
	sc.Step(`^the error should mention "([^"]*)"$`, testCtx.theErrorShouldMention)
	sc.Step(`^the file "([^"]*)" should exist$`, testCtx.theFileShouldExist)
}
