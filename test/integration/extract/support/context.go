package support

import (
	"fmt"
	"net/http/httptest"
	"os"
	"strings"

	"github.com/MeKo-Tech/credex/internal/extract"
	"github.com/MeKo-Tech/credex/internal/regcode"
	"github.com/MeKo-Tech/credex/internal/testutil"
)

// TestContext holds the state of one scenario.
type TestContext struct {
	FixturesDir string

	// Extraction state
	Tokens  []extract.Token
	Options extract.Options
	Result  *extract.Result

	// Canonicalization state
	Codes   []regcode.Code
	CodeErr error

	// Command execution state
	LastOutput string
	LastStderr string
	LastError  error

	// Server state
	Server          *httptest.Server
	LastHTTPStatus  int
	LastHTTPBody    []byte
	LastHTTPHeaders map[string]string

	TempDir string
}

// NewTestContext creates a fresh scenario context.
func NewTestContext() (*TestContext, error) {
	root, err := testutil.GetProjectRoot()
	if err != nil {
		return nil, fmt.Errorf("failed to find project root: %w", err)
	}
	tmp, err := os.MkdirTemp("", "credex-scenario-")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	return &TestContext{
		FixturesDir: root + "/testdata/fixtures",
		Options:     extract.DefaultOptions(),
		TempDir:     tmp,
	}, nil
}

// Cleanup stops the server and removes scenario files.
func (testCtx *TestContext) Cleanup() error {
	if testCtx.Server != nil {
		testCtx.Server.Close()
		testCtx.Server = nil
	}
	return os.RemoveAll(testCtx.TempDir)
}

// expand substitutes {fixtures} and {tmp} placeholders in step arguments.
func (testCtx *TestContext) expand(s string) string {
	s = strings.ReplaceAll(s, "{fixtures}", testCtx.FixturesDir)
	return strings.ReplaceAll(s, "{tmp}", testCtx.TempDir)
}
