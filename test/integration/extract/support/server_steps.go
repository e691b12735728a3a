package support

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/MeKo-Tech/credex/internal/extract"
	"github.com/MeKo-Tech/credex/internal/registry"
	"github.com/MeKo-Tech/credex/internal/server"
	"github.com/cucumber/godog"
)

func (testCtx *TestContext) startServer(reg registry.Registry) error {
	srv := server.NewServer(server.Config{
		CORSOrigin: "*",
		MaxBodyKB:  64,
		TimeoutSec: 5,
		Version:    "test",
		Extract:    extract.DefaultOptions(),
		Registry:   reg,
	})
	testCtx.Server = httptest.NewServer(srv.Handler())
	return nil
}

func (testCtx *TestContext) theExtractionServerIsRunning() error {
	return testCtx.startServer(nil)
}

func (testCtx *TestContext) theExtractionServerIsRunningWithTheSampleRegistry() error {
	reg, err := registry.OpenFile(filepath.Join(testCtx.FixturesDir, "registry.yaml"))
	if err != nil {
		return err
	}
	return testCtx.startServer(reg)
}

func (testCtx *TestContext) do(method, path string, body io.Reader) error {
	if testCtx.Server == nil {
		return fmt.Errorf("server is not running")
	}
	req, err := http.NewRequest(method, testCtx.Server.URL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	testCtx.LastHTTPStatus = resp.StatusCode
	testCtx.LastHTTPBody, err = io.ReadAll(resp.Body)
	testCtx.LastHTTPHeaders = map[string]string{}
	for k := range resp.Header {
		testCtx.LastHTTPHeaders[k] = resp.Header.Get(k)
	}
	return err
}

func (testCtx *TestContext) iPOSTTheFixtureTo(name, path string) error {
	data, err := os.ReadFile(filepath.Join(testCtx.FixturesDir, name)) //nolint:gosec // G304: fixture paths are controlled by feature files
	if err != nil {
		return err
	}
	return testCtx.do(http.MethodPost, path, bytes.NewReader(data))
}

func (testCtx *TestContext) iPOSTTo(path string, body *godog.DocString) error {
	return testCtx.do(http.MethodPost, path, strings.NewReader(body.Content))
}

func (testCtx *TestContext) iGET(path string) error {
	return testCtx.do(http.MethodGet, path, nil)
}

func (testCtx *TestContext) theResponseStatusIs(want int) error {
	if testCtx.LastHTTPStatus != want {
		return fmt.Errorf("status %d, want %d; body: %s", testCtx.LastHTTPStatus, want, testCtx.LastHTTPBody)
	}
	return nil
}

func (testCtx *TestContext) theResponseHeaderIsSet(name string) error {
	if testCtx.LastHTTPHeaders[http.CanonicalHeaderKey(name)] == "" {
		return fmt.Errorf("header %s missing", name)
	}
	return nil
}

// theResponseJSONAtIs compares the value at a dotted path, e.g.
// "result.registration_codes.1", with want.
func (testCtx *TestContext) theResponseJSONAtIs(path, want string) error {
	var doc any
	if err := json.Unmarshal(testCtx.LastHTTPBody, &doc); err != nil {
		return fmt.Errorf("response is not JSON: %w", err)
	}
	got, err := lookup(doc, path)
	if err != nil {
		return err
	}
	if s := render(got); s != want {
		return fmt.Errorf("%s is %s, want %s", path, s, want)
	}
	return nil
}

func lookup(doc any, path string) (any, error) {
	cur := doc
	for _, key := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[key]
			if !ok {
				return nil, fmt.Errorf("%s: key %q not found", path, key)
			}
			cur = v
		case []any:
			i, err := strconv.Atoi(key)
			if err != nil || i < 0 || i >= len(node) {
				return nil, fmt.Errorf("%s: bad index %q", path, key)
			}
			cur = node[i]
		default:
			return nil, fmt.Errorf("%s: cannot descend into %T at %q", path, cur, key)
		}
	}
	return cur, nil
}

func render(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	b, _ := json.Marshal(v)
	return string(b)
}

// RegisterServerSteps registers HTTP API step definitions.
func (testCtx *TestContext) RegisterServerSteps(sc *godog.ScenarioContext) {
	sc.Step(`^the extraction server is running$`, testCtx.theExtractionServerIsRunning)
	sc.Step(`^the extraction server is running with the sample registry$`,
		testCtx.theExtractionServerIsRunningWithTheSampleRegistry)
	sc.Step(`^I POST the fixture "([^"]*)" to "([^"]*)"$`, testCtx.iPOSTTheFixtureTo)
	sc.Step(`^I POST to "([^"]*)":$`, testCtx.iPOSTTo)
	sc.Step(`^I GET "([^"]*)"$`, testCtx.iGET)
	sc.Step(`^the response status is (\d+)$`, testCtx.theResponseStatusIs)
	sc.Step(`^the response header "([^"]*)" is set$`, testCtx.theResponseHeaderIsSet)
	sc.Step(`^the response JSON at "([^"]*)" is "(.*)"$`, testCtx.theResponseJSONAtIs)
}
