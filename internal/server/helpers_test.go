package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MeKo-Tech/credex/internal/extract"
	"github.com/MeKo-Tech/credex/internal/registry"
	"github.com/stretchr/testify/require"
)

// stubRegistry serves a fixed record set, or fails every lookup with err.
type stubRegistry struct {
	records map[string]registry.Record
	err     error
}

func (r *stubRegistry) Lookup(_ context.Context, code string) (*registry.Record, error) {
	if r.err != nil {
		return nil, r.err
	}
	rec, ok := r.records[code]
	if !ok {
		return nil, registry.ErrNotFound
	}
	return &rec, nil
}

func cardRegistry() *stubRegistry {
	return &stubRegistry{records: map[string]registry.Record{
		"12045-D": {RegistrationNumber: "12045-D", FullName: "Muhammad Ali", FatherName: "Ahmed Ali", Status: "active"},
	}}
}

var errRegistryDown = errors.New("registry unavailable")

func testConfig() Config {
	return Config{
		CORSOrigin: "*",
		MaxBodyKB:  64,
		TimeoutSec: 5,
		Version:    "test",
		Extract:    extract.DefaultOptions(),
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func newTestServer(t *testing.T, cfg Config) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(NewServer(cfg).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body)) //nolint:noctx // test request
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}
