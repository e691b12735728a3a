package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
)

// HTTPConfig configures an HTTPRegistry.
type HTTPConfig struct {
	BaseURL  string
	Timeout  time.Duration
	Attempts uint
	Delay    time.Duration
	Client   *http.Client
}

// HTTPRegistry looks up records with GET {base}/{code}. A 404 means not
// registered; 5xx responses and transport errors are retried.
type HTTPRegistry struct {
	base     string
	client   *http.Client
	attempts uint
	delay    time.Duration
}

// NewHTTP creates an HTTPRegistry.
func NewHTTP(cfg HTTPConfig) (*HTTPRegistry, error) {
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid registry url %q: %w", cfg.BaseURL, err)
	}
	client := cfg.Client
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	attempts := cfg.Attempts
	if attempts == 0 {
		attempts = 3
	}
	delay := cfg.Delay
	if delay <= 0 {
		delay = 200 * time.Millisecond
	}
	return &HTTPRegistry{
		base:     strings.TrimRight(cfg.BaseURL, "/"),
		client:   client,
		attempts: attempts,
		delay:    delay,
	}, nil
}

// Lookup implements Registry.
func (r *HTTPRegistry) Lookup(ctx context.Context, code string) (*Record, error) {
	var rec *Record
	err := retry.Do(
		func() error {
			var err error
			rec, err = r.fetch(ctx, code)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(r.attempts),
		retry.Delay(r.delay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *HTTPRegistry) fetch(ctx context.Context, code string) (*Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.base+"/"+url.PathEscape(code), nil)
	if err != nil {
		return nil, retry.Unrecoverable(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("registry request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, retry.Unrecoverable(fmt.Errorf("%w: %s", ErrNotFound, code))
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("registry returned %s", resp.Status)
	case resp.StatusCode != http.StatusOK:
		return nil, retry.Unrecoverable(fmt.Errorf("registry returned %s", resp.Status))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read registry response: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, retry.Unrecoverable(fmt.Errorf("failed to decode registry response: %w", err))
	}
	return &rec, nil
}
