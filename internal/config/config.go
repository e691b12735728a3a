package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/MeKo-Tech/credex/internal/extract"
	"github.com/MeKo-Tech/credex/internal/registry"
	"github.com/MeKo-Tech/credex/internal/textnorm"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Verbose:  false,
		Extract: ExtractConfig{
			MinConfidence: extract.DefaultMinConfidence,
			Canonicalize:  true,
			ScanAllTokens: false,
			UnicodeForm:   "NFC",
		},
		Output: OutputConfig{
			Format: "json",
			Pretty: true,
		},
		Server: ServerConfig{
			Host:             "localhost",
			Port:             8080,
			CORSOrigin:       "*",
			MaxBodyKB:        1024,
			TimeoutSec:       30,
			ShutdownTimeout:  10,
			RateLimitEnabled: false,
			RequestsPerMin:   60,
			RequestsPerHour:  1000,
			MaxRequestsDay:   10000,
			MaxDataPerDay:    100 * 1024 * 1024,
		},
		Batch: BatchConfig{
			Workers:         4,
			Recursive:       false,
			ContinueOnError: true,
		},
		Registry: RegistryConfig{
			Source:     registry.SourceNone,
			TimeoutSec: 10,
			Attempts:   3,
			Watch:      false,
		},
	}
}

// Validate validates the configuration and returns the first problem found.
func (c *Config) Validate() error {
	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	validFormats := []string{"json", "text", "csv"}
	if c.Output.Format != "" && !slices.Contains(validFormats, c.Output.Format) {
		return fmt.Errorf("invalid output format: %s (must be one of: %s)", c.Output.Format, strings.Join(validFormats, ", "))
	}

	if err := validateThreshold(c.Extract.MinConfidence, "extract.min_confidence"); err != nil {
		return err
	}
	if !textnorm.ValidUnicodeForm(c.Extract.UnicodeForm) {
		return fmt.Errorf("invalid unicode form: %s (must be one of: NFC, NFD, NFKC, NFKD, none)", c.Extract.UnicodeForm)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be between 1 and 65535)", c.Server.Port)
	}
	if c.Server.MaxBodyKB <= 0 {
		return fmt.Errorf("invalid max body size: %d (must be positive)", c.Server.MaxBodyKB)
	}
	if c.Server.TimeoutSec <= 0 {
		return fmt.Errorf("invalid timeout: %d (must be positive)", c.Server.TimeoutSec)
	}
	if c.Server.RateLimitEnabled && (c.Server.RequestsPerMin <= 0 || c.Server.RequestsPerHour <= 0) {
		return fmt.Errorf("invalid rate limits: %d/min, %d/hour (must be positive)", c.Server.RequestsPerMin, c.Server.RequestsPerHour)
	}

	if c.Batch.Workers <= 0 {
		return fmt.Errorf("invalid batch workers: %d (must be positive)", c.Batch.Workers)
	}

	return c.validateRegistry()
}

func (c *Config) validateRegistry() error {
	switch c.Registry.Source {
	case "", registry.SourceNone:
	case registry.SourceFile:
		if c.Registry.Path == "" {
			return fmt.Errorf("registry.path is required for source %q", registry.SourceFile)
		}
	case registry.SourceHTTP:
		if c.Registry.URL == "" {
			return fmt.Errorf("registry.url is required for source %q", registry.SourceHTTP)
		}
	default:
		return fmt.Errorf("invalid registry source: %s (must be one of: none, file, http)", c.Registry.Source)
	}
	if c.Registry.Attempts < 0 {
		return fmt.Errorf("invalid registry attempts: %d (must not be negative)", c.Registry.Attempts)
	}
	return nil
}

// ToExtractOptions converts the config to extractor options.
func (c *Config) ToExtractOptions() extract.Options {
	opts := extract.DefaultOptions()
	opts.MinConfidence = c.Extract.MinConfidence
	opts.Canonicalize = c.Extract.Canonicalize
	opts.ScanAllTokens = c.Extract.ScanAllTokens
	if c.Extract.UnicodeForm != "" {
		opts.Text.UnicodeForm = c.Extract.UnicodeForm
	}
	return opts
}

// ToRegistrySettings converts the config to registry settings.
func (c *Config) ToRegistrySettings() registry.Settings {
	return registry.Settings{
		Source:   c.Registry.Source,
		Path:     c.Registry.Path,
		URL:      c.Registry.URL,
		Timeout:  time.Duration(c.Registry.TimeoutSec) * time.Second,
		Attempts: uint(max(c.Registry.Attempts, 0)),
		Watch:    c.Registry.Watch,
	}
}

func validateThreshold(value float64, name string) error {
	if value < 0.0 || value > 1.0 {
		return fmt.Errorf("invalid %s: %f (must be between 0.0 and 1.0)", name, value)
	}
	return nil
}
