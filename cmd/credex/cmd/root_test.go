package cmd

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/MeKo-Tech/credex/internal/config"
	"github.com/MeKo-Tech/credex/internal/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	root := NewRootCommand()
	assert.Equal(t, "credex", root.Use)
	assert.NotEmpty(t, root.Short)
	assert.NotEmpty(t, root.Long)

	names := make([]string, 0, len(root.Commands()))
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"extract", "batch", "serve", "verify", "config"} {
		assert.Contains(t, names, want)
	}
}

func TestRootCommandHelp(t *testing.T) {
	isolate(t)
	out, _, err := execute(t, nil, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "Available Commands:")
	assert.Contains(t, out, "registration number")
}

func TestRootCommandNoArgsShowsHelp(t *testing.T) {
	isolate(t)
	out, _, err := execute(t, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "Usage:")
}

func TestRootCommandVersion(t *testing.T) {
	isolate(t)
	out, _, err := execute(t, nil, "--version")
	require.NoError(t, err)
	assert.Equal(t, version.String()+"\n", out)
}

func TestRootCommandInvalidFlag(t *testing.T) {
	isolate(t)
	_, errOut, err := execute(t, nil, "--invalid-flag")
	require.Error(t, err)
	assert.Contains(t, errOut, "unknown flag")
}

func TestRootCommandInvalidConfig(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "credex.yaml"), []byte("log_level: loud\n"), 0o600))

	_, _, err := execute(t, nil, "config", "show")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestRootCommandExplicitConfigMissing(t *testing.T) {
	isolate(t)
	_, _, err := execute(t, nil, "--config", "nope.yaml", "config", "show")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestSetupLogging(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	tests := []struct {
		name    string
		level   string
		verbose bool
		want    slog.Level
	}{
		{"default info", "info", false, slog.LevelInfo},
		{"warn", "warn", false, slog.LevelWarn},
		{"error", "error", false, slog.LevelError},
		{"verbose forces debug", "error", true, slog.LevelDebug},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.LogLevel = tt.level
			cfg.Verbose = tt.verbose

			var buf bytes.Buffer
			setupLogging(&buf, &cfg)
			ctx := context.Background()
			assert.True(t, slog.Default().Enabled(ctx, tt.want))
			assert.False(t, slog.Default().Enabled(ctx, tt.want-1))

			slog.Error("boom", "k", "v")
			assert.Contains(t, buf.String(), `"msg":"boom"`)
		})
	}
}
