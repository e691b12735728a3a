package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MeKo-Tech/credex/internal/config"
	"github.com/MeKo-Tech/credex/internal/registry"
	"github.com/MeKo-Tech/credex/internal/server"
	"github.com/MeKo-Tech/credex/internal/version"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP server for the extraction API",
		Long: `Start an HTTP server that provides REST and websocket endpoints for
credential extraction.

The server provides the following endpoints:
  POST /extract       - Extract fields from a token document (?format=, ?verify=1)
  POST /canonicalize  - Correct a registration code and list its variants
  GET  /ws/extract    - Websocket: one token document per message
  GET  /health        - Health check endpoint
  GET  /metrics       - Prometheus metrics

Examples:
  credex serve
  credex serve --port 8080
  credex serve --host 0.0.0.0 --port 3000 --registry registry.yaml`,
		RunE: runServeCommand,
	}

	f := serveCmd.Flags()
	addExtractFlags(f)
	f.StringP("host", "H", "localhost", "server host")
	f.IntP("port", "p", 8080, "server port")
	f.String("cors-origin", "*", "CORS allowed origins")
	f.Int("max-body-kb", 1024, "maximum request body size in KiB")
	f.Int("timeout", 30, "request timeout in seconds")
	f.Int("shutdown-timeout", 10, "shutdown timeout in seconds")
	f.String("registry", "", "YAML registry file enabling ?verify=1 (overrides registry.source and registry.path)")
	// Rate limiting flags
	f.Bool("rate-limit-enabled", false, "enable rate limiting")
	f.Int("requests-per-minute", 60, "maximum requests per minute per client")
	f.Int("requests-per-hour", 1000, "maximum requests per hour per client")
	f.Int("max-requests-per-day", 10000, "maximum requests per day per client")
	f.Int64("max-data-per-day", 100*1024*1024, "maximum data processed per day per client (bytes)")
	return serveCmd
}

// configToServerConfig maps configuration to server.Config. CLI flags
// override config file values only when set.
func configToServerConfig(cfg *config.Config, cmd *cobra.Command) (server.Config, int, error) {
	flags := cmd.Flags()
	sc := cfg.Server

	if flags.Changed("host") {
		sc.Host, _ = flags.GetString("host")
	}
	if flags.Changed("port") {
		sc.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("cors-origin") {
		sc.CORSOrigin, _ = flags.GetString("cors-origin")
	}
	if flags.Changed("max-body-kb") {
		sc.MaxBodyKB, _ = flags.GetInt("max-body-kb")
	}
	if flags.Changed("timeout") {
		sc.TimeoutSec, _ = flags.GetInt("timeout")
	}
	if flags.Changed("shutdown-timeout") {
		sc.ShutdownTimeout, _ = flags.GetInt("shutdown-timeout")
	}
	if flags.Changed("rate-limit-enabled") {
		sc.RateLimitEnabled, _ = flags.GetBool("rate-limit-enabled")
	}
	if flags.Changed("requests-per-minute") {
		sc.RequestsPerMin, _ = flags.GetInt("requests-per-minute")
	}
	if flags.Changed("requests-per-hour") {
		sc.RequestsPerHour, _ = flags.GetInt("requests-per-hour")
	}
	if flags.Changed("max-requests-per-day") {
		sc.MaxRequestsDay, _ = flags.GetInt("max-requests-per-day")
	}
	if flags.Changed("max-data-per-day") {
		sc.MaxDataPerDay, _ = flags.GetInt64("max-data-per-day")
	}

	if sc.Port < 1 || sc.Port > 65535 {
		return server.Config{}, 0, fmt.Errorf("invalid port number: %d (must be between 1 and 65535)", sc.Port)
	}
	if sc.MaxBodyKB <= 0 || sc.TimeoutSec <= 0 {
		return server.Config{}, 0, fmt.Errorf("--max-body-kb and --timeout must be positive")
	}

	opts, err := extractOptions(cfg, cmd)
	if err != nil {
		return server.Config{}, 0, err
	}

	return server.Config{
		Host:       sc.Host,
		Port:       sc.Port,
		CORSOrigin: sc.CORSOrigin,
		MaxBodyKB:  sc.MaxBodyKB,
		TimeoutSec: sc.TimeoutSec,
		Version:    version.Version,
		Extract:    opts,
		RateLimit: server.RateLimitConfig{
			Enabled:           sc.RateLimitEnabled,
			RequestsPerMinute: sc.RequestsPerMin,
			RequestsPerHour:   sc.RequestsPerHour,
			MaxRequestsPerDay: sc.MaxRequestsDay,
			MaxDataPerDay:     sc.MaxDataPerDay,
		},
		Logger: slog.Default(),
	}, sc.ShutdownTimeout, nil
}

func runServeCommand(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	serverConfig, shutdownTimeout, err := configToServerConfig(cfg, cmd)
	if err != nil {
		return err
	}

	settings := cfg.ToRegistrySettings()
	if cmd.Flags().Changed("registry") {
		settings.Source = registry.SourceFile
		settings.Path, _ = cmd.Flags().GetString("registry")
	}
	reg, err := registry.Open(settings)
	if err != nil {
		return fmt.Errorf("failed to open registry: %w", err)
	}
	serverConfig.Registry = reg

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	apiServer := server.NewServer(serverConfig)

	timeout := time.Duration(serverConfig.TimeoutSec) * time.Second
	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", serverConfig.Host, serverConfig.Port),
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       timeout,
		WriteTimeout:      timeout,
	}

	go func() {
		slog.Info("Starting credex server", "host", serverConfig.Host, "port", serverConfig.Port,
			"registry", settings.Source, "rate_limit", serverConfig.RateLimit.Enabled)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			cancel()
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		slog.Info("Received shutdown signal", "signal", sig.String())
	case <-ctx.Done():
		slog.Info("Context cancelled, initiating shutdown")
	}

	slog.Info("Starting graceful shutdown", "timeout", fmt.Sprintf("%ds", shutdownTimeout))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Duration(shutdownTimeout)*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server shutdown completed")
	}

	if err := apiServer.Close(); err != nil {
		slog.Error("Server cleanup error", "error", err)
	}

	slog.Info("Graceful shutdown completed")
	return nil
}
