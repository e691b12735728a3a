package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/MeKo-Tech/credex/internal/config"
	"github.com/MeKo-Tech/credex/internal/version"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Configuration loader for the current command tree.
	configLoader *config.Loader
	// Configuration resolved in PersistentPreRunE.
	globalConfig *config.Config
	// Configuration file path.
	cfgFile string
)

// NewRootCommand builds the credex command tree with fresh configuration
// state.
func NewRootCommand() *cobra.Command {
	configLoader = config.NewLoaderWith(viper.New())
	globalConfig = nil
	cfgFile = ""

	rootCmd := &cobra.Command{
		Use:   "credex",
		Short: "Extract credential fields from OCR token layouts",
		Long: `credex reads the tokens an OCR engine produced for a scanned professional
credential and recovers the registration number, the holder's name and the
father's name by anchoring on the printed field labels.

Registration numbers are corrected for the usual OCR digit/letter confusions
(O/0, S/5, I/1, ...) and can be checked against a registry.

Examples:
  credex extract card.json
  credex extract card.json --verify --registry registry.yaml
  credex batch scans/ --recursive --format csv
  credex verify 12O45-D
  credex serve --port 8080`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(); err != nil {
				return err
			}
			setupLogging(cmd.ErrOrStderr(), globalConfig)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, _ := cmd.PersistentFlags().GetBool("version"); v {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), version.String())
				return nil
			}
			return cmd.Help()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is search in ., $HOME, $HOME/.config/credex, /etc/credex)")
	pf.BoolP("verbose", "v", false, "verbose output (equivalent to --log-level=debug)")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.Bool("version", false, "print version information and exit")

	v := configLoader.GetViper()
	_ = v.BindPFlag("verbose", pf.Lookup("verbose"))
	_ = v.BindPFlag("log_level", pf.Lookup("log-level"))

	rootCmd.AddCommand(
		newExtractCmd(),
		newBatchCmd(),
		newServeCmd(),
		newVerifyCmd(),
		newConfigCmd(),
	)
	return rootCmd
}

// Execute runs the command tree. This is called by main.main().
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// initConfig reads a .env file from the working directory, then the config
// file and ENV variables. Variables already set in the environment win over
// .env entries.
func initConfig() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("error loading .env: %w", err)
	}

	var err error
	if cfgFile != "" {
		globalConfig, err = configLoader.LoadWithFile(cfgFile)
	} else {
		globalConfig, err = configLoader.Load()
	}
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}
	return nil
}

func setupLogging(w io.Writer, cfg *config.Config) {
	var level slog.Level
	if cfg.Verbose {
		level = slog.LevelDebug
	} else {
		switch cfg.LogLevel {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		default:
			level = slog.LevelInfo
		}
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})))
}

// GetConfig returns the resolved configuration.
func GetConfig() *config.Config {
	if globalConfig == nil {
		cfg := config.DefaultConfig()
		return &cfg
	}
	return globalConfig
}

// GetConfigLoader returns the configuration loader of the current command tree.
func GetConfigLoader() *config.Loader {
	if configLoader == nil {
		configLoader = config.NewLoaderWith(viper.New())
	}
	return configLoader
}
