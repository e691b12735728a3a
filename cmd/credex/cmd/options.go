package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/MeKo-Tech/credex/internal/config"
	"github.com/MeKo-Tech/credex/internal/extract"
	"github.com/MeKo-Tech/credex/internal/ocrinput"
	"github.com/MeKo-Tech/credex/internal/registry"
	"github.com/MeKo-Tech/credex/internal/textnorm"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// addExtractFlags registers the extraction switches shared by extract,
// batch and serve.
func addExtractFlags(f *pflag.FlagSet) {
	f.Float64("min-confidence", extract.DefaultMinConfidence, "candidates must score above this confidence (0.0-1.0)")
	f.Bool("canonicalize", true, "correct OCR confusions in the registration number and list its variants")
	f.Bool("scan-all", false, "fall back to any code-shaped token when the registration label yields none")
	f.String("unicode-form", "NFC", "unicode normalization applied to token text: NFC, NFD, NFKC, NFKD, none")
}

// addRegistryFlags registers the verification switches shared by extract
// and batch.
func addRegistryFlags(f *pflag.FlagSet) {
	f.Bool("verify", false, "look the registration number up in the registry")
	f.String("registry", "", "YAML registry file (overrides registry.source and registry.path)")
}

// addOutputFlags registers the output switches shared by extract and batch.
func addOutputFlags(f *pflag.FlagSet) {
	f.StringP("format", "f", "json", "output format: json, text, csv")
	f.StringP("output", "o", "", "output file (default: stdout)")
	f.Bool("pretty", true, "indent json output")
	f.String("input-format", string(ocrinput.FormatAuto), "token document format: auto, tuple, object, regions, yaml")
}

// extractOptions maps configuration to extractor options. CLI flags
// override config values only when set.
func extractOptions(cfg *config.Config, cmd *cobra.Command) (extract.Options, error) {
	opts := cfg.ToExtractOptions()
	flags := cmd.Flags()

	if flags.Changed("min-confidence") {
		opts.MinConfidence, _ = flags.GetFloat64("min-confidence")
		if opts.MinConfidence < 0 || opts.MinConfidence > 1 {
			return opts, fmt.Errorf("invalid --min-confidence %v (must be between 0.0 and 1.0)", opts.MinConfidence)
		}
	}
	if flags.Changed("canonicalize") {
		opts.Canonicalize, _ = flags.GetBool("canonicalize")
	}
	if flags.Changed("scan-all") {
		opts.ScanAllTokens, _ = flags.GetBool("scan-all")
	}
	if flags.Changed("unicode-form") {
		form, _ := flags.GetString("unicode-form")
		if !textnorm.ValidUnicodeForm(form) {
			return opts, fmt.Errorf("invalid --unicode-form %q", form)
		}
		opts.Text.UnicodeForm = form
	}

	opts.Logger = slog.Default()
	return opts, nil
}

type outputSettings struct {
	format      string
	file        string
	pretty      bool
	inputFormat ocrinput.Format
}

func outputOptions(cfg *config.Config, cmd *cobra.Command) (outputSettings, error) {
	flags := cmd.Flags()
	out := outputSettings{format: cfg.Output.Format, pretty: cfg.Output.Pretty}

	if flags.Changed("format") {
		out.format, _ = flags.GetString("format")
	}
	if flags.Changed("pretty") {
		out.pretty, _ = flags.GetBool("pretty")
	}
	out.file, _ = flags.GetString("output")

	switch out.format {
	case "json", "text", "csv":
	default:
		return out, fmt.Errorf("invalid --format %q (must be one of: json, text, csv)", out.format)
	}

	raw, _ := flags.GetString("input-format")
	format, err := ocrinput.ParseFormat(raw)
	if err != nil {
		return out, err
	}
	out.inputFormat = format
	return out, nil
}

// openRegistry opens the registry selected by config or --registry. It
// returns nil when verification was not requested.
func openRegistry(cfg *config.Config, cmd *cobra.Command) (registry.Registry, error) {
	flags := cmd.Flags()
	verify, _ := flags.GetBool("verify")
	if !verify {
		return nil, nil
	}

	settings := cfg.ToRegistrySettings()
	if flags.Changed("registry") {
		settings.Source = registry.SourceFile
		settings.Path, _ = flags.GetString("registry")
		settings.Watch = false
	}
	if !settings.Enabled() {
		return nil, fmt.Errorf("--verify needs a registry: pass --registry or set registry.source")
	}

	reg, err := registry.Open(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to open registry: %w", err)
	}
	return reg, nil
}

// writeOutput writes s to file, or to the command's stdout when file is empty.
func writeOutput(cmd *cobra.Command, file, s string) error {
	if file == "" {
		_, err := fmt.Fprint(cmd.OutOrStdout(), s)
		return err
	}
	if err := os.WriteFile(file, []byte(s), 0o600); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
