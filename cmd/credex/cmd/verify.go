package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/MeKo-Tech/credex/internal/regcode"
	"github.com/MeKo-Tech/credex/internal/registry"
	"github.com/spf13/cobra"
)

// verifyOutput is the json shape printed by the verify command.
type verifyOutput struct {
	Input        string                 `json:"input"`
	Canonical    string                 `json:"canonical"`
	Variants     []string               `json:"variants"`
	Verification *registry.Verification `json:"verification,omitempty"`
}

func newVerifyCmd() *cobra.Command {
	verifyCmd := &cobra.Command{
		Use:   "verify <code>",
		Short: "Canonicalize a registration number and look it up in the registry",
		Long: `Correct OCR digit/letter confusion in a registration number, list every
equally plausible reading and, when a registry is configured, look each
reading up in order until one is found.

Examples:
  credex verify 12O45-D
  credex verify "PMD-12O45-D" --registry registry.yaml --format text`,
		Args: cobra.ExactArgs(1),
		RunE: runVerifyCommand,
	}

	verifyCmd.Flags().String("registry", "", "YAML registry file (overrides registry.source and registry.path)")
	verifyCmd.Flags().StringP("format", "f", "json", "output format: json, text")
	return verifyCmd
}

func runVerifyCommand(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	format, _ := cmd.Flags().GetString("format")
	if format != "json" && format != "text" {
		return fmt.Errorf("invalid --format %q (must be one of: json, text)", format)
	}

	codes, err := regcode.ExpandText(args[0])
	if err != nil {
		return err
	}
	out := verifyOutput{Input: args[0], Canonical: codes[0].String(), Variants: regcode.Strings(codes)}

	settings := cfg.ToRegistrySettings()
	if cmd.Flags().Changed("registry") {
		settings.Source = registry.SourceFile
		settings.Path, _ = cmd.Flags().GetString("registry")
		settings.Watch = false
	}
	reg, err := registry.Open(settings)
	if err != nil {
		return fmt.Errorf("failed to open registry: %w", err)
	}
	if reg != nil {
		defer func() { _ = registry.Close(reg) }()
		out.Verification, err = registry.VerifyCode(cmd.Context(), reg, args[0])
		if err != nil {
			return fmt.Errorf("verification failed: %w", err)
		}
	}

	w := cmd.OutOrStdout()
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	_, _ = fmt.Fprintf(w, "canonical: %s\n", out.Canonical)
	_, _ = fmt.Fprintf(w, "variants: %s\n", strings.Join(out.Variants, ", "))
	if v := out.Verification; v != nil {
		if !v.Found {
			_, _ = fmt.Fprintf(w, "registry: not found (tried %s)\n", strings.Join(v.Tried, ", "))
			return nil
		}
		_, _ = fmt.Fprintf(w, "registry: found %s\n", v.MatchedCode)
		if rec := v.Record; rec != nil {
			_, _ = fmt.Fprintf(w, "name: %s\nfather_name: %s\n", rec.FullName, rec.FatherName)
			if rec.Status != "" {
				_, _ = fmt.Fprintf(w, "status: %s\n", rec.Status)
			}
			if rec.ValidDate != "" {
				_, _ = fmt.Fprintf(w, "valid_date: %s\n", rec.ValidDate)
			}
		}
		if v.Expired {
			_, _ = fmt.Fprintln(w, "licence: expired")
		} else {
			_, _ = fmt.Fprintln(w, "licence: valid")
		}
	}
	return nil
}

