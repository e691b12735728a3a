package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/MeKo-Tech/credex/internal/batch"
	"github.com/MeKo-Tech/credex/internal/extract"
	"github.com/MeKo-Tech/credex/internal/ocrinput"
	"github.com/MeKo-Tech/credex/internal/registry"
	"github.com/MeKo-Tech/credex/internal/visualize"
	"github.com/spf13/cobra"
)

func newExtractCmd() *cobra.Command {
	extractCmd := &cobra.Command{
		Use:   "extract [file|-]",
		Short: "Extract credential fields from one OCR token document",
		Long: `Extract the registration number, name and father name from the tokens an
OCR engine produced for one credential scan. The document is read from the
named file, or from stdin when the argument is "-" or missing.

Accepted token documents (--input-format, detected when auto):
  tuple    [[polygon, text, confidence], ...]
  object   {"tokens": [{"polygon": ..., "text": ..., "confidence": ...}]}
  regions  {"regions": [{"polygon": [{"X":..,"Y":..}], "text": ..., "rec_confidence": ...}]}
  yaml     the object layout written as YAML

Examples:
  credex extract card.json
  credex extract card.json --format text
  credex extract card.yaml --verify --registry registry.yaml
  cat card.json | credex extract - --overlay layout.png`,
		Args: cobra.MaximumNArgs(1),
		RunE: runExtractCommand,
	}

	addExtractFlags(extractCmd.Flags())
	addRegistryFlags(extractCmd.Flags())
	addOutputFlags(extractCmd.Flags())
	extractCmd.Flags().String("overlay", "", "write a PNG of the token layout with the matched labels and values highlighted")
	return extractCmd
}

func runExtractCommand(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	opts, err := extractOptions(cfg, cmd)
	if err != nil {
		return err
	}
	out, err := outputOptions(cfg, cmd)
	if err != nil {
		return err
	}

	name, data, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	format := out.inputFormat
	if format == ocrinput.FormatAuto {
		format = ocrinput.FormatForPath(name)
	}
	tokens, err := ocrinput.DecodeBytes(data, format)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", name, err)
	}

	result := extract.New(opts).Extract(tokens)
	slog.Debug("Extraction complete", "file", name, "tokens", len(tokens), "fields", result.Found())

	reg, err := openRegistry(cfg, cmd)
	if err != nil {
		return err
	}
	var verification *registry.Verification
	if reg != nil {
		defer func() { _ = registry.Close(reg) }()
		verification, err = registry.Verify(cmd.Context(), reg, result)
		if err != nil {
			return fmt.Errorf("verification failed: %w", err)
		}
	}

	if overlay, _ := cmd.Flags().GetString("overlay"); overlay != "" {
		img := visualize.RenderOverlay(tokens, result, visualize.DefaultStyle())
		if err := visualize.SavePNG(img, overlay); err != nil {
			return fmt.Errorf("failed to save overlay: %w", err)
		}
		slog.Debug("Overlay written", "path", overlay)
	}

	formatted, err := batch.FormatItem(batch.NewItem(name, result, verification), out.format, out.pretty)
	if err != nil {
		return fmt.Errorf("failed to format result: %w", err)
	}
	return writeOutput(cmd, out.file, formatted)
}

// readInput reads the token document named by args, or stdin.
func readInput(cmd *cobra.Command, args []string) (string, []byte, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return "-", data, nil
	}

	data, err := os.ReadFile(args[0]) //nolint:gosec // G304: the path is the user's own argument
	if err != nil {
		return "", nil, fmt.Errorf("failed to read token file: %w", err)
	}
	return args[0], data, nil
}
