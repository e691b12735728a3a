package cmd

import (
	"fmt"
	"runtime"

	"github.com/MeKo-Tech/credex/internal/batch"
	"github.com/MeKo-Tech/credex/internal/config"
	"github.com/MeKo-Tech/credex/internal/registry"
	"github.com/spf13/cobra"
)

func newBatchCmd() *cobra.Command {
	batchCmd := &cobra.Command{
		Use:   "batch [files or directories...]",
		Short: "Extract credential fields from many token documents in parallel",
		Long: `Extract credential fields from many OCR token documents with a pool of
workers. Directories are scanned for *.json, *.yaml and *.yml files unless
--include says otherwise. Results keep the order the files were found in.

Examples:
  credex batch scans/
  credex batch scans/ --recursive --workers 8 --format csv --output results.csv
  credex batch a.json b.json --verify --registry registry.yaml --stats`,
		Args: cobra.MinimumNArgs(1),
		RunE: runBatchCommand,
	}

	f := batchCmd.Flags()
	addExtractFlags(f)
	addRegistryFlags(f)
	addOutputFlags(f)

	f.IntP("workers", "w", 0, fmt.Sprintf("number of parallel workers (default from config, %d CPUs available)", runtime.NumCPU()))
	f.BoolP("recursive", "r", false, "recursively scan directories")
	f.StringSlice("include", batch.DefaultIncludePatterns, "file patterns to include")
	f.StringSlice("exclude", []string{}, "file patterns to exclude")
	f.Bool("continue-on-error", true, "keep going when a file fails")
	f.Bool("progress", false, "report progress on stderr")
	f.Bool("stats", false, "print processing statistics on stderr")
	return batchCmd
}

// configToBatchConfig maps configuration to batch.Config. CLI flags override
// config file values only when set.
func configToBatchConfig(cfg *config.Config, cmd *cobra.Command) (*batch.Config, error) {
	flags := cmd.Flags()
	batchConfig := &batch.Config{
		Workers:         cfg.Batch.Workers,
		Recursive:       cfg.Batch.Recursive,
		ContinueOnError: cfg.Batch.ContinueOnError,
	}

	if flags.Changed("workers") {
		batchConfig.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("recursive") {
		batchConfig.Recursive, _ = flags.GetBool("recursive")
	}
	if flags.Changed("continue-on-error") {
		batchConfig.ContinueOnError, _ = flags.GetBool("continue-on-error")
	}

	batchConfig.IncludePatterns, _ = flags.GetStringSlice("include")
	batchConfig.ExcludePatterns, _ = flags.GetStringSlice("exclude")

	opts, err := extractOptions(cfg, cmd)
	if err != nil {
		return nil, err
	}
	batchConfig.Extract = opts

	if progress, _ := flags.GetBool("progress"); progress {
		errOut := cmd.ErrOrStderr()
		batchConfig.Progress = func(done, total int) {
			_, _ = fmt.Fprintf(errOut, "\rProcessed %d/%d", done, total)
			if done == total {
				_, _ = fmt.Fprintln(errOut)
			}
		}
	}
	return batchConfig, nil
}

func runBatchCommand(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	config, err := configToBatchConfig(cfg, cmd)
	if err != nil {
		return err
	}
	out, err := outputOptions(cfg, cmd)
	if err != nil {
		return err
	}
	config.InputFormat = out.inputFormat

	reg, err := openRegistry(cfg, cmd)
	if err != nil {
		return err
	}
	if reg != nil {
		defer func() { _ = registry.Close(reg) }()
		config.Registry = reg
	}

	result, err := batch.ProcessBatch(cmd.Context(), args, config)
	if result != nil {
		if saveErr := result.SaveResults(cmd.OutOrStdout(), out.format, out.file, out.pretty); saveErr != nil {
			return fmt.Errorf("failed to save results: %w", saveErr)
		}
		if stats, _ := cmd.Flags().GetBool("stats"); stats {
			result.PrintStats(cmd.ErrOrStderr())
		}
	}
	if err != nil {
		return fmt.Errorf("batch processing failed: %w", err)
	}
	return nil
}
