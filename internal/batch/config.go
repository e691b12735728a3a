package batch

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/MeKo-Tech/credex/internal/extract"
	"github.com/MeKo-Tech/credex/internal/ocrinput"
	"github.com/MeKo-Tech/credex/internal/registry"
)

// DefaultIncludePatterns select token documents when no include pattern is given.
var DefaultIncludePatterns = []string{"*.json", "*.yaml", "*.yml"}

// Config holds all configuration for batch processing.
type Config struct {
	Workers         int
	ContinueOnError bool

	// File discovery settings
	Recursive       bool
	IncludePatterns []string
	ExcludePatterns []string

	// InputFormat overrides per-file format detection.
	InputFormat ocrinput.Format
	Extract     extract.Options

	// Registry, when set, verifies every extraction.
	Registry registry.Registry

	// Progress is called after each file completes.
	Progress func(done, total int)
}

// Item is the outcome for one file. Err is set when the file could not be
// read, decoded or verified.
type Item struct {
	File         string                 `json:"file"`
	Result       *extract.Result        `json:"result,omitempty"`
	Verification *registry.Verification `json:"verification,omitempty"`
	Err          error                  `json:"-"`
	Error        string                 `json:"error,omitempty"`
}

// Result holds the result of batch processing. Items are in discovery order.
type Result struct {
	Items       []Item
	Duration    time.Duration
	WorkerCount int
}

// Stats summarises a batch run.
type Stats struct {
	Total      int
	Succeeded  int
	Failed     int
	Complete   int
	Duration   time.Duration
	PerFile    time.Duration
	Throughput float64
}

// Stats computes processing statistics. Complete counts documents where
// every field was found.
func (r *Result) Stats() Stats {
	s := Stats{Total: len(r.Items), Duration: r.Duration}
	for _, it := range r.Items {
		if it.Err != nil {
			s.Failed++
			continue
		}
		s.Succeeded++
		if it.Result != nil && it.Result.Found() == len(extract.Fields()) {
			s.Complete++
		}
	}
	if s.Total > 0 {
		s.PerFile = r.Duration / time.Duration(s.Total)
	}
	if secs := r.Duration.Seconds(); secs > 0 {
		s.Throughput = float64(s.Total) / secs
	}
	return s
}

// FormatResults formats the batch results in the given output format.
func (r *Result) FormatResults(format string, pretty bool) (string, error) {
	return Format(r.Items, format, pretty)
}

// SaveResults writes the formatted results to outputFile, or to w when
// outputFile is empty.
func (r *Result) SaveResults(w io.Writer, format, outputFile string, pretty bool) error {
	output, err := r.FormatResults(format, pretty)
	if err != nil {
		return fmt.Errorf("failed to format results: %w", err)
	}

	if outputFile == "" {
		_, err = io.WriteString(w, output)
		return err
	}
	if err := os.WriteFile(outputFile, []byte(output), 0o600); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// PrintStats prints processing statistics.
func (r *Result) PrintStats(w io.Writer) {
	s := r.Stats()
	_, _ = fmt.Fprintf(w, "\nProcessing Statistics:\n")
	_, _ = fmt.Fprintf(w, "  Total files: %d\n", s.Total)
	_, _ = fmt.Fprintf(w, "  Processed: %d\n", s.Succeeded)
	_, _ = fmt.Fprintf(w, "  Failed: %d\n", s.Failed)
	_, _ = fmt.Fprintf(w, "  All fields found: %d\n", s.Complete)
	_, _ = fmt.Fprintf(w, "  Workers: %d\n", r.WorkerCount)
	_, _ = fmt.Fprintf(w, "  Duration: %v\n", s.Duration.Round(time.Millisecond))
	_, _ = fmt.Fprintf(w, "  Avg per file: %v\n", s.PerFile.Round(time.Microsecond))
	_, _ = fmt.Fprintf(w, "  Throughput: %.1f files/sec\n", s.Throughput)
}
