package batch

import (
	"context"
	"fmt"
	"os"

	"github.com/MeKo-Tech/credex/internal/extract"
	"github.com/MeKo-Tech/credex/internal/ocrinput"
	"github.com/MeKo-Tech/credex/internal/registry"
)

// processFile reads, decodes, extracts and optionally verifies one document.
func processFile(ctx context.Context, ex *extract.Extractor, path string, config *Config) Item {
	item := Item{File: path}
	if err := ctx.Err(); err != nil {
		return item.fail(err)
	}

	data, err := os.ReadFile(path) //nolint:gosec // G304: paths come from discovery over user-supplied arguments
	if err != nil {
		return item.fail(fmt.Errorf("failed to read: %w", err))
	}

	format := config.InputFormat
	if format == "" || format == ocrinput.FormatAuto {
		format = ocrinput.FormatForPath(path)
	}
	tokens, err := ocrinput.DecodeBytes(data, format)
	if err != nil {
		return item.fail(err)
	}

	item.Result = ex.Extract(tokens)

	if config.Registry != nil {
		v, err := registry.Verify(ctx, config.Registry, item.Result)
		if err != nil {
			return item.fail(fmt.Errorf("verification failed: %w", err))
		}
		item.Verification = v
	}
	return item
}

func (it Item) fail(err error) Item {
	it.Err = err
	it.Error = err.Error()
	return it
}

// NewItem wraps a single extraction so it can be formatted like a batch.
func NewItem(file string, res *extract.Result, v *registry.Verification) Item {
	return Item{File: file, Result: res, Verification: v}
}
