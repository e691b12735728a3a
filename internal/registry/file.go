package registry

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

type fileDocument struct {
	Records []Record `yaml:"records"`
}

// FileRegistry serves records from a YAML file of the form
//
//	records:
//	  - registration_number: 12045-D
//	    full_name: Muhammad Ali
//	    father_name: Ahmed Ali
type FileRegistry struct {
	path string

	mu      sync.RWMutex
	records map[string]Record

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// OpenFile loads a registry file.
func OpenFile(path string) (*FileRegistry, error) {
	r := &FileRegistry{path: path}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload re-reads the registry file. On error the previous records are kept.
func (r *FileRegistry) Reload() error {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return fmt.Errorf("failed to read registry %s: %w", r.path, err)
	}
	var doc fileDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse registry %s: %w", r.path, err)
	}
	records := make(map[string]Record, len(doc.Records))
	for _, rec := range doc.Records {
		records[key(rec.RegistrationNumber)] = rec
	}

	r.mu.Lock()
	r.records = records
	r.mu.Unlock()
	return nil
}

// Len returns the number of loaded records.
func (r *FileRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// Lookup implements Registry.
func (r *FileRegistry) Lookup(_ context.Context, code string) (*Record, error) {
	r.mu.RLock()
	rec, ok := r.records[key(code)]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, code)
	}
	return &rec, nil
}

// Watch reloads the file whenever it changes. The directory is watched so
// editors that replace the file atomically are picked up.
func (r *FileRegistry) Watch() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(r.path)); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to watch %s: %w", r.path, err)
	}
	r.watcher = w
	r.done = make(chan struct{})

	target := filepath.Clean(r.path)
	go func() {
		defer close(r.done)
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target || (!ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create)) {
					continue
				}
				if err := r.Reload(); err != nil {
					slog.Warn("Registry reload failed", "path", r.path, "error", err)
					continue
				}
				slog.Info("Registry reloaded", "path", r.path, "records", r.Len())
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.Warn("Registry watcher error", "error", err)
			}
		}
	}()
	return nil
}

// Close stops watching.
func (r *FileRegistry) Close() error {
	if r.watcher == nil {
		return nil
	}
	err := r.watcher.Close()
	<-r.done
	r.watcher = nil
	return err
}
