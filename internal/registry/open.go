package registry

import (
	"fmt"
	"io"
	"time"
)

// Registry sources.
const (
	SourceNone = "none"
	SourceFile = "file"
	SourceHTTP = "http"
)

// Settings select and configure a registry.
type Settings struct {
	Source   string
	Path     string
	URL      string
	Timeout  time.Duration
	Attempts uint
	Watch    bool
}

// Enabled reports whether s names a registry.
func (s Settings) Enabled() bool {
	return s.Source != "" && s.Source != SourceNone
}

// Open builds the registry described by s. It returns nil, nil when no
// registry is configured.
func Open(s Settings) (Registry, error) {
	switch s.Source {
	case "", SourceNone:
		return nil, nil
	case SourceFile:
		reg, err := OpenFile(s.Path)
		if err != nil {
			return nil, err
		}
		if s.Watch {
			if err := reg.Watch(); err != nil {
				return nil, err
			}
		}
		return reg, nil
	case SourceHTTP:
		reg, err := NewHTTP(HTTPConfig{BaseURL: s.URL, Timeout: s.Timeout, Attempts: s.Attempts})
		if err != nil {
			return nil, err
		}
		return reg, nil
	}
	return nil, fmt.Errorf("unknown registry source %q", s.Source)
}

// Close releases resources held by reg, if any.
func Close(reg Registry) error {
	if c, ok := reg.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
