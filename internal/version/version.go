// Package version exposes build information stamped in through ldflags:
//
//	-X github.com/MeKo-Tech/credex/internal/version.Version=v1.2.0
package version

import (
	"fmt"
	"runtime"
)

// Build-time variables set by ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Info returns version information
func Info() (string, string, string) {
	return Version, GitCommit, BuildDate
}

// String formats the build information for --version output.
func String() string {
	return fmt.Sprintf("credex %s (commit: %s, built: %s, %s)", Version, GitCommit, BuildDate, runtime.Version())
}
