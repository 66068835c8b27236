// Package version provides the PRISM build version.
// Release builds set it with ldflags:
//
//	go build -ldflags "-X github.com/codwats/prism/internal/version.Version=v1.2.3 -X github.com/codwats/prism/internal/version.Commit=abc123"
package version

import (
	"fmt"
	"runtime"
)

var (
	// Version is the release version, "dev" for local builds.
	Version = "dev"

	// Commit is the git commit the binary was built from.
	Commit = "unknown"
)

// GetVersion returns the current application version.
func GetVersion() string {
	return Version
}

// String returns the version line printed by `prism version`.
func String() string {
	return fmt.Sprintf("prism %s (commit %s, %s %s/%s)", Version, Commit, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
