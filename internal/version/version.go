package version

import "fmt"

// Build information set by ldflags
var (
	Version = "dev"     // Set by goreleaser: -X github.com/arthur-debert/wfpack/internal/version.Version={{.Version}}
	Commit  = "unknown" // Set by goreleaser: -X github.com/arthur-debert/wfpack/internal/version.Commit={{.Commit}}
	Date    = "unknown" // Set by goreleaser: -X github.com/arthur-debert/wfpack/internal/version.Date={{.Date}}
)

// String formats the build information on one line
func String() string {
	return fmt.Sprintf("wfpack %s (commit %s, built %s)", Version, Commit, Date)
}
