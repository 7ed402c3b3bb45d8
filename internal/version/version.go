// Package version holds build metadata, set at link time with
// -ldflags "-X github.com/mctalPlots/mctalPlots/internal/version.Version=...".
package version

import "fmt"

var (
	Version   = "dev"
	GitSHA    = "unknown"
	BuildTime = "unknown"
)

// String formats the build metadata for the version command.
func String() string {
	return fmt.Sprintf("mctalplots %s (%s, built %s)", Version, GitSHA, BuildTime)
}
