// Package buildinfo holds build-time variables injected via ldflags.
package buildinfo

import "fmt"

// Populated by -ldflags at build time.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Summary renders the version line printed under the shell banner.
func Summary() string {
	if GitCommit == "unknown" {
		return "Version: " + Version
	}
	return fmt.Sprintf("Version: %s (%s, %s)", Version, GitCommit, BuildDate)
}
