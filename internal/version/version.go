// Package version carries build identity stamped in at link time via
// -ldflags "-X github.com/neuronav-data/stereotax/internal/version.Version=...".
package version

import "fmt"

var (
	// Version is the current application version
	Version = "dev"
	// GitSHA is the git commit SHA
	GitSHA = "unknown"
	// BuildTime is the build timestamp
	BuildTime = "unknown"
)

// String renders the build identity in one line for startup logs and
// -version output.
func String() string {
	return fmt.Sprintf("stereotax %s (%s, built %s)", Version, GitSHA, BuildTime)
}
