package version

import "fmt"

var (
	// Version is the pipeline's semantic version, overridden via ldflags on release builds.
	Version = "1.0.0"
	// Commit is the short source revision the binary was built from ("none" for local builds).
	Commit = "none"
	// BuildTime is the UTC timestamp of the build ("unknown" for local builds).
	BuildTime = "unknown"
)

// Short returns the bare semantic version.
func Short() string {
	return Version
}

// Full renders the version together with the revision and build timestamp,
// the same identifiers release tags are derived from.
func Full() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, BuildTime)
}
