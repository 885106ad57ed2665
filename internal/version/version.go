// Package version holds build information injected at link time.
package version

var (
	// Version is the semantic version of the build.
	Version = "dev"
	// GitCommit is the git commit hash of the build.
	GitCommit = "unknown"
	// BuildDate is the build timestamp.
	BuildDate = "unknown"
)
