// Package version holds build version information, set via -ldflags.
package version

var (
	// Version is the semantic version of the build.
	Version = "0.1.0-dev"

	// GitCommit is the commit the binary was built from.
	GitCommit = ""
)

// FullVersion returns the version with the commit, when known.
func FullVersion() string {
	if GitCommit == "" {
		return Version
	}
	return Version + " (" + GitCommit + ")"
}
