// Package version holds the build identity, overridable with -ldflags -X.
package version

import "fmt"

var (
	Version   = "0.1.0"
	BuildDate = "2026-10-18"
	Commit    = ""
)

func GetVersion() string {
	return Version
}

func GetBuildDate() string {
	return BuildDate
}

// String formats the version for the CLI.
func String() string {
	if Commit == "" {
		return fmt.Sprintf("fakeset %s (built %s)", Version, BuildDate)
	}
	return fmt.Sprintf("fakeset %s (%s, built %s)", Version, Commit, BuildDate)
}
