// Package version holds the build-time version variables for the amicheck
// binary and the Lambda function. The zero values ("dev", "none",
// "unknown") are used for local builds; release builds set them via
// -ldflags.
package version

import "fmt"

// These variables are overridden by -ldflags at release time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info returns the formatted version string printed by amicheck version.
func Info() string {
	return fmt.Sprintf(
		"amicheck version %s\ncommit: %s\nbuilt: %s\n",
		Version,
		Commit,
		Date,
	)
}

// Short returns "<version> (<commit>)" for log attributes.
func Short() string {
	return Version + " (" + Commit + ")"
}
