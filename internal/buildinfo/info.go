// Package buildinfo holds version details stamped in at link time.
package buildinfo

import "fmt"

var (
	// Version is set with -ldflags "-X .../buildinfo.Version=v1.2.3".
	Version = "dev"
	// Commit is the git commit the binary was built from.
	Commit = "none"
	// Date is the build timestamp.
	Date = "unknown"
)

// String renders the version line shown by cashflow --version.
func String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date)
}
