// Package version holds build metadata injected via ldflags.
package version

import "fmt"

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String renders the metadata as printed by `strindex version`.
func String() string {
	return fmt.Sprintf("strindex version %s (commit %s, built %s)", Version, Commit, Date)
}
