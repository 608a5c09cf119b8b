// Package version reports the build identity of the subunit binary.
package version

import (
	"fmt"
	"runtime/debug"
)

// Set with -ldflags -X by the build task.
var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildDate  = "unknown"
)

// String formats the build identity as printed by `subunit version`.
// Binaries built with go install carry no ldflags, so their module version
// is used instead of "dev" when it is known.
func String() string {
	return format(Version, CommitHash, BuildDate, readBuildInfo)
}

func format(v, commit, date string, info func() (*debug.BuildInfo, bool)) string {
	if v == "dev" {
		if bi, ok := info(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			v = bi.Main.Version
		}
	}
	return fmt.Sprintf("subunit %s (commit %s, built %s)", v, commit, date)
}

var readBuildInfo = debug.ReadBuildInfo
