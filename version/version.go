package version

import "fmt"

// set via ldflags, e.g. -X github.com/mpapenbr/race-engineer-go/version.Version=v0.1.0
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var FullVersion = fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, Date)
