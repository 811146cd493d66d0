// Package buildinfo reports which build of orgchart is running.
//
// Release builds set the variables with ldflags:
//
//	go build -ldflags "-X github.com/matzehuels/orgchart/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/matzehuels/orgchart/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/matzehuels/orgchart/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// Binaries built with go install or from a git checkout without ldflags fall
// back to the module version and VCS stamp the toolchain embeds.
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

// Unset values.
const (
	devVersion    = "dev"
	unknownCommit = "none"
	unknownDate   = "unknown"
)

var (
	Version = devVersion
	Commit  = unknownCommit
	Date    = unknownDate
)

func init() { fill(debug.ReadBuildInfo) }

// fill completes the variables the linker left unset.
func fill(read func() (*debug.BuildInfo, bool)) {
	info, ok := read()
	if !ok || info == nil {
		return
	}
	if Version == devVersion && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if Commit == unknownCommit {
				Commit = s.Value
			}
		case "vcs.time":
			if Date == unknownDate {
				Date = s.Value
			}
		}
	}
}

// Short is the version with an abbreviated commit, e.g. "v1.2.0+3f2c1ab".
// Cached diagrams are scoped to it.
func Short() string {
	if Commit == unknownCommit || Commit == "" {
		return Version
	}
	c := Commit
	if len(c) > 7 {
		c = c[:7]
	}
	return Version + "+" + c
}

// Template returns the version template for cobra.
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}
