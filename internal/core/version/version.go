// Package version reports what build is running
package version

import "runtime/debug"

// BuildInfo is served by /version and tagged on telemetry
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// set with -ldflags "-X prsentinel/internal/core/version.version=v0.3.0 ..."
var (
	version = "dev"
	commit  = ""
	date    = "unknown"
)

// Info returns the linked build info. Without an ldflags commit the VCS
// revision stamped by the go tool is used
func Info() BuildInfo {
	c := commit
	if c == "" {
		c = vcsRevision()
	}
	return BuildInfo{Service: "prsentinel", Version: version, Commit: c, Date: date}
}

func vcsRevision() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return "none"
	}
	for _, s := range bi.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 7 {
			return s.Value[:7]
		}
	}
	return "none"
}
