// Package buildinfo exposes the version metadata stamped into binaries with
// -ldflags "-X ...buildinfo.Version=...".
package buildinfo

import (
	"fmt"
	"io"
	"runtime/debug"
)

const modulePath = "github.com/businessecom2026-code/Safe360co-sub000"

var (
	Version = "dev"
	Commit  = "dev"
	Date    = "unknown"
)

// Resolve returns the best-known version, commit and build date. When info
// is nil the runtime build info is used.
func Resolve(info *debug.BuildInfo) (version, commit, date string) {
	version, commit, date = Version, Commit, Date

	if info == nil {
		var ok bool
		if info, ok = debug.ReadBuildInfo(); !ok {
			info = nil
		}
	}

	if info != nil {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			version = info.Main.Version
		}
		if version == "dev" {
			for _, dep := range info.Deps {
				if dep != nil && dep.Path == modulePath && dep.Version != "" {
					version = dep.Version
					break
				}
			}
		}
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if s.Value != "" && commit == "dev" {
					commit = s.Value
				}
			case "vcs.time":
				if s.Value != "" && date == "unknown" {
					date = s.Value
				}
			}
		}
	}

	if version == "dev" && commit != "dev" && commit != "" {
		version = commit
	}
	return version, commit, date
}

// String renders "version (commit) built: date".
func String() string {
	v, c, d := Resolve(nil)
	return fmt.Sprintf("%s (%s) built: %s", v, c, d)
}

// PrintBuildData writes the build banner to w.
func PrintBuildData(w io.Writer) {
	v, c, d := Resolve(nil)
	fmt.Fprintf(w, "Build version: %s\n", v)
	fmt.Fprintf(w, "Build commit: %s\n", c)
	fmt.Fprintf(w, "Build date: %s\n", d)
}
