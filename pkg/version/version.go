// Package version reports build information. Release builds set the
// variables with -ldflags "-X"; other builds fall back to the module and VCS
// data embedded by the Go toolchain.
package version

import (
	"fmt"
	"runtime/debug"
	"sync"
)

const unknown = "unknown"

// Set with -ldflags "-X github.com/Sumatoshi-tech/boundarylint/pkg/version.Version=...".
var (
	Version = ""
	Commit  = ""
	Date    = ""
)

// Info is the resolved build information.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// String formats the info as printed by the version command.
func (i Info) String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", i.Version, i.Commit, i.Date)
}

var buildInfo = sync.OnceValue(func() *debug.BuildInfo {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return nil
	}

	return info
})

// Get resolves build information.
func Get() Info {
	return resolve(Version, Commit, Date, buildInfo())
}

// String returns the resolved version string.
func String() string {
	return Get().Version
}

func resolve(ver, commit, date string, info *debug.BuildInfo) Info {
	if info != nil {
		if ver == "" && info.Main.Version != "" && info.Main.Version != "(devel)" {
			ver = info.Main.Version
		}

		for _, setting := range info.Settings {
			switch setting.Key {
			case "vcs.revision":
				if commit == "" {
					commit = setting.Value
				}
			case "vcs.time":
				if date == "" {
					date = setting.Value
				}
			}
		}
	}

	return Info{Version: orDefault(ver, "dev"), Commit: orDefault(commit, unknown), Date: orDefault(date, unknown)}
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}

	return value
}
