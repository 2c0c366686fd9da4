// Package version reports the build version of the im920 tools.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
	"time"
)

// Set at build time:
//
//	go build -ldflags="-X github.com/muurk/im920/internal/version.Version=v0.3.0 \
//	                   -X github.com/muurk/im920/internal/version.Commit=abc1234"
//
// Unset values are filled from the VCS stamp in the build info.
var (
	Version = ""
	Commit  = ""
)

// Info describes the running binary
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

var (
	info     Info
	infoOnce sync.Once
)

// Get returns the build information, resolving it on first use
func Get() Info {
	infoOnce.Do(func() {
		info = resolve(Version, Commit, readSettings())
	})
	return info
}

// Full returns the version string including commit
func Full() string {
	i := Get()
	return fmt.Sprintf("%s (commit: %s)", i.Version, i.Commit)
}

func readSettings() map[string]string {
	settings := make(map[string]string)
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return settings
	}
	for _, s := range bi.Settings {
		settings[s.Key] = s.Value
	}
	return settings
}

// resolve fills unset ldflags values from vcs.* build settings
func resolve(version, commit string, settings map[string]string) Info {
	if commit == "" {
		commit = shortCommit(settings["vcs.revision"], settings["vcs.modified"] == "true")
	}

	if version == "" {
		if t, err := time.Parse(time.RFC3339, settings["vcs.time"]); err == nil {
			version = "dev-" + t.UTC().Format("20060102")
		} else {
			version = "dev"
		}
	}

	return Info{
		Version:   version,
		Commit:    commit,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

func shortCommit(revision string, dirty bool) string {
	if revision == "" {
		return "unknown"
	}
	if len(revision) > 7 {
		revision = revision[:7]
	}
	if dirty {
		revision += "-dirty"
	}
	return revision
}
