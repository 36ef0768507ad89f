package version

import (
	"runtime/debug"
	"strings"
	"time"
)

// Set at build time:
//
//	go build -ldflags "-X github.com/kbukum/fileproxy/version.Version=1.4.0"
var (
	Version   = "dev"
	GitCommit = ""
	BuildTime = ""
)

// Info is the build description served by /version and `fileproxy version`.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildTime string `json:"build_time,omitempty"`
	GoVersion string `json:"go_version"`
	Dirty     bool   `json:"dirty,omitempty"`
	Release   bool   `json:"release"`
}

// GetVersionInfo merges ldflags values with the VCS stamp embedded by the
// Go toolchain. ldflags win when both are present.
func GetVersionInfo() Info {
	info := Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		info.GoVersion = bi.GoVersion
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if info.GitCommit == "" {
					info.GitCommit = s.Value
				}
			case "vcs.modified":
				info.Dirty = s.Value == "true"
			case "vcs.time":
				if info.BuildTime == "" {
					info.BuildTime = s.Value
				}
			}
		}
	}
	if len(info.GitCommit) > 7 {
		info.GitCommit = info.GitCommit[:7]
	}
	if t, err := time.Parse(time.RFC3339, info.BuildTime); err == nil {
		info.BuildTime = t.UTC().Format(time.RFC3339)
	}
	info.Release = info.Version != "dev" && !info.Dirty && !strings.Contains(info.Version, "dirty")
	return info
}

// GetVersion returns the bare version string.
func GetVersion() string { return Version }

// String renders "1.4.0 (abc1234, dirty, built 2026-01-02T03:04:05Z)".
func (i Info) String() string {
	var extra []string
	if i.GitCommit != "" {
		extra = append(extra, i.GitCommit)
	}
	if i.Dirty {
		extra = append(extra, "dirty")
	}
	if i.BuildTime != "" {
		extra = append(extra, "built "+i.BuildTime)
	}
	if len(extra) == 0 {
		return i.Version
	}
	return i.Version + " (" + strings.Join(extra, ", ") + ")"
}
