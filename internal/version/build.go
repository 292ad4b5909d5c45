// Package version reports build metadata and checks GitHub for newer releases.
package version

import (
	"fmt"
	"runtime"
)

// Set at link time with -ldflags "-X .../internal/version.Version=...".
//
//nolint:gochecknoglobals // populated by the linker
var (
	Version = ""
	Commit  = ""
	Date    = ""
)

const devVersion = "dev"

// Build describes the running binary.
type Build struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
	Go      string `json:"go"`
	OS      string `json:"os"`
	Arch    string `json:"arch"`
}

// Current returns the build metadata of the running binary. Builds without
// a linked version report "dev".
func Current() Build {
	return Build{
		Version: orDefault(Version, devVersion),
		Commit:  Commit,
		Date:    Date,
		Go:      runtime.Version(),
		OS:      runtime.GOOS,
		Arch:    runtime.GOARCH,
	}
}

// String renders "v1.2.3 (commit: abc1234, built: 2024-01-15)" with
// placeholders for missing fields.
func (b Build) String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", orDefault(b.Version, devVersion), orDefault(b.Commit, "unknown"), orDefault(b.Date, "unknown"))
}

// IsDev reports whether the binary was built without a release version.
func (b Build) IsDev() bool {
	return isDev(b.Version)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
