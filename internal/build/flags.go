// SPDX-License-Identifier: MIT
//
// Package build exposes metadata injected at link time, for example:
//
//	go build -ldflags "-X lightbox/internal/build.buildVersion=0.3.0 -X lightbox/internal/build.buildCommit=$(git rev-parse --short HEAD)"
//
// Development builds fall back to placeholder values instead of failing, so
// the renderer can always start.
package build

import "fmt"

// Info holds the build metadata.
type Info struct {
	Name    string // Application name
	Time    string // Build timestamp (RFC3339)
	Commit  string // Git commit hash
	Version string // Semantic version
}

// String renders the version line printed by the CLI and logged at startup.
func (i Info) String() string {
	return fmt.Sprintf("%s %s (commit %s, built %s)", i.Name, i.Version, i.Commit, i.Time)
}

// Populated by -ldflags.
var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string
)

const (
	defaultName = "lightbox"
	devValue    = "dev"
)

// Get returns the build metadata, substituting defaults for any flag that
// was not set at link time.
func Get() Info {
	return Info{
		Name:    orDefault(buildName, defaultName),
		Time:    orDefault(buildTime, devValue),
		Commit:  orDefault(buildCommit, devValue),
		Version: orDefault(buildVersion, devValue),
	}
}

// IsRelease reports whether every flag was injected at link time.
func IsRelease() bool {
	return buildName != "" && buildTime != "" && buildCommit != "" && buildVersion != ""
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
