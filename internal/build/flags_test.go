// SPDX-License-Identifier: MIT
package build

import (
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	origName, origTime, origCommit, origVersion := buildName, buildTime, buildCommit, buildVersion
	t.Cleanup(func() {
		buildName, buildTime, buildCommit, buildVersion = origName, origTime, origCommit, origVersion
	})

	tests := []struct {
		name        string
		flags       [4]string
		wantName    string
		wantVersion string
		wantRelease bool
	}{
		{"Development defaults", [4]string{"", "", "", ""}, defaultName, devValue, false},
		{"Partial flags", [4]string{"lb", "", "abc123", ""}, "lb", devValue, false},
		{"Release build", [4]string{"lb", "2026-01-01T00:00:00Z", "abc123", "1.2.0"}, "lb", "1.2.0", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buildName, buildTime, buildCommit, buildVersion = tt.flags[0], tt.flags[1], tt.flags[2], tt.flags[3]

			info := Get()
			if info.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", info.Name, tt.wantName)
			}
			if info.Version != tt.wantVersion {
				t.Errorf("Version = %q, want %q", info.Version, tt.wantVersion)
			}
			if IsRelease() != tt.wantRelease {
				t.Errorf("IsRelease() = %v, want %v", IsRelease(), tt.wantRelease)
			}
			if !strings.HasPrefix(info.String(), info.Name+" "+info.Version) {
				t.Errorf("String() = %q, want prefix %q", info.String(), info.Name+" "+info.Version)
			}
		})
	}
}
