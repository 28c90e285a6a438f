// SPDX-License-Identifier: MIT
package log

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in     string
		want   Level
		wantOK bool
	}{
		{"debug", LevelDebug, true},
		{"INFO", LevelInfo, true},
		{"Warning", LevelWarn, true},
		{" error ", LevelError, true},
		{"fatal", LevelFatal, true},
		{"loud", LevelInfo, false},
		{"", LevelInfo, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseLevel(tt.in)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParseLevel(%q) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(LevelWarn)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetLevel(LevelInfo)
	})

	Debugf("hidden %d", 1)
	Infof("hidden %d", 2)
	Warnf("shown %d", 3)
	Errorf("shown %d", 4)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("messages below the level leaked: %q", out)
	}
	if !strings.Contains(out, "[WARN]  shown 3") {
		t.Errorf("missing warn line in %q", out)
	}
	if !strings.Contains(out, "[ERROR] shown 4") {
		t.Errorf("missing error line in %q", out)
	}
}
