// SPDX-License-Identifier: MIT
package cmd

import (
	"bytes"
	"lightbox/internal/config"
	"strings"
	"testing"
)

func TestParseArgs_Commands(t *testing.T) {
	tests := []struct {
		args        []string
		wantCommand string
		interactive bool
	}{
		{nil, CommandRun, false},
		{[]string{"list"}, CommandList, false},
		{[]string{"list", "-i"}, CommandList, true},
		{[]string{"patterns"}, CommandPatterns, false},
	}
	for _, tt := range tests {
		opts, err := ParseArgs(tt.args)
		if err != nil {
			t.Fatalf("ParseArgs(%v): %v", tt.args, err)
		}
		if opts.Command != tt.wantCommand || opts.Interactive != tt.interactive {
			t.Errorf("ParseArgs(%v) = %q interactive=%v, want %q interactive=%v",
				tt.args, opts.Command, opts.Interactive, tt.wantCommand, tt.interactive)
		}
	}
}

func TestParseArgs_Errors(t *testing.T) {
	for _, args := range [][]string{
		{"--nope"},
		{"--device", "abc"},
		{"stray"},
	} {
		if _, err := ParseArgs(args); err == nil {
			t.Errorf("ParseArgs(%v) succeeded", args)
		}
	}
}

func TestVersionFlag(t *testing.T) {
	opts := &Options{}
	root := NewRootCommand(opts)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--version"})
	if err := root.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if opts.Command != "" {
		t.Errorf("--version selected command %q", opts.Command)
	}
	if !strings.HasPrefix(out.String(), "lightbox ") {
		t.Errorf("version output = %q", out.String())
	}
}

func TestApply(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		check func(*config.Config) bool
	}{
		{"no flags keep file values", nil, func(c *config.Config) bool {
			return c.Audio.Source == config.DefaultAudioSource && c.Preview.Mode == config.DefaultPreviewMode && !c.Debug
		}},
		{"wav implies source", []string{"--wav", "song.wav"}, func(c *config.Config) bool {
			return c.Audio.Source == config.SourceWAV && c.Audio.WAVFile == "song.wav"
		}},
		{"device implies portaudio", []string{"-d", "3"}, func(c *config.Config) bool {
			return c.Audio.Source == config.SourcePortAudio && c.Audio.InputDevice == 3
		}},
		{"explicit source wins", []string{"--device", "3", "--source", "none"}, func(c *config.Config) bool {
			return c.Audio.Source == config.SourceNone && c.Audio.InputDevice == 3
		}},
		{"render flags", []string{"--preview", "tui", "--seed", "42", "-v", "-r", "out.wav"}, func(c *config.Config) bool {
			return c.Preview.Mode == config.PreviewTUI && c.Render.Seed == 42 && c.Debug && c.Audio.RecordFile == "out.wav"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := ParseArgs(tt.args)
			if err != nil {
				t.Fatalf("ParseArgs: %v", err)
			}
			cfg := config.Default()
			opts.Apply(cfg)
			if !tt.check(cfg) {
				t.Errorf("unexpected config after %v: audio %+v preview %+v seed %d debug %v",
					tt.args, cfg.Audio, cfg.Preview, cfg.Render.Seed, cfg.Debug)
			}
		})
	}
}
