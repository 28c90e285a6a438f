// SPDX-License-Identifier: MIT
package cmd

import (
	"lightbox/internal/build"
	"lightbox/internal/config"

	"github.com/spf13/cobra"
)

// Commands selected by ParseArgs. An empty Command means cobra already
// handled the invocation (help or version) and there is nothing to run.
const (
	CommandRun      = "run"
	CommandList     = "list"
	CommandPatterns = "patterns"
)

// Options holds the parsed command line. Only flags the user set
// override the configuration file.
type Options struct {
	Command     string
	Interactive bool // list: pick a device instead of printing the table.

	ConfigFile string
	Source     string
	WAVFile    string
	DeviceID   int
	Preview    string
	Seed       int64
	Verbose    bool
	RecordFile string

	changed map[string]bool
}

// NewRootCommand builds the command tree, writing parsed values into opts.
func NewRootCommand(opts *Options) *cobra.Command {
	info := build.Get()

	rootCmd := &cobra.Command{
		Use:           info.Name,
		Short:         "Audio-reactive LED grid renderer",
		Version:       info.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Command = CommandRun
			opts.collect(cmd)
			return nil
		},
	}
	rootCmd.SetVersionTemplate(info.String() + "\n")
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	// List command
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List available audio devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Command = CommandList
			opts.collect(cmd)
			return nil
		},
	}
	listCmd.Flags().BoolVarP(&opts.Interactive, "interactive", "i", false,
		"Pick a capture device interactively")
	rootCmd.AddCommand(listCmd)

	// Patterns command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "patterns",
		Short: "List the pattern catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Command = CommandPatterns
			opts.collect(cmd)
			return nil
		},
	})

	flags := rootCmd.PersistentFlags()

	// Configuration
	flags.StringVarP(&opts.ConfigFile, "config", "c", "",
		"YAML configuration file. Defaults to lightbox.yaml or config.yaml when present")

	// Audio input
	flags.StringVarP(&opts.Source, "source", "s", config.DefaultAudioSource,
		"Audio source: portaudio, wav, synth or none")
	flags.StringVarP(&opts.WAVFile, "wav", "w", "",
		"WAV file to play through the analyser. Implies --source wav")
	flags.IntVarP(&opts.DeviceID, "device", "d", config.DefaultDeviceID,
		"Input device ID. Use 'list' to see available devices. Implies --source portaudio")
	flags.StringVarP(&opts.RecordFile, "record", "r", "",
		"Record the analysed audio to this WAV file")

	// Rendering
	flags.StringVarP(&opts.Preview, "preview", "p", config.DefaultPreviewMode,
		"Preview: none, tui or window")
	flags.Int64Var(&opts.Seed, "seed", 0,
		"Random seed for patterns. 0 picks a time-based seed")

	// Debug
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false,
		"Show verbose output")

	return rootCmd
}

// ParseArgs parses args (without the program name).
func ParseArgs(args []string) (*Options, error) {
	if args == nil {
		// cobra falls back to os.Args for a nil slice.
		args = []string{}
	}
	opts := &Options{}
	rootCmd := NewRootCommand(opts)
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}
	return opts, nil
}

func (o *Options) collect(cmd *cobra.Command) {
	o.changed = make(map[string]bool)
	for _, name := range []string{"config", "source", "wav", "device", "record", "preview", "seed", "verbose"} {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			o.changed[name] = true
		}
	}
}

// Changed reports whether the named flag was given on the command line.
func (o *Options) Changed(name string) bool {
	return o.changed[name]
}

// Apply overrides cfg with the flags that were set. --wav and --device
// select their source unless --source was also given.
func (o *Options) Apply(cfg *config.Config) {
	if o.Changed("wav") {
		cfg.Audio.WAVFile = o.WAVFile
		cfg.Audio.Source = config.SourceWAV
	}
	if o.Changed("device") {
		cfg.Audio.InputDevice = o.DeviceID
		cfg.Audio.Source = config.SourcePortAudio
	}
	if o.Changed("source") {
		cfg.Audio.Source = o.Source
	}
	if o.Changed("record") {
		cfg.Audio.RecordFile = o.RecordFile
	}
	if o.Changed("preview") {
		cfg.Preview.Mode = o.Preview
	}
	if o.Changed("seed") {
		cfg.Render.Seed = o.Seed
	}
	if o.Verbose {
		cfg.Debug = true
	}
}
