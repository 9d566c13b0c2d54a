package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/audioforge/audioforge/internal/config"
	"github.com/audioforge/audioforge/internal/logging"
	"github.com/audioforge/audioforge/internal/preset"
	"github.com/audioforge/audioforge/internal/term"
)

// globalFlags are shared across all subcommands.
type globalFlags struct {
	color   string
	verbose bool
	logFile string
}

func newRootCommand() *cobra.Command {
	var gf globalFlags

	cmd := &cobra.Command{
		Use:     "audioforge",
		Short:   "Batch audio converter and loudness normalizer",
		Long:    "AudioForge converts audio files between formats via ffmpeg,\nwith EBU R128 loudness normalization, parallel workers, presets,\nand a folder-watch mode.",
		Version: fmt.Sprintf("%s (%s)", version, commit),
		// Errors from RunE are runtime failures, not usage mistakes.
		SilenceUsage: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&gf.color, "color", "auto", "color output: auto, always, or never")
	pf.BoolVarP(&gf.verbose, "verbose", "v", false, "enable debug logging")
	pf.StringVar(&gf.logFile, "log-file", "", "append plain-text log to this file")

	cmd.AddCommand(
		newRunCommand(&gf),
		newWatchCommand(&gf),
		newCheckCommand(&gf),
		newPresetsCommand(&gf),
	)
	return cmd
}

// newLogger builds the logger from global flags.
func (gf *globalFlags) newLogger() (*logging.Logger, error) {
	mode := term.Mode(gf.color)
	switch mode {
	case term.ModeAuto, term.ModeAlways, term.ModeNever:
	default:
		return nil, fmt.Errorf("invalid --color %q (use auto, always, or never)", gf.color)
	}
	return logging.NewLogger(logging.Options{
		ColorMode: mode,
		LogFile:   gf.logFile,
		Verbose:   gf.verbose,
	})
}

// settingsFlags captures the per-job settings surface shared by run and
// watch. Only flags the user actually set override the preset/session
// baseline.
type settingsFlags struct {
	presetName  string
	fromSession bool

	format     string
	quality    string
	bitDepth   int
	sampleRate int
	channels   int

	normalize string
	targetI   float64
	targetTP  float64
	targetLRA float64

	fadeIn  float64
	fadeOut float64

	workers   int
	outputDir string
	template  string
	overwrite bool
	meta      []string
}

func addSettingsFlags(cmd *cobra.Command, sf *settingsFlags) {
	def := config.DefaultSettings()
	f := cmd.Flags()

	f.StringVarP(&sf.presetName, "preset", "p", "", "start from a named preset")
	f.BoolVar(&sf.fromSession, "session", false, "start from the last session's settings")

	f.StringVarP(&sf.format, "format", "f", string(def.Format), "output format: wav, flac, mp3, aac, m4a, ogg, opus")
	f.StringVarP(&sf.quality, "quality", "q", def.Quality, "quality knob (mp3: V0-V4, aac/opus: bitrate like 256k, ogg: 0-10)")
	f.IntVar(&sf.bitDepth, "bit-depth", def.BitDepth, "PCM bit depth for wav: 16, 24, or 32")
	f.IntVar(&sf.sampleRate, "sample-rate", def.SampleRate, "output sample rate in Hz")
	f.IntVar(&sf.channels, "channels", def.Channels, "output channel count")

	f.StringVarP(&sf.normalize, "normalize", "n", string(def.Normalize), "loudness normalization: off, one-pass, or two-pass")
	f.Float64Var(&sf.targetI, "target-i", def.TargetI, "integrated loudness target, LUFS")
	f.Float64Var(&sf.targetTP, "target-tp", def.TargetTP, "true-peak target, dBTP")
	f.Float64Var(&sf.targetLRA, "target-lra", def.TargetLRA, "loudness range target, LU")

	f.Float64Var(&sf.fadeIn, "fade-in", def.FadeIn, "fade-in duration, seconds")
	f.Float64Var(&sf.fadeOut, "fade-out", def.FadeOut, "fade-out duration, seconds")

	f.IntVarP(&sf.workers, "workers", "w", def.Workers, "parallel conversion workers")
	f.StringVarP(&sf.outputDir, "output", "o", "", "output directory (default: alongside each source)")
	f.StringVar(&sf.template, "name-template", def.FilenameTemplate, "output filename template ({stem}, {ext}, {index}, metadata tags)")
	f.BoolVar(&sf.overwrite, "overwrite", def.Overwrite, "overwrite existing output files")
	f.StringArrayVarP(&sf.meta, "meta", "m", nil, "metadata tag as key=value, repeatable (values may use placeholders)")
}

// resolve builds the effective settings: defaults, then session or preset
// baseline, then explicitly set flags, then validation.
func (sf *settingsFlags) resolve(cmd *cobra.Command, store *preset.Store) (config.Settings, error) {
	s := config.DefaultSettings()

	if sf.fromSession {
		if restored, ok := store.LoadSession(); ok {
			s = restored
		}
	}
	if sf.presetName != "" {
		loaded, err := store.Load(sf.presetName)
		if err != nil {
			return s, err
		}
		s = loaded
	}

	var err error
	flagApply := map[string]func(){
		"format": func() {
			var f config.Format
			if f, err = config.ParseFormat(sf.format); err == nil {
				s.Format = f
			}
		},
		"quality":     func() { s.Quality = sf.quality },
		"bit-depth":   func() { s.BitDepth = sf.bitDepth },
		"sample-rate": func() { s.SampleRate = sf.sampleRate },
		"channels":    func() { s.Channels = sf.channels },
		"normalize": func() {
			var n config.NormalizeMode
			if n, err = config.ParseNormalizeMode(sf.normalize); err == nil {
				s.Normalize = n
			}
		},
		"target-i":      func() { s.TargetI = sf.targetI },
		"target-tp":     func() { s.TargetTP = sf.targetTP },
		"target-lra":    func() { s.TargetLRA = sf.targetLRA },
		"fade-in":       func() { s.FadeIn = sf.fadeIn },
		"fade-out":      func() { s.FadeOut = sf.fadeOut },
		"workers":       func() { s.Workers = sf.workers },
		"output":        func() { s.OutputDir = sf.outputDir },
		"name-template": func() { s.FilenameTemplate = sf.template },
		"overwrite":     func() { s.Overwrite = sf.overwrite },
	}
	for name, apply := range flagApply {
		if cmd.Flags().Changed(name) {
			apply()
			if err != nil {
				return s, err
			}
		}
	}

	for _, kv := range sf.meta {
		name, value, ok := splitKeyValue(kv)
		if !ok {
			return s, fmt.Errorf("invalid --meta %q (expected key=value)", kv)
		}
		if err := s.Metadata.Set(name, value); err != nil {
			return s, err
		}
	}

	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

func splitKeyValue(kv string) (key, value string, ok bool) {
	for i := 0; i < len(kv); i++ {
		if kv[i] == '=' {
			return kv[:i], kv[i+1:], i > 0
		}
	}
	return "", "", false
}
