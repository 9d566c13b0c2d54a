// Package config holds the processing settings value object: defaults,
// enum types, and bounds validation. Settings are copied by value into each
// job at enqueue time so in-flight work is never affected by later edits.
package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/go-playground/validator/v10"
)

// --- Enum types for validated string fields ---

// Format is the output audio format.
type Format string

const (
	FormatWAV  Format = "wav"
	FormatFLAC Format = "flac"
	FormatMP3  Format = "mp3"
	FormatAAC  Format = "aac"
	FormatM4A  Format = "m4a"
	FormatOGG  Format = "ogg"
	FormatOpus Format = "opus"
)

// Extension returns the output file extension (without dot) for the format.
// AAC is containerized as M4A.
func (f Format) Extension() string {
	switch f {
	case FormatAAC, FormatM4A:
		return "m4a"
	default:
		return string(f)
	}
}

// Lossless reports whether the format ignores the quality selector.
func (f Format) Lossless() bool {
	return f == FormatWAV || f == FormatFLAC
}

// ParseFormat validates and canonicalizes a user-supplied format string.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatWAV:
		return FormatWAV, nil
	case FormatFLAC:
		return FormatFLAC, nil
	case FormatMP3:
		return FormatMP3, nil
	case FormatAAC:
		return FormatAAC, nil
	case FormatM4A:
		return FormatM4A, nil
	case FormatOGG:
		return FormatOGG, nil
	case FormatOpus:
		return FormatOpus, nil
	default:
		return "", fmt.Errorf("invalid format %q (use wav, flac, mp3, aac, m4a, ogg, or opus)", s)
	}
}

// NormalizeMode selects the loudness normalization strategy.
type NormalizeMode string

const (
	NormalizeOff     NormalizeMode = "off"      // No loudnorm filter.
	NormalizeOnePass NormalizeMode = "one-pass" // Single invocation, targets only (lower accuracy).
	NormalizeTwoPass NormalizeMode = "two-pass" // Measure, then apply with measured values.
)

// ParseNormalizeMode validates a user-supplied normalization mode string.
func ParseNormalizeMode(s string) (NormalizeMode, error) {
	switch NormalizeMode(strings.ToLower(strings.TrimSpace(s))) {
	case NormalizeOff:
		return NormalizeOff, nil
	case NormalizeOnePass:
		return NormalizeOnePass, nil
	case NormalizeTwoPass:
		return NormalizeTwoPass, nil
	default:
		return "", fmt.Errorf("invalid normalization mode %q (use off, one-pass, or two-pass)", s)
	}
}

// MetadataTemplate holds per-tag templates applied to every output file.
// Values may contain {stem}, {ext}, and {index} placeholders; empty tags
// are omitted from the ffmpeg command.
type MetadataTemplate struct {
	Artist  string `json:"artist" mapstructure:"artist"`
	Title   string `json:"title" mapstructure:"title"`
	Album   string `json:"album" mapstructure:"album"`
	Year    string `json:"year" mapstructure:"year"`
	Genre   string `json:"genre" mapstructure:"genre"`
	Comment string `json:"comment" mapstructure:"comment"`
}

// metadataTagOrder fixes the iteration order for deterministic commands.
var metadataTagOrder = []string{"artist", "title", "album", "year", "genre", "comment"}

// Tags returns the non-empty tag name/template pairs in canonical order.
func (m MetadataTemplate) Tags() [][2]string {
	byName := map[string]string{
		"artist":  m.Artist,
		"title":   m.Title,
		"album":   m.Album,
		"year":    m.Year,
		"genre":   m.Genre,
		"comment": m.Comment,
	}
	var tags [][2]string
	for _, name := range metadataTagOrder {
		if v := byName[name]; v != "" {
			tags = append(tags, [2]string{name, v})
		}
	}
	return tags
}

// Set assigns a tag template by name; unknown names are rejected so CLI
// --meta typos surface instead of being silently dropped.
func (m *MetadataTemplate) Set(name, value string) error {
	switch strings.ToLower(name) {
	case "artist":
		m.Artist = value
	case "title":
		m.Title = value
	case "album":
		m.Album = value
	case "year":
		m.Year = value
	case "genre":
		m.Genre = value
	case "comment":
		m.Comment = value
	default:
		return fmt.Errorf("unknown metadata tag %q (use artist, title, album, year, genre, or comment)", name)
	}
	return nil
}

// Settings describes how one job is processed. It is an immutable value
// object: a copy is embedded in each job at creation, so edits made while
// a batch is draining only affect jobs enqueued afterwards.
type Settings struct {
	Format  Format `json:"format" mapstructure:"format" validate:"required"`
	Quality string `json:"quality" mapstructure:"quality"` // mp3: V0..V4, aac/opus: e.g. 256k, ogg: 0..10.

	// WAV/PCM shape. SampleRate and Channels apply to all formats.
	BitDepth   int `json:"bit_depth" mapstructure:"bit_depth" validate:"oneof=16 24 32"`
	SampleRate int `json:"sample_rate" mapstructure:"sample_rate" validate:"oneof=22050 32000 44100 48000 88200 96000"`
	Channels   int `json:"channels" mapstructure:"channels" validate:"min=1,max=8"`

	// Loudness normalization targets (EBU R128 loudnorm).
	Normalize NormalizeMode `json:"normalize" mapstructure:"normalize"`
	TargetI   float64       `json:"target_i" mapstructure:"target_i" validate:"min=-36,max=-8"` // LUFS.
	TargetTP  float64       `json:"target_tp" mapstructure:"target_tp"`                         // dBTP. Advisory bound only, see TPAboveRecommended.
	TargetLRA float64       `json:"target_lra" mapstructure:"target_lra" validate:"min=0"`      // LU.

	// Fades, seconds. Zero disables.
	FadeIn  float64 `json:"fade_in" mapstructure:"fade_in" validate:"min=0"`
	FadeOut float64 `json:"fade_out" mapstructure:"fade_out" validate:"min=0"`

	// Batch behavior.
	Workers          int    `json:"workers" mapstructure:"workers" validate:"min=1"`
	OutputDir        string `json:"output_dir" mapstructure:"output_dir"`
	FilenameTemplate string `json:"filename_template" mapstructure:"filename_template" validate:"required"`
	Overwrite        bool   `json:"overwrite" mapstructure:"overwrite"`

	Metadata MetadataTemplate `json:"metadata" mapstructure:"metadata"`
}

// RecommendedTPCeiling is the informational true-peak ceiling. Targets above
// it are annotated in the report but never rejected.
const RecommendedTPCeiling = -1.0

// DefaultSettings returns the baseline settings: 16-bit 48 kHz stereo WAV,
// normalization off, one worker per CPU.
func DefaultSettings() Settings {
	return Settings{
		Format:           FormatWAV,
		Quality:          "V2",
		BitDepth:         16,
		SampleRate:       48000,
		Channels:         2,
		Normalize:        NormalizeOff,
		TargetI:          -16.0,
		TargetTP:         -1.5,
		TargetLRA:        11.0,
		Workers:          runtime.NumCPU(),
		FilenameTemplate: "{stem}.{ext}",
		Metadata:         MetadataTemplate{Title: "{stem}"},
	}
}

// TPAboveRecommended reports whether the true-peak target exceeds the
// recommended -1.0 dBTP ceiling. Informational only.
func (s Settings) TPAboveRecommended() bool {
	return s.TargetTP > RecommendedTPCeiling
}

// validate is shared: validator.New is relatively expensive and the
// instance is safe for concurrent use.
var validate = validator.New()

// Validate checks settings bounds. It reports the first violated bound with
// a flag-style message so CLI users can map it back to the offending option.
func (s *Settings) Validate() error {
	if _, err := ParseFormat(string(s.Format)); err != nil {
		return err
	}
	switch s.Normalize {
	case NormalizeOff, NormalizeOnePass, NormalizeTwoPass:
		// valid
	default:
		return fmt.Errorf("invalid normalization mode %q (use off, one-pass, or two-pass)", s.Normalize)
	}

	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	return boundsError(verrs[0])
}

// boundsError translates the first validator field error into the message
// style used by the CLI help text.
func boundsError(fe validator.FieldError) error {
	switch fe.Field() {
	case "TargetI":
		return fmt.Errorf("target loudness must be between -36 and -8 LUFS, got %v", fe.Value())
	case "TargetLRA":
		return fmt.Errorf("loudness range must be >= 0, got %v", fe.Value())
	case "BitDepth":
		return fmt.Errorf("bit depth must be 16, 24, or 32, got %v", fe.Value())
	case "SampleRate":
		return fmt.Errorf("sample rate must be one of 22050, 32000, 44100, 48000, 88200, 96000, got %v", fe.Value())
	case "Channels":
		return fmt.Errorf("channels must be 1..8, got %v", fe.Value())
	case "Workers":
		return fmt.Errorf("workers must be >= 1, got %v", fe.Value())
	case "FadeIn", "FadeOut":
		return fmt.Errorf("fade durations must be >= 0, got %v", fe.Value())
	case "FilenameTemplate":
		return errors.New("filename template must not be empty")
	default:
		return fmt.Errorf("invalid setting %s: %v", fe.Field(), fe.Value())
	}
}
