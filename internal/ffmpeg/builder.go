package ffmpeg

import (
	"strconv"
	"strings"

	"github.com/audioforge/audioforge/internal/config"
)

// ConvertParams carries everything needed to build one convert (or
// two-pass apply) invocation. The filter chain and metadata are resolved
// by the caller so the builder stays a pure argument assembler.
type ConvertParams struct {
	InputPath  string
	OutputPath string
	Settings   config.Settings
	Filter     string      // -af value; empty when no filters apply.
	Metadata   [][2]string // Resolved tag name/value pairs, canonical order.
	UseLibFdk  bool        // libfdk_aac is available for AAC encodes.
}

// BuildConvertArgs constructs the complete argument slice for a convert or
// apply-phase invocation. The overwrite policy maps to -y/-n so the engine
// itself enforces it as a last line of defense behind the scheduler's
// output-exists check.
func BuildConvertArgs(ffmpegPath string, p ConvertParams) []string {
	args := make([]string, 0, 32)
	args = append(args, ffmpegPath)

	if p.Settings.Overwrite {
		args = append(args, "-y")
	} else {
		args = append(args, "-n")
	}
	args = append(args, "-hide_banner", "-nostdin", "-loglevel", "error")

	args = append(args, "-i", p.InputPath)

	if p.Settings.SampleRate > 0 {
		args = append(args, "-ar", strconv.Itoa(p.Settings.SampleRate))
	}
	if p.Settings.Channels > 0 {
		args = append(args, "-ac", strconv.Itoa(p.Settings.Channels))
	}

	if p.Filter != "" {
		args = append(args, "-af", p.Filter)
	}

	for _, kv := range p.Metadata {
		args = append(args, "-metadata", kv[0]+"="+kv[1])
	}

	args = append(args, encodingArgs(p.Settings, p.UseLibFdk)...)

	// AAC output goes into an MP4 container regardless of extension.
	if p.Settings.Format.Extension() == "m4a" {
		args = append(args, "-f", "mp4")
	}

	args = append(args, p.OutputPath)
	return args
}

// BuildMeasureArgs constructs the pass-1 measurement invocation: decode
// through the loudnorm filter, discard the output, keep the JSON
// diagnostics the filter prints to stderr.
func BuildMeasureArgs(ffmpegPath, inputPath, filter string) []string {
	return []string{
		ffmpegPath,
		"-hide_banner", "-nostdin", "-loglevel", "info",
		"-i", inputPath,
		"-af", filter,
		"-f", "null", "-",
	}
}

// mp3Qscale maps the V0..V4 quality tiers to libmp3lame -qscale values.
var mp3Qscale = map[string]string{
	"V0": "0", "V1": "1", "V2": "2", "V3": "3", "V4": "4",
}

// encodingArgs returns the codec argument block for the configured format.
func encodingArgs(s config.Settings, useLibFdk bool) []string {
	switch s.Format {
	case config.FormatWAV:
		codec := "pcm_s16le"
		switch s.BitDepth {
		case 24:
			codec = "pcm_s24le"
		case 32:
			codec = "pcm_s32le"
		}
		return []string{"-c:a", codec}

	case config.FormatFLAC:
		return []string{"-c:a", "flac"}

	case config.FormatAAC, config.FormatM4A:
		encoder := "aac"
		if useLibFdk {
			encoder = "libfdk_aac"
		}
		return []string{"-c:a", encoder, "-b:a", bitrateOrDefault(s.Quality, "256k")}

	case config.FormatMP3:
		q, ok := mp3Qscale[strings.ToUpper(s.Quality)]
		if !ok {
			q = "2"
		}
		return []string{"-c:a", "libmp3lame", "-qscale:a", q}

	case config.FormatOGG:
		return []string{"-c:a", "libvorbis", "-qscale:a", vorbisQuality(s.Quality)}

	case config.FormatOpus:
		return []string{"-c:a", "libopus", "-b:a", bitrateOrDefault(s.Quality, "128k")}
	}
	return nil
}

// bitrateOrDefault accepts "NNNk" quality selectors and falls back to the
// format default for anything else.
func bitrateOrDefault(quality, def string) string {
	q := strings.ToLower(strings.TrimSpace(quality))
	if strings.HasSuffix(q, "k") {
		if _, err := strconv.Atoi(strings.TrimSuffix(q, "k")); err == nil {
			return q
		}
	}
	return def
}

// vorbisQuality clamps a numeric quality selector into libvorbis' 0..10
// range, defaulting to 6.
func vorbisQuality(quality string) string {
	q, err := strconv.ParseFloat(strings.TrimSpace(quality), 64)
	if err != nil {
		return "6"
	}
	if q < 0 {
		q = 0
	}
	if q > 10 {
		q = 10
	}
	return strconv.FormatFloat(q, 'g', -1, 64)
}
