// Package check provides engine detection (ffmpeg/ffprobe discovery at
// startup) and the interactive `check` diagnostics flow.
package check

import (
	"errors"
	"os/exec"
	"strings"
)

// Sentinel errors returned by Detect when a required engine binary is missing.
// Either one is fatal: no job may enter Running without both binaries.
var (
	ErrFfmpegNotFound  = errors.New("ffmpeg not found on PATH")
	ErrFfprobeNotFound = errors.New("ffprobe not found on PATH")
)

// Engine holds the detected engine binaries and their capabilities.
// Detected once at startup and shared read-only afterwards.
type Engine struct {
	FFmpegPath  string
	FFprobePath string
	HasLibFdk   bool // libfdk_aac encoder available (preferred for AAC).
}

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// remains dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
}

// Detect locates ffmpeg and ffprobe on PATH and probes encoder
// capabilities. Returns a sentinel error when either binary is missing.
func Detect() (*Engine, error) {
	ffmpeg, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, ErrFfmpegNotFound
	}
	ffprobe, err := exec.LookPath("ffprobe")
	if err != nil {
		return nil, ErrFfprobeNotFound
	}

	return &Engine{
		FFmpegPath:  ffmpeg,
		FFprobePath: ffprobe,
		HasLibFdk:   hasEncoder(ffmpeg, "libfdk_aac"),
	}, nil
}

// RunCheck runs the interactive diagnostics flow: binary locations and
// versions, audio encoder availability, and loudnorm filter presence.
// Informational only; returns false when a required piece is missing.
func RunCheck(log Logger) bool {
	log.Info("=== System Check ===")

	ok := true
	eng, err := Detect()
	if err != nil {
		log.Error("%v", err)
		log.Error("Install ffmpeg from https://ffmpeg.org/download.html")
		return false
	}

	log.Success("ffmpeg:  %s", eng.FFmpegPath)
	log.Success("ffprobe: %s", eng.FFprobePath)
	if v := versionLine(eng.FFmpegPath); v != "" {
		log.Info("  %s", v)
	}

	checkEncoders(eng, log)

	if hasFilter(eng.FFmpegPath, "loudnorm") {
		log.Success("loudnorm filter available")
	} else {
		log.Error("loudnorm filter missing (ffmpeg built without it); normalization will fail")
		ok = false
	}

	return ok
}

// checkEncoders reports availability of each audio encoder the builder may
// select.
func checkEncoders(eng *Engine, log Logger) {
	log.Info("Audio encoders:")
	for _, enc := range []string{"libmp3lame", "libvorbis", "libopus", "flac", "aac"} {
		if hasEncoder(eng.FFmpegPath, enc) {
			log.Info("  %s: available", enc)
		} else {
			log.Warn("  %s: missing (outputs using it will fail)", enc)
		}
	}
	if eng.HasLibFdk {
		log.Success("  libfdk_aac: available (used for AAC)")
	} else {
		log.Info("  libfdk_aac: not built in (native aac encoder used instead)")
	}
}

// --- internal helpers ---

// versionLine returns ffmpeg's first -version output line, trimmed.
func versionLine(ffmpegPath string) string {
	out, err := exec.Command(ffmpegPath, "-version").Output()
	if err != nil {
		return ""
	}
	line := strings.TrimSpace(string(out))
	if idx := strings.Index(line, "\n"); idx > 0 {
		line = line[:idx]
	}
	return line
}

// hasEncoder reports whether the engine lists the named encoder.
func hasEncoder(ffmpegPath, name string) bool {
	out, err := exec.Command(ffmpegPath, "-hide_banner", "-encoders").Output()
	if err != nil {
		return false
	}
	return containsWord(string(out), name)
}

// hasFilter reports whether the engine lists the named filter.
func hasFilter(ffmpegPath, name string) bool {
	out, err := exec.Command(ffmpegPath, "-hide_banner", "-filters").Output()
	if err != nil {
		return false
	}
	return containsWord(string(out), name)
}

// containsWord scans listing output for name as a whole word, so "aac"
// does not match "libfdk_aac".
func containsWord(listing, name string) bool {
	for _, line := range strings.Split(listing, "\n") {
		for _, field := range strings.Fields(line) {
			if field == name {
				return true
			}
		}
	}
	return false
}
