// Package report renders batch results as a CSV projection over the job
// queue.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/audioforge/audioforge/internal/config"
	"github.com/audioforge/audioforge/internal/queue"
)

// header is the fixed CSV column set.
var header = []string{
	"File", "Format", "Size (MB)", "Duration (s)", "Status", "Error",
	"Output", "Bitrate", "Sample Rate", "Channels", "LUFS", "True Peak",
	"Encoder", "Warnings",
}

const notAvailable = "N/A"

// Writer projects queue snapshots into CSV rows. HasLibFdk selects the
// reported AAC encoder name to match what the builder actually used.
type Writer struct {
	HasLibFdk bool
}

// Write renders the header plus one row per job, in FIFO queue order.
func (rw Writer) Write(w io.Writer, jobs []queue.Job) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for i := range jobs {
		if err := cw.Write(rw.row(&jobs[i])); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes the report to path, creating parent directories.
func (rw Writer) WriteFile(path string, jobs []queue.Job) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := rw.Write(f, jobs); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (rw Writer) row(j *queue.Job) []string {
	sizeMB := fmt.Sprintf("%.1f", float64(j.SizeBytes)/(1024*1024))

	duration := ""
	if j.Duration > 0 {
		duration = fmt.Sprintf("%.1f", j.Duration)
	}

	lufs, truePeak := notAvailable, notAvailable
	if j.HasMeasurement {
		lufs = fmt.Sprintf("%.1f", j.MeasuredI)
		truePeak = fmt.Sprintf("%.1f", j.MeasuredTP)
	}

	return []string{
		filepath.Base(j.SourcePath),
		formatLabel(j.Format),
		sizeMB,
		duration,
		string(j.Status),
		j.ErrorMessage,
		j.OutputPath,
		bitrateLabel(j.Settings),
		fmt.Sprintf("%d", j.Settings.SampleRate),
		fmt.Sprintf("%d", j.Settings.Channels),
		lufs,
		truePeak,
		rw.encoderLabel(j.Settings.Format),
		j.Warnings,
	}
}

// formatLabel uppercases the probed source format, "N/A" when the job
// never reached the probe stage.
func formatLabel(format string) string {
	if format == "" {
		return notAvailable
	}
	return strings.ToUpper(format)
}

// bitrateLabel reports the quality knob for bitrate-driven formats.
func bitrateLabel(s config.Settings) string {
	switch s.Format {
	case config.FormatAAC, config.FormatM4A, config.FormatOpus:
		if s.Quality != "" {
			return s.Quality
		}
	}
	return notAvailable
}

// encoderLabel names the encoder the builder selects for the format.
func (rw Writer) encoderLabel(f config.Format) string {
	switch f {
	case config.FormatAAC, config.FormatM4A:
		if rw.HasLibFdk {
			return "libfdk_aac"
		}
		return "aac"
	case config.FormatMP3:
		return "libmp3lame"
	case config.FormatOGG:
		return "libvorbis"
	case config.FormatOpus:
		return "libopus"
	default:
		return string(f)
	}
}
