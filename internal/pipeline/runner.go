package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/audioforge/audioforge/internal/config"
	"github.com/audioforge/audioforge/internal/display"
	"github.com/audioforge/audioforge/internal/ffmpeg"
	"github.com/audioforge/audioforge/internal/loudness"
	"github.com/audioforge/audioforge/internal/naming"
	"github.com/audioforge/audioforge/internal/probe"
	"github.com/audioforge/audioforge/internal/queue"
)

const stderrTailLines = 5

// process runs one claimed job to a terminal status. Per-job failures are
// recorded on the job and never abort the batch.
func (p *Pool) process(ctx context.Context, job *queue.Job) {
	basename := filepath.Base(job.SourcePath)
	p.log.Info("[%d] %s", job.Index, basename)

	// --- Probe ---
	pr, err := probe.Probe(ctx, p.engine.FFprobePath, job.SourcePath)
	if err != nil {
		p.fail(job, fmt.Sprintf("cannot probe file (possibly corrupt): %v", err))
		return
	}
	if pr.PrimaryAudio == nil {
		p.fail(job, "no audio stream found")
		return
	}
	p.q.SetProbed(job.ID, pr.ShortFormat(), pr.Format.Duration, pr.Format.Size)
	job.Duration = pr.Format.Duration
	p.log.Debug("  %s, %s, %s", pr.ShortFormat(),
		display.FormatDuration(pr.Format.Duration), display.FormatBytes(pr.Format.Size))

	// --- Output-exists check (overwrite-source was rejected at enqueue) ---
	if !job.Settings.Overwrite {
		if _, err := os.Stat(job.OutputPath); err == nil {
			p.log.Warn("Skip (exists): %s", filepath.Base(job.OutputPath))
			p.q.MarkSkipped(job.ID, "output exists")
			return
		}
	}

	if job.Settings.Normalize != config.NormalizeOff && job.Settings.TPAboveRecommended() {
		p.log.Outlier("%s: true-peak target %.1f dBTP above recommended %.1f",
			basename, job.Settings.TargetTP, config.RecommendedTPCeiling)
		p.q.AddWarning(job.ID, fmt.Sprintf(
			"true-peak target %.1f dBTP above recommended %.1f",
			job.Settings.TargetTP, config.RecommendedTPCeiling))
	}

	if err := os.MkdirAll(filepath.Dir(job.OutputPath), 0o755); err != nil {
		p.fail(job, fmt.Sprintf("cannot create output directory: %v", err))
		return
	}

	// --- Dry-run (before any engine invocation) ---
	if p.opts.DryRun {
		p.log.Success("[DRY] Would convert -> %s", filepath.Base(job.OutputPath))
		p.q.MarkSucceeded(job.ID)
		return
	}

	// --- Two-pass measurement ---
	var measured *loudness.Measurement
	if job.Settings.Normalize == config.NormalizeTwoPass {
		measured, err = p.measure(ctx, job)
		if err != nil {
			p.fail(job, err.Error())
			return
		}
		p.q.SetMeasurement(job.ID, measured.InputI, measured.InputTP)
		p.log.Debug("  measured: %.1f LUFS, %.1f dBTP", measured.InputI, measured.InputTP)
	}

	// --- Convert ---
	p.log.Info("  -> %s", filepath.Base(job.OutputPath))
	start := time.Now()

	args := ffmpeg.BuildConvertArgs(p.engine.FFmpegPath, ffmpeg.ConvertParams{
		InputPath:  job.SourcePath,
		OutputPath: job.OutputPath,
		Settings:   job.Settings,
		Filter:     convertFilter(job, measured),
		Metadata:   resolveMetadata(job),
		UseLibFdk:  p.engine.HasLibFdk,
	})

	result, err := ffmpeg.Run(ctx, args)
	if err != nil {
		// Start failure or a kill from context cancellation. Any partial
		// output is unusable.
		os.Remove(job.OutputPath)
		if ctx.Err() != nil {
			p.fail(job, "interrupted")
		} else {
			p.fail(job, fmt.Sprintf("engine start failed: %v", err))
		}
		return
	}
	if !result.Success() {
		os.Remove(job.OutputPath)
		msg := fmt.Sprintf("engine exited with code %d", result.ExitCode)
		if tail := ffmpeg.StderrTail(result.Stderr, stderrTailLines); tail != "" {
			msg += ": " + tail
		}
		p.fail(job, msg)
		return
	}

	p.q.MarkSucceeded(job.ID)
	p.log.Success("Converted in %ds: %s", int(time.Since(start).Seconds()), filepath.Base(job.OutputPath))
}

// measure runs the pass-1 loudnorm invocation and parses the measurement
// JSON from stderr.
func (p *Pool) measure(ctx context.Context, job *queue.Job) (*loudness.Measurement, error) {
	args := ffmpeg.BuildMeasureArgs(
		p.engine.FFmpegPath, job.SourcePath, loudness.MeasureFilter(job.Settings))

	result, err := ffmpeg.Run(ctx, args)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("interrupted")
		}
		return nil, fmt.Errorf("engine start failed: %v", err)
	}
	if !result.Success() {
		msg := fmt.Sprintf("loudness measurement failed (exit %d)", result.ExitCode)
		if tail := ffmpeg.StderrTail(result.Stderr, stderrTailLines); tail != "" {
			msg += ": " + tail
		}
		return nil, fmt.Errorf("%s", msg)
	}

	m, err := loudness.ParseMeasurement(result.Stderr)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// convertFilter assembles the -af chain for the convert invocation:
// loudnorm (apply or one-pass) followed by fades.
func convertFilter(job *queue.Job, measured *loudness.Measurement) string {
	var filters []string
	switch job.Settings.Normalize {
	case config.NormalizeTwoPass:
		filters = append(filters, loudness.ApplyFilter(job.Settings, measured))
	case config.NormalizeOnePass:
		filters = append(filters, loudness.OnePassFilter(job.Settings))
	}
	filters = append(filters, loudness.FadeFilters(job.Settings, job.Duration)...)
	return loudness.Chain(filters)
}

// resolveMetadata expands placeholder values in the metadata template
// against the job's source file context.
func resolveMetadata(job *queue.Job) [][2]string {
	ctx := naming.NewContext(job.SourcePath, job.Settings.Format.Extension(), job.Index)
	tags := job.Settings.Metadata.Tags()
	resolved := make([][2]string, 0, len(tags))
	for _, kv := range tags {
		resolved = append(resolved, [2]string{kv[0], naming.Resolve(kv[1], ctx)})
	}
	return resolved
}

func (p *Pool) fail(job *queue.Job, msg string) {
	p.log.Error("%s: %s", filepath.Base(job.SourcePath), msg)
	p.q.MarkFailed(job.ID, msg)
}
