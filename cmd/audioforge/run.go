package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/audioforge/audioforge/internal/check"
	"github.com/audioforge/audioforge/internal/config"
	"github.com/audioforge/audioforge/internal/display"
	"github.com/audioforge/audioforge/internal/logging"
	"github.com/audioforge/audioforge/internal/naming"
	"github.com/audioforge/audioforge/internal/pipeline"
	"github.com/audioforge/audioforge/internal/preset"
	"github.com/audioforge/audioforge/internal/queue"
	"github.com/audioforge/audioforge/internal/report"
)

func newRunCommand(gf *globalFlags) *cobra.Command {
	var sf settingsFlags
	var input string
	var reportPath string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Convert a file or directory of audio files",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := gf.newLogger()
			if err != nil {
				return err
			}
			defer log.Close()

			store, err := preset.NewStore()
			if err != nil {
				return err
			}
			settings, err := sf.resolve(cmd, store)
			if err != nil {
				return err
			}

			display.PrintBanner()
			log.Info("=== AudioForge v%s ===", version)

			engine, err := check.Detect()
			if err != nil {
				log.Error("%v", err)
				log.Error("Install ffmpeg from https://ffmpeg.org/download.html")
				return errors.New("engine not found")
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			files, err := pipeline.Discover(input)
			if err != nil {
				return fmt.Errorf("input: %w", err)
			}
			if len(files) == 0 {
				log.Warn("No audio files found in %s", input)
				return nil
			}

			logRunHeader(log, settings, input, len(files), dryRun)

			q := queue.New()
			rejected := enqueueAll(log, q, files, settings)

			pool := pipeline.NewPool(q, engine, log, pipeline.Options{
				Workers: settings.Workers,
				DryRun:  dryRun,
			})
			stopOnSignal(ctx, cancel, pool, log, nil)
			stats := pool.Run(ctx)

			logRunSummary(log, stats, dryRun)

			if reportPath != "" {
				rw := report.Writer{HasLibFdk: engine.HasLibFdk}
				if err := rw.WriteFile(reportPath, q.Snapshot()); err != nil {
					log.Error("Cannot write report: %v", err)
				} else {
					log.Info("Report written to %s", reportPath)
				}
			}

			if err := store.SaveSession(settings); err != nil {
				log.Debug("Session not saved: %v", err)
			}

			if failed := stats.Failed + rejected; failed > 0 {
				return fmt.Errorf("%d of %d jobs failed", failed, len(files))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "input audio file or directory (required)")
	cmd.MarkFlagRequired("input")
	cmd.Flags().StringVar(&reportPath, "report", "", "write a CSV batch report to this path")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "probe and plan but do not convert")
	addSettingsFlags(cmd, &sf)
	return cmd
}

// enqueueAll builds output paths and enqueues every discovered file,
// logging per-file rejections. Returns the rejection count.
func enqueueAll(log *logging.Logger, q *queue.Queue, files []string, settings config.Settings) int {
	resolver := naming.NewCollisionResolver()
	rejected := 0
	for i, path := range files {
		outputPath := naming.OutputPath(path, settings, i+1)
		if !settings.Overwrite {
			outputPath = resolver.Resolve(path, outputPath)
		}
		if _, err := q.Enqueue(path, outputPath, i+1, settings); err != nil {
			if errors.Is(err, queue.ErrWouldOverwriteSource) {
				log.Error("Refusing %s: output would overwrite the source", path)
				rejected++
			} else {
				log.Warn("Not enqueued: %s: %v", path, err)
			}
		}
	}
	return rejected
}

func logRunHeader(log *logging.Logger, s config.Settings, input string, count int, dryRun bool) {
	log.Info("In:  %s (%d files)", input, count)
	if s.OutputDir != "" {
		log.Info("Out: %s", s.OutputDir)
	} else {
		log.Info("Out: alongside sources")
	}
	log.Info("Format: %s, %d Hz, %d ch", s.Format, s.SampleRate, s.Channels)
	if s.Format == config.FormatWAV {
		log.Info("Bit depth: %d", s.BitDepth)
	} else if s.Quality != "" {
		log.Info("Quality: %s", s.Quality)
	}
	if s.Normalize != config.NormalizeOff {
		log.Info("Normalize: %s (I=%g LUFS, TP=%g dBTP, LRA=%g LU)",
			s.Normalize, s.TargetI, s.TargetTP, s.TargetLRA)
	}
	log.Info("Workers: %d", s.Workers)
	if dryRun {
		log.Warn("DRY RUN")
	}
	log.Info("")
}

func logRunSummary(log *logging.Logger, stats pipeline.RunStats, dryRun bool) {
	log.Info("==============================")
	log.Info("Done: %d converted, %d skipped, %d failed",
		stats.Succeeded, stats.Skipped, stats.Failed)
	if dryRun {
		log.Info("Output size: n/a (dry run)")
		return
	}
	if stats.Succeeded > 0 {
		log.Info("Input %s -> output %s",
			display.FormatBytes(stats.TotalInputBytes),
			display.FormatBytes(stats.TotalOutputBytes))
	}
}
