package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/audioforge/audioforge/internal/check"
	"github.com/audioforge/audioforge/internal/display"
	"github.com/audioforge/audioforge/internal/naming"
	"github.com/audioforge/audioforge/internal/pipeline"
	"github.com/audioforge/audioforge/internal/preset"
	"github.com/audioforge/audioforge/internal/queue"
	"github.com/audioforge/audioforge/internal/report"
	"github.com/audioforge/audioforge/internal/watch"
)

func newWatchCommand(gf *globalFlags) *cobra.Command {
	var sf settingsFlags
	var dir string
	var pollSeconds int
	var reportPath string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch a folder and convert audio files as they arrive",
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
			log.Info("=== AudioForge v%s (watch) ===", version)

			engine, err := check.Detect()
			if err != nil {
				log.Error("%v", err)
				return errors.New("engine not found")
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			watchCtx, stopWatch := context.WithCancel(ctx)
			defer stopWatch()

			q := queue.New()
			pool := pipeline.NewPool(q, engine, log, pipeline.Options{
				Workers:   settings.Workers,
				KeepAlive: true,
			})

			// Watch mode names outputs per arrival order; settings are
			// snapshotted per job so each file gets the settings active
			// when it was picked up.
			resolver := naming.NewCollisionResolver()
			index := 0
			onFile := func(path string) error {
				index++
				outputPath := naming.OutputPath(path, settings, index)
				if !settings.Overwrite {
					outputPath = resolver.Resolve(path, outputPath)
				}
				if _, err := q.Enqueue(path, outputPath, index, settings); err != nil {
					return err
				}
				log.Info("Picked up: %s", path)
				pool.Wake()
				return nil
			}

			w, err := watch.New(dir, pollSeconds, log, onFile)
			if err != nil {
				return err
			}

			stopOnSignal(ctx, cancel, pool, log, stopWatch)
			pool.Start(ctx)
			w.Run(watchCtx) // Returns on the first interrupt.
			pool.Stop()
			if left := q.Counts()[queue.StatusQueued]; left > 0 {
				log.Info("Leaving %d queued job(s) unprocessed", left)
			}
			log.Info("Waiting for in-flight conversions")
			pool.Wait()

			stats := pipeline.Summarize(q)
			log.Info("Done: %d converted, %d skipped, %d failed",
				stats.Succeeded, stats.Skipped, stats.Failed)

			if reportPath != "" {
				rw := report.Writer{HasLibFdk: engine.HasLibFdk}
				if err := rw.WriteFile(reportPath, q.Snapshot()); err != nil {
					log.Error("Cannot write report: %v", err)
				}
			}
			if err := store.SaveSession(settings); err != nil {
				log.Debug("Session not saved: %v", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "input", "i", "", "directory to watch (required)")
	cmd.MarkFlagRequired("input")
	cmd.Flags().IntVar(&pollSeconds, "poll", 5, "poll interval in seconds (1-3600)")
	cmd.Flags().StringVar(&reportPath, "report", "", "write a CSV report on shutdown")
	addSettingsFlags(cmd, &sf)
	return cmd
}
