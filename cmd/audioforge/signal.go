package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/audioforge/audioforge/internal/logging"
	"github.com/audioforge/audioforge/internal/pipeline"
)

// stopOnSignal installs two-stage interrupt handling. The first SIGINT or
// SIGTERM stops claiming new jobs (and fires alsoStop, used to halt the
// watcher); a second one cancels ctx, which kills in-flight engine
// processes and deletes their partial output.
func stopOnSignal(ctx context.Context, cancel context.CancelFunc, pool *pipeline.Pool, log *logging.Logger, alsoStop context.CancelFunc) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-ctx.Done():
			return
		case <-sig:
		}
		log.Warn("Interrupted: finishing in-flight jobs (interrupt again to abort)")
		if alsoStop != nil {
			alsoStop()
		}
		pool.Stop()

		select {
		case <-ctx.Done():
		case <-sig:
			log.Error("Aborting")
			cancel()
		}
	}()
}
