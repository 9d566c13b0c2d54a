// Package watch implements folder-watch ingest: poll a directory for new
// audio files and hand each one to the caller once its size has settled.
package watch

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/audioforge/audioforge/internal/logging"
	"github.com/audioforge/audioforge/internal/pipeline"
)

// Poll interval bounds, seconds.
const (
	MinPollSeconds = 1
	MaxPollSeconds = 3600
)

// Watcher polls a directory on a fixed interval and reports each audio
// file exactly once per session, after its size is unchanged across two
// consecutive scans (so half-copied files are not picked up). Filesystem
// events only wake the next scan early; the poll remains authoritative.
type Watcher struct {
	dir      string
	interval time.Duration
	log      *logging.Logger
	onFile   func(path string) error

	known   map[string]bool  // reported this session, never re-reported
	pending map[string]int64 // candidate size at the previous scan
}

// New validates the poll interval and directory and returns a watcher.
// onFile is invoked from the watch loop for every stable new file. Each
// file gets exactly one onFile call per session, even when it errors
// (duplicate and overwrite-source rejections are permanent for the path).
func New(dir string, pollSeconds int, log *logging.Logger, onFile func(path string) error) (*Watcher, error) {
	if pollSeconds < MinPollSeconds || pollSeconds > MaxPollSeconds {
		return nil, fmt.Errorf("poll interval must be %d-%d seconds, got %d",
			MinPollSeconds, MaxPollSeconds, pollSeconds)
	}
	fi, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("watch directory: %w", err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("watch path is not a directory: %s", dir)
	}

	return &Watcher{
		dir:      dir,
		interval: time.Duration(pollSeconds) * time.Second,
		log:      log,
		onFile:   onFile,
		known:    make(map[string]bool),
		pending:  make(map[string]int64),
	}, nil
}

// Run scans until ctx is cancelled. Files already present at startup are
// treated like arrivals: stable after the second scan, then reported.
func (w *Watcher) Run(ctx context.Context) error {
	events := w.notifyChannel(ctx)

	w.log.Info("Watching %s (poll every %s)", w.dir, w.interval)
	for {
		w.scan()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(w.interval):
		case <-events:
			// New activity in the directory; scan ahead of schedule.
		}
	}
}

// scan walks the directory once and advances the pending/known sets.
func (w *Watcher) scan() {
	files, err := pipeline.Discover(w.dir)
	if err != nil {
		w.log.Warn("Watch scan failed: %v", err)
		return
	}

	seen := make(map[string]bool, len(files))
	for _, path := range files {
		seen[path] = true
		if w.known[path] {
			continue
		}

		fi, err := os.Stat(path)
		if err != nil {
			continue
		}
		size := fi.Size()

		prev, tracked := w.pending[path]
		if tracked && prev == size && size > 0 {
			if err := w.onFile(path); err != nil {
				w.log.Warn("Not enqueued: %s: %v", path, err)
				delete(w.pending, path)
				w.known[path] = true
				continue
			}
			w.known[path] = true
			delete(w.pending, path)
			continue
		}
		w.pending[path] = size
	}

	// Forget candidates that vanished before stabilizing.
	for path := range w.pending {
		if !seen[path] {
			delete(w.pending, path)
		}
	}
}

// notifyChannel wires fsnotify as a best-effort early-wake source. When
// inotify is unavailable the watcher degrades to pure polling.
func (w *Watcher) notifyChannel(ctx context.Context) <-chan struct{} {
	events := make(chan struct{}, 1)

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		w.log.Debug("fsnotify unavailable, polling only: %v", err)
		return events
	}
	if err := fw.Add(w.dir); err != nil {
		w.log.Debug("fsnotify add failed, polling only: %v", err)
		fw.Close()
		return events
	}

	go func() {
		defer fw.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-fw.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
					continue
				}
				if !pipeline.IsAudioFile(ev.Name) {
					continue
				}
				select {
				case events <- struct{}{}:
				default:
				}
			case <-fw.Errors:
				// Event-source errors are non-fatal; polling continues.
			}
		}
	}()
	return events
}
