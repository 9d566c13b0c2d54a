package pipeline

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/audioforge/audioforge/internal/check"
	"github.com/audioforge/audioforge/internal/logging"
	"github.com/audioforge/audioforge/internal/queue"
)

// idleRecheck bounds how long an idle worker sleeps between queue polls
// when no wake signal arrives.
const idleRecheck = 500 * time.Millisecond

// Options configures a Pool.
type Options struct {
	Workers int
	DryRun  bool

	// KeepAlive keeps idle workers waiting for new jobs instead of
	// exiting when the queue drains. Watch mode sets this.
	KeepAlive bool
}

// Pool is a fixed set of workers draining the job queue. Each worker runs
// at most one external process at a time; jobs are claimed in FIFO order
// and complete in whatever order the encodes finish.
type Pool struct {
	q      *queue.Queue
	engine *check.Engine
	log    *logging.Logger
	opts   Options

	wake    chan struct{}
	wg      sync.WaitGroup
	stopped atomic.Bool
}

// NewPool wires a pool over the shared queue. Workers below 1 is a
// programming error caught by settings validation upstream; it is clamped
// here anyway so a zero-value Options cannot hang the pool.
func NewPool(q *queue.Queue, engine *check.Engine, log *logging.Logger, opts Options) *Pool {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Pool{
		q:      q,
		engine: engine,
		log:    log,
		opts:   opts,
		wake:   make(chan struct{}, 1),
	}
}

// Start launches the workers. They exit when ctx is cancelled, or when the
// queue is empty unless KeepAlive is set.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.opts.Workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			p.workerLoop(ctx)
		}()
	}
}

// Wake nudges idle workers after new jobs are enqueued. Non-blocking; a
// single pending signal is enough since every woken worker re-checks the
// queue.
func (p *Pool) Wake() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Stop prevents further claims; workers finish their current job and
// exit. Cancelling the context passed to Start is the hard variant that
// also kills in-flight engine processes.
func (p *Pool) Stop() {
	p.stopped.Store(true)
	p.Wake()
}

// Wait blocks until all workers have exited.
func (p *Pool) Wait() {
	p.wg.Wait()
}

// Run is the batch entry point: start workers, drain the queue, wait for
// completion, and return the summary. Cancelling ctx stops claiming and
// kills in-flight encodes.
func (p *Pool) Run(ctx context.Context) RunStats {
	p.Start(ctx)
	p.Wait()
	return Summarize(p.q)
}

// workerLoop claims and processes jobs until told to stop.
func (p *Pool) workerLoop(ctx context.Context) {
	for {
		if ctx.Err() != nil || p.stopped.Load() {
			return
		}

		job, ok := p.q.Claim()
		if !ok {
			if !p.opts.KeepAlive {
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-p.wake:
			case <-time.After(idleRecheck):
			}
			continue
		}

		p.process(ctx, &job)
	}
}

// outputSize returns the on-disk size of path, zero when unreadable.
func outputSize(path string) int64 {
	fi, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return fi.Size()
}
