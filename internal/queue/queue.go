package queue

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/audioforge/audioforge/internal/config"
	"github.com/audioforge/audioforge/internal/naming"
)

// ErrDuplicateJob is returned when the source or output path is already
// queued or running.
var ErrDuplicateJob = errors.New("duplicate job")

// ErrWouldOverwriteSource is returned when the resolved output path is the
// source file itself. Checked at enqueue, before the output-exists policy,
// and never overridable.
var ErrWouldOverwriteSource = errors.New("output path would overwrite source file")

// Queue is the FIFO job queue. Enqueue never blocks behind draining
// workers; Claim hands each Queued job to exactly one caller.
type Queue struct {
	mu    sync.Mutex
	order []string        // Job IDs in enqueue order.
	jobs  map[string]*Job // ID → job.

	// Duplicate detection for non-terminal jobs.
	activeSources map[string]string // source path → job ID.
	activeOutputs map[string]string // output path → job ID.
}

// New creates an empty queue.
func New() *Queue {
	return &Queue{
		jobs:          make(map[string]*Job),
		activeSources: make(map[string]string),
		activeOutputs: make(map[string]string),
	}
}

// Enqueue appends a job for sourcePath with the given resolved output path
// and a snapshot of settings. index is the caller's 1-based batch position,
// the same one the output path was resolved with, so {index} in the
// filename and in metadata always agree even when earlier files were
// rejected. Returns ErrWouldOverwriteSource when the output resolves to
// the source itself, and ErrDuplicateJob when the source or output is
// already queued or running.
func (q *Queue) Enqueue(sourcePath, outputPath string, index int, settings config.Settings) (*Job, error) {
	if naming.SameFile(sourcePath, outputPath) {
		return nil, fmt.Errorf("%w: %s", ErrWouldOverwriteSource, sourcePath)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if id, ok := q.activeSources[sourcePath]; ok {
		return nil, fmt.Errorf("%w: source already queued as %s", ErrDuplicateJob, id)
	}
	if id, ok := q.activeOutputs[outputPath]; ok {
		return nil, fmt.Errorf("%w: output already claimed by %s", ErrDuplicateJob, id)
	}

	j := &Job{
		ID:         uuid.NewString(),
		SourcePath: sourcePath,
		OutputPath: outputPath,
		Index:      index,
		Status:     StatusQueued,
		Settings:   settings,
		EnqueuedAt: time.Now(),
	}
	q.order = append(q.order, j.ID)
	q.jobs[j.ID] = j
	q.activeSources[sourcePath] = j.ID
	q.activeOutputs[outputPath] = j.ID
	return snapshotJob(j), nil
}

// Claim atomically takes the earliest Queued job, transitions it to
// Running, and returns a copy. ok is false when no job is ready. No two
// callers ever receive the same job.
func (q *Queue) Claim() (Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, id := range q.order {
		j := q.jobs[id]
		if j.Status == StatusQueued {
			j.Status = StatusRunning
			return *j, true
		}
	}
	return Job{}, false
}

// SetProbed records the probed source facts for a job. Called once by the
// owning worker before processing.
func (q *Queue) SetProbed(id, format string, duration float64, sizeBytes int64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if j, ok := q.jobs[id]; ok {
		j.Format = format
		j.Duration = duration
		j.SizeBytes = sizeBytes
	}
}

// SetMeasurement records the pass-1 loudness annotation for the report.
func (q *Queue) SetMeasurement(id string, inputI, inputTP float64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if j, ok := q.jobs[id]; ok {
		j.MeasuredI = inputI
		j.MeasuredTP = inputTP
		j.HasMeasurement = true
	}
}

// AddWarning appends a report annotation to a job.
func (q *Queue) AddWarning(id, warning string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	j, ok := q.jobs[id]
	if !ok {
		return
	}
	if j.Warnings != "" {
		j.Warnings += "; "
	}
	j.Warnings += warning
}

// MarkSucceeded finalizes a job as Succeeded and releases its claims.
func (q *Queue) MarkSucceeded(id string) {
	q.finalize(id, StatusSucceeded, "")
}

// MarkFailed finalizes a job as Failed with the given error text.
func (q *Queue) MarkFailed(id, errMsg string) {
	q.finalize(id, StatusFailed, errMsg)
}

// MarkSkipped finalizes a job as Skipped (e.g. output exists and overwrite
// is disabled) with a reason shown in the report.
func (q *Queue) MarkSkipped(id, reason string) {
	q.finalize(id, StatusSkipped, reason)
}

func (q *Queue) finalize(id string, status Status, msg string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	j, ok := q.jobs[id]
	if !ok || j.Status.Terminal() {
		return
	}
	j.Status = status
	if status == StatusFailed {
		j.ErrorMessage = msg
	} else if status == StatusSkipped && msg != "" {
		if j.Warnings != "" {
			j.Warnings += "; "
		}
		j.Warnings += msg
	}
	// Terminal jobs no longer block re-enqueue of the same paths.
	delete(q.activeSources, j.SourcePath)
	delete(q.activeOutputs, j.OutputPath)
}

// Snapshot returns copies of all jobs in enqueue (FIFO) order, for
// reporting and progress display.
func (q *Queue) Snapshot() []Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Job, 0, len(q.order))
	for _, id := range q.order {
		out = append(out, *q.jobs[id])
	}
	return out
}

// Counts returns the number of jobs per status.
func (q *Queue) Counts() map[Status]int {
	q.mu.Lock()
	defer q.mu.Unlock()
	counts := make(map[Status]int, 5)
	for _, j := range q.jobs {
		counts[j.Status]++
	}
	return counts
}

// Len returns the total number of jobs ever enqueued this session.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.order)
}

func snapshotJob(j *Job) *Job {
	cp := *j
	return &cp
}
