// Package queue holds job descriptors and the FIFO work queue shared
// between the ingest side (CLI, folder watch) and the worker pool. The
// queue is the only mutable structure shared across goroutines; all
// mutation goes through its methods.
package queue

import (
	"time"

	"github.com/audioforge/audioforge/internal/config"
)

// Status is the lifecycle state of a job.
type Status string

const (
	StatusQueued    Status = "Queued"
	StatusRunning   Status = "Running"
	StatusSucceeded Status = "Succeeded"
	StatusFailed    Status = "Failed"
	StatusSkipped   Status = "Skipped"
)

// Terminal reports whether the status is final.
func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed || s == StatusSkipped
}

// Job is one input file's processing request and state. SourcePath,
// OutputPath, Index, and Settings are fixed at enqueue time; probed facts
// are set once before processing; Status and ErrorMessage are owned by the
// single worker executing the job (via the queue's mark methods).
type Job struct {
	ID         string
	SourcePath string
	OutputPath string
	Index      int // 1-based batch position, used by {index}.

	// Probed once before processing.
	Format    string  // Source container/format name (e.g. "flac").
	Duration  float64 // Seconds.
	SizeBytes int64

	Status       Status
	ErrorMessage string // Set only on Failed.

	// Loudness measurement annotation for the report (two-pass only).
	MeasuredI      float64
	MeasuredTP     float64
	HasMeasurement bool

	Warnings string // Report annotations (e.g. true-peak above ceiling).

	// Settings snapshot active when the job was created. Later edits to
	// the live settings never affect this job.
	Settings config.Settings

	EnqueuedAt time.Time
}
