// Package pipeline runs the worker pool that drains the job queue and
// processes each job: probe, optional two-pass loudness measurement,
// transcode, status update.
//
// Planned implementation:
//
// Types:
//   - Pool (queue + engine + worker count; Start/Wake/Wait, Run for
//     batch mode)
//   - RunStats (Succeeded, Failed, Skipped, byte totals)
//
// Functions:
//   - Discover(inputPath) → []string
//     Accept a single file or walk a directory, filter by audio
//     extension, sort deterministically.
//
// When implementing, split into pool.go, runner.go, discover.go, stats.go.
package pipeline
