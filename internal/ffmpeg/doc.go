// Package ffmpeg builds and executes engine commands with a shared argument
// skeleton per phase.
//
// Types:
//   - ConvertParams (input/output, settings snapshot, filter chain, tags)
//   - Result (exit code plus captured stdout/stderr)
//
// Functions:
//   - BuildConvertArgs(ffmpegPath, ConvertParams) → []string
//     Shared skeleton (-hide_banner, -nostdin, loglevel, -ar/-ac) plus
//     format-specific codec args and resolved -metadata pairs.
//   - BuildMeasureArgs(ffmpegPath, input, filter) → []string
//     Pass-1 loudness measurement: null muxer, JSON diagnostics on stderr.
//   - Run(ctx, args) → Result
//     Execute one invocation, capture output, surface the exit code.
//     No implicit timeout; cancellation comes from the caller's context.
//   - StderrTail(stderr, n) → string
//     Last n lines for error messages and reports.
package ffmpeg
