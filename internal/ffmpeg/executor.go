package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Result holds the outcome of a single engine invocation.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Success reports whether the engine exited cleanly.
func (r Result) Success() bool { return r.ExitCode == 0 }

// Run executes one engine invocation and captures both output streams.
// There is no implicit timeout: long files legitimately run for a long
// time, and cancellation is the scheduler's job via ctx. A non-zero exit
// is not an error here; the caller maps it to a job failure. The returned
// error covers only start failures and context cancellation.
func Run(ctx context.Context, args []string) (Result, error) {
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err == nil {
		return res, nil
	}
	if ctx.Err() != nil {
		// The process was killed by cancellation; any output file may be
		// partial and must be discarded by the caller.
		res.ExitCode = -1
		return res, fmt.Errorf("engine invocation aborted: %w", ctx.Err())
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	return res, fmt.Errorf("start engine: %w", err)
}

// StderrTail returns the last n non-empty lines of captured stderr, for
// compact error messages and report cells.
func StderrTail(stderr string, n int) string {
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	var kept []string
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			kept = append(kept, strings.TrimSpace(l))
		}
	}
	if len(kept) > n {
		kept = kept[len(kept)-n:]
	}
	return strings.Join(kept, "\n")
}
