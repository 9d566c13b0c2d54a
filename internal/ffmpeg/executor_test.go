package ffmpeg

import (
	"context"
	"os/exec"
	"strings"
	"testing"
	"time"
)

func requireSh(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestRunCapturesOutputAndExitCode(t *testing.T) {
	requireSh(t)

	res, err := Run(context.Background(), []string{"sh", "-c", "echo measured; echo diag 1>&2; exit 3"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.ExitCode != 3 {
		t.Errorf("exit code = %d, want 3", res.ExitCode)
	}
	if res.Success() {
		t.Error("non-zero exit must not be success")
	}
	if !strings.Contains(res.Stdout, "measured") {
		t.Errorf("stdout = %q", res.Stdout)
	}
	if !strings.Contains(res.Stderr, "diag") {
		t.Errorf("stderr = %q", res.Stderr)
	}
}

func TestRunSuccess(t *testing.T) {
	requireSh(t)

	res, err := Run(context.Background(), []string{"sh", "-c", "exit 0"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Success() {
		t.Errorf("exit code = %d, want 0", res.ExitCode)
	}
}

func TestRunCancelled(t *testing.T) {
	requireSh(t)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := Run(ctx, []string{"sh", "-c", "sleep 30"})
	if err == nil {
		t.Fatal("cancelled run must return an error")
	}
}

func TestRunMissingBinary(t *testing.T) {
	_, err := Run(context.Background(), []string{"/no/such/engine-binary"})
	if err == nil {
		t.Fatal("expected start error for missing binary")
	}
}
