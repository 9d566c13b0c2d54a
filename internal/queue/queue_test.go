package queue

import (
	"errors"
	"sync"
	"testing"

	"github.com/audioforge/audioforge/internal/config"
)

func TestEnqueueAndClaimFIFO(t *testing.T) {
	q := New()
	s := config.DefaultSettings()

	for i, src := range []string{"/in/a.wav", "/in/b.wav", "/in/c.wav"} {
		if _, err := q.Enqueue(src, "/out"+src, i+1, s); err != nil {
			t.Fatalf("enqueue %s: %v", src, err)
		}
	}

	var order []string
	for {
		j, ok := q.Claim()
		if !ok {
			break
		}
		order = append(order, j.SourcePath)
	}
	want := []string{"/in/a.wav", "/in/b.wav", "/in/c.wav"}
	if len(order) != len(want) {
		t.Fatalf("claimed %d jobs, want %d", len(order), len(want))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("claim order[%d] = %s, want %s", i, order[i], want[i])
		}
	}
}

func TestEnqueueRejectsDuplicateSource(t *testing.T) {
	q := New()
	s := config.DefaultSettings()

	if _, err := q.Enqueue("/in/a.wav", "/out/a.mp3", 1, s); err != nil {
		t.Fatal(err)
	}
	_, err := q.Enqueue("/in/a.wav", "/out/other.mp3", 2, s)
	if !errors.Is(err, ErrDuplicateJob) {
		t.Fatalf("want ErrDuplicateJob, got %v", err)
	}
	if q.Len() != 1 {
		t.Errorf("queue length = %d, want 1 (unchanged)", q.Len())
	}
}

func TestEnqueueKeepsCallerIndexAfterRejection(t *testing.T) {
	q := New()
	s := config.DefaultSettings()

	if _, err := q.Enqueue("/in/a.flac", "/out/a_1.wav", 1, s); err != nil {
		t.Fatal(err)
	}
	if _, err := q.Enqueue("/in/a.flac", "/out/a_2.wav", 2, s); !errors.Is(err, ErrDuplicateJob) {
		t.Fatalf("want ErrDuplicateJob, got %v", err)
	}

	// The rejected file still consumed a batch position, so the next job
	// carries index 3, matching the {index} its output path was built with.
	j, err := q.Enqueue("/in/b.flac", "/out/b_3.wav", 3, s)
	if err != nil {
		t.Fatal(err)
	}
	if j.Index != 3 {
		t.Errorf("Job.Index = %d, want 3", j.Index)
	}
}

func TestEnqueueRejectsDuplicateOutput(t *testing.T) {
	q := New()
	s := config.DefaultSettings()

	if _, err := q.Enqueue("/in/a.wav", "/out/same.mp3", 1, s); err != nil {
		t.Fatal(err)
	}
	if _, err := q.Enqueue("/in/b.wav", "/out/same.mp3", 2, s); !errors.Is(err, ErrDuplicateJob) {
		t.Fatalf("want ErrDuplicateJob for shared output, got %v", err)
	}
}

func TestEnqueueRejectsOverwritingSource(t *testing.T) {
	q := New()
	_, err := q.Enqueue("/in/a.wav", "/in/a.wav", 1, config.DefaultSettings())
	if !errors.Is(err, ErrWouldOverwriteSource) {
		t.Fatalf("want ErrWouldOverwriteSource, got %v", err)
	}
	if q.Len() != 0 {
		t.Error("rejected job must not enter the queue")
	}
}

func TestTerminalJobReleasesClaims(t *testing.T) {
	q := New()
	s := config.DefaultSettings()

	j, err := q.Enqueue("/in/a.wav", "/out/a.mp3", 1, s)
	if err != nil {
		t.Fatal(err)
	}
	claimed, ok := q.Claim()
	if !ok || claimed.ID != j.ID {
		t.Fatal("claim should return the enqueued job")
	}
	q.MarkFailed(j.ID, "engine exited with 1")

	// Same paths may be enqueued again after the first attempt finished.
	if _, err := q.Enqueue("/in/a.wav", "/out/a.mp3", 1, s); err != nil {
		t.Fatalf("re-enqueue after terminal state: %v", err)
	}
}

func TestOutputPathImmutableInSnapshots(t *testing.T) {
	q := New()
	j, err := q.Enqueue("/in/a.wav", "/out/a.mp3", 1, config.DefaultSettings())
	if err != nil {
		t.Fatal(err)
	}
	snap := q.Snapshot()
	snap[0].OutputPath = "/tampered"

	again := q.Snapshot()
	if again[0].OutputPath != "/out/a.mp3" {
		t.Errorf("output path changed to %q", again[0].OutputPath)
	}
	if j.OutputPath != "/out/a.mp3" {
		t.Errorf("enqueue copy changed to %q", j.OutputPath)
	}
}

func TestSettingsSnapshotIsolation(t *testing.T) {
	q := New()
	s := config.DefaultSettings()
	s.TargetI = -16

	j, err := q.Enqueue("/in/a.wav", "/out/a.mp3", 1, s)
	if err != nil {
		t.Fatal(err)
	}
	s.TargetI = -23 // later edit must not reach the job

	got := q.Snapshot()[0]
	if got.Settings.TargetI != -16 {
		t.Errorf("job settings TargetI = %v, want -16", got.Settings.TargetI)
	}
	_ = j
}

func TestConcurrentClaimNoDoubleOwnership(t *testing.T) {
	q := New()
	s := config.DefaultSettings()
	const n = 50
	for i := 0; i < n; i++ {
		src := "/in/f" + string(rune('a'+i%26)) + string(rune('0'+i/26)) + ".wav"
		if _, err := q.Enqueue(src, "/out"+src, i+1, s); err != nil {
			t.Fatal(err)
		}
	}

	var mu sync.Mutex
	seen := make(map[string]int)
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				j, ok := q.Claim()
				if !ok {
					return
				}
				mu.Lock()
				seen[j.ID]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(seen) != n {
		t.Fatalf("claimed %d distinct jobs, want %d", len(seen), n)
	}
	for id, times := range seen {
		if times != 1 {
			t.Errorf("job %s claimed %d times", id, times)
		}
	}
}

func TestMarkSkippedRecordsReason(t *testing.T) {
	q := New()
	j, err := q.Enqueue("/in/a.wav", "/out/a.mp3", 1, config.DefaultSettings())
	if err != nil {
		t.Fatal(err)
	}
	q.Claim()
	q.MarkSkipped(j.ID, "output exists")

	got := q.Snapshot()[0]
	if got.Status != StatusSkipped {
		t.Errorf("status = %s", got.Status)
	}
	if got.Warnings != "output exists" {
		t.Errorf("warnings = %q", got.Warnings)
	}
	if got.ErrorMessage != "" {
		t.Errorf("skip must not set error message, got %q", got.ErrorMessage)
	}
}
