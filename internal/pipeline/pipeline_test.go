package pipeline

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/audioforge/audioforge/internal/check"
	"github.com/audioforge/audioforge/internal/config"
	"github.com/audioforge/audioforge/internal/logging"
	"github.com/audioforge/audioforge/internal/loudness"
	"github.com/audioforge/audioforge/internal/queue"
	"github.com/audioforge/audioforge/internal/term"
)

func touch(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func basenames(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = filepath.Base(p)
	}
	return out
}

// --- Discover tests ---

func TestDiscover_FiltersExtensions(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "song.flac")
	touch(t, dir, "voice.wav")
	touch(t, dir, "cover.jpg")
	touch(t, dir, "notes.txt")
	touch(t, dir, "talk.opus")

	files, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	want := []string{"song.flac", "talk.opus", "voice.wav"}
	got := basenames(files)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got %v, want %v", got, want)
			break
		}
	}
}

func TestDiscover_Recursive(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "album", "disc1")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	touch(t, dir, "a.mp3")
	touch(t, sub, "b.mp3")

	files, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(files) != 2 {
		t.Errorf("got %d files, want 2", len(files))
	}
}

func TestDiscover_SingleFile(t *testing.T) {
	dir := t.TempDir()
	path := touch(t, dir, "one.wav")

	files, err := Discover(path)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(files) != 1 || files[0] != path {
		t.Errorf("got %v, want [%s]", files, path)
	}

	// Non-audio single file yields nothing.
	doc := touch(t, dir, "readme.md")
	files, err = Discover(doc)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("got %v, want empty", files)
	}
}

func TestIsAudioFile_CaseInsensitive(t *testing.T) {
	if !IsAudioFile("/music/Track.FLAC") {
		t.Error("uppercase extension should match")
	}
	if IsAudioFile("/music/track.mkv") {
		t.Error("video extension should not match")
	}
}

// --- Filter assembly tests ---

func TestConvertFilter_TwoPass(t *testing.T) {
	s := config.DefaultSettings()
	s.Normalize = config.NormalizeTwoPass
	s.FadeIn = 1.0
	job := &queue.Job{Settings: s, Duration: 60}

	m := &loudness.Measurement{
		InputI: -23.1, InputTP: -4.2, InputLRA: 7.5, InputThresh: -33.5, TargetOffset: 0.3,
	}
	filter := convertFilter(job, m)

	for _, want := range []string{"measured_I=-23.1", "linear=true", "afade=t=in"} {
		if !strings.Contains(filter, want) {
			t.Errorf("filter missing %q: %s", want, filter)
		}
	}
}

func TestConvertFilter_Off(t *testing.T) {
	job := &queue.Job{Settings: config.DefaultSettings()}
	if got := convertFilter(job, nil); got != "" {
		t.Errorf("expected empty filter, got %q", got)
	}
}

// --- Metadata resolution tests ---

func TestResolveMetadata(t *testing.T) {
	s := config.DefaultSettings()
	s.Metadata = config.MetadataTemplate{
		Artist: "The Band",
		Title:  "{stem}",
	}
	job := &queue.Job{
		SourcePath: "/music/take_07.flac",
		Index:      7,
		Settings:   s,
	}

	tags := resolveMetadata(job)
	got := map[string]string{}
	for _, kv := range tags {
		got[kv[0]] = kv[1]
	}
	if got["artist"] != "The Band" {
		t.Errorf("artist = %q", got["artist"])
	}
	if got["title"] != "take_07" {
		t.Errorf("title = %q, want take_07", got["title"])
	}
}

// --- Pool tests ---

func TestPoolRunEmptyQueue(t *testing.T) {
	log, err := logging.NewLogger(logging.Options{ColorMode: term.ModeNever})
	if err != nil {
		t.Fatal(err)
	}
	defer log.Close()

	p := NewPool(queue.New(), nil, log, Options{Workers: 4})
	stats := p.Run(context.Background())
	if stats.Total != 0 {
		t.Errorf("stats = %+v, want empty", stats)
	}
}

func requireSh(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

// stubEngine builds an Engine backed by shell scripts: ffprobe emits a fixed
// JSON document with one audio stream, ffmpeg sleeps for delay and exits 0.
func stubEngine(t *testing.T, dir, delay string) *check.Engine {
	t.Helper()
	writeStub := func(name, script string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o755); err != nil {
			t.Fatal(err)
		}
		return path
	}
	probeJSON := `{"format":{"format_name":"flac","duration":"12.5","size":"4096"},` +
		`"streams":[{"index":0,"codec_name":"flac","codec_type":"audio","channels":2,"sample_rate":"44100"}]}`
	return &check.Engine{
		FFmpegPath:  writeStub("fake-ffmpeg", "sleep "+delay),
		FFprobePath: writeStub("fake-ffprobe", "echo '"+probeJSON+"'"),
	}
}

func quietLogger(t *testing.T) *logging.Logger {
	t.Helper()
	log, err := logging.NewLogger(logging.Options{ColorMode: term.ModeNever})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { log.Close() })
	return log
}

// With 2 workers and 6 jobs, no more than 2 jobs may be running at once.
func TestPoolBoundsConcurrentRunning(t *testing.T) {
	requireSh(t)
	dir := t.TempDir()
	engine := stubEngine(t, dir, "0.2")
	log := quietLogger(t)

	q := queue.New()
	s := config.DefaultSettings()
	s.Normalize = config.NormalizeOnePass
	s.TargetTP = -0.5 // Above the recommended ceiling, should be flagged.
	for i := 0; i < 6; i++ {
		src := touch(t, dir, "in"+string(rune('a'+i))+".wav")
		out := filepath.Join(dir, "out", "in"+string(rune('a'+i))+".out.wav")
		if _, err := q.Enqueue(src, out, i+1, s); err != nil {
			t.Fatal(err)
		}
	}

	stop := make(chan struct{})
	maxRunning := make(chan int, 1)
	go func() {
		max := 0
		for {
			select {
			case <-stop:
				maxRunning <- max
				return
			case <-time.After(10 * time.Millisecond):
				if n := q.Counts()[queue.StatusRunning]; n > max {
					max = n
				}
			}
		}
	}()

	p := NewPool(q, engine, log, Options{Workers: 2})
	stats := p.Run(context.Background())
	close(stop)

	if got := <-maxRunning; got > 2 {
		t.Errorf("observed %d jobs running at once, want at most 2", got)
	}
	if stats.Succeeded != 6 {
		t.Errorf("stats = %+v, want 6 succeeded", stats)
	}
	for _, j := range q.Snapshot() {
		if !strings.Contains(j.Warnings, "true-peak") {
			t.Errorf("job %s missing true-peak warning: %q", j.SourcePath, j.Warnings)
		}
	}
}

// After Stop the in-flight job finishes but nothing else is claimed.
func TestPoolStopPreventsNewClaims(t *testing.T) {
	requireSh(t)
	dir := t.TempDir()
	engine := stubEngine(t, dir, "0.5")
	log := quietLogger(t)

	q := queue.New()
	s := config.DefaultSettings()
	for i, name := range []string{"a.wav", "b.wav", "c.wav"} {
		src := touch(t, dir, name)
		if _, err := q.Enqueue(src, filepath.Join(dir, "out", name), i+1, s); err != nil {
			t.Fatal(err)
		}
	}

	p := NewPool(q, engine, log, Options{Workers: 1})
	p.Start(context.Background())

	deadline := time.Now().Add(2 * time.Second)
	for q.Counts()[queue.StatusRunning] == 0 {
		if time.Now().After(deadline) {
			t.Fatal("no job reached running state")
		}
		time.Sleep(5 * time.Millisecond)
	}
	p.Stop()
	p.Wait()

	counts := q.Counts()
	if counts[queue.StatusSucceeded] != 1 {
		t.Errorf("succeeded = %d, want 1 (the in-flight job)", counts[queue.StatusSucceeded])
	}
	if counts[queue.StatusQueued] != 2 {
		t.Errorf("queued = %d, want 2 left unclaimed", counts[queue.StatusQueued])
	}
}

// --- Summarize tests ---

func TestSummarize(t *testing.T) {
	dir := t.TempDir()
	q := queue.New()
	s := config.DefaultSettings()
	s.OutputDir = dir

	ok, err := q.Enqueue(touch(t, dir, "a.mp3"), filepath.Join(dir, "a.wav"), 1, s)
	if err != nil {
		t.Fatal(err)
	}
	bad, err := q.Enqueue(touch(t, dir, "b.mp3"), filepath.Join(dir, "b.wav"), 2, s)
	if err != nil {
		t.Fatal(err)
	}
	skip, err := q.Enqueue(touch(t, dir, "c.mp3"), filepath.Join(dir, "c.wav"), 3, s)
	if err != nil {
		t.Fatal(err)
	}

	touch(t, dir, "a.wav")
	q.SetProbed(ok.ID, "mp3", 10, 100)
	q.SetProbed(bad.ID, "mp3", 10, 200)

	for i := 0; i < 3; i++ {
		q.Claim()
	}
	q.MarkSucceeded(ok.ID)
	q.MarkFailed(bad.ID, "boom")
	q.MarkSkipped(skip.ID, "output exists")

	stats := Summarize(q)
	if stats.Total != 3 || stats.Succeeded != 1 || stats.Failed != 1 || stats.Skipped != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.TotalInputBytes != 300 {
		t.Errorf("TotalInputBytes = %d, want 300", stats.TotalInputBytes)
	}
	if stats.TotalOutputBytes == 0 {
		t.Error("TotalOutputBytes should count the succeeded output file")
	}
}
