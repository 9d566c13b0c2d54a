package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/audioforge/audioforge/internal/term"
)

func TestNewLogger_NoFile(t *testing.T) {
	l, err := NewLogger(Options{ColorMode: term.ModeNever})
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()
	l.Info("test message")
}

func TestNewLogger_WithFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "audioforge.log")
	l, err := NewLogger(Options{ColorMode: term.ModeNever, LogFile: path})
	if err != nil {
		t.Fatal(err)
	}
	l.Info("to file")
	l.Success("converted")
	l.Outlier("true-peak above recommended")
	l.Error("boom")
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}
	b, _ := os.ReadFile(path)
	for _, want := range []string{"[INFO] to file", "[SUCCESS] converted", "[OUTLIER] true-peak above recommended", "[ERROR] boom"} {
		if !bytes.Contains(b, []byte(want)) {
			t.Errorf("log file missing %q:\n%s", want, b)
		}
	}
}

func TestDebugGatedByVerbose(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quiet.log")
	l, err := NewLogger(Options{ColorMode: term.ModeNever, LogFile: path})
	if err != nil {
		t.Fatal(err)
	}
	l.Debug("hidden")
	l.Close()
	b, _ := os.ReadFile(path)
	if bytes.Contains(b, []byte("hidden")) {
		t.Errorf("debug line should be suppressed without verbose:\n%s", b)
	}
}
