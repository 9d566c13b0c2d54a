// Package logging provides the leveled, optionally colored logger used by
// every other package. It is a thin wrapper over logrus: output goes through
// hooks (console + optional file sink) so the console can be colored while
// the log file stays plain.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/audioforge/audioforge/internal/term"
)

// Options configures logger construction.
type Options struct {
	ColorMode term.Mode // auto | always | never.
	LogFile   string    // Optional append-mode log file path.
	Verbose   bool      // Enables Debug output.
}

// tag is the logrus field carrying the bracketed console label. It lets a
// single logrus level (info) fan out into INFO, SUCCESS, and OUTLIER lines
// the way the console output distinguishes them.
const tagField = "tag"

// tagColors maps console labels to ANSI colors. Resolved at log time so a
// later term.Configure call is honored.
func tagColor(tag string) string {
	switch tag {
	case "SUCCESS":
		return term.Green
	case "WARN":
		return term.Yellow
	case "ERROR":
		return term.Red
	case "DEBUG":
		return term.Cyan
	case "OUTLIER":
		return term.Orange
	default:
		return term.Blue
	}
}

// Logger provides leveled, optionally colored logging with an optional
// plain-text file sink. Safe for concurrent use by workers.
type Logger struct {
	log     *logrus.Logger
	verbose bool

	mu   sync.Mutex
	file *os.File
}

// NewLogger configures colors from opts and optionally opens the log file.
// Call Close when done if LogFile was set.
func NewLogger(opts Options) (*Logger, error) {
	term.Configure(opts.ColorMode)

	l := &Logger{
		log:     logrus.New(),
		verbose: opts.Verbose,
	}
	// All output flows through hooks; the base writer is disabled so the
	// console and file sinks can format independently.
	l.log.SetOutput(io.Discard)
	l.log.SetLevel(logrus.DebugLevel)
	l.log.AddHook(&consoleHook{})

	if opts.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(opts.LogFile), 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(opts.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		l.file = f
		l.log.AddHook(&fileHook{w: f})
	}
	return l, nil
}

// Close closes the log file if one was opened.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

// Verbose reports whether debug output is enabled.
func (l *Logger) Verbose() bool { return l.verbose }

func (l *Logger) emit(level logrus.Level, tag, format string, args ...interface{}) {
	l.log.WithField(tagField, tag).Log(level, fmt.Sprintf(format, args...))
}

// Info logs at INFO level (blue).
func (l *Logger) Info(format string, args ...interface{}) {
	l.emit(logrus.InfoLevel, "INFO", format, args...)
}

// Success logs at SUCCESS level (green).
func (l *Logger) Success(format string, args ...interface{}) {
	l.emit(logrus.InfoLevel, "SUCCESS", format, args...)
}

// Warn logs at WARN level (yellow).
func (l *Logger) Warn(format string, args ...interface{}) {
	l.emit(logrus.WarnLevel, "WARN", format, args...)
}

// Error logs at ERROR level (red), routed to stderr.
func (l *Logger) Error(format string, args ...interface{}) {
	l.emit(logrus.ErrorLevel, "ERROR", format, args...)
}

// Outlier logs at OUTLIER level (orange), for measurements outside expected ranges.
func (l *Logger) Outlier(format string, args ...interface{}) {
	l.emit(logrus.InfoLevel, "OUTLIER", format, args...)
}

// Debug logs at DEBUG level (cyan) only when verbose; no-op otherwise.
func (l *Logger) Debug(format string, args ...interface{}) {
	if !l.verbose {
		return
	}
	l.emit(logrus.DebugLevel, "DEBUG", format, args...)
}

// --- Sinks ---

const timestampLayout = "2006-01-02 15:04:05"

func entryTag(e *logrus.Entry) string {
	if t, ok := e.Data[tagField].(string); ok {
		return t
	}
	return "INFO"
}

// consoleHook writes colored lines to stdout, ERROR lines to stderr.
type consoleHook struct {
	mu sync.Mutex
}

func (h *consoleHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h *consoleHook) Fire(e *logrus.Entry) error {
	tag := entryTag(e)
	ts := e.Time.Format(timestampLayout)

	out := os.Stdout
	if e.Level <= logrus.ErrorLevel {
		out = os.Stderr
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if c := tagColor(tag); term.Enabled() {
		_, err := io.WriteString(out, ts+" "+c+"["+tag+"]"+term.NC+" "+e.Message+"\n")
		return err
	}
	_, err := io.WriteString(out, ts+" ["+tag+"] "+e.Message+"\n")
	return err
}

// fileHook appends plain (uncolored) lines to the log file.
type fileHook struct {
	mu sync.Mutex
	w  io.Writer
}

func (h *fileHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h *fileHook) Fire(e *logrus.Entry) error {
	line := e.Time.Format(timestampLayout) + " [" + entryTag(e) + "] " + e.Message + "\n"
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, line)
	return err
}
