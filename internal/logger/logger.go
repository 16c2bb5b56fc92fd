package logger

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// LogFilePath is the default log file, relative to the working directory.
const LogFilePath = "logs/fxdemo.txt"

// maxLines bounds the in-memory history drawn by the console.
const maxLines = 500

// Logger keeps recent lines in memory for the on-screen console and appends every line to a file.
// Structured events from Zerolog() land in the same history.
type Logger struct {
	mu    sync.Mutex
	lines []string
	path  string
	zl    zerolog.Logger
}

// New returns a Logger writing to path (LogFilePath when empty) and ensures its directory exists.
// When console is non-nil, structured events are also pretty-printed there.
func New(path string, console io.Writer) *Logger {
	if path == "" {
		path = LogFilePath
	}
	_ = os.MkdirAll(filepath.Dir(path), 0755)
	l := &Logger{lines: make([]string, 0, 64), path: path}

	history := zerolog.ConsoleWriter{Out: historyWriter{l}, NoColor: true, TimeFormat: "2006-01-02 15:04:05"}
	var out io.Writer = history
	if console != nil {
		out = zerolog.MultiLevelWriter(zerolog.ConsoleWriter{Out: console, TimeFormat: time.Kitchen}, history)
	}
	l.zl = zerolog.New(out).With().Timestamp().Logger()
	return l
}

// Log appends a plain line, prefixed with [timestamp], to the history and the log file.
func (l *Logger) Log(line string) {
	ts := time.Now().Format("2006-01-02 15:04:05")
	l.record("[" + ts + "] " + line)
}

// Zerolog returns the structured logger. Its events are mirrored into Lines.
func (l *Logger) Zerolog() *zerolog.Logger {
	return &l.zl
}

// Lines returns a copy of the stored lines, oldest first.
func (l *Logger) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.lines))
	copy(out, l.lines)
	return out
}

// Path is the file lines are appended to.
func (l *Logger) Path() string { return l.path }

func (l *Logger) record(stamped string) {
	l.mu.Lock()
	l.lines = append(l.lines, stamped)
	if len(l.lines) > maxLines {
		l.lines = append(l.lines[:0], l.lines[len(l.lines)-maxLines:]...)
	}
	l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	_, _ = f.WriteString(stamped + "\n")
	_ = f.Close()
}

// historyWriter receives formatted console lines from zerolog.
type historyWriter struct{ l *Logger }

func (h historyWriter) Write(p []byte) (int, error) {
	for _, line := range bytes.Split(bytes.TrimRight(p, "\n"), []byte("\n")) {
		if len(line) > 0 {
			h.l.record(string(line))
		}
	}
	return len(p), nil
}
