// Package logging builds the *log.Logger handed to gateways and use cases.
package logging

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// New returns a logger that writes to w when verbose is set and discards
// everything otherwise.
func New(verbose bool, w io.Writer) *log.Logger {
	logger := log.New(io.Discard, "", log.LstdFlags)
	if verbose && w != nil {
		logger.SetOutput(w)
	}
	return logger
}

// File appends timestamped lines to a log file. The interactive dashboard
// logs here because stderr belongs to the terminal UI.
type File struct {
	mu   sync.Mutex
	file *os.File
	now  func() time.Time
}

// Open creates (or reuses) the log file at path.
func Open(path string) (*File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("logging: ensure log dir: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logging: open log file: %w", err)
	}
	return &File{file: f, now: time.Now}, nil
}

// Write prefixes every line of p with an RFC 3339 timestamp.
func (l *File) Write(p []byte) (int, error) {
	if l == nil || l.file == nil {
		return len(p), nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	timestamp := l.now().Format(time.RFC3339)
	for _, line := range bytes.Split(bytes.TrimRight(p, "\n"), []byte("\n")) {
		if _, err := fmt.Fprintf(l.file, "[%s] %s\n", timestamp, line); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}

// Logger returns a *log.Logger writing through l.
func (l *File) Logger() *log.Logger {
	return log.New(l, "", 0)
}

// Close releases the file handle.
func (l *File) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}
