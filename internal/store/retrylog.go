package store

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// timestampLayout matches the crawler log format used across the
// pipeline's durable logs.
const timestampLayout = "02-01-2006 15:04:05"

// RetryLog is a durable append-only log of timestamped events. It backs
// both the gateway retry log and the lifecycle blocking-event log. A
// zero-path log discards writes, which keeps tests and dry runs quiet.
type RetryLog struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// NewRetryLog returns a log appending to the file at path. An empty
// path gives a no-op log.
func NewRetryLog(path string) *RetryLog {
	return &RetryLog{path: path, now: time.Now}
}

// Append writes one timestamped line to the log.
func (l *RetryLog) Append(format string, args ...any) error {
	if l.path == "" {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening log: %w", err)
	}
	defer f.Close()

	line := fmt.Sprintf(format, args...)
	if _, err := fmt.Fprintf(f, "%s %s\n", l.now().Format(timestampLayout), line); err != nil {
		return fmt.Errorf("writing log: %w", err)
	}
	return nil
}
