package store

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"vrpbench/internal/model"
)

// FileLog is the durable append-only text log. One timestamped line per
// record, plus a banner line per instance block. The file is opened once in
// append mode so re-running a sweep extends the existing log.
type FileLog struct {
	mu     sync.Mutex
	f      *os.File
	closed bool
}

func NewFileLog(path string) (*FileLog, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	return &FileLog{f: f}, nil
}

func (l *FileLog) Append(_ context.Context, rec model.Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrClosed
	}
	if _, err := fmt.Fprintf(l.f, "%s %s\n", stamp(rec.At), FormatRecord(rec)); err != nil {
		return fmt.Errorf("append log: %w", err)
	}
	return nil
}

func (l *FileLog) Banner(_ context.Context, text string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrClosed
	}
	if _, err := fmt.Fprintf(l.f, "%s %s\n", stamp(time.Now()), text); err != nil {
		return fmt.Errorf("append log: %w", err)
	}
	return nil
}

func (l *FileLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	if err := l.f.Sync(); err != nil {
		_ = l.f.Close()
		return err
	}
	return l.f.Close()
}

// stamp matches the HH:MM:SS,msec layout of previous sweep logs so old and
// new files stay diffable.
func stamp(t time.Time) string {
	return fmt.Sprintf("%s,%03d", t.Format("15:04:05"), t.Nanosecond()/1e6)
}

// FormatRecord renders the free-form context plus result summary for one
// run. Also used for console output.
func FormatRecord(rec model.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "instance=%s seed=%d budget=%ds status=%s", rec.Instance, rec.Seed, rec.BudgetSec, rec.Status)
	switch rec.Status {
	case model.StatusOK:
		fmt.Fprintf(&b, " objective=%.2f feasible=%t routes=%d iterations=%d elapsed=%.1fs",
			rec.Objective, rec.Feasible, rec.Routes, rec.Iterations, rec.Elapsed.Seconds())
		if rec.GapPct != nil {
			fmt.Fprintf(&b, " gap=%.2f%%", *rec.GapPct)
		}
	default:
		fmt.Fprintf(&b, " err=%q", rec.Err)
	}
	return b.String()
}
