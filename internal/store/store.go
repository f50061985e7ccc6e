package store

import (
	"context"
	"errors"

	"vrpbench/internal/model"
)

// Sink is an append-only destination for benchmark records. The runner is
// its sole writer, so implementations may assume sequential calls; the
// arrival order of records is the execution order and must be preserved.
type Sink interface {
	Append(ctx context.Context, rec model.Record) error
	// Banner writes a free-form separator line before an instance's seed
	// block. Structured sinks may ignore it.
	Banner(ctx context.Context, text string) error
	Close() error
}

var ErrClosed = errors.New("sink closed")
