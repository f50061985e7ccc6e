package store

import (
	"context"

	"vrpbench/internal/model"
)

// Multi fans every record out to all sinks in order. The first error wins:
// losing records defeats the purpose of a sweep, so callers treat it as
// fatal.
type Multi struct {
	sinks []Sink
}

func NewMulti(sinks ...Sink) *Multi {
	return &Multi{sinks: sinks}
}

func (m *Multi) Append(ctx context.Context, rec model.Record) error {
	for _, s := range m.sinks {
		if err := s.Append(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

func (m *Multi) Banner(ctx context.Context, text string) error {
	for _, s := range m.sinks {
		if err := s.Banner(ctx, text); err != nil {
			return err
		}
	}
	return nil
}

func (m *Multi) Close() error {
	var first error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
