package store

import (
	"context"
	"sync"

	"vrpbench/internal/model"
)

// Memory keeps records in order in memory. Used as the embedded sink in
// tests.
type Memory struct {
	mu      sync.Mutex
	records []model.Record
	banners []string
	closed  bool
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Append(_ context.Context, rec model.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.records = append(m.records, rec)
	return nil
}

func (m *Memory) Banner(_ context.Context, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.banners = append(m.banners, text)
	return nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

// Records returns a copy of all appended records in arrival order.
func (m *Memory) Records() []model.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Record(nil), m.records...)
}

// Banners returns a copy of all banner lines in arrival order.
func (m *Memory) Banners() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.banners...)
}
