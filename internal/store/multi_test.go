package store

import (
	"context"
	"errors"
	"testing"

	"vrpbench/internal/model"
)

type errSink struct{ Memory }

func (e *errSink) Append(context.Context, model.Record) error { return errors.New("boom") }

func TestMultiFansOutInOrder(t *testing.T) {
	a, b := NewMemory(), NewMemory()
	m := NewMulti(a, b)
	ctx := context.Background()
	if err := m.Append(ctx, model.Record{Instance: "A", Seed: 1}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := m.Banner(ctx, "hello"); err != nil {
		t.Fatalf("Banner: %v", err)
	}
	if len(a.Records()) != 1 || len(b.Records()) != 1 {
		t.Fatalf("records not fanned out: %d/%d", len(a.Records()), len(b.Records()))
	}
	if len(a.Banners()) != 1 || len(b.Banners()) != 1 {
		t.Fatal("banners not fanned out")
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestMultiStopsOnFirstError(t *testing.T) {
	late := NewMemory()
	m := NewMulti(&errSink{}, late)
	if err := m.Append(context.Background(), model.Record{}); err == nil {
		t.Fatal("expected error")
	}
	if len(late.Records()) != 0 {
		t.Fatal("later sink should not receive the record after an error")
	}
}
