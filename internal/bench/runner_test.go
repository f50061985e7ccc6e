package bench

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"vrpbench/internal/model"
	"vrpbench/internal/solver"
	"vrpbench/internal/status"
	"vrpbench/internal/store"
	"vrpbench/internal/vrplib"
)

type fakeModel struct {
	res   solver.Result
	err   error
	calls *[]string
	name  string
}

func (f *fakeModel) Solve(stop solver.StopCondition, seed int64, display bool) (solver.Result, error) {
	if f.calls != nil {
		*f.calls = append(*f.calls, fmt.Sprintf("%s/%d", f.name, seed))
	}
	return f.res, f.err
}

func okResult() solver.Result {
	return solver.Result{Objective: 110, Feasible: true, Routes: 2, Iterations: 10, Runtime: time.Millisecond}
}

// newFakeRunner wires a runner whose loader and builder never touch disk.
// failLoad marks instance names whose load should fail; failSolve marks
// names whose solve errors.
func newFakeRunner(specs []model.InstanceSpec, seeds []int64, sink store.Sink, failLoad, failSolve map[string]bool, calls *[]string) *Runner {
	r := New(specs, seeds, sink, vrplib.Round)
	byPath := map[string]string{}
	for _, s := range specs {
		byPath[s.Path] = s.Name
	}
	r.Load = func(path string) (*vrplib.Instance, error) {
		if failLoad[byPath[path]] {
			return nil, errors.New("no such file")
		}
		return &vrplib.Instance{Name: byPath[path]}, nil
	}
	r.Build = func(in *vrplib.Instance) (Model, error) {
		fm := &fakeModel{res: okResult(), calls: calls, name: in.Name}
		if failSolve[in.Name] {
			fm.err = errors.New("construction failed")
		}
		return fm, nil
	}
	return r
}

func TestRunOneRecordPerInstanceSeedPair(t *testing.T) {
	specs := []model.InstanceSpec{
		{Name: "A", Path: "a.vrp", BudgetSec: 10},
		{Name: "B", Path: "b.vrp", BudgetSec: 20},
	}
	seeds := []int64{1, 2, 3}
	sink := store.NewMemory()
	r := newFakeRunner(specs, seeds, sink, nil, nil, nil)

	sum, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	recs := sink.Records()
	if len(recs) != len(specs)*len(seeds) {
		t.Fatalf("got %d records, want %d", len(recs), len(specs)*len(seeds))
	}
	if sum.Records != len(recs) {
		t.Fatalf("summary records = %d, want %d", sum.Records, len(recs))
	}
	// instance-major, then seed order
	i := 0
	for _, spec := range specs {
		for _, seed := range seeds {
			if recs[i].Instance != spec.Name || recs[i].Seed != seed {
				t.Fatalf("record %d is (%s,%d), want (%s,%d)", i, recs[i].Instance, recs[i].Seed, spec.Name, seed)
			}
			if recs[i].BudgetSec != spec.BudgetSec {
				t.Fatalf("record %d budget = %d, want %d", i, recs[i].BudgetSec, spec.BudgetSec)
			}
			i++
		}
	}
	if banners := sink.Banners(); len(banners) != len(specs) {
		t.Fatalf("got %d banners, want %d", len(banners), len(specs))
	}
}

func TestRunSingleInstanceTwoSeeds(t *testing.T) {
	specs := []model.InstanceSpec{{Name: "A", Path: "a.vrp", BudgetSec: 10}}
	sink := store.NewMemory()
	r := newFakeRunner(specs, []int64{1, 2}, sink, nil, nil, nil)
	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	recs := sink.Records()
	if len(recs) != 2 || recs[0].Seed != 1 || recs[1].Seed != 2 {
		t.Fatalf("bad records: %+v", recs)
	}
	for _, rec := range recs {
		if rec.Instance != "A" || rec.Status != model.StatusOK {
			t.Fatalf("bad record: %+v", rec)
		}
	}
}

func TestRunMissingInstanceSkipsSeedsAndContinues(t *testing.T) {
	specs := []model.InstanceSpec{
		{Name: "A", Path: "missing.vrp", BudgetSec: 10},
		{Name: "B", Path: "b.vrp", BudgetSec: 10},
	}
	var calls []string
	sink := store.NewMemory()
	r := newFakeRunner(specs, []int64{1}, sink, map[string]bool{"A": true}, nil, &calls)
	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	recs := sink.Records()
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	if recs[0].Status != model.StatusLoadFailed || recs[0].Instance != "A" {
		t.Fatalf("record 0: %+v", recs[0])
	}
	if recs[0].Err == "" {
		t.Fatal("load failure should carry a reason")
	}
	if recs[1].Status != model.StatusOK || recs[1].Instance != "B" {
		t.Fatalf("record 1: %+v", recs[1])
	}
	// solver must never run for the unloadable instance
	if len(calls) != 1 || calls[0] != "B/1" {
		t.Fatalf("solver calls: %v", calls)
	}
}

func TestRunSolverFailureContinuesSweep(t *testing.T) {
	specs := []model.InstanceSpec{
		{Name: "A", Path: "a.vrp", BudgetSec: 10},
		{Name: "B", Path: "b.vrp", BudgetSec: 10},
	}
	sink := store.NewMemory()
	r := newFakeRunner(specs, []int64{1, 2}, sink, nil, map[string]bool{"A": true}, nil)
	sum, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	recs := sink.Records()
	if len(recs) != 4 {
		t.Fatalf("got %d records, want 4", len(recs))
	}
	for _, rec := range recs[:2] {
		if rec.Status != model.StatusSolveFailed {
			t.Fatalf("expected solve failure for A: %+v", rec)
		}
	}
	for _, rec := range recs[2:] {
		if rec.Status != model.StatusOK {
			t.Fatalf("expected success for B: %+v", rec)
		}
	}
	if sum.Instances[0].Failed != 2 || sum.Instances[1].Failed != 0 {
		t.Fatalf("bad summary: %+v", sum.Instances)
	}
}

func TestRunInfeasibleResultIsFailure(t *testing.T) {
	specs := []model.InstanceSpec{{Name: "A", Path: "a.vrp", BudgetSec: 10}}
	sink := store.NewMemory()
	r := newFakeRunner(specs, []int64{1}, sink, nil, nil, nil)
	r.Build = func(in *vrplib.Instance) (Model, error) {
		res := okResult()
		res.Feasible = false
		return &fakeModel{res: res}, nil
	}
	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	recs := sink.Records()
	if len(recs) != 1 || recs[0].Status != model.StatusSolveFailed {
		t.Fatalf("bad records: %+v", recs)
	}
}

type failingSink struct {
	*store.Memory
	failAfter int
	appended  int
}

func (s *failingSink) Append(ctx context.Context, rec model.Record) error {
	s.appended++
	if s.appended > s.failAfter {
		return errors.New("disk full")
	}
	return s.Memory.Append(ctx, rec)
}

func TestRunSinkErrorAbortsSweep(t *testing.T) {
	specs := []model.InstanceSpec{
		{Name: "A", Path: "a.vrp", BudgetSec: 10},
		{Name: "B", Path: "b.vrp", BudgetSec: 10},
	}
	sink := &failingSink{Memory: store.NewMemory(), failAfter: 1}
	r := newFakeRunner(specs, []int64{1, 2}, sink, nil, nil, nil)
	r.Sink = sink
	if _, err := r.Run(context.Background()); err == nil {
		t.Fatal("expected error from failing sink")
	}
	if got := len(sink.Records()); got != 1 {
		t.Fatalf("got %d records after abort, want 1", got)
	}
}

func TestRunDeterministicEnumeration(t *testing.T) {
	specs := []model.InstanceSpec{
		{Name: "A", Path: "a.vrp", BudgetSec: 10},
		{Name: "B", Path: "b.vrp", BudgetSec: 10},
	}
	seeds := []int64{42, 12, 37}
	var first, second []string
	s1 := store.NewMemory()
	if _, err := newFakeRunner(specs, seeds, s1, nil, nil, &first).Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	s2 := store.NewMemory()
	if _, err := newFakeRunner(specs, seeds, s2, nil, nil, &second).Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("call counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("enumeration diverged at %d: %s vs %s", i, first[i], second[i])
		}
	}
}

func TestRunReportsGapAgainstBestKnown(t *testing.T) {
	sol := filepath.Join(t.TempDir(), "a.sol")
	if err := os.WriteFile(sol, []byte("Route #1: 2 3\nCost 100\n"), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	specs := []model.InstanceSpec{{Name: "A", Path: "a.vrp", BudgetSec: 10, BestKnown: sol}}
	sink := store.NewMemory()
	r := newFakeRunner(specs, []int64{1}, sink, nil, nil, nil)
	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	recs := sink.Records()
	if len(recs) != 1 || recs[0].GapPct == nil {
		t.Fatalf("expected gap on record: %+v", recs)
	}
	// objective 110 vs best-known 100
	if got := *recs[0].GapPct; got < 9.99 || got > 10.01 {
		t.Fatalf("gap = %v, want 10", got)
	}
}

func TestRunPublishesRecordEvents(t *testing.T) {
	specs := []model.InstanceSpec{{Name: "A", Path: "a.vrp", BudgetSec: 10}}
	sink := store.NewMemory()
	r := newFakeRunner(specs, []int64{1}, sink, nil, nil, nil)
	broker := status.NewBroker()
	r.Events = broker
	ch := broker.Subscribe(r.RunID)
	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	var types []string
	for {
		select {
		case evt := <-ch:
			types = append(types, evt.Type)
			if evt.Type == "run.finished" {
				if len(types) < 2 || types[0] != "run.record" {
					t.Fatalf("event order: %v", types)
				}
				return
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for events, saw %v", types)
		}
	}
}

func TestRunHonorsContextCancellation(t *testing.T) {
	specs := []model.InstanceSpec{{Name: "A", Path: "a.vrp", BudgetSec: 10}}
	sink := store.NewMemory()
	r := newFakeRunner(specs, []int64{1}, sink, nil, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if len(sink.Records()) != 0 {
		t.Fatal("no records expected after immediate cancellation")
	}
}
