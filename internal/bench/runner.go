package bench

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"vrpbench/internal/metrics"
	"vrpbench/internal/model"
	"vrpbench/internal/solver"
	"vrpbench/internal/status"
	"vrpbench/internal/store"
	"vrpbench/internal/vrplib"
)

// Model is the solve surface the runner needs from a built model.
type Model interface {
	Solve(stop solver.StopCondition, seed int64, display bool) (solver.Result, error)
}

type progressModel interface {
	SetProgress(func(solver.ProgressEvent))
}

// Loader loads one instance file; Builder turns it into a solvable model.
// Both default to the real collaborators and are swappable in tests.
type (
	Loader  func(path string) (*vrplib.Instance, error)
	Builder func(*vrplib.Instance) (Model, error)
)

// Runner replays the solver across a matrix of instances and seeds,
// strictly sequentially, appending exactly one record per (instance, seed)
// attempt to the sink in execution order.
type Runner struct {
	Specs []model.InstanceSpec
	Seeds []int64
	Sink  store.Sink

	Load    Loader
	Build   Builder
	Display bool

	RunID   string
	Events  status.EventBroker // optional live progress
	Limiter *rate.Limiter      // caps solver improvement events
}

// New wires a runner to the real loader and solver.
func New(specs []model.InstanceSpec, seeds []int64, sink store.Sink, round vrplib.RoundFunc) *Runner {
	return &Runner{
		Specs: specs,
		Seeds: seeds,
		Sink:  sink,
		Load: func(path string) (*vrplib.Instance, error) {
			return vrplib.Read(path, round)
		},
		Build: func(in *vrplib.Instance) (Model, error) {
			m, err := solver.BuildModel(in)
			if err != nil {
				return nil, err
			}
			return m, nil
		},
		RunID:   uuid.New().String(),
		Limiter: rate.NewLimiter(rate.Limit(4), 1),
	}
}

// Run executes the sweep. Per-seed solver failures and per-instance load
// failures are recorded and skipped over; a sink write error aborts the run,
// since losing records defeats its purpose.
func (r *Runner) Run(ctx context.Context) (model.Summary, error) {
	sum := model.Summary{RunID: r.RunID, Started: time.Now()}
	for _, spec := range r.Specs {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		banner := fmt.Sprintf("--------------------------INSTANCE: %s using runtime %ds------------------------------", spec.Name, spec.BudgetSec)
		log.Printf("%s", banner)
		if err := r.Sink.Banner(ctx, banner); err != nil {
			return sum, fmt.Errorf("log sink: %w", err)
		}

		mdl, bks, loadErr := r.prepare(spec)
		if loadErr != nil {
			log.Printf("%v", loadErr)
		}

		is := model.InstanceSummary{Instance: spec.Name, BudgetSec: spec.BudgetSec}
		okRuns := 0
		costSum := 0.0
		for _, seed := range r.Seeds {
			rec := r.runOne(spec, seed, mdl, bks, loadErr)
			log.Printf("%s", store.FormatRecord(rec))
			if err := r.Sink.Append(ctx, rec); err != nil {
				return sum, fmt.Errorf("log sink: %w", err)
			}
			r.observe(rec)
			sum.Records++
			is.Runs++
			if rec.Status == model.StatusOK {
				okRuns++
				costSum += rec.Objective
				if okRuns == 1 || rec.Objective < is.BestCost {
					is.BestCost = rec.Objective
					metrics.BestObjective.WithLabelValues(rec.Instance).Set(is.BestCost)
				}
				if rec.GapPct != nil && (is.BestGap == nil || *rec.GapPct < *is.BestGap) {
					g := *rec.GapPct
					is.BestGap = &g
				}
			} else {
				is.Failed++
			}
		}
		if okRuns > 0 {
			is.MeanCost = costSum / float64(okRuns)
		}
		sum.Instances = append(sum.Instances, is)
	}
	sum.Finished = time.Now()
	r.publish("run.finished", map[string]any{"runId": r.RunID, "records": sum.Records})
	return sum, nil
}

// prepare loads the instance and builds its model once per instance. A
// best-known solution that fails to load only disables gap reporting.
func (r *Runner) prepare(spec model.InstanceSpec) (Model, *vrplib.Solution, error) {
	in, err := r.Load(spec.Path)
	if err != nil {
		return nil, nil, &LoadError{Instance: spec.Name, Path: spec.Path, Err: err}
	}
	mdl, err := r.Build(in)
	if err != nil {
		return nil, nil, &LoadError{Instance: spec.Name, Path: spec.Path, Err: err}
	}
	var bks *vrplib.Solution
	if spec.BestKnown != "" {
		bks, err = vrplib.ReadSolution(spec.BestKnown)
		if err != nil {
			log.Printf("best-known solution for %s unavailable: %v", spec.Name, err)
			bks = nil
		}
	}
	return mdl, bks, nil
}

func (r *Runner) runOne(spec model.InstanceSpec, seed int64, mdl Model, bks *vrplib.Solution, loadErr error) model.Record {
	rec := model.Record{
		ID:        uuid.New().String(),
		RunID:     r.RunID,
		Instance:  spec.Name,
		Seed:      seed,
		BudgetSec: spec.BudgetSec,
		At:        time.Now(),
	}
	if loadErr != nil {
		rec.Status = model.StatusLoadFailed
		rec.Err = loadErr.Error()
		return rec
	}

	if pm, ok := mdl.(progressModel); ok {
		if r.Events != nil {
			instance, runSeed := spec.Name, seed
			pm.SetProgress(func(ev solver.ProgressEvent) {
				if r.Limiter != nil && !r.Limiter.Allow() {
					return
				}
				r.publish("solver.progress", map[string]any{
					"instance":  instance,
					"seed":      runSeed,
					"iteration": ev.Iteration,
					"best":      ev.Best,
				})
			})
		} else {
			pm.SetProgress(nil)
		}
	}

	start := time.Now()
	res, err := mdl.Solve(solver.MaxRuntime(time.Duration(spec.BudgetSec)*time.Second), seed, r.Display)
	rec.Elapsed = time.Since(start)
	rec.At = time.Now()
	if err == nil && !res.Feasible {
		err = errors.New("solver returned infeasible solution")
	}
	rec.Objective = res.Objective
	rec.Feasible = res.Feasible
	rec.Routes = res.Routes
	rec.Iterations = res.Iterations
	if err != nil {
		serr := &SolveError{Instance: spec.Name, Seed: seed, Err: err}
		rec.Status = model.StatusSolveFailed
		rec.Err = serr.Error()
		return rec
	}
	rec.Status = model.StatusOK
	if bks != nil && bks.Cost > 0 {
		gap := (res.Objective - bks.Cost) / bks.Cost * 100
		rec.GapPct = &gap
	}
	return rec
}

func (r *Runner) observe(rec model.Record) {
	metrics.Runs.WithLabelValues(rec.Instance, string(rec.Status)).Inc()
	if rec.Status == model.StatusOK {
		metrics.SolveDuration.WithLabelValues(rec.Instance).Observe(rec.Elapsed.Seconds())
	}
	r.publish("run.record", map[string]any{
		"instance":  rec.Instance,
		"seed":      rec.Seed,
		"status":    string(rec.Status),
		"objective": rec.Objective,
	})
}

func (r *Runner) publish(typ string, data map[string]any) {
	if r.Events == nil {
		return
	}
	r.Events.Publish(r.RunID, status.Event{Type: typ, Data: data})
}
