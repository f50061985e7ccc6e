package solver

import (
	"errors"
	"fmt"
	"time"

	"vrpbench/internal/vrplib"
)

// Model is a solver-ready view of one instance: the distance matrix, demand
// vector and fleet size, plus search parameters.
type Model struct {
	inst *vrplib.Instance
	prob problem

	// Search parameters; zero values fall back to engine defaults.
	InitTemp        float64
	Cooling         float64
	IterationsLimit int

	// Progress, when set, receives an event each time the search finds a new
	// best solution. Called from the solve goroutine.
	Progress func(ProgressEvent)
}

// Instance returns the instance this model was built from.
func (m *Model) Instance() *vrplib.Instance { return m.inst }

// SetProgress installs (or clears) the improvement hook.
func (m *Model) SetProgress(fn func(ProgressEvent)) { m.Progress = fn }

// ProgressEvent reports an improvement found during the search.
type ProgressEvent struct {
	Iteration int
	Best      float64
	Elapsed   time.Duration
}

// Result is the outcome of one solve invocation.
type Result struct {
	Objective  float64
	Feasible   bool
	Routes     int
	Iterations int
	Runtime    time.Duration
	Metrics    Metrics
}

func (r Result) String() string {
	feas := "feasible"
	if !r.Feasible {
		feas = "infeasible"
	}
	return fmt.Sprintf("objective %.2f (%s), %d routes, %d iterations in %.1fs",
		r.Objective, feas, r.Routes, r.Iterations, r.Runtime.Seconds())
}

// BuildModel prepares a Model from a parsed instance. The fleet size is the
// bin-packing lower bound ceil(total demand / capacity).
func BuildModel(inst *vrplib.Instance) (*Model, error) {
	if inst == nil {
		return nil, errors.New("nil instance")
	}
	if inst.Customers() < 1 {
		return nil, fmt.Errorf("instance %s has no customers", inst.Name)
	}
	total := inst.TotalDemand()
	vehicles := (total + inst.Capacity - 1) / inst.Capacity
	if vehicles < 1 {
		vehicles = 1
	}
	maxEdge := 0.0
	for i := range inst.Dist {
		for j := range inst.Dist[i] {
			if inst.Dist[i][j] > maxEdge {
				maxEdge = inst.Dist[i][j]
			}
		}
	}
	return &Model{
		inst: inst,
		prob: problem{
			dist:     inst.Dist,
			demands:  inst.Demands,
			capacity: inst.Capacity,
			depot:    inst.Depot,
			vehicles: vehicles,
			// unassigned customers must always cost more than any detour
			penalty: 2 * maxEdge * float64(inst.Dimension),
		},
	}, nil
}

// Solve runs the search until the stop condition fires. A fixed seed with a
// MaxIterations stop reproduces the same result; every seed value, zero
// included, is used as given. display enables periodic progress output on
// stdout.
func (m *Model) Solve(stop StopCondition, seed int64, display bool) (Result, error) {
	if stop == nil {
		return Result{}, errors.New("nil stop condition")
	}
	p := m.prob
	p.initTemp = m.InitTemp
	p.cooling = m.Cooling
	p.iterationsLimit = m.IterationsLimit
	p.display = display
	p.progress = m.Progress

	start := time.Now()
	best, metrics := solve(p, seed, stop)
	runtime := time.Since(start)

	res := Result{
		Objective:  routesCost(p, best),
		Feasible:   feasible(p, best),
		Routes:     nonEmptyRoutes(best),
		Iterations: metrics.Iterations,
		Runtime:    runtime,
		Metrics:    metrics,
	}
	return res, nil
}
