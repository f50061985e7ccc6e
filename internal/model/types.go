package model

import "time"

// Core domain types shared by the runner, sinks, and the status server.

// InstanceSpec binds one instance file to its wall-clock budget. Carrying
// the budget here (instead of a parallel runtime list) makes misalignment
// impossible to express.
type InstanceSpec struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	BudgetSec int    `json:"budgetSec"`
	BestKnown string `json:"bestKnown,omitempty"` // optional .sol file for gap reporting
}

type Status string

const (
	StatusOK          Status = "ok"
	StatusSolveFailed Status = "solve_failed"
	StatusLoadFailed  Status = "load_failed"
)

// Record is one benchmark outcome, success or failure. Exactly one record is
// produced per (instance, seed) attempt; records are append-only.
type Record struct {
	ID         string        `json:"id"`
	RunID      string        `json:"runId"`
	Instance   string        `json:"instance"`
	Seed       int64         `json:"seed"`
	BudgetSec  int           `json:"budgetSec"`
	Status     Status        `json:"status"`
	Objective  float64       `json:"objective,omitempty"`
	Feasible   bool          `json:"feasible"`
	Routes     int           `json:"routes,omitempty"`
	Iterations int           `json:"iterations,omitempty"`
	GapPct     *float64      `json:"gapPct,omitempty"`
	Elapsed    time.Duration `json:"elapsedNs"`
	At         time.Time     `json:"at"`
	Err        string        `json:"err,omitempty"`
}

// InstanceSummary aggregates all seed runs of one instance.
type InstanceSummary struct {
	Instance  string   `json:"instance"`
	BudgetSec int      `json:"budgetSec"`
	Runs      int      `json:"runs"`
	Failed    int      `json:"failed"`
	BestCost  float64  `json:"bestCost"`
	MeanCost  float64  `json:"meanCost"`
	BestGap   *float64 `json:"bestGap,omitempty"`
}

// Summary is the end-of-sweep roll-up returned by the runner.
type Summary struct {
	RunID     string            `json:"runId"`
	Started   time.Time         `json:"started"`
	Finished  time.Time         `json:"finished"`
	Instances []InstanceSummary `json:"instances"`
	Records   int               `json:"records"`
}
