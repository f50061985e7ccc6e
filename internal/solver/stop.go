package solver

import (
	"fmt"
	"time"
)

// StopCondition decides when a solve loop terminates.
type StopCondition interface {
	Done(iterations int, elapsed time.Duration) bool
	String() string
}

type maxRuntime time.Duration

// MaxRuntime stops the search once the wall-clock budget is spent.
func MaxRuntime(d time.Duration) StopCondition { return maxRuntime(d) }

func (m maxRuntime) Done(_ int, elapsed time.Duration) bool {
	return elapsed >= time.Duration(m)
}

func (m maxRuntime) String() string { return fmt.Sprintf("MaxRuntime(%s)", time.Duration(m)) }

type maxIterations int

// MaxIterations stops the search after a fixed iteration count, independent
// of elapsed time. Useful for deterministic runs.
func MaxIterations(n int) StopCondition { return maxIterations(n) }

func (m maxIterations) Done(iterations int, _ time.Duration) bool {
	return iterations >= int(m)
}

func (m maxIterations) String() string { return fmt.Sprintf("MaxIterations(%d)", int(m)) }
