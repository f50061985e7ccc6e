package bench

import "fmt"

// LoadError means the instance file was missing or malformed. No model can
// be built, so every seed of that instance is recorded as a load failure and
// the sweep moves to the next instance.
type LoadError struct {
	Instance string
	Path     string
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load instance %s (%s): %v", e.Instance, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// SolveError means one (instance, seed) run failed: the solver returned an
// error or an infeasible solution. It is recorded and the sweep continues
// with the next seed.
type SolveError struct {
	Instance string
	Seed     int64
	Err      error
}

func (e *SolveError) Error() string {
	return fmt.Sprintf("solve %s seed %d: %v", e.Instance, e.Seed, e.Err)
}

func (e *SolveError) Unwrap() error { return e.Err }
