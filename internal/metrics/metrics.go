package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the sweep runner
	Registry = prometheus.NewRegistry()
	// Runs counts finished benchmark runs by instance and status
	Runs = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "benchmark_runs_total", Help: "Benchmark runs by instance and status."},
		[]string{"instance", "status"},
	)
	// SolveDuration records wall-clock solve time per instance in seconds
	SolveDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "benchmark_solve_duration_seconds", Help: "Solver wall-clock time per run.", Buckets: []float64{1, 5, 15, 60, 120, 300, 600, 900}},
		[]string{"instance"},
	)
	// BestObjective tracks the best objective seen per instance this process
	BestObjective = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "benchmark_best_objective", Help: "Best objective found per instance."},
		[]string{"instance"},
	)
)

// RegisterDefault registers collectors to the runner's registry.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(Runs)
		Registry.MustRegister(SolveDuration)
		Registry.MustRegister(BestObjective)
		// Go/process collectors on our registry
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

var regOnce sync.Once
