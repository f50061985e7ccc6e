package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"vrpbench/internal/bench"
	"vrpbench/internal/buildinfo"
	"vrpbench/internal/config"
	"vrpbench/internal/metrics"
	"vrpbench/internal/solver"
	"vrpbench/internal/status"
	"vrpbench/internal/store"
	"vrpbench/internal/vrplib"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	round, err := vrplib.RoundPolicy(cfg.Rounding)
	if err != nil {
		log.Fatalf("bad config: %v", err)
	}

	sink, err := buildSink(cfg)
	if err != nil {
		log.Fatalf("failed to open sinks: %v", err)
	}

	// Broker selection
	var broker status.EventBroker
	if cfg.RedisURL != "" {
		if rb, err := status.NewRedisBroker(cfg.RedisURL); err == nil {
			broker = rb
		} else {
			log.Printf("redis broker unavailable, using in-memory: %v", err)
			broker = status.NewBroker()
		}
	} else {
		broker = status.NewBroker()
	}

	metrics.RegisterDefault()

	runner := bench.New(cfg.Specs(), cfg.Seeds, sink, round)
	runner.Events = broker
	if sc := cfg.Solver; sc != (config.SolverConfig{}) {
		runner.Build = func(in *vrplib.Instance) (bench.Model, error) {
			m, err := solver.BuildModel(in)
			if err != nil {
				return nil, err
			}
			m.InitTemp = sc.InitTemp
			m.Cooling = sc.Cooling
			m.IterationsLimit = sc.IterationsLimit
			return m, nil
		}
	}

	if cfg.ListenAddr != "" {
		srv := &http.Server{
			Addr:              cfg.ListenAddr,
			Handler:           status.NewServer(broker, runner.RunID, metrics.Registry).Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			log.Printf("status server listening on %s", cfg.ListenAddr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("status server error: %v", err)
			}
		}()
	}

	log.Printf("vrpbench %s: run %s, %d instances x %d seeds", buildinfo.Version, runner.RunID, len(runner.Specs), len(runner.Seeds))
	sum, runErr := runner.Run(context.Background())
	if cerr := sink.Close(); cerr != nil && runErr == nil {
		runErr = cerr
	}
	if runErr != nil {
		log.Fatalf("sweep failed: %v", runErr)
	}
	fmt.Print(bench.FormatSummary(sum))
}

func loadConfig() (*config.Config, error) {
	path := os.Getenv("VRPBENCH_CONFIG")
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func buildSink(cfg *config.Config) (store.Sink, error) {
	logPath := cfg.LogPath
	if logPath == "" {
		logPath = "benchmark.log"
	}
	fl, err := store.NewFileLog(logPath)
	if err != nil {
		return nil, err
	}
	if cfg.DatabaseURL == "" {
		return fl, nil
	}
	pg, err := store.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		_ = fl.Close()
		return nil, err
	}
	return store.NewMulti(fl, pg), nil
}
