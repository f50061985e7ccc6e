package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"vrpbench/internal/model"
)

// Config is the full run configuration. The zero config is not useful; use
// Default for the built-in sweep or Load for a YAML file.
type Config struct {
	InstanceDir string           `yaml:"instance_dir"`
	LogPath     string           `yaml:"log_path"`
	Rounding    string           `yaml:"rounding"`
	Seeds       []int64          `yaml:"seeds"`
	Instances   []InstanceConfig `yaml:"instances"`
	Solver      SolverConfig     `yaml:"solver"`

	// Optional extras; empty disables them.
	ListenAddr  string `yaml:"listen_addr"`
	DatabaseURL string `yaml:"database_url"`
	RedisURL    string `yaml:"redis_url"`
}

type InstanceConfig struct {
	Name          string `yaml:"name"`
	Path          string `yaml:"path"`
	BudgetSeconds int    `yaml:"budget_seconds"`
	BestKnown     string `yaml:"best_known"`
}

type SolverConfig struct {
	InitTemp        float64 `yaml:"init_temp"`
	Cooling         float64 `yaml:"cooling"`
	IterationsLimit int     `yaml:"iterations_limit"`
}

// Default is the compiled-in sweep: the ten X benchmark instances with their
// per-instance budgets and the shared seed list.
func Default() *Config {
	names := []string{
		"X-n186-k15",
		"X-n110-k13",
		"X-n153-k22",
		"X-n298-k31",
		"X-n129-k18",
		"X-n143-k7",
		"X-n367-k17",
		"X-n106-k14",
		"X-n162-k11",
		"X-n214-k11",
	}
	budgets := []int{385, 227, 316, 618, 266, 295, 761, 218, 335, 443}
	c := &Config{
		InstanceDir: "instances",
		LogPath:     "benchmark.log",
		Rounding:    "round",
		Seeds:       []int64{42, 12, 37, 1000, 402, 68, 153, 24, 87, 2},
	}
	for i, name := range names {
		c.Instances = append(c.Instances, InstanceConfig{
			Name:          name,
			Path:          name + ".vrp",
			BudgetSeconds: budgets[i],
		})
	}
	c.applyEnv()
	return c
}

// Load reads a YAML config file, then applies env overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	c.applyEnv()
	return &c, nil
}

func (c *Config) validate() error {
	if len(c.Instances) == 0 {
		return fmt.Errorf("no instances configured")
	}
	if len(c.Seeds) == 0 {
		return fmt.Errorf("no seeds configured")
	}
	for i, in := range c.Instances {
		if in.Path == "" {
			return fmt.Errorf("instance %d has no path", i)
		}
		if in.BudgetSeconds <= 0 {
			return fmt.Errorf("instance %q has non-positive budget", in.Name)
		}
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.RedisURL = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.ListenAddr = ":" + v
	}
}

// Specs resolves instance paths against InstanceDir and returns the ordered
// sweep table.
func (c *Config) Specs() []model.InstanceSpec {
	specs := make([]model.InstanceSpec, 0, len(c.Instances))
	for _, in := range c.Instances {
		name := in.Name
		if name == "" {
			name = strip(in.Path)
		}
		specs = append(specs, model.InstanceSpec{
			Name:      name,
			Path:      c.resolve(in.Path),
			BudgetSec: in.BudgetSeconds,
			BestKnown: c.resolve(in.BestKnown),
		})
	}
	return specs
}

func (c *Config) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || c.InstanceDir == "" {
		return path
	}
	return filepath.Join(c.InstanceDir, path)
}

func strip(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}
