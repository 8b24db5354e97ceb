// Package config loads oozebots run configuration from YAML.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"oozebots/internal/sim"
)

// Config holds all run configuration.
type Config struct {
	Evolution  EvolutionConfig  `yaml:"evolution"`
	Simulation SimulationConfig `yaml:"simulation"`
	Archive    ArchiveConfig    `yaml:"archive"`
	Storage    StorageConfig    `yaml:"storage"`
	Logging    LoggingConfig    `yaml:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// EvolutionConfig configures the population and its breeding.
type EvolutionConfig struct {
	GenerationSize      int     `yaml:"generation_size"`
	Generations         int     `yaml:"generations"`
	EliteCount          int     `yaml:"elite_count"`
	MutationProbability float64 `yaml:"mutation_probability"`
	Workers             int     `yaml:"workers"`
	SimDuration         float64 `yaml:"sim_duration"` // seconds of simulated time per robot
	Seed                int64   `yaml:"seed"`         // 0 picks a seed at run start
}

// SimulationConfig selects and tunes the simulation engine.
type SimulationConfig struct {
	Engine        string `yaml:"engine"`
	sim.CPUConfig `yaml:",inline"`
}

type ArchiveConfig struct {
	Nearest int `yaml:"nearest"`
}

type StorageConfig struct {
	Kind string `yaml:"kind"` // memory, sqlite
	Path string `yaml:"path"`
}

type LoggingConfig struct {
	Level       string `yaml:"level"` // debug, info, warn, error
	Development bool   `yaml:"development"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Evolution: EvolutionConfig{
			GenerationSize:      100,
			Generations:         50,
			EliteCount:          5,
			MutationProbability: 0.5,
			Workers:             35,
			SimDuration:         6,
		},
		Simulation: SimulationConfig{
			Engine:    "cpu",
			CPUConfig: sim.DefaultCPUConfig(),
		},
		Archive: ArchiveConfig{Nearest: 5},
		Storage: StorageConfig{Kind: "memory", Path: "oozebots.db"},
		Logging: LoggingConfig{Level: "info"},
		Metrics: MetricsConfig{Enabled: true},
	}
}

// Load reads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides are applied either way.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := Default()
			if err := cfg.applyEnvOverrides(); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and applies environment overrides.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("OOZEBOTS_WORKERS"); v != "" {
		workers, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid OOZEBOTS_WORKERS %q: %w", v, err)
		}
		c.Evolution.Workers = workers
	}
	if v := os.Getenv("OOZEBOTS_STORE"); v != "" {
		c.Storage.Kind = v
	}
	if v := os.Getenv("OOZEBOTS_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	return nil
}

var (
	ValidEngines   = []string{"cpu"}
	ValidStores    = []string{"memory", "sqlite"}
	ValidLogLevels = []string{"debug", "info", "warn", "error"}
)

// Validate validates the configuration.
func (c *Config) Validate() error {
	e := c.Evolution
	// The selector reads an elite count of 0 as its default, so config
	// never passes 0 through.
	if e.EliteCount < 1 {
		return fmt.Errorf("elite count must be >= 1, got %d", e.EliteCount)
	}
	if e.GenerationSize < 2 || e.GenerationSize <= e.EliteCount {
		return fmt.Errorf("generation size must be >= 2 and exceed elite count %d, got %d", e.EliteCount, e.GenerationSize)
	}
	if e.Generations < 0 {
		return fmt.Errorf("generations must be >= 0, got %d", e.Generations)
	}
	if e.MutationProbability < 0 || e.MutationProbability > 1 {
		return fmt.Errorf("mutation probability must be in [0, 1], got %f", e.MutationProbability)
	}
	if e.Workers <= 0 {
		return fmt.Errorf("workers must be > 0, got %d", e.Workers)
	}
	if e.SimDuration <= 0 {
		return fmt.Errorf("sim duration must be > 0, got %f", e.SimDuration)
	}
	if !oneOf(c.Simulation.Engine, ValidEngines) {
		return fmt.Errorf("invalid simulation engine: %s (valid: %v)", c.Simulation.Engine, ValidEngines)
	}
	if err := c.Simulation.CPUConfig.Validate(); err != nil {
		return fmt.Errorf("simulation: %w", err)
	}
	if c.Archive.Nearest <= 0 {
		return fmt.Errorf("archive nearest must be > 0, got %d", c.Archive.Nearest)
	}
	if !oneOf(c.Storage.Kind, ValidStores) {
		return fmt.Errorf("invalid storage kind: %s (valid: %v)", c.Storage.Kind, ValidStores)
	}
	if c.Storage.Kind == "sqlite" && c.Storage.Path == "" {
		return fmt.Errorf("sqlite storage requires a path")
	}
	if !oneOf(c.Logging.Level, ValidLogLevels) {
		return fmt.Errorf("invalid log level: %s (valid: %v)", c.Logging.Level, ValidLogLevels)
	}
	return nil
}

func oneOf(v string, valid []string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	for _, candidate := range valid {
		if v == candidate {
			return true
		}
	}
	return false
}
