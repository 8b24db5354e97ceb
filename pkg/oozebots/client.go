// Package oozebots runs soft-robot morphology evolution and reads back the
// recorded run history.
package oozebots

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"oozebots/internal/config"
	"oozebots/internal/logging"
	"oozebots/internal/platform"
	"oozebots/internal/sim"
	"oozebots/internal/storage"
)

type Options struct {
	// ConfigPath is a YAML file layered over the defaults. Ignored when
	// Config is set.
	ConfigPath string
	Config     *config.Config
	StoreKind  string
	DBPath     string
	Logger     *zap.Logger
}

type Client struct {
	cfg    config.Config
	store  storage.Store
	engine sim.Engine
	log    *zap.Logger

	initOnce sync.Once
	initErr  error
}

// RunRequest overrides the configured evolution settings for one run. Zero
// fields keep the configured value.
type RunRequest struct {
	GenerationSize      int
	Generations         int
	Seed                int64
	Workers             int
	MutationProbability float64
	SimDuration         float64
}

type RunSummary struct {
	RunID            string
	Seed             int64
	BestByGeneration []float64
	FinalBestFitness float64
	FrontSize        int
}

type RunsRequest struct {
	Limit int
}

type RunItem struct {
	RunID          string
	CreatedAtUTC   string
	Seed           int64
	GenerationSize int
	Generations    int
	BestFitness    float64
}

type DiagnosticsRequest struct {
	RunID  string
	Latest bool
	Limit  int
}

func New(opts Options) (*Client, error) {
	var cfg *config.Config
	switch {
	case opts.Config != nil:
		copied := *opts.Config
		cfg = &copied
	case opts.ConfigPath != "":
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	default:
		cfg = config.Default()
	}
	if opts.StoreKind != "" {
		cfg.Storage.Kind = opts.StoreKind
	}
	if opts.DBPath != "" {
		cfg.Storage.Path = opts.DBPath
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		built, err := logging.New(cfg.Logging)
		if err != nil {
			return nil, err
		}
		logger = built
	}
	engine, err := sim.NewCPUEngine(cfg.Simulation.CPUConfig)
	if err != nil {
		return nil, err
	}
	store, err := storage.NewStore(cfg.Storage.Kind, cfg.Storage.Path)
	if err != nil {
		return nil, err
	}

	return &Client{
		cfg:    *cfg,
		store:  store,
		engine: engine,
		log:    logger,
	}, nil
}

func (c *Client) Close() error {
	_ = c.log.Sync()
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	c.initOnce.Do(func() {
		c.initErr = c.store.Init(ctx)
	})
	return c.initErr
}

// Run evolves one population and returns its summary. If ctx ends
// mid-run, the completed generations are recorded and the summary is
// returned with the context error.
func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	if err := c.Init(ctx); err != nil {
		return RunSummary{}, err
	}
	settings := c.cfg
	if req.GenerationSize < 0 || req.Generations < 0 || req.Workers < 0 {
		return RunSummary{}, errors.New("generation size, generations and workers must be >= 0")
	}
	if req.GenerationSize > 0 {
		settings.Evolution.GenerationSize = req.GenerationSize
	}
	if req.Generations > 0 {
		settings.Evolution.Generations = req.Generations
	}
	if req.Seed != 0 {
		settings.Evolution.Seed = req.Seed
	}
	if req.Workers > 0 {
		settings.Evolution.Workers = req.Workers
	}
	if req.MutationProbability > 0 {
		settings.Evolution.MutationProbability = req.MutationProbability
	}
	if req.SimDuration > 0 {
		settings.Evolution.SimDuration = req.SimDuration
	}

	runner, err := platform.NewRunner(platform.Config{
		Settings: &settings,
		Engine:   c.engine,
		Store:    c.store,
		Logger:   c.log,
	})
	if err != nil {
		return RunSummary{}, err
	}
	result, err := runner.Run(ctx)
	if result.RunID == "" {
		return RunSummary{}, err
	}

	summary := RunSummary{
		RunID:            result.RunID,
		Seed:             result.Seed,
		BestByGeneration: result.BestByGeneration,
		FrontSize:        len(result.Front),
	}
	for _, best := range result.BestByGeneration {
		summary.FinalBestFitness = max(summary.FinalBestFitness, best)
	}
	return summary, err
}

// Runs lists recorded runs, newest first.
func (c *Client) Runs(ctx context.Context, req RunsRequest) ([]RunItem, error) {
	if req.Limit <= 0 {
		req.Limit = 20
	}
	if err := c.Init(ctx); err != nil {
		return nil, err
	}
	runs, err := c.store.ListRuns(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]RunItem, 0, min(len(runs), req.Limit))
	for i := len(runs) - 1; i >= 0 && len(out) < req.Limit; i-- {
		r := runs[i]
		out = append(out, RunItem{
			RunID:          r.RunID,
			CreatedAtUTC:   r.CreatedAtUTC,
			Seed:           r.Seed,
			GenerationSize: r.GenerationSize,
			Generations:    r.Generations,
			BestFitness:    r.BestFitness,
		})
	}
	return out, nil
}

func (c *Client) Diagnostics(ctx context.Context, req DiagnosticsRequest) ([]GenerationDiagnostics, error) {
	if req.RunID != "" && req.Latest {
		return nil, errors.New("use either run id or latest")
	}
	if req.Limit < 0 {
		return nil, errors.New("limit must be >= 0")
	}
	if err := c.Init(ctx); err != nil {
		return nil, err
	}

	runID := req.RunID
	if req.Latest {
		runs, err := c.Runs(ctx, RunsRequest{Limit: 1})
		if err != nil {
			return nil, err
		}
		if len(runs) == 0 {
			return nil, errors.New("no runs available")
		}
		runID = runs[0].RunID
	}
	if runID == "" {
		return nil, errors.New("diagnostics requires run id or latest")
	}

	diagnostics, ok, err := c.store.GetGenerationDiagnostics(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("diagnostics not found for run id: %s", runID)
	}
	if req.Limit > 0 && len(diagnostics) > req.Limit {
		diagnostics = diagnostics[:req.Limit]
	}
	out := make([]GenerationDiagnostics, len(diagnostics))
	copy(out, diagnostics)
	return out, nil
}
