package platform

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"oozebots/internal/archive"
	"oozebots/internal/config"
	"oozebots/internal/evo"
	"oozebots/internal/genotype"
	"oozebots/internal/model"
	"oozebots/internal/scape"
	"oozebots/internal/sim"
	"oozebots/internal/storage"
)

// createdAtLayout is fixed width so stored timestamps sort as strings.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z"

type Config struct {
	Settings *config.Config
	Engine   sim.Engine
	Store    storage.Store
	Logger   *zap.Logger
	// Registry receives the selector metrics when metrics are enabled. Nil
	// uses a private registry.
	Registry prometheus.Registerer
	// Initial genomes seed the first generation ahead of random ones.
	Initial []model.Encoding
	Now     func() time.Time
}

type Result struct {
	RunID            string
	Seed             int64
	BestByGeneration []float64
	Diagnostics      []model.GenerationDiagnostics
	Final            []model.Encoding
	Front            []archive.Member
}

// Runner drives one evolution: it seeds and scores a population, then
// breeds it for the configured number of generations.
type Runner struct {
	settings config.Config
	engine   sim.Engine
	store    storage.Store
	log      *zap.Logger
	metrics  *evo.Metrics
	initial  []model.Encoding
	now      func() time.Time
}

func NewRunner(cfg Config) (*Runner, error) {
	if cfg.Settings == nil {
		return nil, fmt.Errorf("settings are required")
	}
	if cfg.Engine == nil {
		return nil, fmt.Errorf("simulation engine is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if err := cfg.Settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	if len(cfg.Initial) > cfg.Settings.Evolution.GenerationSize {
		return nil, fmt.Errorf("initial population mismatch: got=%d max=%d", len(cfg.Initial), cfg.Settings.Evolution.GenerationSize)
	}
	seen := make(map[uint64]bool, len(cfg.Initial))
	for i, enc := range cfg.Initial {
		if err := genotype.Validate(enc); err != nil {
			return nil, fmt.Errorf("initial genome %d: %w", i, err)
		}
		if seen[enc.ID] {
			return nil, fmt.Errorf("initial genome %d: duplicate id %d", i, enc.ID)
		}
		seen[enc.ID] = true
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	r := &Runner{
		settings: *cfg.Settings,
		engine:   cfg.Engine,
		store:    cfg.Store,
		log:      cfg.Logger,
		initial:  append([]model.Encoding(nil), cfg.Initial...),
		now:      cfg.Now,
	}
	if cfg.Settings.Metrics.Enabled {
		metrics, err := evo.NewMetrics(cfg.Registry)
		if err != nil {
			return nil, err
		}
		r.metrics = metrics
	}
	return r, nil
}

// Run executes the evolution and persists its diagnostics and run record.
// If ctx ends between generations the generations completed so far are
// still persisted and returned together with the context error.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	if err := r.store.Init(ctx); err != nil {
		return Result{}, fmt.Errorf("init store: %w", err)
	}

	settings := r.settings.Evolution
	seed := settings.Seed
	if seed == 0 {
		seed = r.now().UnixNano()
	}
	createdAt := r.now().UTC()
	runID := uuid.NewString()
	log := r.log.With(zap.String("run_id", runID), zap.Int64("seed", seed))

	rng := rand.New(rand.NewSource(seed))
	ids := genotype.NewIDSource(r.firstID())
	front := archive.NewParetoFront(r.settings.Archive.Nearest)
	loc := scape.NewLocomotion(r.engine, settings.SimDuration, log)

	selector, err := evo.NewParetoSelector(evo.SelectorConfig{
		GenerationSize:      settings.GenerationSize,
		EliteCount:          settings.EliteCount,
		MutationProbability: settings.MutationProbability,
		Workers:             settings.Workers,
		Archive:             front,
		Scorer:              loc,
		IDs:                 ids,
		Rand:                rng,
		Logger:              log,
		Metrics:             r.metrics,
	})
	if err != nil {
		return Result{}, err
	}

	population, err := r.seed(ctx, genotype.NewOperators(rng, ids), loc)
	if err != nil {
		return Result{}, err
	}
	invalid := 0
	for _, enc := range population {
		if enc.Fitness == 0 && enc.LengthAdj == 0 {
			invalid++
		}
		front.EvaluateEncoding(enc)
		selector.Insert(enc)
	}
	stats := selector.Sort()
	diagnostics := []model.GenerationDiagnostics{
		evo.Diagnose(0, selector.Generation(), stats, len(population), invalid),
	}
	logGeneration(log, diagnostics[0])

	var runErr error
	for gen := 1; gen <= settings.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		children, err := selector.SelectAndMate(ctx, settings.SimDuration)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				runErr = ctxErr
				break
			}
			return Result{}, fmt.Errorf("generation %d: %w", gen, err)
		}
		d := evo.Diagnose(gen, selector.Generation(), selector.LastSort(), children, selector.LastInvalid())
		diagnostics = append(diagnostics, d)
		logGeneration(log, d)
	}
	if runErr != nil {
		log.Warn("run interrupted", zap.Int("generations_completed", len(diagnostics)-1), zap.Error(runErr))
	}

	result := Result{
		RunID:            runID,
		Seed:             seed,
		BestByGeneration: make([]float64, len(diagnostics)),
		Diagnostics:      diagnostics,
		Final:            selector.Generation(),
		Front:            front.Members(),
	}
	for i, d := range diagnostics {
		result.BestByGeneration[i] = d.BestFitness
	}

	if err := r.persist(context.WithoutCancel(ctx), result, createdAt, log); err != nil {
		return result, err
	}
	return result, runErr
}

// seed fills the first generation with the initial genomes and random
// ones, scoring them concurrently. Genomes are generated on the calling
// goroutine so a seed reproduces the same population.
func (r *Runner) seed(ctx context.Context, ops genotype.Operators, loc *scape.Locomotion) ([]model.Encoding, error) {
	size := r.settings.Evolution.GenerationSize
	genomes := make([]model.Encoding, 0, size)
	for _, enc := range r.initial {
		genomes = append(genomes, genotype.Clone(enc))
	}
	for len(genomes) < size {
		genomes = append(genomes, ops.RandomEncoding())
	}

	p := pool.NewWithResults[model.Encoding]().
		WithContext(ctx).
		WithMaxGoroutines(r.settings.Evolution.Workers)
	for _, enc := range genomes {
		p.Go(func(ctx context.Context) (model.Encoding, error) {
			if err := ctx.Err(); err != nil {
				return enc, err
			}
			scored, err := loc.Score(ctx, enc)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return enc, ctxErr
				}
				r.log.Warn("seed evaluation failed", zap.Uint64("id", enc.ID), zap.Error(err))
				enc.Fitness, enc.LengthAdj = 0, 0
				return enc, nil
			}
			return scored, nil
		})
	}
	scored, err := p.Wait()
	if err != nil {
		return nil, fmt.Errorf("score seed population: %w", err)
	}
	sort.Slice(scored, func(i, j int) bool {
		return scored[i].ID < scored[j].ID
	})
	return scored, nil
}

func (r *Runner) persist(ctx context.Context, result Result, createdAt time.Time, log *zap.Logger) error {
	if err := r.store.SaveGenerationDiagnostics(ctx, result.RunID, result.Diagnostics); err != nil {
		log.Error("save generation diagnostics", zap.Error(err))
		return fmt.Errorf("save generation diagnostics: %w", err)
	}
	best := 0.0
	for _, v := range result.BestByGeneration {
		best = max(best, v)
	}
	run := model.RunRecord{
		RunID:          result.RunID,
		CreatedAtUTC:   createdAt.Format(createdAtLayout),
		GenerationSize: r.settings.Evolution.GenerationSize,
		Generations:    len(result.Diagnostics) - 1,
		Seed:           result.Seed,
		BestFitness:    best,
	}
	if err := r.store.SaveRun(ctx, run); err != nil {
		log.Error("save run", zap.Error(err))
		return fmt.Errorf("save run: %w", err)
	}
	return nil
}

// firstID is the id handed to the first generated genome: one past the
// largest initial id.
func (r *Runner) firstID() uint64 {
	next := uint64(1)
	for _, enc := range r.initial {
		next = max(next, enc.ID+1)
	}
	return next
}

func logGeneration(log *zap.Logger, d model.GenerationDiagnostics) {
	log.Info("generation complete",
		zap.Int("generation", d.Generation),
		zap.Float64("best_fitness", d.BestFitness),
		zap.Float64("mean_fitness", d.MeanFitness),
		zap.Int("front_size", d.FrontSize),
		zap.Int("children", d.Children),
		zap.Int("invalid", d.Invalid),
	)
}
