package evo

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"go.uber.org/zap"

	"oozebots/internal/genotype"
	"oozebots/internal/model"
	"oozebots/internal/sim"
)

const (
	DefaultEliteCount = 5
	DefaultWorkers    = 35
)

var ErrPopulationTooSmall = errors.New("population too small to mate")

// Archive is the global novelty record. It is only ever called from the
// goroutine driving the selector.
type Archive interface {
	EvaluateEncoding(enc model.Encoding)
	NoveltyDegreeForEncoding(enc model.Encoding) float64
}

// Scorer submits an encoding for simulation and reduces the finished run
// to (fitness, lengthAdj). stream is the pipeline slot running the child.
type Scorer interface {
	Evaluate(ctx context.Context, enc model.Encoding, duration float64, stream int) (*sim.Handle, error)
	Wait(h *sim.Handle) (float64, float64)
}

type SelectorConfig struct {
	GenerationSize      int
	EliteCount          int // 0 means DefaultEliteCount
	MutationProbability float64
	Workers             int
	Archive             Archive
	Scorer              Scorer
	IDs                 *genotype.IDSource
	Rand                *rand.Rand
	Logger              *zap.Logger
	Metrics             *Metrics
}

// SortStats describes the outcome of the latest Sort.
type SortStats struct {
	Tiers     int
	FrontSize int
	// Truncated is set when a tier came up empty while entries remained.
	Truncated bool
	Remaining int
}

// ParetoSelector manages one population: tiered non-dominated sorting with
// novelty tie-breaks, elitism, rank-proportionate parent selection and the
// bounded child pipeline.
type ParetoSelector struct {
	cfg           SelectorConfig
	rng           *rand.Rand
	log           *zap.Logger
	generation    []entry
	idToIndex     map[uint64]int
	probabilities []float64
	lastSort      SortStats
	lastInvalid   int
}

func NewParetoSelector(cfg SelectorConfig) (*ParetoSelector, error) {
	if cfg.EliteCount == 0 {
		cfg.EliteCount = DefaultEliteCount
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.EliteCount < 0 {
		return nil, fmt.Errorf("elite count must be >= 0")
	}
	if cfg.GenerationSize < 2 || cfg.GenerationSize <= cfg.EliteCount {
		return nil, fmt.Errorf("generation size must exceed elite count %d and be >= 2, got %d", cfg.EliteCount, cfg.GenerationSize)
	}
	if cfg.MutationProbability < 0 || cfg.MutationProbability > 1 {
		return nil, fmt.Errorf("mutation probability must be in [0, 1], got %f", cfg.MutationProbability)
	}
	if cfg.Archive == nil {
		return nil, fmt.Errorf("archive is required")
	}
	if cfg.Scorer == nil {
		return nil, fmt.Errorf("scorer is required")
	}
	if cfg.IDs == nil {
		return nil, fmt.Errorf("id source is required")
	}
	if cfg.Rand == nil {
		return nil, fmt.Errorf("random source is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &ParetoSelector{
		cfg:           cfg,
		rng:           cfg.Rand,
		log:           cfg.Logger,
		idToIndex:     make(map[uint64]int),
		probabilities: RankProbabilities(cfg.GenerationSize),
	}, nil
}

// Insert adds enc to the population, recording domination against every
// current member. Only one direction is recorded per pair, so equal
// encodings never dominate each other in the bookkeeping.
func (s *ParetoSelector) Insert(enc model.Encoding) {
	e := entry{enc: enc}
	for i := range s.generation {
		other := &s.generation[i]
		if Dominates(enc, other.enc) {
			other.dominatedBy = append(other.dominatedBy, enc.ID)
			other.degree++
			e.dominating = append(e.dominating, other.enc.ID)
		} else if Dominates(other.enc, enc) {
			e.dominatedBy = append(e.dominatedBy, other.enc.ID)
			e.degree++
			other.dominating = append(other.dominating, enc.ID)
		}
	}
	s.idToIndex[enc.ID] = len(s.generation)
	s.generation = append(s.generation, e)
}

func (s *ParetoSelector) RemoveAll() {
	s.generation = nil
	s.idToIndex = make(map[uint64]int)
}

// Sort orders the population by non-dominated tier, each tier by
// descending novelty, and truncates it to the generation size.
func (s *ParetoSelector) Sort() SortStats {
	var (
		tiers [][]entry
		stats SortStats
	)
	left := len(s.generation)
	for left > 0 {
		var tier []entry
		for i := range s.generation {
			e := &s.generation[i]
			if e.degree != 0 {
				continue
			}
			e.degree = -1
			e.novelty = s.cfg.Archive.NoveltyDegreeForEncoding(e.enc)
			tier = append(tier, *e)
		}
		if len(tier) == 0 {
			stats.Truncated = true
			stats.Remaining = left
			s.log.Error("empty tier during sort", zap.Int("remaining", left), zap.Int("tiers", len(tiers)))
			break
		}
		sort.SliceStable(tier, func(i, j int) bool {
			return tier[i].novelty > tier[j].novelty
		})
		for _, e := range tier {
			for _, id := range e.dominating {
				if idx, ok := s.idToIndex[id]; ok && s.generation[idx].degree > 0 {
					s.generation[idx].degree--
				}
			}
		}
		tiers = append(tiers, tier)
		left -= len(tier)
	}

	next := make([]entry, 0, min(len(s.generation), s.cfg.GenerationSize))
	s.idToIndex = make(map[uint64]int, cap(next))
fill:
	for _, tier := range tiers {
		for _, e := range tier {
			if len(next) == s.cfg.GenerationSize {
				break fill
			}
			e.degree = len(e.dominatedBy)
			s.idToIndex[e.enc.ID] = len(next)
			next = append(next, e)
		}
	}
	s.generation = next

	stats.Tiers = len(tiers)
	if len(tiers) > 0 {
		stats.FrontSize = len(tiers[0])
	}
	s.lastSort = stats
	if s.cfg.Metrics != nil {
		s.cfg.Metrics.FrontSize.Set(float64(stats.FrontSize))
	}
	return stats
}

// SelectionIndex draws a population index from the rank distribution.
func (s *ParetoSelector) SelectionIndex() int {
	return s.selectFrom(len(s.probabilities))
}

// selectFrom draws from the first n slots of the rank distribution,
// renormalized to that prefix.
func (s *ParetoSelector) selectFrom(n int) int {
	n = min(n, len(s.probabilities))
	if n <= 1 {
		return 0
	}
	total := 0.0
	for _, p := range s.probabilities[:n] {
		total += p
	}
	r := s.rng.Float64() * total
	acc := 0.0
	for i, p := range s.probabilities[:n] {
		acc += p
		if acc >= r {
			return i
		}
	}
	return n - 1
}

// parents draws two distinct population indices.
func (s *ParetoSelector) parents() (int, int) {
	n := len(s.generation)
	k := s.selectFrom(n)
	l := s.selectFrom(n)
	for k == l {
		l = s.selectFrom(n)
	}
	return k, l
}

// Generation returns the population in its current order.
func (s *ParetoSelector) Generation() []model.Encoding {
	out := make([]model.Encoding, len(s.generation))
	for i, e := range s.generation {
		out[i] = e.enc
	}
	return out
}

func (s *ParetoSelector) IndexOf(id uint64) (int, bool) {
	idx, ok := s.idToIndex[id]
	return idx, ok
}

func (s *ParetoSelector) Probabilities() []float64 {
	return append([]float64(nil), s.probabilities...)
}

func (s *ParetoSelector) LastSort() SortStats {
	return s.lastSort
}

// LastInvalid is the number of invalid children in the latest completed
// SelectAndMate.
func (s *ParetoSelector) LastInvalid() int {
	return s.lastInvalid
}

func (s *ParetoSelector) Len() int {
	return len(s.generation)
}
