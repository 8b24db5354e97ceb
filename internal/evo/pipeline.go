package evo

import (
	"context"
	"fmt"
	"math/rand"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"oozebots/internal/genotype"
	"oozebots/internal/model"
)

// job is everything a worker needs to produce one child. Parents are deep
// copies so workers never share memory with the population.
type job struct {
	mom, dad model.Encoding
	mutate   bool
	seed     int64
	duration float64
	stream   int
}

type child struct {
	enc       model.Encoding
	mutation  *genotype.Mutation
	fitness   float64
	lengthAdj float64
	err       error
}

// SelectAndMate sorts the population, keeps the elites and replaces the
// rest with children bred and simulated for duration seconds on a bounded
// set of worker slots. It returns the number of children produced.
// Children reach the archive in the order they are consumed, once the
// whole generation is bred. If ctx ends, submission stops, in-flight
// children are awaited and discarded, the archive is not touched and the
// population keeps its members in sorted order.
func (s *ParetoSelector) SelectAndMate(ctx context.Context, duration float64) (int, error) {
	if len(s.generation) < max(2, s.cfg.EliteCount) {
		return 0, fmt.Errorf("%w: %d members, need %d", ErrPopulationTooSmall, len(s.generation), max(2, s.cfg.EliteCount))
	}
	s.Sort()
	if len(s.generation) < max(2, s.cfg.EliteCount) {
		return 0, fmt.Errorf("%w: %d members after sort", ErrPopulationTooSmall, len(s.generation))
	}

	next := make([]model.Encoding, 0, s.cfg.GenerationSize)
	for _, e := range s.generation[:s.cfg.EliteCount] {
		next = append(next, e.enc)
	}
	needed := s.cfg.GenerationSize - s.cfg.EliteCount

	width := min(s.cfg.Workers, needed)
	slots := make([]chan child, width)
	for i := range slots {
		slots[i] = make(chan child, 1)
	}
	g, gctx := errgroup.WithContext(ctx)

	submit := func(slot int) {
		j := s.nextJob(duration, slot)
		out := slots[slot]
		g.Go(func() error {
			out <- s.breed(gctx, j)
			return nil
		})
	}

	submitted := 0
	for i := 0; i < width; i++ {
		submit(i)
		submitted++
	}

	invalid := 0
	slot := 0
	for consumed := 0; consumed < submitted; consumed++ {
		c := <-slots[slot]
		if c.err != nil || (c.fitness == 0 && c.lengthAdj == 0) {
			invalid++
		}
		if c.err != nil {
			s.log.Warn("child evaluation failed", zap.Uint64("id", c.enc.ID), zap.Error(c.err))
		}
		if c.mutation != nil {
			s.log.Debug("child mutated",
				zap.Uint64("id", c.enc.ID),
				zap.String("kind", string(c.mutation.Kind)),
				zap.String("field", c.mutation.Field),
			)
		}
		c.enc.Fitness, c.enc.LengthAdj = c.fitness, c.lengthAdj
		next = append(next, c.enc)
		if s.cfg.Metrics != nil {
			s.cfg.Metrics.ChildrenEvaluated.Inc()
		}

		if submitted < needed && ctx.Err() == nil {
			submit(slot)
			submitted++
		}
		slot = (slot + 1) % width
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	if s.cfg.Metrics != nil {
		s.cfg.Metrics.ChildrenInvalid.Add(float64(invalid))
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	for _, enc := range next[s.cfg.EliteCount:] {
		s.cfg.Archive.EvaluateEncoding(enc)
	}
	s.lastInvalid = invalid
	s.RemoveAll()
	best := next[0].Fitness
	for _, enc := range next {
		s.Insert(enc)
		best = max(best, enc.Fitness)
	}
	if s.cfg.Metrics != nil {
		s.cfg.Metrics.BestFitness.Set(best)
	}
	s.log.Debug("generation mated",
		zap.Int("children", needed),
		zap.Int("invalid", invalid),
		zap.Float64("best_fitness", best),
	)
	return needed, nil
}

// nextJob draws parents and the mutation decision on the calling goroutine.
func (s *ParetoSelector) nextJob(duration float64, stream int) job {
	k, l := s.parents()
	return job{
		mom:      genotype.Clone(s.generation[k].enc),
		dad:      genotype.Clone(s.generation[l].enc),
		mutate:   s.rng.Float64() < s.cfg.MutationProbability,
		seed:     s.rng.Int63(),
		duration: duration,
		stream:   stream,
	}
}

// breed runs on a worker: mate, maybe mutate, then simulate to completion.
func (s *ParetoSelector) breed(ctx context.Context, j job) child {
	ops := genotype.NewOperators(rand.New(rand.NewSource(j.seed)), s.cfg.IDs)
	enc := ops.Mate(j.mom, j.dad)
	var c child
	if j.mutate {
		var m genotype.Mutation
		enc, m = ops.MutateWithRecord(enc)
		c.mutation = &m
	}
	c.enc = enc

	h, err := s.cfg.Scorer.Evaluate(ctx, enc, j.duration, j.stream)
	if err != nil {
		c.err = err
		return c
	}
	c.fitness, c.lengthAdj = s.cfg.Scorer.Wait(h)
	return c
}
