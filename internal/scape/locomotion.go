// Package scape scores compiled robots in a simulated environment.
package scape

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"

	"oozebots/internal/model"
	"oozebots/internal/morphology"
	"oozebots/internal/sim"
)

const (
	// DefaultDuration is the simulated time, in seconds, of one evaluation.
	DefaultDuration = 6.0
	// MinNormalizingLength keeps very small robots from inflating lengthAdj.
	MinNormalizingLength = 1.5
)

// Locomotion scores an encoding by how far its compiled robot moves its
// center of mass across the ground plane.
type Locomotion struct {
	Engine   sim.Engine
	Duration float64
	Logger   *zap.Logger
}

func NewLocomotion(engine sim.Engine, duration float64, logger *zap.Logger) *Locomotion {
	if duration <= 0 {
		duration = DefaultDuration
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Locomotion{Engine: engine, Duration: duration, Logger: logger}
}

// Evaluate compiles enc and submits it to the engine for duration seconds
// (l.Duration when duration is not positive) on the given engine stream
// without waiting for the run. A phenotype without points never reaches
// the engine.
func (l *Locomotion) Evaluate(ctx context.Context, enc model.Encoding, duration float64, stream int) (*sim.Handle, error) {
	p := morphology.Compile(enc)
	if p.Empty() {
		return sim.EmptyHandle(), nil
	}
	if l.Engine == nil {
		return nil, fmt.Errorf("locomotion evaluation requires an engine")
	}
	if log := l.logger(); log.Core().Enabled(zap.DebugLevel) {
		s := morphology.Summarize(p)
		log.Debug("submitting phenotype",
			zap.Uint64("id", enc.ID),
			zap.Int("stream", stream),
			zap.Int("points", s.Points),
			zap.Int("springs", s.Springs),
			zap.Float64("mass", s.Mass),
			zap.Float64("length", s.Length),
		)
	}
	h, err := l.Engine.Simulate(ctx, sim.Request{
		Points:             p.Points,
		Springs:            p.Springs,
		Presets:            p.Presets,
		Duration:           l.duration(duration),
		GlobalTimeInterval: enc.GlobalTimeInterval,
		Stream:             stream,
		Length:             p.Length,
	})
	if err != nil {
		return nil, fmt.Errorf("simulate encoding %d: %w", enc.ID, err)
	}
	return h, nil
}

// Wait blocks until the run behind h completes and reduces it to
// (fitness, lengthAdj). Failed or non-finite runs score (0, 0).
func (l *Locomotion) Wait(h *sim.Handle) (float64, float64) {
	if h.Empty() {
		return 0, 0
	}
	log := l.logger()
	if err := l.Engine.Synchronize(h); err != nil {
		log.Warn("synchronize simulation", zap.Error(err))
		return 0, 0
	}
	// The centroid must be taken before Resolve replaces the points.
	before, ok := centroid(h.Points)
	if !ok {
		log.Warn("simulation submitted without mass")
		return 0, 0
	}
	if err := l.Engine.Resolve(h); err != nil {
		log.Warn("resolve simulation", zap.Error(err))
		return 0, 0
	}
	if len(h.Points) == 0 {
		log.Warn("simulation resolved without points")
		return 0, 0
	}
	if !finitePoints(h.Points) {
		log.Warn("simulation resolved to non-finite coordinates", zap.Int("points", len(h.Points)))
		return 0, 0
	}
	after, ok := centroid(h.Points)
	if !ok || h.Duration <= 0 {
		return 0, 0
	}

	moved := r3.Sub(after, before)
	fitness := math.Hypot(moved.X, moved.Z) / h.Duration
	return fitness, fitness / math.Max(MinNormalizingLength, h.Length)
}

// Score evaluates enc to completion and returns it with its objectives set.
func (l *Locomotion) Score(ctx context.Context, enc model.Encoding) (model.Encoding, error) {
	h, err := l.Evaluate(ctx, enc, l.Duration, 0)
	if err != nil {
		return enc, err
	}
	enc.Fitness, enc.LengthAdj = l.Wait(h)
	return enc, nil
}

func (l *Locomotion) duration(requested float64) float64 {
	switch {
	case requested > 0:
		return requested
	case l.Duration > 0:
		return l.Duration
	default:
		return DefaultDuration
	}
}

func (l *Locomotion) logger() *zap.Logger {
	if l.Logger == nil {
		return zap.NewNop()
	}
	return l.Logger
}

// centroid is the mass-weighted mean position of points.
func centroid(points []model.Point) (r3.Vec, bool) {
	var sum r3.Vec
	mass := 0.0
	for _, p := range points {
		sum = r3.Add(sum, r3.Scale(p.Mass, p.Pos))
		mass += p.Mass
	}
	if mass <= 0 {
		return r3.Vec{}, false
	}
	return r3.Scale(1/mass, sum), true
}

func finitePoints(points []model.Point) bool {
	for _, p := range points {
		for _, v := range []float64{p.Pos.X, p.Pos.Y, p.Pos.Z} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}
