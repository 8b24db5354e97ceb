// Package sim defines the contract between the evolution core and a soft-body
// simulation engine, plus a reference CPU engine.
package sim

import (
	"context"
	"errors"

	"oozebots/internal/model"
)

var (
	ErrEmptyHandle   = errors.New("handle has no simulation")
	ErrForeignHandle = errors.New("handle was not produced by this engine")
)

// Request is one simulation submission.
type Request struct {
	Points             []model.Point
	Springs            []model.Spring
	Presets            []model.FlexPreset
	Duration           float64
	GlobalTimeInterval float64
	Stream             int
	Length             float64
}

// Engine runs simulations asynchronously. Simulate must return without
// waiting for the run; Synchronize blocks until it is resolvable; Resolve
// publishes final positions into the handle. After Resolve an empty
// Points slice signals a failed run.
type Engine interface {
	Simulate(ctx context.Context, req Request) (*Handle, error)
	Synchronize(h *Handle) error
	Resolve(h *Handle) error
}

// Handle tracks one submitted simulation. Until Resolve, Points holds the
// submitted positions.
type Handle struct {
	Points   []model.Point
	Duration float64
	Length   float64

	job any
}

func NewHandle(points []model.Point, length float64, job any) *Handle {
	return &Handle{
		Points: points,
		Length: length,
		job:    job,
	}
}

// EmptyHandle stands in for a phenotype that was never submitted.
func EmptyHandle() *Handle {
	return &Handle{}
}

func (h *Handle) Empty() bool {
	return h == nil || h.job == nil
}

// Job returns the engine-specific state attached by NewHandle.
func (h *Handle) Job() any {
	if h == nil {
		return nil
	}
	return h.job
}
