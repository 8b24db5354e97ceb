package sim

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"oozebots/internal/model"
)

// CPUConfig tunes the reference integrator.
type CPUConfig struct {
	TimeStep        float64 `yaml:"time_step"`
	Gravity         float64 `yaml:"gravity"`
	Damping         float64 `yaml:"damping"`
	GroundStiffness float64 `yaml:"ground_stiffness"`
	Friction        float64 `yaml:"friction"`
	// BreathUnit scales GlobalTimeInterval into the breathing period in
	// seconds.
	BreathUnit float64 `yaml:"breath_unit"`
}

func DefaultCPUConfig() CPUConfig {
	return CPUConfig{
		TimeStep:        0.0001,
		Gravity:         9.81,
		Damping:         0.9999,
		GroundStiffness: 10000,
		Friction:        0.8,
		BreathUnit:      0.1,
	}
}

func (c CPUConfig) Validate() error {
	if c.TimeStep <= 0 {
		return fmt.Errorf("time step must be > 0, got %f", c.TimeStep)
	}
	if c.Damping <= 0 || c.Damping > 1 {
		return fmt.Errorf("damping must be in (0, 1], got %f", c.Damping)
	}
	if c.GroundStiffness < 0 || c.Friction < 0 {
		return fmt.Errorf("ground stiffness and friction must be >= 0")
	}
	if c.BreathUnit <= 0 {
		return fmt.Errorf("breath unit must be > 0, got %f", c.BreathUnit)
	}
	return nil
}

// CPUEngine integrates each submitted robot on its own goroutine with
// semi-implicit Euler steps. Springs breathe around their rest length as
// L0*(a + b*sin(w*t + c)) using their preset.
type CPUEngine struct {
	cfg CPUConfig
}

func NewCPUEngine(cfg CPUConfig) (*CPUEngine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &CPUEngine{cfg: cfg}, nil
}

type cpuJob struct {
	done    chan struct{}
	points  []model.Point
	elapsed float64
	err     error
}

func (e *CPUEngine) Simulate(ctx context.Context, req Request) (*Handle, error) {
	if len(req.Points) == 0 {
		return EmptyHandle(), nil
	}
	if req.Duration < 0 {
		return nil, fmt.Errorf("negative duration %f", req.Duration)
	}
	if req.GlobalTimeInterval <= 0 {
		return nil, fmt.Errorf("global time interval must be > 0, got %f", req.GlobalTimeInterval)
	}
	for i, s := range req.Springs {
		if s.A < 0 || s.A >= len(req.Points) || s.B < 0 || s.B >= len(req.Points) {
			return nil, fmt.Errorf("spring %d references missing point", i)
		}
		if s.Preset < 0 || s.Preset >= len(req.Presets) {
			return nil, fmt.Errorf("spring %d references missing preset %d", i, s.Preset)
		}
	}

	submitted := append([]model.Point(nil), req.Points...)
	job := &cpuJob{done: make(chan struct{})}
	springs := append([]model.Spring(nil), req.Springs...)
	presets := append([]model.FlexPreset(nil), req.Presets...)
	start := append([]model.Point(nil), req.Points...)

	go func() {
		defer close(job.done)
		job.points, job.elapsed, job.err = e.run(ctx, start, springs, presets, req.Duration, req.GlobalTimeInterval)
	}()
	return NewHandle(submitted, req.Length, job), nil
}

func (e *CPUEngine) Synchronize(h *Handle) error {
	job, err := e.job(h)
	if err != nil {
		return err
	}
	<-job.done
	return nil
}

// Resolve publishes the final positions. An interrupted run resolves to no
// points; a diverged one keeps its non-finite coordinates.
func (e *CPUEngine) Resolve(h *Handle) error {
	job, err := e.job(h)
	if err != nil {
		return err
	}
	<-job.done
	h.Duration = job.elapsed
	if job.err != nil {
		h.Points = nil
		return nil
	}
	h.Points = job.points
	return nil
}

func (e *CPUEngine) job(h *Handle) (*cpuJob, error) {
	if h.Empty() {
		return nil, ErrEmptyHandle
	}
	job, ok := h.Job().(*cpuJob)
	if !ok {
		return nil, ErrForeignHandle
	}
	return job, nil
}

func (e *CPUEngine) run(ctx context.Context, points []model.Point, springs []model.Spring, presets []model.FlexPreset, duration, interval float64) ([]model.Point, float64, error) {
	dt := e.cfg.TimeStep
	omega := 2 * math.Pi / (interval * e.cfg.BreathUnit)
	velocity := make([]r3.Vec, len(points))
	force := make([]r3.Vec, len(points))
	gravity := r3.Vec{Y: -e.cfg.Gravity}

	t := 0.0
	for step := 0; t < duration; step++ {
		if step%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, t, err
			}
		}

		for i := range force {
			force[i] = r3.Scale(points[i].Mass, gravity)
		}

		for _, s := range springs {
			p := presets[s.Preset]
			rest := s.RestLength * (p.A + p.B*math.Sin(omega*t+p.C))
			d := r3.Sub(points[s.B].Pos, points[s.A].Pos)
			n := r3.Norm(d)
			if n == 0 {
				continue
			}
			f := r3.Scale(s.Stiffness*(n-rest)/n, d)
			force[s.A] = r3.Add(force[s.A], f)
			force[s.B] = r3.Sub(force[s.B], f)
		}

		for i := range points {
			pt := &points[i]
			if pt.Mass <= 0 {
				continue
			}
			normal := 0.0
			if pt.Pos.Y < 0 {
				normal = -pt.Pos.Y * e.cfg.GroundStiffness
				force[i].Y += normal
			}
			velocity[i] = r3.Scale(e.cfg.Damping, r3.Add(velocity[i], r3.Scale(dt/pt.Mass, force[i])))
			if normal > 0 {
				velocity[i] = e.slide(velocity[i], e.cfg.Friction*normal*dt/pt.Mass)
			}
			pt.Pos = r3.Add(pt.Pos, r3.Scale(dt, velocity[i]))
			if !finite(pt.Pos) {
				// Left in place; callers detect the non-finite state.
				return points, t, nil
			}
		}
		t += dt
	}
	return points, t, nil
}

// slide removes up to loss from the horizontal speed of v. Friction never
// reverses the direction of travel.
func (e *CPUEngine) slide(v r3.Vec, loss float64) r3.Vec {
	horizontal := r3.Vec{X: v.X, Z: v.Z}
	speed := r3.Norm(horizontal)
	if speed <= loss {
		return r3.Vec{Y: v.Y}
	}
	horizontal = r3.Scale((speed-loss)/speed, horizontal)
	return r3.Vec{X: horizontal.X, Y: v.Y, Z: horizontal.Z}
}

func finite(v r3.Vec) bool {
	return !math.IsNaN(v.X+v.Y+v.Z) && !math.IsInf(v.X+v.Y+v.Z, 0)
}
