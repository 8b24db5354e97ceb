package genotype

import (
	"math"

	"oozebots/internal/model"
)

type MutationKind string

const (
	MutateBody          MutationKind = "body"
	MutateTimeInterval  MutationKind = "global_time_interval"
	MutateBox           MutationKind = "box"
	MutateSequenceStep  MutationKind = "sequence_step"
	MutateGrowthCommand MutationKind = "growth_command"
)

// Mutation records which gene a call to MutateWithRecord changed.
type Mutation struct {
	Kind  MutationKind
	Field string
	Index int
	Step  int
}

const (
	kStep  = 50.0
	aStep  = 0.1
	bStep  = 0.05
	cStep  = 0.1
	kgStep = 0.01
)

// Mutate returns a copy of enc with exactly one gene perturbed. The id and
// every array length are preserved.
func (o Operators) Mutate(enc model.Encoding) model.Encoding {
	out, _ := o.MutateWithRecord(enc)
	return out
}

func (o Operators) MutateWithRecord(enc model.Encoding) (model.Encoding, Mutation) {
	out := Clone(enc)
	r := o.Rand.Intn(100)
	switch {
	case r < 5:
		return out, o.mutateBody(&out)
	case r < 8:
		seed := o.Rand.Float64() - 0.5
		out.GlobalTimeInterval = clamp(out.GlobalTimeInterval+seed, model.MinTimeInterval, model.MaxTimeInterval)
		return out, Mutation{Kind: MutateTimeInterval, Field: "global_time_interval"}
	case r < 30:
		return out, o.mutateBox(&out)
	case r < 60:
		idx := o.Rand.Intn(model.NumSequences)
		seq := out.Sequences[idx]
		if len(seq) == 0 {
			return out, Mutation{Kind: MutateSequenceStep, Index: idx, Step: -1}
		}
		step := o.Rand.Intn(len(seq))
		seq[step] = o.randomStep()
		return out, Mutation{Kind: MutateSequenceStep, Field: "step", Index: idx, Step: step}
	default:
		return out, o.mutateGrowth(&out)
	}
}

func (o Operators) mutateBody(enc *model.Encoding) Mutation {
	m := Mutation{Kind: MutateBody}
	r := o.Rand.Intn(100)
	switch {
	case r < 10:
		enc.Body.LayAndMoveIdx = o.Rand.Intn(model.NumSequences)
		m.Field = "lay_and_move_idx"
	case r < 20:
		enc.Body.ThicknessIgnoreAxis = o.randomThicknessAxis()
		m.Field = "thickness_ignore_axis"
	default:
		enc.Body.Radius = clampInt(enc.Body.Radius+o.unitStep(), 0, model.MaxRadius)
		m.Field = "radius"
	}
	return m
}

func (o Operators) mutateBox(enc *model.Encoding) Mutation {
	idx := o.Rand.Intn(model.NumBoxes)
	seed := o.Rand.Float64() - 0.5
	box := &enc.Boxes[idx]
	m := Mutation{Kind: MutateBox, Index: idx}
	switch o.Rand.Intn(5) {
	case 0:
		box.K = clamp(box.K+seed*kStep, model.MinK, model.MaxK)
		m.Field = "k"
	case 1:
		box.A = clamp(box.A+seed*aStep, model.MinA, model.MaxA)
		m.Field = "a"
	case 2:
		box.B = clamp(box.B+seed*bStep, model.MinB, model.MaxB)
		m.Field = "b"
	case 3:
		box.C = clamp(box.C+seed*cStep, model.MinC, model.MaxC)
		m.Field = "c"
	default:
		box.KG = clamp(box.KG+seed*kgStep, model.MinKG, model.MaxKG)
		m.Field = "kg"
	}
	SortBoxes(enc)
	return m
}

func (o Operators) mutateGrowth(enc *model.Encoding) Mutation {
	idx := o.Rand.Intn(model.NumGrowthCommands)
	m := Mutation{Kind: MutateGrowthCommand, Index: idx}
	switch cmd := enc.Growth[idx].(type) {
	case model.SymmetryScope:
		cmd.Axis = o.randomScopeAxis()
		enc.Growth[idx] = cmd
		m.Field = "axis"
	case model.LayBlockAndMoveCursor:
		if cmd.Anchor == nil {
			cmd.Anchor = &model.Anchor{}
		}
		r := o.Rand.Intn(100)
		switch {
		case r < 20:
			cmd.LayAndMoveIdx = o.Rand.Intn(model.NumSequences)
			m.Field = "lay_and_move_idx"
		case r < 40:
			cmd.Radius = o.Rand.Intn(model.MaxRadius + 1)
			m.Field = "radius"
		case r < 70:
			cmd.ThicknessIgnoreAxis = o.randomThicknessAxis()
			m.Field = "thickness_ignore_axis"
		case r < 80:
			cmd.Anchor.X = clampInt(cmd.Anchor.X+o.unitStep(), -model.MaxAnchor, model.MaxAnchor)
			m.Field = "anchor"
		case r < 90:
			cmd.Anchor.Y = clampInt(cmd.Anchor.Y+o.unitStep(), -model.MaxAnchor, model.MaxAnchor)
			m.Field = "anchor"
		default:
			cmd.Anchor.Z = clampInt(cmd.Anchor.Z+o.unitStep(), -model.MaxAnchor, model.MaxAnchor)
			m.Field = "anchor"
		}
		if cmd.Anchor.IsZero() {
			*cmd.Anchor = o.randomAnchor()
		}
		enc.Growth[idx] = cmd
	}
	return m
}

func (o Operators) unitStep() int {
	if o.Rand.Intn(2) == 0 {
		return -1
	}
	return 1
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
