package genotype

import (
	"math"
	"math/rand"

	"oozebots/internal/model"
)

const (
	unitA                 = 0.5
	unitAProbability      = 0.5
	stillBProbability     = 0.2
	repeatStepProbability = 0.6
	earlyStopProbability  = 0.02
	symmetryProbability   = 0.4
)

// Operators produces and varies encodings. Rand is not safe for concurrent
// use; give every goroutine its own Operators with its own Rand. IDs may be
// shared.
type Operators struct {
	Rand *rand.Rand
	IDs  *IDSource
}

func NewOperators(rng *rand.Rand, ids *IDSource) Operators {
	return Operators{Rand: rng, IDs: ids}
}

// RandomEncoding samples a fresh encoding with a new id.
func (o Operators) RandomEncoding() model.Encoding {
	var enc model.Encoding
	for i := range enc.Boxes {
		enc.Boxes[i] = o.randomBox()
	}
	SortBoxes(&enc)

	for i := range enc.Sequences {
		enc.Sequences[i] = o.randomSequence()
	}

	enc.Body = model.LayBlockAndMoveCursor{
		LayAndMoveIdx:       o.Rand.Intn(model.NumSequences),
		Radius:              o.Rand.Intn(model.MaxRadius + 1),
		ThicknessIgnoreAxis: o.randomThicknessAxis(),
	}

	for i := range enc.Growth {
		enc.Growth[i] = o.randomGrowth()
	}

	enc.GlobalTimeInterval = model.MinTimeInterval + o.Rand.Float64()*(model.MaxTimeInterval-model.MinTimeInterval)
	enc.ID = o.IDs.Next()
	return enc
}

func (o Operators) randomBox() model.BoxDeclaration {
	box := model.BoxDeclaration{
		KG: model.MinKG + o.Rand.Float64()*(model.MaxKG-model.MinKG),
		K:  model.MinK + o.Rand.Float64()*(model.MaxK-model.MinK),
		A:  1,
	}
	if o.Rand.Float64() >= unitAProbability {
		box.A = unitA + o.Rand.Float64()
	}
	if o.Rand.Float64() >= stillBProbability {
		box.B = o.Rand.Float64() * model.MaxB
	}
	box.C = o.Rand.Float64() * 2 * math.Pi
	return box
}

func (o Operators) randomSequence() []model.LayAndMove {
	seq := make([]model.LayAndMove, 0, model.MaxSequenceLength)
	for j := 0; j < model.MaxSequenceLength; j++ {
		step := o.randomStep()
		if j > 0 {
			prev := seq[j-1]
			if o.Rand.Float64() < repeatStepProbability {
				step.Direction = prev.Direction
			}
			if o.Rand.Float64() < repeatStepProbability {
				step.BlockIdx = prev.BlockIdx
			}
		}
		seq = append(seq, step)
		if o.Rand.Float64() < earlyStopProbability {
			break
		}
	}
	return seq
}

func (o Operators) randomStep() model.LayAndMove {
	return model.LayAndMove{
		Direction: o.randomDirection(),
		BlockIdx:  o.Rand.Intn(model.NumBoxes),
	}
}

func (o Operators) randomDirection() model.Direction {
	return model.Direction(o.Rand.Intn(int(model.Back) + 1))
}

func (o Operators) randomThicknessAxis() model.Axis {
	return model.Axis(o.Rand.Intn(int(model.AxisNone) + 1))
}

func (o Operators) randomScopeAxis() model.Axis {
	return model.Axis(o.Rand.Intn(int(model.AxisZ) + 1))
}

func (o Operators) randomGrowth() model.GrowthCommand {
	if o.Rand.Float64() < symmetryProbability {
		return model.SymmetryScope{Axis: o.randomScopeAxis()}
	}
	anchor := o.randomAnchor()
	return model.LayBlockAndMoveCursor{
		LayAndMoveIdx:       o.Rand.Intn(model.NumSequences),
		Radius:              o.Rand.Intn(model.MaxRadius + 1),
		ThicknessIgnoreAxis: o.randomThicknessAxis(),
		Anchor:              &anchor,
	}
}

// randomAnchor samples each component in [-MaxAnchor, MaxAnchor] until the
// vector is non-zero.
func (o Operators) randomAnchor() model.Anchor {
	for {
		a := model.Anchor{
			X: o.randomAnchorComponent(),
			Y: o.randomAnchorComponent(),
			Z: o.randomAnchorComponent(),
		}
		if !a.IsZero() {
			return a
		}
	}
}

func (o Operators) randomAnchorComponent() int {
	return o.Rand.Intn(2*model.MaxAnchor+1) - model.MaxAnchor
}
