package morphology

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"oozebots/internal/model"
)

// Compile turns an encoding into its phenotype. It is deterministic and
// keeps no state between calls. An encoding whose body walk claims no cell
// compiles to a phenotype without points.
func Compile(enc model.Encoding) model.Phenotype {
	presets := make([]model.FlexPreset, len(enc.Boxes))
	for i, box := range enc.Boxes {
		presets[i] = model.FlexPreset{A: box.A, B: box.B, C: box.C}
	}

	body := newClaimMap()
	minY, laid := walk(sequence(enc, enc.Body.LayAndMoveIdx), body, enc.Body.Radius, enc.Body.ThicknessIgnoreAxis, Cell{}, mirror{})
	if !laid {
		return model.Phenotype{Presets: presets}
	}

	extremities := newClaimMap()
	var scope mirror
	for _, cmd := range enc.Growth {
		switch g := cmd.(type) {
		case model.SymmetryScope:
			if i := axisIndex(g.Axis); i >= 0 {
				scope[i] = true
			}
		case model.LayBlockAndMoveCursor:
			var anchor model.Anchor
			if g.Anchor != nil {
				anchor = *g.Anchor
			}
			seq := sequence(enc, g.LayAndMoveIdx)
			for _, flip := range mirrors(scope) {
				start := anchorCell(body, anchor, flip)
				if y, ok := walk(seq, extremities, g.Radius, g.ThicknessIgnoreAxis, start, flip); ok {
					minY = min(minY, y)
				}
			}
			scope = mirror{}
		}
	}

	b := newBuilder()
	for _, m := range []*claimMap{body, extremities} {
		cells, blocks := m.ordered()
		for i, c := range cells {
			if blocks[i] < 0 || blocks[i] >= len(enc.Boxes) {
				continue
			}
			b.layCube(c, enc.Boxes[blocks[i]], blocks[i])
		}
	}

	shift := float64(minY) * model.LatticeScale
	for i := range b.points {
		b.points[i].Pos.Y -= shift
	}

	return model.Phenotype{
		Points:  b.points,
		Springs: b.springs,
		Presets: presets,
		Length:  extent(b.points),
	}
}

func sequence(enc model.Encoding, idx int) []model.LayAndMove {
	if idx < 0 || idx >= len(enc.Sequences) {
		return nil
	}
	return enc.Sequences[idx]
}

func axisIndex(a model.Axis) int {
	switch a {
	case model.AxisX:
		return 0
	case model.AxisY:
		return 1
	case model.AxisZ:
		return 2
	default:
		return -1
	}
}

// extent is the largest axis-aligned side of the bounding box of points.
func extent(points []model.Point) float64 {
	if len(points) == 0 {
		return 0
	}
	lo := points[0].Pos
	hi := points[0].Pos
	for _, p := range points[1:] {
		lo = r3.Vec{X: math.Min(lo.X, p.Pos.X), Y: math.Min(lo.Y, p.Pos.Y), Z: math.Min(lo.Z, p.Pos.Z)}
		hi = r3.Vec{X: math.Max(hi.X, p.Pos.X), Y: math.Max(hi.Y, p.Pos.Y), Z: math.Max(hi.Z, p.Pos.Z)}
	}
	size := r3.Sub(hi, lo)
	return math.Max(size.X, math.Max(size.Y, size.Z))
}
