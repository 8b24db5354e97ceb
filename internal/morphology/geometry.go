package morphology

import (
	"gonum.org/v1/gonum/spatial/r3"

	"oozebots/internal/model"
)

// builder materializes unit cubes, sharing corner points and springs between
// neighboring cubes.
type builder struct {
	points  []model.Point
	springs []model.Spring
	corners map[Cell]int
	linked  map[[2]int]struct{}
}

func newBuilder() *builder {
	return &builder{
		corners: make(map[Cell]int),
		linked:  make(map[[2]int]struct{}),
	}
}

// layCube adds the eight corners of the cube whose minimum corner is c and a
// spring between every pair of them that is not yet connected.
func (b *builder) layCube(c Cell, box model.BoxDeclaration, preset int) {
	var idx [8]int
	n := 0
	for dx := 0; dx < 2; dx++ {
		for dy := 0; dy < 2; dy++ {
			for dz := 0; dz < 2; dz++ {
				idx[n] = b.corner(Cell{X: c.X + dx, Y: c.Y + dy, Z: c.Z + dz}, box.KG)
				n++
			}
		}
	}

	for i := 0; i < len(idx); i++ {
		for j := i + 1; j < len(idx); j++ {
			first, second := min(idx[i], idx[j]), max(idx[i], idx[j])
			key := [2]int{first, second}
			if _, ok := b.linked[key]; ok {
				continue
			}
			b.linked[key] = struct{}{}
			b.springs = append(b.springs, model.Spring{
				Stiffness:  box.K,
				RestLength: r3.Norm(r3.Sub(b.points[first].Pos, b.points[second].Pos)),
				A:          first,
				B:          second,
				Preset:     preset,
			})
			b.points[first].SpringCount++
			b.points[second].SpringCount++
		}
	}
}

func (b *builder) corner(c Cell, mass float64) int {
	if i, ok := b.corners[c]; ok {
		return i
	}
	i := len(b.points)
	b.corners[c] = i
	b.points = append(b.points, model.Point{
		Pos: r3.Vec{
			X: float64(c.X) * model.LatticeScale,
			Y: float64(c.Y) * model.LatticeScale,
			Z: float64(c.Z) * model.LatticeScale,
		},
		Mass: mass,
	})
	return i
}
