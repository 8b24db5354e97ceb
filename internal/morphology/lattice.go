package morphology

import (
	"sort"

	"oozebots/internal/model"
)

// Cell is a lattice coordinate at LatticeScale resolution. It is only used
// as a map key while compiling.
type Cell struct {
	X, Y, Z int
}

func (c Cell) step(axis, delta int) Cell {
	switch axis {
	case 0:
		c.X += delta
	case 1:
		c.Y += delta
	default:
		c.Z += delta
	}
	return c
}

func (c Cell) clamped() Cell {
	return Cell{
		X: clampLattice(c.X),
		Y: clampLattice(c.Y),
		Z: clampLattice(c.Z),
	}
}

func clampLattice(v int) int {
	return max(-model.LatticeBound, min(v, model.LatticeBound))
}

type claim struct {
	dist  int
	block int
}

// claimMap is a sparse lattice: cells index into a flat arena of claims.
type claimMap struct {
	index  map[Cell]int
	cells  []Cell
	claims []claim
}

func newClaimMap() *claimMap {
	return &claimMap{index: make(map[Cell]int)}
}

func (m *claimMap) Len() int { return len(m.cells) }

func (m *claimMap) has(c Cell) bool {
	_, ok := m.index[c]
	return ok
}

// offer claims c for block at dist unless a strictly closer claim exists.
// It reports whether the claim was taken.
func (m *claimMap) offer(c Cell, dist, block int) bool {
	if i, ok := m.index[c]; ok {
		if m.claims[i].dist <= dist {
			return false
		}
		m.claims[i] = claim{dist: dist, block: block}
		return true
	}
	m.index[c] = len(m.cells)
	m.cells = append(m.cells, c)
	m.claims = append(m.claims, claim{dist: dist, block: block})
	return true
}

// ordered returns the claimed cells sorted by (x, y, z) with their winning
// block indices.
func (m *claimMap) ordered() ([]Cell, []int) {
	order := make([]int, len(m.cells))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		ca, cb := m.cells[order[a]], m.cells[order[b]]
		if ca.X != cb.X {
			return ca.X < cb.X
		}
		if ca.Y != cb.Y {
			return ca.Y < cb.Y
		}
		return ca.Z < cb.Z
	})
	cells := make([]Cell, len(order))
	blocks := make([]int, len(order))
	for i, idx := range order {
		cells[i] = m.cells[idx]
		blocks[i] = m.claims[idx].block
	}
	return cells, blocks
}
