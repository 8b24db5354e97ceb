package morphology

import "oozebots/internal/model"

// mirror flips movement along the x, y and z axes respectively.
type mirror [3]bool

// walk runs a lay-and-move sequence from start. At every step it claims all
// cells within radius (Manhattan distance, with the ignored axis collapsed)
// and then moves the cursor one cell. It returns the lowest y among cells it
// claimed and whether it claimed any.
func walk(seq []model.LayAndMove, m *claimMap, radius int, ignore model.Axis, start Cell, inv mirror) (int, bool) {
	minY := model.LatticeBound
	laid := false
	cur := start

	for _, step := range seq {
		lo := Cell{X: cur.X - radius, Y: cur.Y - radius, Z: cur.Z - radius}
		hi := Cell{X: cur.X + radius, Y: cur.Y + radius, Z: cur.Z + radius}
		switch ignore {
		case model.AxisX:
			lo.X, hi.X = cur.X, cur.X
		case model.AxisY:
			lo.Y, hi.Y = cur.Y, cur.Y
		case model.AxisZ:
			lo.Z, hi.Z = cur.Z, cur.Z
		}

		for x := lo.X; x <= hi.X; x++ {
			for y := lo.Y; y <= hi.Y; y++ {
				dist := absInt(x-cur.X) + absInt(y-cur.Y)
				if dist > radius {
					continue
				}
				for z := lo.Z; z <= hi.Z; z++ {
					total := dist + absInt(z-cur.Z)
					if total > radius {
						continue
					}
					if m.offer(Cell{X: x, Y: y, Z: z}, total, step.BlockIdx) {
						minY = min(minY, y)
						laid = true
					}
				}
			}
		}

		cur = move(cur, step.Direction, inv).clamped()
	}
	return minY, laid
}

func move(c Cell, d model.Direction, inv mirror) Cell {
	var axis, delta int
	switch d {
	case model.Up:
		axis, delta = 1, 1
	case model.Down:
		axis, delta = 1, -1
	case model.Left:
		axis, delta = 2, -1
	case model.Right:
		axis, delta = 2, 1
	case model.Forward:
		axis, delta = 0, 1
	case model.Back:
		axis, delta = 0, -1
	default:
		return c
	}
	if inv[axis] {
		delta = -delta
	}
	return c.step(axis, delta)
}

// anchorCell walks from the lattice origin along anchor, one axis at a time.
// Every visited cell must belong to body; otherwise the walk is abandoned
// and the origin is returned.
func anchorCell(body *claimMap, anchor model.Anchor, flip mirror) Cell {
	var pos Cell
	for axis, n := range [3]int{anchor.X, anchor.Y, anchor.Z} {
		sign := 1
		if n < 0 {
			n, sign = -n, -1
		}
		if flip[axis] {
			sign = -sign
		}
		for i := 0; i < n; i++ {
			pos = pos.step(axis, sign)
			if !body.has(pos) {
				return Cell{}
			}
		}
	}
	return pos
}

// mirrors enumerates every flip combination allowed by scope: one
// combination per subset of the scoped axes.
func mirrors(scope mirror) []mirror {
	out := []mirror{{}}
	for axis := 0; axis < 3; axis++ {
		if !scope[axis] {
			continue
		}
		n := len(out)
		for i := 0; i < n; i++ {
			flipped := out[i]
			flipped[axis] = true
			out = append(out, flipped)
		}
	}
	return out
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
