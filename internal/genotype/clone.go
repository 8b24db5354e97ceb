package genotype

import (
	"sort"

	"oozebots/internal/model"
)

// Clone returns a deep copy of enc. Sequences and anchors are never shared
// between the result and the input.
func Clone(enc model.Encoding) model.Encoding {
	out := enc
	for i := range enc.Sequences {
		out.Sequences[i] = append([]model.LayAndMove(nil), enc.Sequences[i]...)
	}
	out.Body = cloneCursor(enc.Body)
	for i, cmd := range enc.Growth {
		out.Growth[i] = cloneGrowth(cmd)
	}
	return out
}

func cloneCursor(c model.LayBlockAndMoveCursor) model.LayBlockAndMoveCursor {
	if c.Anchor != nil {
		anchor := *c.Anchor
		c.Anchor = &anchor
	}
	return c
}

func cloneGrowth(cmd model.GrowthCommand) model.GrowthCommand {
	switch g := cmd.(type) {
	case model.LayBlockAndMoveCursor:
		return cloneCursor(g)
	case model.SymmetryScope:
		return g
	default:
		return cmd
	}
}

// SortBoxes orders box declarations by descending expansion amplitude b.
// Move-sequence block indices are positional and are not remapped.
func SortBoxes(enc *model.Encoding) {
	sort.SliceStable(enc.Boxes[:], func(i, j int) bool {
		return enc.Boxes[i].B > enc.Boxes[j].B
	})
}
