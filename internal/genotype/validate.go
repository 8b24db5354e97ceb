package genotype

import (
	"errors"
	"fmt"

	"oozebots/internal/model"
)

var ErrInvalidEncoding = errors.New("invalid encoding")

// Validate reports the first structural problem in enc. Encodings produced
// by Operators always validate.
func Validate(enc model.Encoding) error {
	for i, box := range enc.Boxes {
		if err := validateBox(box); err != nil {
			return fmt.Errorf("%w: box %d: %v", ErrInvalidEncoding, i, err)
		}
		if i > 0 && enc.Boxes[i-1].B < box.B {
			return fmt.Errorf("%w: boxes not sorted by b at %d", ErrInvalidEncoding, i)
		}
	}
	for i, seq := range enc.Sequences {
		if len(seq) == 0 || len(seq) > model.MaxSequenceLength {
			return fmt.Errorf("%w: sequence %d has length %d", ErrInvalidEncoding, i, len(seq))
		}
		for j, step := range seq {
			if !step.Direction.Valid() {
				return fmt.Errorf("%w: sequence %d step %d has direction %d", ErrInvalidEncoding, i, j, step.Direction)
			}
			if step.BlockIdx < 0 || step.BlockIdx >= model.NumBoxes {
				return fmt.Errorf("%w: sequence %d step %d has block %d", ErrInvalidEncoding, i, j, step.BlockIdx)
			}
		}
	}
	if enc.Body.Anchor != nil {
		return fmt.Errorf("%w: body command is anchored", ErrInvalidEncoding)
	}
	if err := validateCursor(enc.Body); err != nil {
		return fmt.Errorf("%w: body: %v", ErrInvalidEncoding, err)
	}
	for i, cmd := range enc.Growth {
		switch g := cmd.(type) {
		case model.SymmetryScope:
			if g.Axis < model.AxisX || g.Axis > model.AxisZ {
				return fmt.Errorf("%w: growth %d has symmetry axis %s", ErrInvalidEncoding, i, g.Axis)
			}
		case model.LayBlockAndMoveCursor:
			if g.Anchor == nil || g.Anchor.IsZero() {
				return fmt.Errorf("%w: growth %d has no anchor", ErrInvalidEncoding, i)
			}
			if abs(g.Anchor.X) > model.MaxAnchor || abs(g.Anchor.Y) > model.MaxAnchor || abs(g.Anchor.Z) > model.MaxAnchor {
				return fmt.Errorf("%w: growth %d anchor out of range: %+v", ErrInvalidEncoding, i, *g.Anchor)
			}
			if err := validateCursor(g); err != nil {
				return fmt.Errorf("%w: growth %d: %v", ErrInvalidEncoding, i, err)
			}
		default:
			return fmt.Errorf("%w: growth %d is missing", ErrInvalidEncoding, i)
		}
	}
	if enc.GlobalTimeInterval < model.MinTimeInterval || enc.GlobalTimeInterval > model.MaxTimeInterval {
		return fmt.Errorf("%w: global time interval %f", ErrInvalidEncoding, enc.GlobalTimeInterval)
	}
	return nil
}

func validateBox(box model.BoxDeclaration) error {
	switch {
	case box.KG < model.MinKG || box.KG > model.MaxKG:
		return fmt.Errorf("kg %f out of range", box.KG)
	case box.K < model.MinK || box.K > model.MaxK:
		return fmt.Errorf("k %f out of range", box.K)
	case box.A < model.MinA || box.A > model.MaxA:
		return fmt.Errorf("a %f out of range", box.A)
	case box.B < model.MinB || box.B > model.MaxB:
		return fmt.Errorf("b %f out of range", box.B)
	case box.C < model.MinC || box.C > model.MaxC:
		return fmt.Errorf("c %f out of range", box.C)
	}
	return nil
}

func validateCursor(c model.LayBlockAndMoveCursor) error {
	if c.LayAndMoveIdx < 0 || c.LayAndMoveIdx >= model.NumSequences {
		return fmt.Errorf("lay and move index %d", c.LayAndMoveIdx)
	}
	if c.Radius < 0 || c.Radius > model.MaxRadius {
		return fmt.Errorf("radius %d", c.Radius)
	}
	if c.ThicknessIgnoreAxis < model.AxisX || c.ThicknessIgnoreAxis > model.AxisNone {
		return fmt.Errorf("thickness axis %d", c.ThicknessIgnoreAxis)
	}
	return nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
