package genotype

import "oozebots/internal/model"

// Mate builds a child by three independent two-point crossovers over the box
// declarations, the move sequences and the growth commands. Genes inside the
// split window come from parent2, the rest from parent1. The body command and
// the global time interval are inherited from parent1.
func (o Operators) Mate(parent1, parent2 model.Encoding) model.Encoding {
	var child model.Encoding

	i, j := o.splitPoints(model.NumBoxes)
	for k := range child.Boxes {
		child.Boxes[k] = pick(parent1.Boxes[k], parent2.Boxes[k], k, i, j)
	}
	SortBoxes(&child)

	i, j = o.splitPoints(model.NumSequences)
	for k := range child.Sequences {
		seq := pick(parent1.Sequences[k], parent2.Sequences[k], k, i, j)
		child.Sequences[k] = append([]model.LayAndMove(nil), seq...)
	}

	child.Body = cloneCursor(parent1.Body)

	i, j = o.splitPoints(model.NumGrowthCommands)
	for k := range child.Growth {
		child.Growth[k] = cloneGrowth(pick(parent1.Growth[k], parent2.Growth[k], k, i, j))
	}

	child.GlobalTimeInterval = parent1.GlobalTimeInterval
	child.ID = o.IDs.Next()
	return child
}

// splitPoints draws two distinct indices in [0, size) and returns them
// ordered.
func (o Operators) splitPoints(size int) (int, int) {
	i := o.Rand.Intn(size)
	j := o.Rand.Intn(size)
	for j == i {
		j = o.Rand.Intn(size)
	}
	if i > j {
		i, j = j, i
	}
	return i, j
}

func pick[T any](outer, inner T, k, i, j int) T {
	if k < i || k > j {
		return outer
	}
	return inner
}
