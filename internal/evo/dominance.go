package evo

import "oozebots/internal/model"

// Dominates reports whether a is at least as good as b on both objectives.
// The comparison is non-strict, so encodings with equal objectives dominate
// each other.
func Dominates(a, b model.Encoding) bool {
	return a.Fitness >= b.Fitness && a.LengthAdj >= b.LengthAdj
}

// entry is a population member with its domination bookkeeping.
type entry struct {
	enc model.Encoding
	// dominating lists the ids this entry dominates.
	dominating []uint64
	// dominatedBy lists the ids dominating this entry.
	dominatedBy []uint64
	// degree counts unfinalized dominators; -1 once placed in a tier.
	degree  int
	novelty float64
}
