// Package archive keeps the global record of non-dominated encodings and
// scores how novel a candidate is relative to it.
package archive

import (
	"math"
	"sort"

	"oozebots/internal/model"
)

const DefaultNearest = 5

// Member is one archived objective point.
type Member struct {
	ID        uint64
	Fitness   float64
	LengthAdj float64
}

func (m Member) dominates(o Member) bool {
	return m.Fitness >= o.Fitness && m.LengthAdj >= o.LengthAdj &&
		(m.Fitness > o.Fitness || m.LengthAdj > o.LengthAdj)
}

// ParetoFront is the set of strictly non-dominated (fitness, lengthAdj)
// points seen so far. It is not safe for concurrent use.
type ParetoFront struct {
	nearest int
	members []Member
}

func NewParetoFront(nearest int) *ParetoFront {
	if nearest <= 0 {
		nearest = DefaultNearest
	}
	return &ParetoFront{nearest: nearest}
}

// EvaluateEncoding registers enc as a candidate. It joins the front unless
// an existing member dominates it or shares its objectives, and evicts the
// members it dominates.
func (f *ParetoFront) EvaluateEncoding(enc model.Encoding) {
	candidate := Member{ID: enc.ID, Fitness: enc.Fitness, LengthAdj: enc.LengthAdj}
	if math.IsNaN(candidate.Fitness) || math.IsNaN(candidate.LengthAdj) {
		return
	}
	for _, m := range f.members {
		if m.dominates(candidate) || (m.Fitness == candidate.Fitness && m.LengthAdj == candidate.LengthAdj) {
			return
		}
	}
	kept := f.members[:0]
	for _, m := range f.members {
		if !candidate.dominates(m) {
			kept = append(kept, m)
		}
	}
	f.members = append(kept, candidate)
}

// NoveltyDegreeForEncoding is the mean objective-space distance from enc to
// its nearest archived members. Higher is more novel; an empty archive
// scores 1.
func (f *ParetoFront) NoveltyDegreeForEncoding(enc model.Encoding) float64 {
	if len(f.members) == 0 {
		return 1
	}
	distances := make([]float64, 0, len(f.members))
	for _, m := range f.members {
		if m.ID == enc.ID {
			continue
		}
		distances = append(distances, math.Hypot(m.Fitness-enc.Fitness, m.LengthAdj-enc.LengthAdj))
	}
	if len(distances) == 0 {
		return 1
	}
	sort.Float64s(distances)
	k := min(f.nearest, len(distances))
	sum := 0.0
	for _, d := range distances[:k] {
		sum += d
	}
	return sum / float64(k)
}

func (f *ParetoFront) Len() int {
	return len(f.members)
}

// Members returns the front ordered by descending fitness.
func (f *ParetoFront) Members() []Member {
	out := append([]Member(nil), f.members...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Fitness != out[j].Fitness {
			return out[i].Fitness > out[j].Fitness
		}
		return out[i].ID < out[j].ID
	})
	return out
}
