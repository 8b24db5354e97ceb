// Package morphology compiles oozebot encodings into lattices of point
// masses and springs.
package morphology

import "oozebots/internal/model"

// Summary describes a compiled phenotype for logs and diagnostics.
type Summary struct {
	Points  int
	Springs int
	Mass    float64
	Length  float64
}

func Summarize(p model.Phenotype) Summary {
	s := Summary{
		Points:  len(p.Points),
		Springs: len(p.Springs),
		Length:  p.Length,
	}
	for _, pt := range p.Points {
		s.Mass += pt.Mass
	}
	return s
}
