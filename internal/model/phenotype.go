package model

import "gonum.org/v1/gonum/spatial/r3"

const (
	// LatticeScale is the edge length in meters of one lattice cell.
	LatticeScale = 0.1
	// LatticeBound clamps cursor coordinates to [-LatticeBound, LatticeBound].
	LatticeBound = 100
)

type Point struct {
	Pos         r3.Vec
	Mass        float64
	SpringCount int
}

type Spring struct {
	Stiffness  float64
	RestLength float64
	A          int
	B          int
	Preset     int
}

// FlexPreset holds the breathing parameters shared by springs of one box.
type FlexPreset struct {
	A float64
	B float64
	C float64
}

// Phenotype is the physical structure compiled from an Encoding.
type Phenotype struct {
	Points  []Point
	Springs []Spring
	Presets []FlexPreset
	Length  float64
}

func (p Phenotype) Empty() bool { return len(p.Points) == 0 }
