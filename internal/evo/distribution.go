package evo

import "gonum.org/v1/gonum/floats"

// RankProbabilities returns a linear rank distribution over n slots: slot i
// gets weight n-i, so the head of the sorted population is picked most.
func RankProbabilities(n int) []float64 {
	if n <= 0 {
		return nil
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(n - i)
	}
	floats.Scale(1/floats.Sum(out), out)
	return out
}
