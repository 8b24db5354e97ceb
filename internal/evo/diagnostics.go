package evo

import (
	"gonum.org/v1/gonum/stat"

	"oozebots/internal/model"
)

// Diagnose summarizes one generation.
func Diagnose(generation int, population []model.Encoding, stats SortStats, children, invalid int) model.GenerationDiagnostics {
	d := model.GenerationDiagnostics{
		Generation:    generation,
		FrontSize:     stats.FrontSize,
		Children:      children,
		Invalid:       invalid,
		SortTruncated: stats.Truncated,
	}
	if len(population) == 0 {
		return d
	}
	fitness := make([]float64, len(population))
	d.BestFitness = population[0].Fitness
	d.BestLengthAdj = population[0].LengthAdj
	for i, enc := range population {
		fitness[i] = enc.Fitness
		d.BestFitness = max(d.BestFitness, enc.Fitness)
		d.BestLengthAdj = max(d.BestLengthAdj, enc.LengthAdj)
	}
	d.MeanFitness, d.FitnessStdDev = stat.MeanStdDev(fitness, nil)
	if len(population) == 1 {
		d.FitnessStdDev = 0
	}
	return d
}
