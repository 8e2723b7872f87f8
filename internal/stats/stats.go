package stats

import (
	mstats "github.com/montanaflynn/stats"
)

// zBand maps every input >= min to z. Bands are ordered from highest min to lowest.
type zBand struct {
	min float64
	z   float64
}

var confidenceBands = []zBand{
	{min: 99, z: 2.576},
	{min: 95, z: 1.96},
	{min: 90, z: 1.645},
}

const confidenceFallback = 1.28

var serviceLevelBands = []zBand{
	{min: 0.999, z: 3.09},
	{min: 0.99, z: 2.33},
	{min: 0.98, z: 2.05},
	{min: 0.95, z: 1.645},
	{min: 0.90, z: 1.28},
	{min: 0.85, z: 1.04},
	{min: 0.80, z: 0.84},
}

const serviceLevelFallback = 0.5

// Mean returns the arithmetic mean, 0 for an empty input.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m, err := mstats.Mean(values)
	if err != nil {
		return 0
	}
	return m
}

// StandardDeviation returns the population standard deviation (divide by N), 0 for an empty input.
func StandardDeviation(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sd, err := mstats.StandardDeviationPopulation(values)
	if err != nil {
		return 0
	}
	return sd
}

// ConfidenceZMultiplier maps a confidence percentage (e.g. 95) to the width of its interval.
func ConfidenceZMultiplier(confidenceLevelPercent float64) float64 {
	return lookup(confidenceBands, confidenceLevelPercent, confidenceFallback)
}

// ServiceLevelZScore maps a fractional service level (e.g. 0.95) to the safety-stock z-score.
// It is deliberately separate from ConfidenceZMultiplier: the domains and band resolution differ.
func ServiceLevelZScore(serviceLevel float64) float64 {
	return lookup(serviceLevelBands, serviceLevel, serviceLevelFallback)
}

func lookup(bands []zBand, v, fallback float64) float64 {
	for _, b := range bands {
		if v >= b.min {
			return b.z
		}
	}
	return fallback
}
