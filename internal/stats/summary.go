package stats

import (
	"gonum.org/v1/gonum/stat"
)

// Summary is a population fitness snapshot for one generation.
type Summary struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

// Summarize computes the fitness statistics of one generation's raw
// fitness values.
func Summarize(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}
	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	mean := stat.Mean(values, nil)
	std := 0.0
	if len(values) > 1 {
		std = stat.StdDev(values, nil)
	}
	return Summary{Mean: mean, Std: std, Min: min, Max: max}
}
