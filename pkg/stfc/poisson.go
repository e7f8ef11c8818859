package stfc

import "math"

// ShiftedPoissonPMF calculates P(X = x) for the Poisson distribution shifted to start at 1,
// exp(-lambda)·lambda^(x-1)/(x-1)!
func ShiftedPoissonPMF(x int, lambda float64) float64 {
	if math.IsNaN(lambda) || lambda < 0 {
		return math.NaN()
	}
	if x < 1 {
		return 0
	}
	if lambda == 0 {
		if x == 1 {
			return 1.0
		}
		return 0
	}

	// Use log space for numerical stability
	lgam, _ := math.Lgamma(float64(x))
	logProb := -lambda + float64(x-1)*math.Log(lambda) - lgam
	return math.Exp(logProb)
}

// ShiftedPoissonCDF calculates P(X <= x) for the shifted Poisson distribution.
// The terms are produced by a running recurrence in log space rather than by
// recomputing each factorial.
func ShiftedPoissonCDF(x int, lambda float64) float64 {
	if math.IsNaN(lambda) || lambda < 0 {
		return math.NaN()
	}
	if x < 1 {
		return 0
	}

	logLambda := math.Log(lambda)
	logTerm := -lambda
	total := 0.0
	for i := 1; i <= x; i++ {
		total += math.Exp(logTerm)
		logTerm += logLambda - math.Log(float64(i))
	}
	return total
}
