package stfc

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// normalQuantile is Φ⁻¹ with its argument clamped into [0,1]. Accumulated
// CDF sums can overshoot 1 by an ulp, which distuv would reject.
func normalQuantile(p float64) float64 {
	if math.IsNaN(p) {
		return math.NaN()
	}
	return distuv.UnitNormal.Quantile(math.Max(0, math.Min(1, p)))
}

// GaussianCopulaDensity returns the bivariate Gaussian copula density c(u,v;rho).
// It is NaN for |rho| >= 1, where the density does not exist.
func GaussianCopulaDensity(u, v, rho float64) float64 {
	oneMinusR2 := 1 - rho*rho
	if math.IsNaN(rho) || !(oneMinusR2 > 0) {
		return math.NaN()
	}

	x := normalQuantile(u)
	y := normalQuantile(v)

	sumSq := x*x + y*y
	return math.Pow(oneMinusR2, -0.5) *
		math.Exp(-0.5/oneMinusR2*(sumSq-2*rho*x*y)) *
		math.Exp(sumSq/2)
}

// ConditionalCDF is the h-function C_{1|2}(u|v) of the bivariate Gaussian copula,
// Φ((Φ⁻¹(u) − rho·Φ⁻¹(v)) / sqrt(1−rho²)).
//
// At |rho| >= 1 the scale vanishes and the limit is returned instead: a step
// at x1 = rho·x2.
func ConditionalCDF(u, v, rho float64) float64 {
	if math.IsNaN(rho) {
		return math.NaN()
	}

	x1 := normalQuantile(u)
	x2 := normalQuantile(v)
	shifted := x1 - rho*x2

	sig := math.Sqrt(math.Max(0, 1-rho*rho))
	if sig == 0 {
		switch {
		case math.IsNaN(shifted):
			return math.NaN()
		case shifted >= 0:
			return 1
		default:
			return 0
		}
	}

	return distuv.UnitNormal.CDF(shifted / sig)
}
