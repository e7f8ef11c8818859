package stfc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/stat/distuv"
)

func TestShiftedPoissonPMF_MatchesPoissonShiftedByOne(t *testing.T) {
	for _, lambda := range []float64{0.2, 1, 3.5, 12} {
		po := distuv.Poisson{Lambda: lambda}
		for x := 1; x <= 15; x++ {
			assert.InDelta(t, po.Prob(float64(x-1)), ShiftedPoissonPMF(x, lambda), 1e-12,
				"x=%d lambda=%v", x, lambda)
		}
	}
}

func TestShiftedPoissonCDF_SumOfPMF(t *testing.T) {
	cases := []struct {
		x      int
		lambda float64
	}{
		{1, 0.5},
		{2, 1.0},
		{5, 2.5},
		{10, 7.3},
		{30, 15},
		{60, 40},
	}
	for _, tc := range cases {
		sum := 0.0
		for x := 1; x <= tc.x; x++ {
			sum += ShiftedPoissonPMF(x, tc.lambda)
		}
		assert.InDelta(t, sum, ShiftedPoissonCDF(tc.x, tc.lambda), 1e-12, "x=%d lambda=%v", tc.x, tc.lambda)
	}
}

func TestShiftedPoissonCDF_MonotoneAndConvergesToOne(t *testing.T) {
	for _, lambda := range []float64{0.1, 2, 9} {
		prev := 0.0
		for x := 1; x <= 80; x++ {
			cdf := ShiftedPoissonCDF(x, lambda)
			assert.GreaterOrEqual(t, cdf, prev, "x=%d lambda=%v", x, lambda)
			prev = cdf
		}
		assert.InDelta(t, 1.0, prev, 1e-12, "lambda=%v", lambda)
	}
}

func TestShiftedPoisson_EdgeCases(t *testing.T) {
	// support starts at 1
	assert.Equal(t, 0.0, ShiftedPoissonPMF(0, 2))
	assert.Equal(t, 0.0, ShiftedPoissonCDF(0, 2))
	assert.Equal(t, 0.0, ShiftedPoissonCDF(-4, 2))

	// first term is exp(-lambda)
	assert.InDelta(t, math.Exp(-2), ShiftedPoissonCDF(1, 2), 1e-15)

	// lambda = 0 is a point mass at 1
	assert.Equal(t, 1.0, ShiftedPoissonPMF(1, 0))
	assert.Equal(t, 0.0, ShiftedPoissonPMF(3, 0))
	assert.Equal(t, 1.0, ShiftedPoissonCDF(1, 0))
	assert.Equal(t, 1.0, ShiftedPoissonCDF(6, 0))

	assert.True(t, math.IsNaN(ShiftedPoissonPMF(2, -1)))
	assert.True(t, math.IsNaN(ShiftedPoissonCDF(2, math.NaN())))
}
