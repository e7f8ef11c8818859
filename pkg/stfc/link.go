package stfc

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Period is the number of time steps per seasonal cycle (monthly data)
const Period = 12

// Omega is the angular frequency of the seasonal trend, 2π/Period
const Omega = 2 * math.Pi / Period

// design holds the per-call quantities shared by every sub-model link:
// the observations and the kernel matrix exp(-g·dist²) (observations × centers).
type design struct {
	obs    []Observation
	kernel *mat.Dense
	kcen   int
}

// newDesign precomputes the kernel values for every observation/center pair once
func newDesign(data []Observation, centers []Center, g float64) *design {
	d := &design{obs: data, kcen: len(centers)}
	if len(data) == 0 || len(centers) == 0 {
		return d
	}

	d.kernel = mat.NewDense(len(data), len(centers), nil)
	for i, obs := range data {
		for j, c := range centers {
			dLon := obs.Longitude - c.Longitude
			dLat := obs.Latitude - c.Latitude
			d.kernel.Set(i, j, math.Exp(-g*(dLon*dLon+dLat*dLat)))
		}
	}
	return d
}

// field is the radial-basis spatial smoother: intercept + Σ_j w_j·exp(-g·dist²_ij)
func (d *design) field(i int, p SubModelParams) float64 {
	sum := p.Intercept
	if d.kernel == nil {
		return sum
	}
	row := d.kernel.RawRowView(i)
	for j, w := range p.Weights {
		sum += w * row[j]
	}
	return sum
}

// at evaluates the harmonic seasonal trend at time t
func (t Trend) at(time float64) float64 {
	return t.C0 + t.C1*time + t.C2*math.Sin(Omega*time) + t.C3*math.Cos(Omega*time)
}

// link is the full linear predictor of a sub-model: spatial field plus trend
func (d *design) link(i int, p SubModelParams) float64 {
	return d.field(i, p) + p.Trend.at(d.obs[i].Time)
}

// Link computes the linear predictor of one sub-model for every observation.
// It is exposed for callers that map fitted surfaces.
func Link(p SubModelParams, data []Observation, centers []Center, g float64) ([]float64, error) {
	if len(p.Weights) != len(centers) {
		return nil, ValidationError{
			Field:   "weights",
			Message: "weight count does not match center count",
		}
	}
	if !(g > 0) || math.IsInf(g, 0) {
		return nil, ValidationError{Field: "g", Message: "bandwidth must be positive and finite"}
	}

	d := newDesign(data, centers, g)
	out := make([]float64, len(data))
	for i := range data {
		out[i] = d.link(i, p)
	}
	return out, nil
}
