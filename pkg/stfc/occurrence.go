package stfc

import (
	"fmt"
	"math"
	"time"
)

// Probability clamps applied before the logarithm in the occurrence model
const (
	minProbability       = 1e-7
	maxProbability       = 1 - 1e-7
	nonFiniteProbability = 1e-4
)

// clampProbability applies the occurrence model's clamp-and-continue policy
func clampProbability(p float64) float64 {
	switch {
	case math.IsNaN(p) || math.IsInf(p, 0):
		return nonFiniteProbability
	case p > maxProbability:
		return maxProbability
	case p < minProbability:
		return minProbability
	default:
		return p
	}
}

// Occurrence returns the Bernoulli negative log-likelihood of the occurrence model.
// params is the standalone layout of length kcen+5.
func (e *Evaluator) Occurrence(params []float64, data []Observation, centers []Center, kcen int, g float64) (float64, error) {
	start := time.Now()

	if err := validateInputs(params, data, centers, kcen, g, SubModelSize(kcen)); err != nil {
		return 0, fmt.Errorf("occurrence model: %w", err)
	}
	p, err := SliceSubModel(params, kcen)
	if err != nil {
		return 0, fmt.Errorf("occurrence model: %w", err)
	}

	d := newDesign(data, centers, g)
	rule := e.options.OccurrenceRule

	nllk := 0.0
	clamped := 0
	for i, obs := range data {
		odds := math.Exp(d.link(i, p))

		var prob float64
		if rule.isEvent(obs.Count) {
			prob = odds / (1 + odds)
		} else {
			prob = 1 / (1 + odds)
		}

		guarded := clampProbability(prob)
		if guarded != prob {
			clamped++
			e.logger.V(logTrace).Info("Clamped occurrence probability",
				"observation", i, "probability", prob, "clamped", guarded)
		}
		nllk -= math.Log(guarded)
	}

	if clamped > 0 {
		e.logger.V(logDebug).Info("Occurrence probabilities clamped",
			"clamped", clamped, "observations", len(data))
	}
	e.observe(ModelOccurrence, start, clamped)
	return nllk, nil
}
