package stfc

import (
	"fmt"
	"math"
	"time"
)

// Intensity returns the shifted-Poisson negative log-likelihood of the intensity model.
// params is the standalone layout of length kcen+5. No finiteness guard is applied:
// a count of 0 has no shifted-Poisson mass and makes the result +Inf.
func (e *Evaluator) Intensity(params []float64, data []Observation, centers []Center, kcen int, g float64) (float64, error) {
	start := time.Now()

	if err := validateInputs(params, data, centers, kcen, g, SubModelSize(kcen)); err != nil {
		return 0, fmt.Errorf("intensity model: %w", err)
	}
	p, err := SliceSubModel(params, kcen)
	if err != nil {
		return 0, fmt.Errorf("intensity model: %w", err)
	}

	d := newDesign(data, centers, g)

	nllk := 0.0
	for i, obs := range data {
		logLambda := d.link(i, p)
		lambda := math.Exp(logLambda)

		// log((count-1)!) = logΓ(count)
		logFact, _ := math.Lgamma(float64(obs.Count))
		nllk -= -lambda + float64(obs.Count-1)*logLambda - logFact
	}

	if math.IsInf(nllk, 0) || math.IsNaN(nllk) {
		e.logger.V(logDebug).Info("Intensity likelihood is not finite", "nllk", nllk)
	}
	e.observe(ModelIntensity, start, 0)
	return nllk, nil
}
