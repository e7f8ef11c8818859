package stfc

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
)

// JointResult contains the integrated likelihood and its per-node breakdown
type JointResult struct {
	Value             float64        `json:"value"`               // Σ_k exp(logintg_k)·w_k
	LogLikelihood     float64        `json:"log_likelihood"`      // log(Value) computed by log-sum-exp
	NodeLogIntegrands []float64      `json:"node_log_integrands"` // logintg_k per quadrature node
	Rule              QuadratureRule `json:"rule"`
	SkippedTerms      int            `json:"skipped_terms"` // Non-finite site terms dropped across all nodes
	Observations      int            `json:"observations"`
}

// siteTerm holds the node-independent pieces of one observation's contribution
type siteTerm struct {
	logOccurrence float64 // log P(no event) or log P(event)
	event         bool
	upper, lower  float64 // shifted-Poisson CDF at count+1 and count
	rho           float64 // copula correlation from the dependence field
}

// siteTerms computes every quantity of the joint integrand that does not
// depend on the latent factor, once per observation
func siteTerms(d *design, p JointParams) []siteTerm {
	terms := make([]siteTerm, len(d.obs))
	for i, obs := range d.obs {
		odds := math.Exp(d.link(i, p.Occurrence))

		if obs.Count == 0 {
			terms[i] = siteTerm{logOccurrence: -math.Log1p(odds)}
			continue
		}

		lambda := math.Exp(d.link(i, p.Intensity))
		terms[i] = siteTerm{
			logOccurrence: math.Log(odds / (1 + odds)),
			event:         true,
			upper:         ShiftedPoissonCDF(obs.Count+1, lambda),
			lower:         ShiftedPoissonCDF(obs.Count, lambda),
			// tanh(f) = (e^{2f}-1)/(e^{2f}+1), bounded in [-1,1]
			rho: math.Tanh(d.field(i, p.Dependence)),
		}
	}
	return terms
}

// at returns the observation's log integrand at latent factor value v
func (s siteTerm) at(v float64) float64 {
	if !s.event {
		return s.logOccurrence
	}
	mass := ConditionalCDF(s.upper, v, s.rho) - ConditionalCDF(s.lower, v, s.rho)
	return s.logOccurrence + math.Log(mass)
}

// Joint returns the integrated likelihood of the joint model, Σ_k exp(Σ_i logintg_i(x_k))·w_k.
// This is the likelihood itself, not its negative log.
func (e *Evaluator) Joint(params []float64, data []Observation, centers []Center, kcen int, g float64, nq int) (float64, error) {
	result, err := e.JointDetail(params, data, centers, kcen, g, nq)
	if err != nil {
		return 0, err
	}
	return result.Value, nil
}

// JointDetail evaluates the joint model and reports the per-node integrands.
// Non-finite per-observation terms are dropped from their node's sum.
func (e *Evaluator) JointDetail(params []float64, data []Observation, centers []Center, kcen int, g float64, nq int) (*JointResult, error) {
	start := time.Now()

	if err := validateInputs(params, data, centers, kcen, g, JointSize(kcen)); err != nil {
		return nil, fmt.Errorf("joint model: %w", err)
	}
	if err := validateOrder(nq); err != nil {
		return nil, fmt.Errorf("joint model: %w", err)
	}
	p, err := SliceJoint(params, kcen)
	if err != nil {
		return nil, fmt.Errorf("joint model: %w", err)
	}

	rule, err := e.quadrature(nq)
	if err != nil {
		return nil, fmt.Errorf("joint model: %w", err)
	}

	d := newDesign(data, centers, g)
	terms := siteTerms(d, p)

	nodeLogs := make([]float64, nq)
	weighted := make([]float64, nq)
	intg := 0.0
	skipped := 0
	for k, v := range rule.Nodes {
		logK := 0.0
		for i, term := range terms {
			logI := term.at(v)
			if math.IsNaN(logI) || math.IsInf(logI, 0) {
				skipped++
				e.logger.V(logTrace).Info("Skipping non-finite site term",
					"node", k, "observation", i, "logIntegrand", logI)
				continue
			}
			logK += logI
		}
		nodeLogs[k] = logK
		weighted[k] = logK + math.Log(rule.Weights[k])
		intg += math.Exp(logK) * rule.Weights[k]
	}

	if skipped > 0 {
		e.logger.V(logDebug).Info("Dropped non-finite site terms from joint likelihood",
			"skipped", skipped, "observations", len(data), "nodes", nq)
	}
	e.observe(ModelJoint, start, skipped)

	return &JointResult{
		Value:             intg,
		LogLikelihood:     floats.LogSumExp(weighted),
		NodeLogIntegrands: nodeLogs,
		Rule:              rule,
		SkippedTerms:      skipped,
		Observations:      len(data),
	}, nil
}
