package stfc

import (
	"time"

	"github.com/go-logr/logr"
)

// Verbosity levels used with logr's V(); they line up with internal/logging.
const (
	logDebug = 1
	logTrace = 2
)

// Evaluator computes the three likelihood objectives. It holds no per-call
// state, so one Evaluator may be shared across goroutines.
type Evaluator struct {
	options Options
	logger  logr.Logger
	cache   *quadratureCache
}

// NewEvaluator creates an Evaluator, filling unset options with defaults
func NewEvaluator(options Options) *Evaluator {
	if options.Workers < 1 {
		options.Workers = 1
	}

	logger := options.Logger
	if logger.GetSink() == nil {
		logger = logr.Discard()
	}

	e := &Evaluator{
		options: options,
		logger:  logger,
	}
	if options.CacheQuadrature {
		e.cache = newQuadratureCache()
	}
	return e
}

// Options returns the options the Evaluator was built with
func (e *Evaluator) Options() Options {
	return e.options
}

// quadrature returns the rule of order nq, from the cache when configured
func (e *Evaluator) quadrature(nq int) (QuadratureRule, error) {
	if e.cache != nil {
		return e.cache.get(nq)
	}
	return GaussLegendre(nq)
}

// observe forwards a finished evaluation to the configured Observer
func (e *Evaluator) observe(model Model, start time.Time, skipped int) {
	if e.options.Observer != nil {
		e.options.Observer.ObserveEvaluation(string(model), time.Since(start), skipped)
	}
}

var defaultEvaluator = NewEvaluator(DefaultOptions())

// NLLKOccurrence returns the Bernoulli negative log-likelihood of the occurrence model
// using the default options.
func NLLKOccurrence(params []float64, data []Observation, centers []Center, kcen int, g float64) (float64, error) {
	return defaultEvaluator.Occurrence(params, data, centers, kcen, g)
}

// NLLKIntensity returns the shifted-Poisson negative log-likelihood of the intensity model
// using the default options.
func NLLKIntensity(params []float64, data []Observation, centers []Center, kcen int, g float64) (float64, error) {
	return defaultEvaluator.Intensity(params, data, centers, kcen, g)
}

// JointLikelihood returns the integrated likelihood of the joint factor copula model
// using the default options. The caller takes the negative log if needed.
func JointLikelihood(params []float64, data []Observation, centers []Center, kcen int, g float64, nq int) (float64, error) {
	return defaultEvaluator.Joint(params, data, centers, kcen, g, nq)
}
