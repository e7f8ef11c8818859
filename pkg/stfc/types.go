package stfc

import (
	"time"

	"github.com/go-logr/logr"
)

// Observation is one row of the observation table (time, count, longitude, latitude)
type Observation struct {
	Time      float64 `json:"time" yaml:"time"`
	Count     int     `json:"count" yaml:"count"` // 0 = no event, 1+ = shifted event count
	Longitude float64 `json:"longitude" yaml:"longitude"`
	Latitude  float64 `json:"latitude" yaml:"latitude"`
}

// Center is a fixed kernel center of the spatial smoother
type Center struct {
	Longitude float64 `json:"longitude" yaml:"longitude"`
	Latitude  float64 `json:"latitude" yaml:"latitude"`
}

// Hyperparams holds the scalar hyperparameters supplied alongside a parameter vector
type Hyperparams struct {
	Kcen            int     `json:"kcen" yaml:"kcen"`                 // Number of kernel centers
	Bandwidth       float64 `json:"g" yaml:"g"`                       // Kernel bandwidth g (> 0)
	QuadratureOrder int     `json:"nq,omitempty" yaml:"nq,omitempty"` // Gauss-Legendre order, joint model only
}

// Model names one of the three likelihood evaluators
type Model string

const (
	ModelOccurrence Model = "occurrence"
	ModelIntensity  Model = "intensity"
	ModelJoint      Model = "joint"
)

// ParseModel converts a model name into a Model
func ParseModel(name string) (Model, error) {
	switch Model(name) {
	case ModelOccurrence, ModelIntensity, ModelJoint:
		return Model(name), nil
	default:
		return "", ValidationError{
			Field:   "model",
			Message: "unknown model '" + name + "' (want occurrence, intensity or joint)",
		}
	}
}

// OccurrenceRule decides which counts the occurrence evaluator treats as an event
type OccurrenceRule int

const (
	// ExactOne treats only count == 1 as an event; larger counts fall into the
	// no-event branch. This reproduces previously fitted models.
	ExactOne OccurrenceRule = iota
	// AnyPositive treats every count >= 1 as an event.
	AnyPositive
)

// String returns the flag spelling of the rule
func (r OccurrenceRule) String() string {
	switch r {
	case AnyPositive:
		return "any-positive"
	default:
		return "exact-one"
	}
}

// ParseOccurrenceRule converts a flag spelling into an OccurrenceRule
func ParseOccurrenceRule(s string) (OccurrenceRule, error) {
	switch s {
	case "", "exact-one":
		return ExactOne, nil
	case "any-positive":
		return AnyPositive, nil
	default:
		return ExactOne, ValidationError{
			Field:   "occurrenceRule",
			Message: "unknown rule '" + s + "' (want exact-one or any-positive)",
		}
	}
}

// isEvent reports whether a count is an occurrence under the rule
func (r OccurrenceRule) isEvent(count int) bool {
	if r == AnyPositive {
		return count >= 1
	}
	return count == 1
}

// Observer receives one callback per completed evaluation
type Observer interface {
	ObserveEvaluation(model string, duration time.Duration, skipped int)
}

// Options configures an Evaluator
type Options struct {
	OccurrenceRule  OccurrenceRule `json:"occurrence_rule"`  // Event rule for the occurrence model (default: ExactOne)
	CacheQuadrature bool           `json:"cache_quadrature"` // Memoize Gauss-Legendre rules per order
	Workers         int            `json:"workers"`          // Concurrent parameter sets in EvaluateBatch (default: 1)
	Logger          logr.Logger    `json:"-"`
	Observer        Observer       `json:"-"`
}

// DefaultOptions returns options that reproduce the reference behaviour
func DefaultOptions() Options {
	return Options{
		OccurrenceRule:  ExactOne,
		CacheQuadrature: false,
		Workers:         1,
		Logger:          logr.Discard(),
	}
}

// EvalRequest contains everything needed for one objective evaluation
type EvalRequest struct {
	Model        Model         `json:"model"`
	Params       []float64     `json:"params"`
	Observations []Observation `json:"observations"`
	Centers      []Center      `json:"centers"`
	Hyperparams  Hyperparams   `json:"hyperparams"`
}

// EvalResult contains the output of one objective evaluation
type EvalResult struct {
	Model                 Model         `json:"model"`
	Value                 float64       `json:"value"`
	LogLikelihood         float64       `json:"log_likelihood,omitempty"` // Joint model only
	SkippedTerms          int           `json:"skipped_terms,omitempty"`  // Joint model only
	ProcessingTime        time.Duration `json:"processing_time"`
	ObservationsProcessed int           `json:"observations_processed"`
}
