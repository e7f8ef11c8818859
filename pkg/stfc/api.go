package stfc

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// Evaluate runs one objective evaluation described by request with default options.
// This is the main entry point for callers that prefer a request/result shape.
func Evaluate(request EvalRequest) (*EvalResult, error) {
	return defaultEvaluator.Evaluate(request)
}

// Evaluate runs one objective evaluation described by request
func (e *Evaluator) Evaluate(request EvalRequest) (*EvalResult, error) {
	startTime := time.Now()
	hp := request.Hyperparams

	result := &EvalResult{
		Model:                 request.Model,
		ObservationsProcessed: len(request.Observations),
	}

	switch request.Model {
	case ModelOccurrence:
		value, err := e.Occurrence(request.Params, request.Observations, request.Centers, hp.Kcen, hp.Bandwidth)
		if err != nil {
			return nil, err
		}
		result.Value = value

	case ModelIntensity:
		value, err := e.Intensity(request.Params, request.Observations, request.Centers, hp.Kcen, hp.Bandwidth)
		if err != nil {
			return nil, err
		}
		result.Value = value

	case ModelJoint:
		detail, err := e.JointDetail(request.Params, request.Observations, request.Centers, hp.Kcen, hp.Bandwidth, hp.QuadratureOrder)
		if err != nil {
			return nil, err
		}
		result.Value = detail.Value
		result.LogLikelihood = detail.LogLikelihood
		result.SkippedTerms = detail.SkippedTerms

	default:
		return nil, fmt.Errorf("invalid request: %w", ValidationError{
			Field:   "model",
			Message: fmt.Sprintf("unknown model '%s'", request.Model),
		})
	}

	result.ProcessingTime = time.Since(startTime)
	return result, nil
}

// EvaluateBatch evaluates request once per parameter vector in paramSets,
// running up to Options.Workers evaluations at a time. request.Params is ignored.
// Results keep the order of paramSets. The first error cancels the remaining work.
func (e *Evaluator) EvaluateBatch(ctx context.Context, request EvalRequest, paramSets [][]float64) ([]*EvalResult, error) {
	results := make([]*EvalResult, len(paramSets))

	// Warm the cache once so workers don't serialize on the first computation
	if request.Model == ModelJoint && e.cache != nil && request.Hyperparams.QuadratureOrder > 0 {
		if _, err := e.cache.get(request.Hyperparams.QuadratureOrder); err != nil {
			return nil, fmt.Errorf("joint model: %w", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.options.Workers)

	for idx, params := range paramSets {
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			req := request
			req.Params = params
			res, err := e.Evaluate(req)
			if err != nil {
				return fmt.Errorf("parameter set %d: %w", idx, err)
			}
			results[idx] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.logger.V(logDebug).Info("Evaluated parameter batch",
		"model", request.Model, "sets", len(paramSets), "workers", e.options.Workers)
	return results, nil
}
