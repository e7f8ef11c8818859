package stfc

import (
	"fmt"
	"math"
	"strings"
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
}

// ValidationErrors represents multiple validation errors
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (e ValidationErrors) Error() string {
	if len(e.Errors) == 0 {
		return "no validation errors"
	}

	var messages []string
	for _, err := range e.Errors {
		messages = append(messages, err.Error())
	}
	return strings.Join(messages, "; ")
}

// validateInputs checks the shape of a single evaluation before any indexing happens.
// wantParams is the layout size of the sub-model being evaluated.
func validateInputs(params []float64, data []Observation, centers []Center, kcen int, g float64, wantParams int) error {
	var errors []ValidationError

	if kcen < 0 {
		errors = append(errors, ValidationError{
			Field:   "kcen",
			Message: fmt.Sprintf("kernel count must be non-negative, got %d", kcen),
		})
	} else if len(centers) != kcen {
		errors = append(errors, ValidationError{
			Field:   "centers",
			Message: fmt.Sprintf("center table has %d rows, kcen is %d", len(centers), kcen),
		})
	}

	if kcen >= 0 && len(params) != wantParams {
		errors = append(errors, ValidationError{
			Field:   "params",
			Message: fmt.Sprintf("parameter vector has length %d, layout for kcen=%d needs %d", len(params), kcen, wantParams),
		})
	}

	if !(g > 0) || math.IsInf(g, 0) {
		errors = append(errors, ValidationError{
			Field:   "g",
			Message: fmt.Sprintf("bandwidth must be positive and finite, got %v", g),
		})
	}

	for i, obs := range data {
		if obs.Count < 0 {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("data[%d].count", i),
				Message: fmt.Sprintf("count must be non-negative, got %d", obs.Count),
			})
		}
	}

	if len(errors) > 0 {
		return ValidationErrors{Errors: errors}
	}
	return nil
}

// validateOrder checks the quadrature order of the joint model
func validateOrder(nq int) error {
	if nq < 1 {
		return ValidationError{
			Field:   "nq",
			Message: fmt.Sprintf("quadrature order must be a positive integer, got %d", nq),
		}
	}
	return nil
}
