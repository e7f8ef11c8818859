package stfc

import "fmt"

// Trend holds the harmonic seasonal trend coefficients c0 + c1·t + c2·sin(ωt) + c3·cos(ωt)
type Trend struct {
	C0 float64 `json:"c0" yaml:"c0"`
	C1 float64 `json:"c1" yaml:"c1"`
	C2 float64 `json:"c2" yaml:"c2"`
	C3 float64 `json:"c3" yaml:"c3"`
}

// SubModelParams is one sub-model's slice of the flat parameter vector
type SubModelParams struct {
	Weights   []float64 `json:"weights" yaml:"weights"`     // One kernel weight per center
	Intercept float64   `json:"intercept" yaml:"intercept"` // Spatial field intercept
	Trend     Trend     `json:"trend" yaml:"trend"`         // Unused by the dependence sub-model
}

// JointParams groups the three sub-models of the joint likelihood
type JointParams struct {
	Occurrence SubModelParams `json:"occurrence" yaml:"occurrence"`
	Intensity  SubModelParams `json:"intensity" yaml:"intensity"`
	Dependence SubModelParams `json:"dependence" yaml:"dependence"`
}

// Layout sizes of the flat parameter vector
const (
	trendSize = 4
)

// SubModelSize returns the flat length of a standalone occurrence or intensity vector
func SubModelSize(kcen int) int {
	return kcen + 1 + trendSize
}

// JointSize returns the flat length of a joint parameter vector: the occurrence
// and intensity blocks followed by the dependence weights and intercept.
func JointSize(kcen int) int {
	return 2*SubModelSize(kcen) + kcen + 1
}

// sliceBlock reads kcen weights, an intercept and optionally a trend starting at offset
func sliceBlock(params []float64, offset, kcen int, withTrend bool) SubModelParams {
	block := SubModelParams{
		Weights:   params[offset : offset+kcen : offset+kcen],
		Intercept: params[offset+kcen],
	}
	if withTrend {
		t := offset + kcen + 1
		block.Trend = Trend{C0: params[t], C1: params[t+1], C2: params[t+2], C3: params[t+3]}
	}
	return block
}

// SliceSubModel interprets a standalone occurrence or intensity vector:
// [0..kcen-1] weights, [kcen] intercept, [kcen+1..kcen+4] trend.
func SliceSubModel(params []float64, kcen int) (SubModelParams, error) {
	if kcen < 0 || len(params) != SubModelSize(kcen) {
		return SubModelParams{}, ValidationError{
			Field:   "params",
			Message: fmt.Sprintf("parameter vector has length %d, layout for kcen=%d needs %d", len(params), kcen, SubModelSize(kcen)),
		}
	}
	return sliceBlock(params, 0, kcen, true), nil
}

// SliceJoint interprets a joint vector: a-block at 0, b-block at kcen+5,
// dependence weights and intercept at 2·kcen+10.
func SliceJoint(params []float64, kcen int) (JointParams, error) {
	if kcen < 0 || len(params) != JointSize(kcen) {
		return JointParams{}, ValidationError{
			Field:   "params",
			Message: fmt.Sprintf("parameter vector has length %d, joint layout for kcen=%d needs %d", len(params), kcen, JointSize(kcen)),
		}
	}
	size := SubModelSize(kcen)
	return JointParams{
		Occurrence: sliceBlock(params, 0, kcen, true),
		Intensity:  sliceBlock(params, size, kcen, true),
		Dependence: sliceBlock(params, 2*size, kcen, false),
	}, nil
}

// Flatten writes the sub-model back into the standalone flat layout
func (p SubModelParams) Flatten() []float64 {
	out := make([]float64, 0, SubModelSize(len(p.Weights)))
	out = append(out, p.Weights...)
	out = append(out, p.Intercept, p.Trend.C0, p.Trend.C1, p.Trend.C2, p.Trend.C3)
	return out
}

// Flatten writes the joint parameters back into the flat joint layout
func (p JointParams) Flatten() []float64 {
	kcen := len(p.Occurrence.Weights)
	out := make([]float64, 0, JointSize(kcen))
	out = append(out, p.Occurrence.Flatten()...)
	out = append(out, p.Intensity.Flatten()...)
	out = append(out, p.Dependence.Weights...)
	out = append(out, p.Dependence.Intercept)
	return out
}
