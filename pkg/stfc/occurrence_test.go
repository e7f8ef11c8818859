package stfc

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// originCenter is the single kernel center used by most fixtures
var originCenter = []Center{{Longitude: 0, Latitude: 0}}

// occurrenceParams builds a kcen=1 occurrence vector with weight w, intercept b and trend c0
func occurrenceParams(w, b, c0 float64) []float64 {
	return []float64{w, b, c0, 0, 0, 0}
}

func TestOccurrence_ZeroLinkIsLogTwoPerObservation(t *testing.T) {
	data := []Observation{
		{Time: 0, Count: 0},
		{Time: 3, Count: 1, Longitude: 0.5, Latitude: -0.2},
		{Time: 7, Count: 0, Longitude: 2, Latitude: 1},
	}
	got, err := NLLKOccurrence(occurrenceParams(0, 0, 0), data, originCenter, 1, 1)
	require.NoError(t, err)
	assert.InDelta(t, 3*math.Ln2, got, 1e-12)
}

func TestOccurrence_KnownValue(t *testing.T) {
	// one event at distance² = 2 from the center, time 3 (sin(π/2) = 1)
	data := []Observation{{Time: 3, Count: 1, Longitude: 1, Latitude: 1}}
	params := []float64{0.8, -0.3, 0.1, 0.05, 0.4, 0.2}
	g := 0.5

	link := -0.3 + 0.8*math.Exp(-g*2) + 0.1 + 0.05*3 + 0.4*math.Sin(Omega*3) + 0.2*math.Cos(Omega*3)
	odds := math.Exp(link)
	want := -math.Log(odds / (1 + odds))

	got, err := NLLKOccurrence(params, data, originCenter, 1, g)
	require.NoError(t, err)
	assert.InDelta(t, want, got, 1e-12)
}

func TestOccurrence_NonNegativeAndFinite(t *testing.T) {
	data := []Observation{
		{Time: 1, Count: 0, Longitude: 0.1, Latitude: 0.2},
		{Time: 2, Count: 1, Longitude: -0.4, Latitude: 0.9},
		{Time: 13, Count: 4, Longitude: 1.1, Latitude: -0.3},
	}
	for _, params := range [][]float64{
		occurrenceParams(0, 0, 0),
		occurrenceParams(5, -2, 1),
		occurrenceParams(-50, 30, 200),
		occurrenceParams(0, 0, 1000),
		occurrenceParams(0, 0, -1000),
	} {
		got, err := NLLKOccurrence(params, data, originCenter, 1, 2)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, got, 0.0, "params=%v", params)
		assert.False(t, math.IsInf(got, 0) || math.IsNaN(got), "params=%v", params)
	}
}

func TestOccurrence_ClampPolicy(t *testing.T) {
	event := []Observation{{Count: 1}}
	noEvent := []Observation{{Count: 0}}

	// p -> 1 is clamped to 1-1e-7
	got, err := NLLKOccurrence(occurrenceParams(0, 0, 100), event, originCenter, 1, 1)
	require.NoError(t, err)
	assert.InDelta(t, -math.Log(1-1e-7), got, 1e-15)

	// p -> 0 is clamped to 1e-7
	got, err = NLLKOccurrence(occurrenceParams(0, 0, 100), noEvent, originCenter, 1, 1)
	require.NoError(t, err)
	assert.InDelta(t, -math.Log(1e-7), got, 1e-12)

	// odds overflow gives Inf/Inf, which is forced to 1e-4
	got, err = NLLKOccurrence(occurrenceParams(0, 0, 1000), event, originCenter, 1, 1)
	require.NoError(t, err)
	assert.InDelta(t, -math.Log(1e-4), got, 1e-12)
}

func TestOccurrence_EventRule(t *testing.T) {
	data := []Observation{{Count: 3}}
	params := occurrenceParams(0, 0.7, 0)
	odds := math.Exp(0.7)

	literal, err := NLLKOccurrence(params, data, originCenter, 1, 1)
	require.NoError(t, err)
	assert.InDelta(t, -math.Log(1/(1+odds)), literal, 1e-12, "count 3 is a non-event under exact-one")

	opts := DefaultOptions()
	opts.OccurrenceRule = AnyPositive
	positive, err := NewEvaluator(opts).Occurrence(params, data, originCenter, 1, 1)
	require.NoError(t, err)
	assert.InDelta(t, -math.Log(odds/(1+odds)), positive, 1e-12, "count 3 is an event under any-positive")

	// counts 0 and 1 agree under both rules
	for _, count := range []int{0, 1} {
		obs := []Observation{{Count: count}}
		a, err := NLLKOccurrence(params, obs, originCenter, 1, 1)
		require.NoError(t, err)
		b, err := NewEvaluator(opts).Occurrence(params, obs, originCenter, 1, 1)
		require.NoError(t, err)
		assert.Equal(t, a, b, "count=%d", count)
	}
}

func TestOccurrence_ValidationErrors(t *testing.T) {
	data := []Observation{{Count: 1}}
	tests := []struct {
		name    string
		params  []float64
		data    []Observation
		centers []Center
		kcen    int
		g       float64
		fields  []string
	}{
		{"short params", []float64{0, 0, 0}, data, originCenter, 1, 1, []string{"params"}},
		{"center count mismatch", occurrenceParams(0, 0, 0), data, []Center{{}, {}}, 1, 1, []string{"centers"}},
		{"zero bandwidth", occurrenceParams(0, 0, 0), data, originCenter, 1, 0, []string{"g"}},
		{"nan bandwidth", occurrenceParams(0, 0, 0), data, originCenter, 1, math.NaN(), []string{"g"}},
		{"negative count", occurrenceParams(0, 0, 0), []Observation{{Count: -1}}, originCenter, 1, 1, []string{"data[0].count"}},
		{"negative kcen", occurrenceParams(0, 0, 0), data, nil, -1, -2, []string{"kcen", "g"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NLLKOccurrence(tt.params, tt.data, tt.centers, tt.kcen, tt.g)
			var verrs ValidationErrors
			require.True(t, errors.As(err, &verrs), "want ValidationErrors, got %v", err)

			var fields []string
			for _, e := range verrs.Errors {
				fields = append(fields, e.Field)
			}
			assert.Equal(t, tt.fields, fields)
			assert.Contains(t, err.Error(), "occurrence model")
		})
	}
}

func TestOccurrence_NoCenters(t *testing.T) {
	// kcen = 0: the field is the intercept alone
	data := []Observation{{Count: 1, Longitude: 4, Latitude: 4}}
	got, err := NLLKOccurrence([]float64{0, 0, 0, 0, 0}, data, nil, 0, 1)
	require.NoError(t, err)
	assert.InDelta(t, math.Ln2, got, 1e-12)
}
