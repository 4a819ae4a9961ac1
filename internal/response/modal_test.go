package response

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRequest() Request {
	sweep := Sweep{Start: 1, End: 100, Points: 50}
	return Request{
		System:          SystemConfig{MainMass: 1},
		ParameterNames:  []string{"dva_k_1", "dva_k_2"},
		ParameterValues: []float64{0.4, 0.6},
		Sweep:           sweep,
		Targets:         FlatTargets(sweep, 1),
	}
}

func TestSweepFrequencies(t *testing.T) {
	s := Sweep{Start: 0, End: 10, Points: 5}
	assert.Equal(t, []float64{0, 2.5, 5, 7.5, 10}, s.Frequencies())

	assert.Equal(t, []float64{3}, Sweep{Start: 3, End: 9, Points: 1}.Frequencies())
	assert.Nil(t, Sweep{Points: 0}.Frequencies())
}

func TestSweepValid(t *testing.T) {
	assert.True(t, Sweep{Start: 1, End: 2, Points: 10}.Valid())
	assert.False(t, Sweep{Start: 2, End: 1, Points: 10}.Valid())
	assert.False(t, Sweep{Start: 1, End: 2, Points: 0}.Valid())
}

func TestModalEvaluatorValidation(t *testing.T) {
	e := NewModalEvaluator(nil)
	ctx := context.Background()

	req := testRequest()
	req.Sweep = Sweep{}
	_, err := e.Evaluate(ctx, req)
	assert.ErrorIs(t, err, ErrInvalidSweep)

	req = testRequest()
	req.ParameterValues = nil
	_, err = e.Evaluate(ctx, req)
	assert.ErrorIs(t, err, ErrNoParameters)

	req = testRequest()
	req.Targets = nil
	_, err = e.Evaluate(ctx, req)
	assert.ErrorIs(t, err, ErrNoTargets)
}

func TestModalEvaluatorRespectsContext(t *testing.T) {
	e := NewModalEvaluator(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.Evaluate(ctx, testRequest())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestModalEvaluatorMeasuresOneOnPerfectMatch(t *testing.T) {
	e := NewModalEvaluator(nil)
	ctx := context.Background()

	// First pass: learn the achieved curve for this candidate.
	first, err := e.Evaluate(ctx, testRequest())
	require.NoError(t, err)
	require.Len(t, first.Curves, 1)

	// Second pass: use that curve as the target. The weighted achieved/
	// target ratio is then exactly 1.
	req := testRequest()
	req.Targets = []TargetCurve{{Target: first.Curves[0]}}
	second, err := e.Evaluate(ctx, req)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, second.Measurement, 1e-12)
	assert.True(t, second.MeasurementUsable())
}

func TestModalEvaluatorAveragesTargets(t *testing.T) {
	e := NewModalEvaluator(nil)
	ctx := context.Background()

	base, err := e.Evaluate(ctx, testRequest())
	require.NoError(t, err)

	// Doubling the target halves the per-target ratio.
	doubled := make([]float64, len(base.Curves[0]))
	for i, v := range base.Curves[0] {
		doubled[i] = 2 * v
	}
	req := testRequest()
	req.Targets = []TargetCurve{
		{Target: base.Curves[0]},
		{Target: doubled},
	}
	res, err := e.Evaluate(ctx, req)
	require.NoError(t, err)
	assert.InDelta(t, (1.0+0.5)/2, res.Measurement, 1e-12)
}

func TestModalEvaluatorZeroWeightTargetIsUnusable(t *testing.T) {
	e := NewModalEvaluator(nil)

	req := testRequest()
	zero := make([]float64, req.Sweep.Points)
	req.Targets = []TargetCurve{{Target: zero, Weight: zero}}

	res, err := e.Evaluate(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, res.MeasurementUsable(),
		"a degenerate target must surface as evaluation failure, not as a fake score")
}

func TestMeasurementUsable(t *testing.T) {
	assert.False(t, (*Result)(nil).MeasurementUsable())
	assert.True(t, (&Result{Measurement: 1.2}).MeasurementUsable())
}

func TestFlatTargets(t *testing.T) {
	s := Sweep{Start: 0, End: 10, Points: 4}
	targets := FlatTargets(s, 3)
	require.Len(t, targets, 3)
	for _, tc := range targets {
		assert.Equal(t, []float64{1, 1, 1, 1}, tc.Target)
		assert.Equal(t, []float64{1, 1, 1, 1}, tc.Weight)
	}
}
