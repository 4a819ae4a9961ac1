package response

import (
	"context"
	"math"

	"go.uber.org/zap"
)

// modalDamping is the damping ratio applied to every synthesized mode.
const modalDamping = 0.05

// ModalEvaluator is the built-in reference evaluator. It synthesizes the
// response of each monitored mass by modal superposition: every candidate
// parameter contributes one damped resonance, with natural frequencies
// spread evenly across the sweep. The composite measurement is the ratio of
// weighted achieved response to weighted target response, averaged over all
// targets, so a design that reproduces its targets measures exactly 1.0.
//
// It is deliberately small. Production deployments substitute the real
// physics evaluator behind the same interface.
type ModalEvaluator struct {
	logger *zap.Logger
}

// NewModalEvaluator creates a ModalEvaluator. logger may be nil.
func NewModalEvaluator(logger *zap.Logger) *ModalEvaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ModalEvaluator{logger: logger.Named("modal_evaluator")}
}

// Evaluate implements Evaluator.
func (e *ModalEvaluator) Evaluate(ctx context.Context, req Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !req.Sweep.Valid() {
		return nil, ErrInvalidSweep
	}
	if len(req.ParameterValues) == 0 {
		return nil, ErrNoParameters
	}
	if len(req.Targets) == 0 {
		return nil, ErrNoTargets
	}

	freqs := req.Sweep.Frequencies()
	curve := e.superpose(req, freqs)

	// Every monitored mass sees the same synthesized curve in this
	// reference model; real evaluators report one curve per mass.
	curves := make([][]float64, len(req.Targets))
	var ratioSum float64
	for k, target := range req.Targets {
		curves[k] = curve
		ratioSum += weightedRatio(curve, target, freqs)
	}
	measurement := ratioSum / float64(len(req.Targets))

	e.logger.Debug("evaluated candidate",
		zap.Int("parameters", len(req.ParameterValues)),
		zap.Int("sweep_points", len(freqs)),
		zap.Float64("measurement", measurement),
	)

	return &Result{
		Measurement: measurement,
		Frequencies: freqs,
		Curves:      curves,
	}, nil
}

// superpose builds the achieved response curve: one damped single-degree-of-
// freedom mode per parameter, amplitude |value|, natural frequencies spread
// across the sweep, normalized by the main-structure mass when given.
func (e *ModalEvaluator) superpose(req Request, freqs []float64) []float64 {
	n := len(req.ParameterValues)
	span := req.Sweep.End - req.Sweep.Start
	scale := 1.0
	if req.System.MainMass > 0 {
		scale = 1.0 / req.System.MainMass
	}

	curve := make([]float64, len(freqs))
	for j, f := range freqs {
		var sum float64
		for i, v := range req.ParameterValues {
			// Natural frequency of mode i, strictly inside the sweep.
			fn := req.Sweep.Start + span*(float64(i)+1)/float64(n+1)
			if fn == 0 {
				fn = 1
			}
			r := f / fn
			denom := math.Hypot(1-r*r, 2*modalDamping*r)
			sum += math.Abs(v) / denom
		}
		curve[j] = sum * scale
	}
	return curve
}

// weightedRatio compares the achieved curve to one target: the ratio of the
// weighted mean achieved response to the weighted mean target response.
// Missing target or weight samples default to 1.
func weightedRatio(curve []float64, target TargetCurve, freqs []float64) float64 {
	var num, den float64
	for j := range freqs {
		t, w := 1.0, 1.0
		if j < len(target.Target) {
			t = target.Target[j]
		}
		if j < len(target.Weight) {
			w = target.Weight[j]
		}
		num += w * curve[j]
		den += w * t
	}
	if den == 0 {
		return math.NaN()
	}
	return num / den
}
