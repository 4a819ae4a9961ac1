package optimization

import (
	"context"
	"math"

	"github.com/mahan2079/DeVana-sub002/internal/response"
)

// SparsityConfig parameterizes the second objective of the multi-objective
// fitness: a count penalty for every free parameter whose magnitude exceeds
// the activity threshold, plus a magnitude penalty on the L1 norm of the
// free parameters.
type SparsityConfig struct {
	ActivityThreshold float64
	CountWeight       float64
	MagnitudeWeight   float64
}

// ObjectiveConfig configures an ObjectiveEvaluator. Space and Client are
// required; everything else has a usable zero value.
type ObjectiveConfig struct {
	Space  *ParameterSpace
	Client response.Evaluator

	// System, Sweep and Targets form the fixed per-run evaluation request.
	System  response.SystemConfig
	Sweep   response.Sweep
	Targets []response.TargetCurve

	// Alpha weights the L1 sparsity regularization of the scalar fitness.
	Alpha float64

	// Sparsity parameterizes the multi-objective fitness.
	Sparsity SparsityConfig

	// OnEvaluation, when non-nil, observes every completed evaluation.
	// Used for metrics; must be safe for concurrent use.
	OnEvaluation func(Evaluation)
}

// ObjectiveEvaluator wraps the external response evaluator and shapes its
// raw output into fitness values. It patches fixed dimensions immediately
// before every scoring call and absorbs every evaluator failure (absent,
// NaN or infinite measurement, returned error, panic) into the sentinel
// penalty: the search loop never sees a failure from evaluation.
//
// The evaluator is a pure function of its inputs and safe to call
// concurrently, provided the external client is.
type ObjectiveEvaluator struct {
	cfg   ObjectiveConfig
	names []string
}

// NewObjectiveEvaluator validates cfg and builds an evaluator.
func NewObjectiveEvaluator(cfg ObjectiveConfig) (*ObjectiveEvaluator, error) {
	if cfg.Space == nil {
		return nil, NewConfigError("objective evaluator requires a parameter space").
			WithComponent("objective")
	}
	if cfg.Client == nil {
		return nil, NewConfigError("objective evaluator requires a response evaluator").
			WithComponent("objective")
	}
	if cfg.Alpha < 0 {
		return nil, ConfigErrorf("sparsity weight alpha must be >= 0, got %g", cfg.Alpha).
			WithComponent("objective")
	}
	return &ObjectiveEvaluator{cfg: cfg, names: cfg.Space.Names()}, nil
}

// Space returns the parameter space the evaluator patches against.
func (e *ObjectiveEvaluator) Space() *ParameterSpace { return e.cfg.Space }

// Evaluate scores one candidate with the scalar fitness
// |measurement − 1| + alpha·Σ|xᵢ|. The candidate is patched first; the
// input slice is not modified.
func (e *ObjectiveEvaluator) Evaluate(ctx context.Context, candidate []float64) Evaluation {
	patched := e.cfg.Space.Patched(candidate)
	_, measurement, ok := e.measure(ctx, patched)
	ev := Evaluation{Value: SentinelPenalty, Failed: true}
	if ok {
		ev = Evaluation{Value: math.Abs(measurement-1) + e.cfg.Alpha*l1(patched)}
	}
	if e.cfg.OnEvaluation != nil {
		e.cfg.OnEvaluation(ev)
	}
	return ev
}

// EvaluateObjectives scores one candidate with the 3-component fitness of
// the multi-objective genetic variant: response error, sparsity cost and
// linear cost. On failure every component is the sentinel penalty and
// failed is true.
func (e *ObjectiveEvaluator) EvaluateObjectives(ctx context.Context, candidate []float64) (Objectives, bool) {
	patched := e.cfg.Space.Patched(candidate)
	_, measurement, ok := e.measure(ctx, patched)
	if !ok {
		if e.cfg.OnEvaluation != nil {
			e.cfg.OnEvaluation(Evaluation{Value: SentinelPenalty, Failed: true})
		}
		return Objectives{SentinelPenalty, SentinelPenalty, SentinelPenalty}, true
	}

	var active int
	var magnitude, linear float64
	for i, v := range patched {
		a := math.Abs(v)
		linear += e.cfg.Space.CostCoeff(i) * a
		if e.cfg.Space.IsFixed(i) {
			continue
		}
		magnitude += a
		if a > e.cfg.Sparsity.ActivityThreshold {
			active++
		}
	}

	objs := Objectives{
		math.Abs(measurement - 1),
		e.cfg.Sparsity.CountWeight*float64(active) + e.cfg.Sparsity.MagnitudeWeight*magnitude,
		linear,
	}
	if e.cfg.OnEvaluation != nil {
		e.cfg.OnEvaluation(Evaluation{Value: objs[0]})
	}
	return objs, false
}

// EvaluateDetailed scores one candidate and additionally returns the full
// response payload. Used for the one final evaluation of the best candidate
// a run performs before terminating: when it fails, the returned result is
// nil but the Evaluation still carries the sentinel value so callers can
// keep their known-good best state.
func (e *ObjectiveEvaluator) EvaluateDetailed(ctx context.Context, candidate []float64) (*response.Result, Evaluation) {
	patched := e.cfg.Space.Patched(candidate)
	res, measurement, ok := e.measure(ctx, patched)
	ev := Evaluation{Value: SentinelPenalty, Failed: true}
	if ok {
		ev = Evaluation{Value: math.Abs(measurement-1) + e.cfg.Alpha*l1(patched)}
	} else {
		res = nil
	}
	if e.cfg.OnEvaluation != nil {
		e.cfg.OnEvaluation(ev)
	}
	return res, ev
}

// measure invokes the external evaluator with the patched candidate and the
// run's fixed configuration. It never lets a failure escape: errors, panics
// and unusable measurements all report ok=false.
func (e *ObjectiveEvaluator) measure(ctx context.Context, patched []float64) (res *response.Result, measurement float64, ok bool) {
	defer func() {
		if recover() != nil {
			res, measurement, ok = nil, 0, false
		}
	}()

	req := response.Request{
		System:          e.cfg.System,
		ParameterNames:  e.names,
		ParameterValues: patched,
		Sweep:           e.cfg.Sweep,
		Targets:         e.cfg.Targets,
		ShowFigures:     false,
	}
	r, err := e.cfg.Client.Evaluate(ctx, req)
	if err != nil || !r.MeasurementUsable() {
		return nil, 0, false
	}
	return r, r.Measurement, true
}

func l1(x []float64) float64 {
	var sum float64
	for _, v := range x {
		sum += math.Abs(v)
	}
	return sum
}
