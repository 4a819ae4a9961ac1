// Package annealing implements the bespoke Metropolis-style simulated
// annealing engine. The entire trajectory, every proposed candidate and
// every acceptance decision, is reproducible given a fixed seed.
package annealing

import (
	"context"
	"math"
	"math/rand"

	"github.com/mahan2079/DeVana-sub002/internal/optimization"
)

// Config holds the annealing hyperparameters. The engine captures its own
// reference to Space and Objective at construction; callers must not mutate
// the space afterwards (it is immutable by contract).
type Config struct {
	Space     *optimization.ParameterSpace
	Objective *optimization.ObjectiveEvaluator

	// InitialTemperature is T0 of the geometric cooling schedule.
	InitialTemperature float64
	// CoolingRate multiplies the temperature after every iteration.
	// Values >= 1 produce a non-decaying or growing temperature; that is
	// a caller configuration concern and deliberately not clamped here.
	CoolingRate float64
	// MaxIterations bounds the search.
	MaxIterations int
	// Tolerance stops the run once the best fitness reaches it.
	Tolerance float64
	// Seed makes the trajectory reproducible.
	Seed int64
}

// perturbScale is the fraction of a dimension's range used as the Gaussian
// proposal standard deviation at full temperature.
const perturbScale = 0.1

// Engine runs one simulated-annealing search. It implements
// optimization.Engine and is not reusable across runs.
type Engine struct {
	cfg Config
	rng *rand.Rand
}

// New validates cfg and builds an engine.
func New(cfg Config) (*Engine, error) {
	if cfg.Space == nil {
		return nil, optimization.NewConfigError("annealing requires a parameter space").
			WithComponent("annealing")
	}
	if cfg.Objective == nil {
		return nil, optimization.NewConfigError("annealing requires an objective evaluator").
			WithComponent("annealing")
	}
	if cfg.InitialTemperature <= 0 {
		return nil, optimization.ConfigErrorf("initial temperature must be > 0, got %g",
			cfg.InitialTemperature).WithComponent("annealing")
	}
	if cfg.CoolingRate <= 0 {
		return nil, optimization.ConfigErrorf("cooling rate must be > 0, got %g",
			cfg.CoolingRate).WithComponent("annealing")
	}
	if cfg.MaxIterations < 1 {
		return nil, optimization.ConfigErrorf("max iterations must be >= 1, got %d",
			cfg.MaxIterations).WithComponent("annealing")
	}
	if cfg.Tolerance < 0 {
		return nil, optimization.ConfigErrorf("tolerance must be >= 0, got %g",
			cfg.Tolerance).WithComponent("annealing")
	}
	return &Engine{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

// Run implements optimization.Engine.
func (e *Engine) Run(ctx context.Context, emit optimization.ProgressFunc) (*optimization.Result, error) {
	space := e.cfg.Space
	objective := e.cfg.Objective
	t0 := e.cfg.InitialTemperature

	select {
	case <-ctx.Done():
		return nil, optimization.ErrCancelled
	default:
	}

	// Starting point: uniform sample for free dimensions, pinned values
	// for fixed ones.
	current := space.Sample(e.rng)
	currentFit := objective.Evaluate(ctx, current).Value
	best := append([]float64(nil), current...)
	bestFit := currentFit

	temp := t0
	iterations := 0
	converged := false

	for k := 1; k <= e.cfg.MaxIterations; k++ {
		select {
		case <-ctx.Done():
			return e.finish(ctx, best, bestFit, iterations, false, true), nil
		default:
		}

		neighbor := e.propose(current, temp, t0)
		neighborFit := objective.Evaluate(ctx, neighbor).Value
		delta := neighborFit - currentFit

		// Metropolis: always move downhill; uphill with probability
		// exp(-delta/T), one uniform draw per decision.
		accepted := delta < 0
		if !accepted {
			accepted = e.rng.Float64() < math.Exp(-delta/temp)
		}
		if accepted {
			current = neighbor
			currentFit = neighborFit
		}

		// The current state may worsen over time; the best never
		// regresses.
		if currentFit < bestFit {
			best = append(best[:0], current...)
			bestFit = currentFit
		}

		iterations = k
		emit(optimization.Progress{
			Iteration: k,
			Current:   currentFit,
			Best:      bestFit,
			Control:   temp,
		})

		temp *= e.cfg.CoolingRate

		if bestFit <= e.cfg.Tolerance {
			converged = true
			break
		}
	}

	return e.finish(ctx, best, bestFit, iterations, converged, false), nil
}

// propose draws a neighbor: each free dimension gets a Gaussian step with
// standard deviation shrinking proportionally to the temperature ratio,
// clamped into bounds. Fixed dimensions copy their pinned value unchanged
// and consume no randomness.
func (e *Engine) propose(current []float64, temp, t0 float64) []float64 {
	space := e.cfg.Space
	neighbor := make([]float64, len(current))
	for i := range current {
		if space.IsFixed(i) {
			neighbor[i] = space.FixedValue(i)
			continue
		}
		lower, upper := space.Bounds(i)
		sigma := perturbScale * (upper - lower) * (temp / t0)
		v := current[i] + e.rng.NormFloat64()*sigma
		if v < lower {
			v = lower
		} else if v > upper {
			v = upper
		}
		neighbor[i] = v
	}
	return neighbor
}

// finish performs the one final detailed evaluation of the best candidate.
// If that reporting call fails, the result carries a failure marker in
// place of the detailed payload; the known-good best fields are kept. No
// final evaluation is attempted for a cancelled run.
func (e *Engine) finish(ctx context.Context, best []float64, bestFit float64, iterations int, converged, cancelled bool) *optimization.Result {
	result := &optimization.Result{
		ParameterNames: e.cfg.Space.Names(),
		BestCandidate:  best,
		BestFitness:    bestFit,
		Iterations:     iterations,
		Converged:      converged,
		Cancelled:      cancelled,
	}
	if !cancelled {
		final, ev := e.cfg.Objective.EvaluateDetailed(ctx, best)
		result.Final = final
		result.FinalFailed = ev.Failed
	}
	return result
}
