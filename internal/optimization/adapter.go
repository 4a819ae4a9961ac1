package optimization

import (
	"context"
	"math"
)

// AdapterConfig configures an Adapter round loop.
type AdapterConfig struct {
	Space     *ParameterSpace
	Objective *ObjectiveEvaluator
	Strategy  Strategy

	// MaxRounds bounds the number of propose/evaluate/report rounds.
	MaxRounds int
	// Tolerance stops a single-objective run once the best fitness
	// reaches it. Ignored for multi-objective strategies.
	Tolerance float64
	// MultiObjective selects the 3-component fitness of the genetic
	// variant instead of the scalar fitness.
	MultiObjective bool
}

// Adapter is the generic ask/evaluate/tell loop around a black-box
// Strategy. Per round it asks for candidates, patches every fixed
// dimension, evaluates, reports back, and independently tracks the
// best-ever candidate: the strategy's own notion of "best" is not trusted,
// since it may discard history. The loop terminates when the strategy is
// done, the round budget is exhausted, or (single-objective) the tolerance
// is met.
type Adapter struct {
	cfg AdapterConfig
}

// NewAdapter validates cfg and builds the adapter.
func NewAdapter(cfg AdapterConfig) (*Adapter, error) {
	if cfg.Space == nil {
		return nil, NewConfigError("adapter requires a parameter space").
			WithComponent("adapter")
	}
	if cfg.Objective == nil {
		return nil, NewConfigError("adapter requires an objective evaluator").
			WithComponent("adapter")
	}
	if cfg.Strategy == nil {
		return nil, NewConfigError("adapter requires a strategy").
			WithComponent("adapter")
	}
	if cfg.MaxRounds < 1 {
		return nil, ConfigErrorf("max rounds must be >= 1, got %d", cfg.MaxRounds).
			WithComponent("adapter")
	}
	if cfg.Tolerance < 0 {
		return nil, ConfigErrorf("tolerance must be >= 0, got %g", cfg.Tolerance).
			WithComponent("adapter")
	}
	return &Adapter{cfg: cfg}, nil
}

// Run implements Engine.
func (a *Adapter) Run(ctx context.Context, emit ProgressFunc) (*Result, error) {
	space := a.cfg.Space
	objective := a.cfg.Objective
	strategy := a.cfg.Strategy

	var best []float64
	bestFit := math.Inf(1)
	rounds := 0
	converged := false

	for round := 1; round <= a.cfg.MaxRounds; round++ {
		select {
		case <-ctx.Done():
			return a.cancelled(best, bestFit, rounds)
		default:
		}

		if strategy.Done() {
			break
		}

		proposals, err := strategy.Propose()
		if err != nil {
			return nil, WrapAlgorithmError(err, "strategy propose failed").
				WithComponent("adapter")
		}
		if len(proposals) == 0 {
			break
		}

		// Patch-before-evaluate: the strategy is never trusted to
		// respect fixed dimensions. The patched vectors are also what
		// gets reported back, so the strategy learns the fitness of
		// what was actually scored.
		patched := make([][]float64, len(proposals))
		objectives := make([]Objectives, len(proposals))
		roundBest := math.Inf(1)
		for i, c := range proposals {
			p := space.Patched(c)
			patched[i] = p

			var objs Objectives
			if a.cfg.MultiObjective {
				objs, _ = objective.EvaluateObjectives(ctx, p)
			} else {
				ev := objective.Evaluate(ctx, p)
				objs = Objectives{ev.Value}
			}
			objectives[i] = objs

			if objs[0] < roundBest {
				roundBest = objs[0]
			}
			if objs[0] < bestFit {
				bestFit = objs[0]
				best = append([]float64(nil), p...)
			}
		}

		if err := strategy.Report(patched, objectives); err != nil {
			return nil, WrapAlgorithmError(err, "strategy report failed").
				WithComponent("adapter")
		}
		rounds = round

		p := Progress{Iteration: round, Current: roundBest, Best: bestFit}
		if ps, ok := strategy.(ParetoSource); ok {
			p.FrontSize = len(ps.Front())
		}
		emit(p)

		if !a.cfg.MultiObjective && bestFit <= a.cfg.Tolerance {
			converged = true
			break
		}
	}

	if best == nil {
		return nil, AlgorithmErrorf("strategy finished without proposing any candidate").
			WithComponent("adapter")
	}

	result := &Result{
		ParameterNames: space.Names(),
		BestCandidate:  best,
		BestFitness:    bestFit,
		Iterations:     rounds,
		Converged:      converged,
	}
	if ps, ok := strategy.(ParetoSource); ok {
		result.Pareto = ps.Front()
	} else {
		final, ev := objective.EvaluateDetailed(ctx, best)
		result.Final = final
		result.FinalFailed = ev.Failed
	}
	return result, nil
}

// cancelled builds the partial result for a cooperatively stopped round
// loop, or ErrCancelled when nothing was ever evaluated.
func (a *Adapter) cancelled(best []float64, bestFit float64, rounds int) (*Result, error) {
	if best == nil {
		return nil, ErrCancelled
	}
	result := &Result{
		ParameterNames: a.cfg.Space.Names(),
		BestCandidate:  best,
		BestFitness:    bestFit,
		Iterations:     rounds,
		Cancelled:      true,
	}
	if ps, ok := a.cfg.Strategy.(ParetoSource); ok {
		result.Pareto = ps.Front()
	}
	return result, nil
}
