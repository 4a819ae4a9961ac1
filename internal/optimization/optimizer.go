// Package optimization is the parametric-optimization core: it models the
// mixed fixed/free parameter space, shapes raw frequency-response
// measurements into robust fitness values, and drives four search
// strategies (simulated annealing plus black-box evolution-strategy,
// Bayesian, and multi-objective genetic adapters) behind one asynchronous
// worker lifecycle.
package optimization

import (
	"context"
	"errors"

	"github.com/mahan2079/DeVana-sub002/internal/response"
)

// SentinelPenalty is the fitness substituted whenever evaluation fails, so
// the search loop always sees a usable, finite value. Evaluation carries an
// explicit Failed flag alongside it; the numeric value exists for loops and
// for compatibility with tooling that expects a plain float.
const SentinelPenalty = 1e6

// Objectives is one fitness vector. Single-objective engines use length 1;
// the multi-objective genetic variant uses length 3 (response error,
// sparsity cost, linear cost). Lower is better in every component; there is
// no implicit scalarization.
type Objectives []float64

// Evaluation is the outcome of scoring one candidate.
type Evaluation struct {
	// Value is the scalar fitness; exactly SentinelPenalty when Failed.
	Value float64
	// Failed reports that the evaluator produced no usable measurement.
	Failed bool
}

// Progress is one per-iteration (or per-round, per-generation) notification.
// Notifications are emitted in strictly increasing Iteration order, exactly
// once per completed iteration.
type Progress struct {
	// Iteration counts completed iterations, starting at 1.
	Iteration int
	// Current is the fitness of the walker's current candidate.
	Current float64
	// Best is the best fitness seen so far; it never regresses.
	Best float64
	// Control is the algorithm-specific control value: annealing
	// temperature or evolution step size. Zero when not applicable.
	Control float64
	// FrontSize is the size of the first non-dominated front; only the
	// multi-objective genetic variant reports it.
	FrontSize int
}

// ProgressFunc receives progress notifications. Implementations must not
// call back into the worker.
type ProgressFunc func(Progress)

// Engine is one search algorithm run to completion. Run drives the search
// until convergence, exhaustion, or cancellation, calling emit after every
// completed iteration. Cancellation is cooperative: engines poll ctx at
// iteration boundaries only, so a slow in-flight evaluation cannot be
// interrupted mid-call. When cancellation is observed after at least one
// evaluation, Run returns a partial Result with Cancelled set; when it is
// observed before any evaluation, Run returns ErrCancelled.
type Engine interface {
	Run(ctx context.Context, emit ProgressFunc) (*Result, error)
}

// ErrCancelled is returned by an Engine when cancellation was observed
// before any candidate had been evaluated, so no best-known state exists.
var ErrCancelled = errors.New("optimization: cancelled before any evaluation")

// Strategy is the tri-method ask/evaluate/tell contract required from a
// pluggable black-box optimizer. The adapter depends on nothing beyond it,
// so any conforming third-party or in-house optimizer can be substituted.
//
// Propose returns one or more candidates to evaluate. Report feeds the
// fitness of each proposed candidate back, in the same order; the
// candidates passed to Report are the patched vectors that were actually
// evaluated, which may differ from the proposals on fixed dimensions.
// Done reports that the optimizer has nothing further to propose.
type Strategy interface {
	Propose() ([][]float64, error)
	Report(candidates [][]float64, objectives []Objectives) error
	Done() bool
}

// ParetoSource is implemented by multi-objective strategies that maintain a
// non-dominated front. The adapter uses it to report front sizes in
// progress and to extract the final Pareto set.
type ParetoSource interface {
	Front() []ParetoPoint
}

// ParetoPoint is one member of a Pareto front.
type ParetoPoint struct {
	Candidate  []float64  `json:"candidate"`
	Objectives Objectives `json:"objectives"`
}

// Result is the terminal payload of a successful run. It is created once,
// immediately before the run terminates, and ownership passes to the caller.
type Result struct {
	// ParameterNames aligns positionally with BestCandidate.
	ParameterNames []string `json:"parameterNames"`
	// BestCandidate is the best evaluated candidate of the run.
	BestCandidate []float64 `json:"bestCandidate"`
	// BestFitness is its scalar fitness (first objective for the
	// multi-objective variant).
	BestFitness float64 `json:"bestFitness"`
	// Pareto is the first non-dominated front of the final population;
	// only the multi-objective genetic variant sets it.
	Pareto []ParetoPoint `json:"pareto,omitempty"`
	// Iterations is the number of completed iterations or rounds.
	Iterations int `json:"iterations"`
	// Converged reports that the tolerance was met.
	Converged bool `json:"converged"`
	// Cancelled reports that the run was cut short cooperatively.
	Cancelled bool `json:"cancelled"`
	// Final is the detailed payload of one last evaluation of
	// BestCandidate. When that reporting call itself fails, Final is nil
	// and FinalFailed is set; the known-good best fields above are still
	// reported.
	Final       *response.Result `json:"final,omitempty"`
	FinalFailed bool             `json:"finalFailed,omitempty"`
}
