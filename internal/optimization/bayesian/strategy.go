// Package bayesian provides a sequential Bayesian strategy behind the
// tri-method black-box contract: a Gaussian-process surrogate with a
// Matérn 5/2 kernel and Expected-Improvement acquisition, maximized by
// multi-start Nelder-Mead. One candidate is proposed and evaluated per
// round.
package bayesian

import (
	"math"
	"math/rand"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"github.com/mahan2079/DeVana-sub002/internal/optimization"
	"github.com/mahan2079/DeVana-sub002/internal/optimization/acquisition"
	"github.com/mahan2079/DeVana-sub002/internal/optimization/kernels"
)

// Config holds the strategy hyperparameters.
type Config struct {
	Space *optimization.ParameterSpace

	// InitialSamples is the number of space-filling points evaluated
	// before the surrogate is trusted (default 5).
	InitialSamples int
	// Xi is the Expected-Improvement exploration parameter (default 0.01).
	Xi float64
	// NoiseVar is the surrogate observation noise (default 1e-6).
	NoiseVar float64
	// Seed makes the proposal stream reproducible.
	Seed int64
	// Logger may be nil.
	Logger *zap.Logger
}

// Strategy implements optimization.Strategy. It proposes exactly one
// candidate per round: first the Latin-hypercube initial design, then the
// Expected-Improvement maximizer of the refitted surrogate.
type Strategy struct {
	cfg    Config
	rng    *rand.Rand
	gp     *GP
	acq    *acquisition.ExpectedImprovement
	logger *zap.Logger

	initial [][]float64 // queued space-filling design
	xs      [][]float64 // evaluated candidates
	ys      []float64   // their scalar fitness
	best    float64
}

// New validates cfg and builds the strategy.
func New(cfg Config) (*Strategy, error) {
	if cfg.Space == nil {
		return nil, optimization.NewConfigError("bayesian strategy requires a parameter space").
			WithComponent("bayesian")
	}
	if cfg.InitialSamples == 0 {
		cfg.InitialSamples = 5
	}
	if cfg.InitialSamples < 1 {
		return nil, optimization.ConfigErrorf("initial samples must be >= 1, got %d",
			cfg.InitialSamples).WithComponent("bayesian")
	}
	if cfg.Xi == 0 {
		cfg.Xi = 0.01
	}
	if cfg.NoiseVar == 0 {
		cfg.NoiseVar = 1e-6
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	s := &Strategy{
		cfg:    cfg,
		rng:    rng,
		gp:     NewGP(kernels.NewMatern52Kernel(1.0, 1.0), cfg.NoiseVar, logger),
		acq:    acquisition.NewExpectedImprovement(math.Inf(1), cfg.Xi),
		logger: logger.Named("bayesian"),
		best:   math.Inf(1),
	}
	s.initial = s.latinHypercube(cfg.InitialSamples)
	return s, nil
}

// Propose implements optimization.Strategy, returning a single candidate.
func (s *Strategy) Propose() ([][]float64, error) {
	if len(s.xs) < len(s.initial) {
		next := append([]float64(nil), s.initial[len(s.xs)]...)
		return [][]float64{next}, nil
	}

	next, err := s.nextByAcquisition()
	if err != nil {
		// A degenerate surrogate (e.g. duplicate samples) falls back to
		// exploration rather than failing the run.
		s.logger.Warn("surrogate unusable, falling back to random proposal",
			zap.Error(err))
		next = s.cfg.Space.Sample(s.rng)
	}
	return [][]float64{next}, nil
}

// Report implements optimization.Strategy.
func (s *Strategy) Report(candidates [][]float64, objectives []optimization.Objectives) error {
	if len(candidates) != len(objectives) {
		return optimization.AlgorithmErrorf(
			"report size mismatch: %d candidates, %d objectives",
			len(candidates), len(objectives)).WithComponent("bayesian")
	}
	for i := range candidates {
		s.xs = append(s.xs, append([]float64(nil), candidates[i]...))
		s.ys = append(s.ys, objectives[i][0])
		if objectives[i][0] < s.best {
			s.best = objectives[i][0]
		}
	}
	return nil
}

// Done implements optimization.Strategy; the round budget of the adapter
// bounds a Bayesian run.
func (s *Strategy) Done() bool { return false }

// nextByAcquisition refits the surrogate on the full history and returns
// the Expected-Improvement maximizer.
func (s *Strategy) nextByAcquisition() ([]float64, error) {
	n := len(s.xs)
	dims := s.cfg.Space.NumDimensions()

	X := mat.NewDense(n, dims, nil)
	y := mat.NewVecDense(n, nil)
	for i := range s.xs {
		X.SetRow(i, s.xs[i])
		y.SetVec(i, s.ys[i])
	}
	if err := s.gp.Fit(X, y); err != nil {
		return nil, err
	}
	s.acq.UpdateBest(s.best)

	// Negated acquisition over the clamped point, for minimization.
	objective := func(x []float64) float64 {
		clamped := append([]float64(nil), x...)
		s.cfg.Space.Clamp(clamped)
		s.cfg.Space.Patch(clamped)

		Xs := mat.NewDense(1, dims, clamped)
		mu, variance, err := s.gp.Predict(Xs)
		if err != nil {
			return math.Inf(1)
		}
		sigma := math.Sqrt(variance.AtVec(0))
		return -s.acq.Compute(mu.AtVec(0), sigma)
	}

	// Multi-start Nelder-Mead: the incumbent best plus random restarts.
	nStarts := 4 + int(4*math.Sqrt(float64(dims)))
	starts := make([][]float64, 0, nStarts)
	if bestX := s.incumbent(); bestX != nil {
		starts = append(starts, bestX)
	}
	for len(starts) < nStarts {
		starts = append(starts, s.cfg.Space.Sample(s.rng))
	}

	problem := optimize.Problem{Func: objective}
	settings := &optimize.Settings{
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-8,
			Iterations: 50,
		},
	}

	bestVal := math.Inf(1)
	bestX := make([]float64, dims)
	for _, start := range starts {
		result, err := optimize.Minimize(problem, start, settings, &optimize.NelderMead{})
		if err != nil || result == nil {
			continue
		}
		if result.F < bestVal {
			bestVal = result.F
			copy(bestX, result.X)
		}
	}
	if math.IsInf(bestVal, 1) {
		return nil, optimization.AlgorithmErrorf("acquisition maximization found no usable point").
			WithComponent("bayesian")
	}

	s.cfg.Space.Clamp(bestX)
	s.cfg.Space.Patch(bestX)
	return bestX, nil
}

// incumbent returns a copy of the best evaluated candidate, or nil.
func (s *Strategy) incumbent() []float64 {
	bestIdx := -1
	bestVal := math.Inf(1)
	for i, v := range s.ys {
		if v < bestVal {
			bestVal = v
			bestIdx = i
		}
	}
	if bestIdx < 0 {
		return nil
	}
	return append([]float64(nil), s.xs[bestIdx]...)
}

// latinHypercube draws n stratified samples covering the space; fixed
// dimensions stay at their pinned value.
func (s *Strategy) latinHypercube(n int) [][]float64 {
	space := s.cfg.Space
	dims := space.NumDimensions()

	samples := make([][]float64, n)
	for j := range samples {
		samples[j] = make([]float64, dims)
	}

	column := make([]float64, n)
	for i := 0; i < dims; i++ {
		if space.IsFixed(i) {
			for j := range samples {
				samples[j][i] = space.FixedValue(i)
			}
			continue
		}
		// One stratified sample per cell, shuffled across candidates.
		for j := 0; j < n; j++ {
			column[j] = (float64(j) + s.rng.Float64()) / float64(n)
		}
		s.rng.Shuffle(n, func(a, b int) {
			column[a], column[b] = column[b], column[a]
		})
		lower, upper := space.Bounds(i)
		for j := 0; j < n; j++ {
			samples[j][i] = lower + column[j]*(upper-lower)
		}
	}
	return samples
}
