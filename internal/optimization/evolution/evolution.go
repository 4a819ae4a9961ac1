// Package evolution provides a population-based evolution strategy behind
// the tri-method black-box contract: a (mu/mu_w, lambda) scheme with
// rank-weighted recombination and success-based global step-size control.
package evolution

import (
	"math"
	"math/rand"
	"sort"

	"github.com/mahan2079/DeVana-sub002/internal/optimization"
)

// Step-size control: grow on an improving generation, shrink otherwise.
const (
	stepGrow   = 1.1
	stepShrink = 0.85
	// minStep is the step-size fraction below which the strategy reports
	// itself done; further proposals would be numerically identical.
	minStep = 1e-9
)

// Config holds the strategy hyperparameters.
type Config struct {
	Space *optimization.ParameterSpace

	// PopulationSize is lambda, the number of candidates per generation.
	PopulationSize int
	// InitialStep is the starting global step size, as a fraction of
	// each dimension's range.
	InitialStep float64
	// Seed makes the proposal stream reproducible.
	Seed int64
}

// Strategy implements optimization.Strategy. One generation corresponds to
// one propose/report round of the adapter.
type Strategy struct {
	cfg     Config
	rng     *rand.Rand
	mu      int
	weights []float64

	mean     []float64
	step     float64
	prevBest float64
}

// New validates cfg and builds the strategy. The initial search mean is
// sampled uniformly from the space.
func New(cfg Config) (*Strategy, error) {
	if cfg.Space == nil {
		return nil, optimization.NewConfigError("evolution strategy requires a parameter space").
			WithComponent("evolution")
	}
	if cfg.PopulationSize < 2 {
		return nil, optimization.ConfigErrorf("population size must be >= 2, got %d",
			cfg.PopulationSize).WithComponent("evolution")
	}
	if cfg.InitialStep <= 0 {
		return nil, optimization.ConfigErrorf("initial step size must be > 0, got %g",
			cfg.InitialStep).WithComponent("evolution")
	}

	mu := cfg.PopulationSize / 2
	weights := make([]float64, mu)
	var total float64
	for j := range weights {
		weights[j] = math.Log(float64(mu)+0.5) - math.Log(float64(j+1))
		total += weights[j]
	}
	for j := range weights {
		weights[j] /= total
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	return &Strategy{
		cfg:      cfg,
		rng:      rng,
		mu:       mu,
		weights:  weights,
		mean:     cfg.Space.Sample(rng),
		step:     cfg.InitialStep,
		prevBest: math.Inf(1),
	}, nil
}

// Propose returns one generation of lambda candidates sampled around the
// current mean. Fixed dimensions take their pinned value and consume no
// randomness.
func (s *Strategy) Propose() ([][]float64, error) {
	space := s.cfg.Space
	n := space.NumDimensions()
	out := make([][]float64, s.cfg.PopulationSize)
	for k := range out {
		c := make([]float64, n)
		for i := 0; i < n; i++ {
			if space.IsFixed(i) {
				c[i] = space.FixedValue(i)
				continue
			}
			lower, upper := space.Bounds(i)
			v := s.mean[i] + s.rng.NormFloat64()*s.step*(upper-lower)
			if v < lower {
				v = lower
			} else if v > upper {
				v = upper
			}
			c[i] = v
		}
		out[k] = c
	}
	return out, nil
}

// Report recombines the mu best candidates into the new mean with
// log-rank weights and adapts the step size: grow when the generation
// improved on the best seen so far, shrink otherwise.
func (s *Strategy) Report(candidates [][]float64, objectives []optimization.Objectives) error {
	if len(candidates) == 0 || len(candidates) != len(objectives) {
		return optimization.AlgorithmErrorf(
			"report size mismatch: %d candidates, %d objectives",
			len(candidates), len(objectives)).WithComponent("evolution")
	}

	order := make([]int, len(candidates))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return objectives[order[a]][0] < objectives[order[b]][0]
	})

	mu := s.mu
	if mu > len(candidates) {
		mu = len(candidates)
	}
	mean := make([]float64, s.cfg.Space.NumDimensions())
	for j := 0; j < mu; j++ {
		w := s.weights[j]
		for i := range mean {
			mean[i] += w * candidates[order[j]][i]
		}
	}
	s.cfg.Space.Patch(mean)
	s.mean = mean

	genBest := objectives[order[0]][0]
	if genBest < s.prevBest {
		s.step *= stepGrow
		s.prevBest = genBest
	} else {
		s.step *= stepShrink
	}
	return nil
}

// Done reports true once the step size has collapsed.
func (s *Strategy) Done() bool { return s.step < minStep }

// Step returns the current global step-size fraction.
func (s *Strategy) Step() float64 { return s.step }
