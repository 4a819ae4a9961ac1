// Package genetic provides an NSGA-II multi-objective strategy behind the
// tri-method black-box contract: fast non-dominated sorting, crowding
// distance, binary tournament selection, simulated binary crossover and
// polynomial mutation. Selection uses non-domination only; objectives are
// never scalarized.
//
// Individual and fitness types are locally scoped to one strategy instance;
// there is no process-global type registration.
package genetic

import (
	"math"
	"math/rand"
	"sort"

	"github.com/mahan2079/DeVana-sub002/internal/optimization"
)

// Config holds the strategy hyperparameters. Zero values of the operator
// parameters select the usual NSGA-II defaults.
type Config struct {
	Space *optimization.ParameterSpace

	// PopulationSize is the constant population per generation.
	PopulationSize int
	// CrossoverProb is the per-pair SBX probability (default 0.9).
	CrossoverProb float64
	// MutationProb is the per-gene polynomial mutation probability
	// (default 1/numDimensions).
	MutationProb float64
	// CrossoverEta and MutationEta are the SBX and polynomial mutation
	// distribution indices (defaults 15 and 20).
	CrossoverEta float64
	MutationEta  float64
	// Seed makes the proposal stream reproducible.
	Seed int64
}

type individual struct {
	x        []float64
	objs     optimization.Objectives
	rank     int
	crowding float64
}

// Strategy implements optimization.Strategy and optimization.ParetoSource.
// The first Propose returns a random initial population; every later
// Propose returns offspring bred from the current parents.
type Strategy struct {
	cfg Config
	rng *rand.Rand

	parents     []individual
	initialized bool
}

// New validates cfg and builds the strategy.
func New(cfg Config) (*Strategy, error) {
	if cfg.Space == nil {
		return nil, optimization.NewConfigError("genetic strategy requires a parameter space").
			WithComponent("genetic")
	}
	if cfg.PopulationSize < 4 || cfg.PopulationSize%2 != 0 {
		return nil, optimization.ConfigErrorf(
			"population size must be an even number >= 4, got %d",
			cfg.PopulationSize).WithComponent("genetic")
	}
	if cfg.CrossoverProb == 0 {
		cfg.CrossoverProb = 0.9
	}
	if cfg.CrossoverProb < 0 || cfg.CrossoverProb > 1 {
		return nil, optimization.ConfigErrorf("crossover probability must be in [0,1], got %g",
			cfg.CrossoverProb).WithComponent("genetic")
	}
	if cfg.MutationProb == 0 {
		cfg.MutationProb = 1.0 / float64(cfg.Space.NumDimensions())
	}
	if cfg.MutationProb < 0 || cfg.MutationProb > 1 {
		return nil, optimization.ConfigErrorf("mutation probability must be in [0,1], got %g",
			cfg.MutationProb).WithComponent("genetic")
	}
	if cfg.CrossoverEta == 0 {
		cfg.CrossoverEta = 15
	}
	if cfg.MutationEta == 0 {
		cfg.MutationEta = 20
	}
	return &Strategy{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

// Propose implements optimization.Strategy.
func (s *Strategy) Propose() ([][]float64, error) {
	out := make([][]float64, s.cfg.PopulationSize)
	if !s.initialized {
		for i := range out {
			out[i] = s.cfg.Space.Sample(s.rng)
		}
		return out, nil
	}

	for i := 0; i < s.cfg.PopulationSize; i += 2 {
		p1 := s.tournament()
		p2 := s.tournament()
		c1, c2 := s.crossover(p1.x, p2.x)
		s.mutate(c1)
		s.mutate(c2)
		s.cfg.Space.Clamp(c1)
		s.cfg.Space.Clamp(c2)
		out[i] = c1
		out[i+1] = c2
	}
	return out, nil
}

// Report implements optimization.Strategy: elitist environmental selection
// over the union of parents and offspring by non-domination rank, breaking
// ties by crowding distance.
func (s *Strategy) Report(candidates [][]float64, objectives []optimization.Objectives) error {
	if len(candidates) == 0 || len(candidates) != len(objectives) {
		return optimization.AlgorithmErrorf(
			"report size mismatch: %d candidates, %d objectives",
			len(candidates), len(objectives)).WithComponent("genetic")
	}

	offspring := make([]individual, len(candidates))
	for i := range candidates {
		offspring[i] = individual{
			x:    append([]float64(nil), candidates[i]...),
			objs: append(optimization.Objectives(nil), objectives[i]...),
		}
	}

	pool := offspring
	if s.initialized {
		pool = append(append([]individual(nil), s.parents...), offspring...)
	}

	fronts := nondominatedSort(pool)
	next := make([]individual, 0, s.cfg.PopulationSize)
	for _, front := range fronts {
		assignCrowding(front)
		if len(next)+len(front) <= s.cfg.PopulationSize {
			next = append(next, front...)
			continue
		}
		// Truncate the overflowing front by descending crowding
		// distance, keeping the most isolated individuals.
		sort.SliceStable(front, func(a, b int) bool {
			return front[a].crowding > front[b].crowding
		})
		next = append(next, front[:s.cfg.PopulationSize-len(next)]...)
		break
	}

	s.parents = next
	s.initialized = true
	return nil
}

// Done implements optimization.Strategy; the round budget of the adapter
// bounds a genetic run.
func (s *Strategy) Done() bool { return false }

// Front implements optimization.ParetoSource: the current first
// non-dominated front.
func (s *Strategy) Front() []optimization.ParetoPoint {
	var front []optimization.ParetoPoint
	for _, ind := range s.parents {
		if ind.rank == 0 {
			front = append(front, optimization.ParetoPoint{
				Candidate:  append([]float64(nil), ind.x...),
				Objectives: append(optimization.Objectives(nil), ind.objs...),
			})
		}
	}
	return front
}

// tournament picks the better of two random parents: lower rank first,
// larger crowding distance on ties.
func (s *Strategy) tournament() individual {
	a := s.parents[s.rng.Intn(len(s.parents))]
	b := s.parents[s.rng.Intn(len(s.parents))]
	if a.rank < b.rank {
		return a
	}
	if b.rank < a.rank {
		return b
	}
	if a.crowding >= b.crowding {
		return a
	}
	return b
}

// crossover performs simulated binary crossover on the free dimensions.
// Fixed dimensions are copied; the adapter re-patches every proposal before
// evaluation regardless, so a fixed value can never drift into a scoring
// call.
func (s *Strategy) crossover(p1, p2 []float64) ([]float64, []float64) {
	n := len(p1)
	c1 := append([]float64(nil), p1...)
	c2 := append([]float64(nil), p2...)
	if s.rng.Float64() > s.cfg.CrossoverProb {
		return c1, c2
	}
	eta := s.cfg.CrossoverEta
	for i := 0; i < n; i++ {
		if s.cfg.Space.IsFixed(i) {
			continue
		}
		if s.rng.Float64() > 0.5 {
			continue
		}
		u := s.rng.Float64()
		var beta float64
		if u <= 0.5 {
			beta = math.Pow(2*u, 1/(eta+1))
		} else {
			beta = math.Pow(1/(2*(1-u)), 1/(eta+1))
		}
		v1 := 0.5 * ((1+beta)*p1[i] + (1-beta)*p2[i])
		v2 := 0.5 * ((1-beta)*p1[i] + (1+beta)*p2[i])
		c1[i] = v1
		c2[i] = v2
	}
	return c1, c2
}

// mutate applies polynomial mutation to the free dimensions of x in place.
func (s *Strategy) mutate(x []float64) {
	eta := s.cfg.MutationEta
	for i := range x {
		if s.cfg.Space.IsFixed(i) {
			continue
		}
		if s.rng.Float64() > s.cfg.MutationProb {
			continue
		}
		lower, upper := s.cfg.Space.Bounds(i)
		span := upper - lower
		if span == 0 {
			continue
		}
		u := s.rng.Float64()
		var delta float64
		if u < 0.5 {
			delta = math.Pow(2*u, 1/(eta+1)) - 1
		} else {
			delta = 1 - math.Pow(2*(1-u), 1/(eta+1))
		}
		x[i] += delta * span
	}
}

// dominates reports Pareto dominance for minimization: a is no worse in
// every objective and strictly better in at least one.
func dominates(a, b optimization.Objectives) bool {
	strictly := false
	for i := range a {
		if a[i] > b[i] {
			return false
		}
		if a[i] < b[i] {
			strictly = true
		}
	}
	return strictly
}

// nondominatedSort partitions pool into fronts and stamps each individual's
// rank. The returned fronts reference the same individuals that end up in
// the next parent population.
func nondominatedSort(pool []individual) [][]individual {
	n := len(pool)
	dominatedBy := make([][]int, n)
	domCount := make([]int, n)

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			if dominates(pool[i].objs, pool[j].objs) {
				dominatedBy[i] = append(dominatedBy[i], j)
			} else if dominates(pool[j].objs, pool[i].objs) {
				domCount[i]++
			}
		}
	}

	var fronts [][]individual
	current := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if domCount[i] == 0 {
			pool[i].rank = 0
			current = append(current, i)
		}
	}
	rank := 0
	for len(current) > 0 {
		front := make([]individual, 0, len(current))
		for _, i := range current {
			front = append(front, pool[i])
		}
		fronts = append(fronts, front)

		rank++
		var next []int
		for _, i := range current {
			for _, j := range dominatedBy[i] {
				domCount[j]--
				if domCount[j] == 0 {
					pool[j].rank = rank
					next = append(next, j)
				}
			}
		}
		current = next
	}

	// Re-stamp ranks onto the front copies; pool was mutated above.
	for r, front := range fronts {
		for i := range front {
			front[i].rank = r
		}
	}
	return fronts
}

// assignCrowding computes the crowding distance of every individual in one
// front, in place. Boundary individuals get an infinite distance.
func assignCrowding(front []individual) {
	n := len(front)
	if n == 0 {
		return
	}
	for i := range front {
		front[i].crowding = 0
	}
	if n <= 2 {
		for i := range front {
			front[i].crowding = math.Inf(1)
		}
		return
	}

	m := len(front[0].objs)
	idx := make([]int, n)
	for obj := 0; obj < m; obj++ {
		for i := range idx {
			idx[i] = i
		}
		sort.SliceStable(idx, func(a, b int) bool {
			return front[idx[a]].objs[obj] < front[idx[b]].objs[obj]
		})
		lo := front[idx[0]].objs[obj]
		hi := front[idx[n-1]].objs[obj]
		front[idx[0]].crowding = math.Inf(1)
		front[idx[n-1]].crowding = math.Inf(1)
		if hi == lo {
			continue
		}
		for k := 1; k < n-1; k++ {
			front[idx[k]].crowding += (front[idx[k+1]].objs[obj] - front[idx[k-1]].objs[obj]) / (hi - lo)
		}
	}
}
