package genetic

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahan2079/DeVana-sub002/internal/optimization"
)

func biSpace(t *testing.T) *optimization.ParameterSpace {
	t.Helper()
	space, err := optimization.NewParameterSpace([]optimization.Dimension{
		{Name: "dva_k_1", Lower: 0, Upper: 1},
		{Name: "dva_k_2", Lower: 0, Upper: 1},
		{Name: "dva_m_1", Fixed: true, FixedValue: 0.2},
	})
	require.NoError(t, err)
	return space
}

// conflicting evaluates the classic two-objective trade-off f1 = x0,
// f2 = 1 − x0, padded with a constant third objective: no single candidate
// can win both, so the front spreads along x0.
func conflicting(c []float64) optimization.Objectives {
	return optimization.Objectives{c[0], 1 - c[0], 1}
}

func TestNewValidation(t *testing.T) {
	space := biSpace(t)

	_, err := New(Config{PopulationSize: 8})
	assert.Error(t, err, "missing space")

	_, err = New(Config{Space: space, PopulationSize: 2})
	assert.Error(t, err, "population below 4")

	_, err = New(Config{Space: space, PopulationSize: 7})
	assert.Error(t, err, "odd population")

	_, err = New(Config{Space: space, PopulationSize: 8, CrossoverProb: 1.5})
	assert.Error(t, err, "crossover probability above 1")
}

func TestDominates(t *testing.T) {
	tests := []struct {
		name string
		a, b optimization.Objectives
		want bool
	}{
		{"strictly better everywhere", optimization.Objectives{1, 1, 1}, optimization.Objectives{2, 2, 2}, true},
		{"better in one, equal elsewhere", optimization.Objectives{1, 2, 2}, optimization.Objectives{2, 2, 2}, true},
		{"equal", optimization.Objectives{1, 1, 1}, optimization.Objectives{1, 1, 1}, false},
		{"trade-off", optimization.Objectives{1, 3, 1}, optimization.Objectives{2, 2, 1}, false},
		{"worse", optimization.Objectives{3, 3, 3}, optimization.Objectives{1, 1, 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dominates(tt.a, tt.b))
		})
	}
}

func TestNondominatedSort(t *testing.T) {
	pool := []individual{
		{objs: optimization.Objectives{1, 1, 1}}, // front 0
		{objs: optimization.Objectives{2, 2, 2}}, // front 1, dominated by 0
		{objs: optimization.Objectives{0, 3, 1}}, // front 0, trade-off with 0
		{objs: optimization.Objectives{3, 3, 3}}, // front 2
	}
	fronts := nondominatedSort(pool)

	require.Len(t, fronts, 3)
	assert.Len(t, fronts[0], 2)
	assert.Len(t, fronts[1], 1)
	assert.Len(t, fronts[2], 1)
	for r, front := range fronts {
		for _, ind := range front {
			assert.Equal(t, r, ind.rank)
		}
	}
}

func TestAssignCrowding(t *testing.T) {
	front := []individual{
		{objs: optimization.Objectives{0, 4}},
		{objs: optimization.Objectives{1, 3}},
		{objs: optimization.Objectives{2, 2}},
		{objs: optimization.Objectives{4, 0}},
	}
	assignCrowding(front)

	assert.True(t, math.IsInf(front[0].crowding, 1), "boundary individuals are always kept")
	assert.True(t, math.IsInf(front[3].crowding, 1))
	assert.Greater(t, front[2].crowding, front[1].crowding,
		"the individual in the sparser region must score higher")

	// Tiny fronts are entirely boundary.
	pair := []individual{
		{objs: optimization.Objectives{0, 1}},
		{objs: optimization.Objectives{1, 0}},
	}
	assignCrowding(pair)
	assert.True(t, math.IsInf(pair[0].crowding, 1))
	assert.True(t, math.IsInf(pair[1].crowding, 1))
}

func TestProposeInitialPopulation(t *testing.T) {
	space := biSpace(t)
	s, err := New(Config{Space: space, PopulationSize: 12, Seed: 4})
	require.NoError(t, err)

	pop, err := s.Propose()
	require.NoError(t, err)
	require.Len(t, pop, 12)
	for _, c := range pop {
		assert.True(t, space.Contains(c))
		assert.Equal(t, 0.2, c[2])
	}
}

func TestEvolvedPopulationStaysFeasible(t *testing.T) {
	space := biSpace(t)
	s, err := New(Config{Space: space, PopulationSize: 12, Seed: 9})
	require.NoError(t, err)

	for gen := 0; gen < 8; gen++ {
		pop, err := s.Propose()
		require.NoError(t, err)
		require.Len(t, pop, 12, "generation %d", gen)

		objs := make([]optimization.Objectives, len(pop))
		for i, c := range pop {
			assert.True(t, space.Contains(c), "generation %d bred %v", gen, c)
			assert.Equal(t, 0.2, c[2], "fixed dimension drifted in generation %d", gen)
			objs[i] = conflicting(c)
		}
		require.NoError(t, s.Report(pop, objs))
	}
}

func TestFrontHoldsOnlyNondominated(t *testing.T) {
	space := biSpace(t)
	s, err := New(Config{Space: space, PopulationSize: 20, Seed: 21})
	require.NoError(t, err)

	for gen := 0; gen < 10; gen++ {
		pop, err := s.Propose()
		require.NoError(t, err)
		objs := make([]optimization.Objectives, len(pop))
		for i, c := range pop {
			objs[i] = conflicting(c)
		}
		require.NoError(t, s.Report(pop, objs))
	}

	front := s.Front()
	require.NotEmpty(t, front)
	for i, a := range front {
		for j, b := range front {
			if i == j {
				continue
			}
			assert.False(t, dominates(a.Objectives, b.Objectives),
				"front member %d dominates member %d", i, j)
		}
	}
	// With f1 = x0 and f2 = 1 − x0 every candidate is nondominated, so
	// elitist selection should keep the population on the front.
	assert.Len(t, front, 20)
}

func TestReportKeepsPopulationSizeConstant(t *testing.T) {
	space := biSpace(t)
	s, err := New(Config{Space: space, PopulationSize: 8, Seed: 3})
	require.NoError(t, err)

	for gen := 0; gen < 5; gen++ {
		pop, err := s.Propose()
		require.NoError(t, err)
		objs := make([]optimization.Objectives, len(pop))
		for i, c := range pop {
			objs[i] = conflicting(c)
		}
		require.NoError(t, s.Report(pop, objs))
		assert.Len(t, s.parents, 8, "environmental selection must keep the population constant")
	}
}

func TestStrategyIsDeterministic(t *testing.T) {
	run := func() [][]float64 {
		s, err := New(Config{Space: biSpace(t), PopulationSize: 8, Seed: 33})
		require.NoError(t, err)

		var all [][]float64
		for gen := 0; gen < 4; gen++ {
			pop, err := s.Propose()
			require.NoError(t, err)
			objs := make([]optimization.Objectives, len(pop))
			for i, c := range pop {
				all = append(all, append([]float64(nil), c...))
				objs[i] = conflicting(c)
			}
			require.NoError(t, s.Report(pop, objs))
		}
		return all
	}

	assert.Equal(t, run(), run())
}

func TestDoneNeverTerminates(t *testing.T) {
	s, err := New(Config{Space: biSpace(t), PopulationSize: 8, Seed: 1})
	require.NoError(t, err)
	assert.False(t, s.Done(), "the round budget bounds a genetic run")
}
