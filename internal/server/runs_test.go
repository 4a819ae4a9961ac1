package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahan2079/DeVana-sub002/internal/optimization"
)

func TestRunManagerCreateAndGet(t *testing.T) {
	m := NewRunManager()

	id := m.Create("tuning", "annealing")
	require.NotEmpty(t, id)

	run, ok := m.Get(id)
	require.True(t, ok)
	assert.Equal(t, id, run.ID)
	assert.Equal(t, "tuning", run.Name)
	assert.Equal(t, "annealing", run.Algorithm)
	assert.Equal(t, optimization.StateReady, run.State)
	assert.Nil(t, run.EndTime)

	_, ok = m.Get("no-such-run")
	assert.False(t, ok)
}

func TestRunManagerListNewestFirst(t *testing.T) {
	m := NewRunManager()

	first := m.Create("first", "annealing")
	time.Sleep(2 * time.Millisecond)
	second := m.Create("second", "evolution")

	runs := m.List()
	require.Len(t, runs, 2)
	assert.Equal(t, second, runs[0].ID)
	assert.Equal(t, first, runs[1].ID)
}

func TestRunManagerProgress(t *testing.T) {
	m := NewRunManager()
	id := m.Create("", "annealing")

	m.Progress(id, optimization.Progress{Iteration: 7, Best: 0.25})

	run, ok := m.Get(id)
	require.True(t, ok)
	assert.Equal(t, optimization.StateRunning, run.State)
	assert.Equal(t, 7, run.Iteration)
	assert.Equal(t, 0.25, run.BestFitness)
}

func TestRunManagerFinish(t *testing.T) {
	m := NewRunManager()
	id := m.Create("", "annealing")

	result := &optimization.Result{BestFitness: 0.01, Iterations: 42, Converged: true}
	m.Finish(id, optimization.StateCompleted, result, "")

	run, ok := m.Get(id)
	require.True(t, ok)
	assert.Equal(t, optimization.StateCompleted, run.State)
	require.NotNil(t, run.EndTime)
	assert.Equal(t, result, run.Result)
	assert.Equal(t, 0.01, run.BestFitness)
	assert.Equal(t, 42, run.Iteration)
	assert.Empty(t, run.Error)
}

func TestRunManagerFinishWithError(t *testing.T) {
	m := NewRunManager()
	id := m.Create("", "bayesian")

	m.Finish(id, optimization.StateFailed, nil, "surrogate fit failed")

	run, ok := m.Get(id)
	require.True(t, ok)
	assert.Equal(t, optimization.StateFailed, run.State)
	assert.Nil(t, run.Result)
	assert.Equal(t, "surrogate fit failed", run.Error)
}

func TestRunManagerActive(t *testing.T) {
	m := NewRunManager()
	assert.Equal(t, 0, m.Active())

	ready := m.Create("", "annealing")
	running := m.Create("", "evolution")
	finished := m.Create("", "bayesian")

	m.Progress(running, optimization.Progress{Iteration: 1, Best: 0.5})
	m.Finish(finished, optimization.StateCompleted, &optimization.Result{}, "")

	assert.Equal(t, 2, m.Active(), "ready and running runs hold a slot")

	m.Finish(ready, optimization.StateFailed, nil, "boom")
	m.Finish(running, optimization.StateCancelled, nil, "")
	assert.Equal(t, 0, m.Active(), "terminal runs free their slot")
}

func TestRunManagerCancelUnknown(t *testing.T) {
	m := NewRunManager()
	assert.False(t, m.Cancel("no-such-run"))
	assert.True(t, m.Cancel(m.Create("", "annealing")),
		"cancel before a worker is attached is a no-op, not a miss")
}
