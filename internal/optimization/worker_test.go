package optimization

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// engineFunc adapts a function to the Engine interface.
type engineFunc func(ctx context.Context, emit ProgressFunc) (*Result, error)

func (f engineFunc) Run(ctx context.Context, emit ProgressFunc) (*Result, error) {
	return f(ctx, emit)
}

// terminalRecorder counts terminal notifications; the worker contract is
// exactly one per run.
type terminalRecorder struct {
	mu       sync.Mutex
	finished []*Result
	failed   []error
	progress []Progress
}

func (r *terminalRecorder) callbacks() Callbacks {
	return Callbacks{
		OnProgress: func(p Progress) {
			r.mu.Lock()
			r.progress = append(r.progress, p)
			r.mu.Unlock()
		},
		OnFinished: func(res *Result) {
			r.mu.Lock()
			r.finished = append(r.finished, res)
			r.mu.Unlock()
		},
		OnError: func(err error) {
			r.mu.Lock()
			r.failed = append(r.failed, err)
			r.mu.Unlock()
		},
	}
}

func (r *terminalRecorder) terminals() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.finished) + len(r.failed)
}

func waitDone(t *testing.T, w *Worker) {
	t.Helper()
	select {
	case <-w.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not terminate")
	}
}

func TestWorkerCompletes(t *testing.T) {
	rec := &terminalRecorder{}
	w := NewWorker(engineFunc(func(ctx context.Context, emit ProgressFunc) (*Result, error) {
		emit(Progress{Iteration: 1, Best: 0.5})
		emit(Progress{Iteration: 2, Best: 0.25})
		return &Result{BestFitness: 0.25, Iterations: 2}, nil
	}), rec.callbacks())

	assert.Equal(t, StateReady, w.State())
	require.NoError(t, w.Start())
	waitDone(t, w)

	assert.Equal(t, StateCompleted, w.State())
	assert.Equal(t, 1, rec.terminals())
	require.Len(t, rec.finished, 1)
	assert.Equal(t, 0.25, rec.finished[0].BestFitness)
	assert.Len(t, rec.progress, 2)
}

func TestWorkerStartTwice(t *testing.T) {
	block := make(chan struct{})
	w := NewWorker(engineFunc(func(ctx context.Context, emit ProgressFunc) (*Result, error) {
		<-block
		return &Result{}, nil
	}), Callbacks{})

	require.NoError(t, w.Start())
	err := w.Start()
	assert.Error(t, err, "a worker drives at most one run")

	close(block)
	waitDone(t, w)

	err = w.Start()
	assert.Error(t, err, "a finished worker is not reusable")
}

func TestWorkerNoEngine(t *testing.T) {
	w := NewWorker(nil, Callbacks{})
	err := w.Start()
	require.Error(t, err)
	assert.True(t, IsConfigurationError(err))
}

func TestWorkerEngineError(t *testing.T) {
	rec := &terminalRecorder{}
	engineErr := AlgorithmErrorf("step size collapsed")
	w := NewWorker(engineFunc(func(ctx context.Context, emit ProgressFunc) (*Result, error) {
		return nil, engineErr
	}), rec.callbacks())

	require.NoError(t, w.Start())
	waitDone(t, w)

	assert.Equal(t, StateFailed, w.State())
	assert.Equal(t, 1, rec.terminals())
	require.Len(t, rec.failed, 1)
	assert.ErrorIs(t, rec.failed[0], engineErr)
}

func TestWorkerEnginePanic(t *testing.T) {
	rec := &terminalRecorder{}
	w := NewWorker(engineFunc(func(ctx context.Context, emit ProgressFunc) (*Result, error) {
		panic("matrix not positive definite")
	}), rec.callbacks())

	require.NoError(t, w.Start())
	waitDone(t, w)

	assert.Equal(t, StateFailed, w.State())
	assert.Equal(t, 1, rec.terminals())
	require.Len(t, rec.failed, 1)
	assert.Contains(t, rec.failed[0].Error(), "matrix not positive definite")
}

func TestWorkerCancelWithPartialResult(t *testing.T) {
	rec := &terminalRecorder{}
	started := make(chan struct{})
	w := NewWorker(engineFunc(func(ctx context.Context, emit ProgressFunc) (*Result, error) {
		close(started)
		<-ctx.Done()
		// The engine had already evaluated something; it reports the
		// best-known state instead of an error.
		return &Result{BestFitness: 0.7, Iterations: 3, Cancelled: true}, nil
	}), rec.callbacks())

	require.NoError(t, w.Start())
	<-started
	w.Cancel()
	waitDone(t, w)

	assert.Equal(t, StateCancelled, w.State())
	assert.Equal(t, 1, rec.terminals())
	require.Len(t, rec.finished, 1)
	assert.True(t, rec.finished[0].Cancelled)
	assert.Equal(t, 0.7, rec.finished[0].BestFitness)
}

func TestWorkerCancelBeforeAnyEvaluation(t *testing.T) {
	rec := &terminalRecorder{}
	w := NewWorker(engineFunc(func(ctx context.Context, emit ProgressFunc) (*Result, error) {
		select {
		case <-ctx.Done():
			return nil, ErrCancelled
		default:
		}
		return &Result{}, nil
	}), rec.callbacks())

	// Cancel lands before Start; the engine sees a context that is
	// already closed.
	w.Cancel()
	require.NoError(t, w.Start())
	waitDone(t, w)

	assert.Equal(t, StateCancelled, w.State())
	assert.Equal(t, 1, rec.terminals())
	require.Len(t, rec.failed, 1)
	assert.True(t, errors.Is(rec.failed[0], ErrCancelled))
}

func TestWorkerCancelIsIdempotent(t *testing.T) {
	rec := &terminalRecorder{}
	started := make(chan struct{})
	w := NewWorker(engineFunc(func(ctx context.Context, emit ProgressFunc) (*Result, error) {
		close(started)
		<-ctx.Done()
		return &Result{Cancelled: true}, nil
	}), rec.callbacks())

	require.NoError(t, w.Start())
	<-started
	w.Cancel()
	w.Cancel()
	waitDone(t, w)

	assert.Equal(t, 1, rec.terminals(), "exactly one terminal notification")
}
