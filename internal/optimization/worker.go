package optimization

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// RunState is the lifecycle state of a Worker.
type RunState string

const (
	StateReady     RunState = "ready"
	StateRunning   RunState = "running"
	StateCompleted RunState = "completed"
	StateFailed    RunState = "failed"
	StateCancelled RunState = "cancelled"
)

// Callbacks receives the one-way notifications of a run. Any field may be
// nil. Exactly one of OnFinished and OnError is invoked per run, after the
// last OnProgress call. Callbacks run on the worker goroutine and must not
// call back into the worker except via Cancel.
type Callbacks struct {
	OnProgress func(Progress)
	OnFinished func(*Result)
	OnError    func(error)
}

// Worker owns one optimization run on its own goroutine. It drives the
// selected engine, forwards progress, and emits exactly one terminal
// notification. Start may be called at most once per instance; Cancel is
// cooperative and may be called at any time from any goroutine.
type Worker struct {
	engine Engine
	cb     Callbacks

	mu        sync.Mutex
	state     RunState
	cancelled bool
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewWorker builds a worker for the given engine. The engine must already
// carry its private copies of the parameter space and configuration; workers
// share no mutable state with each other.
func NewWorker(engine Engine, cb Callbacks) *Worker {
	return &Worker{
		engine: engine,
		cb:     cb,
		state:  StateReady,
		done:   make(chan struct{}),
	}
}

// State returns the current lifecycle state.
func (w *Worker) State() RunState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Done is closed once the terminal notification has been emitted.
func (w *Worker) Done() <-chan struct{} { return w.done }

// Start transitions READY → RUNNING and begins driving the engine on a new
// goroutine. Calling Start more than once is an error.
func (w *Worker) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.engine == nil {
		return NewConfigError("worker has no engine").WithComponent("worker")
	}
	if w.state != StateReady {
		return fmt.Errorf("worker already started (state %s)", w.state)
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.state = StateRunning
	if w.cancelled {
		// Cancel arrived before Start; the engine observes it at its
		// first iteration boundary.
		cancel()
	}

	go w.run(ctx)
	return nil
}

// Cancel requests cooperative cancellation. The engine observes it at the
// next iteration boundary; a slow in-flight evaluation is not interrupted.
func (w *Worker) Cancel() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cancelled = true
	if w.cancel != nil {
		w.cancel()
	}
}

func (w *Worker) run(ctx context.Context) {
	defer close(w.done)

	terminal := false
	fail := func(err error) {
		if terminal {
			return
		}
		terminal = true
		w.setState(StateFailed)
		if w.cb.OnError != nil {
			w.cb.OnError(err)
		}
	}
	defer func() {
		if rec := recover(); rec != nil {
			fail(AlgorithmErrorf("panic in optimization run: %v", rec).
				WithComponent("worker"))
		}
	}()

	emit := func(p Progress) {
		if w.cb.OnProgress != nil {
			w.cb.OnProgress(p)
		}
	}

	result, err := w.engine.Run(ctx, emit)
	switch {
	case err != nil:
		if errors.Is(err, ErrCancelled) {
			// Cancelled before anything was evaluated: there is no
			// best-known candidate to report.
			terminal = true
			w.setState(StateCancelled)
			if w.cb.OnError != nil {
				w.cb.OnError(err)
			}
			return
		}
		fail(err)
	case result.Cancelled:
		terminal = true
		w.setState(StateCancelled)
		if w.cb.OnFinished != nil {
			w.cb.OnFinished(result)
		}
	default:
		terminal = true
		w.setState(StateCompleted)
		if w.cb.OnFinished != nil {
			w.cb.OnFinished(result)
		}
	}
}

func (w *Worker) setState(s RunState) {
	w.mu.Lock()
	w.state = s
	w.mu.Unlock()
}
