package server

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mahan2079/DeVana-sub002/internal/optimization"
)

// Run is the externally visible snapshot of one optimization run.
type Run struct {
	ID        string                `json:"id"`
	Name      string                `json:"name,omitempty"`
	Algorithm string                `json:"algorithm"`
	State     optimization.RunState `json:"state"`
	StartTime time.Time             `json:"startTime"`
	EndTime   *time.Time            `json:"endTime,omitempty"`

	// Iteration and BestFitness mirror the last progress notification.
	Iteration   int     `json:"iteration"`
	BestFitness float64 `json:"bestFitness"`

	Result *optimization.Result `json:"result,omitempty"`
	Error  string               `json:"error,omitempty"`
}

type runEntry struct {
	mu     sync.Mutex
	run    Run
	worker *optimization.Worker
}

func (e *runEntry) snapshot() Run {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.run
}

// RunManager tracks every run the server has started. It is safe for
// concurrent use; the worker callbacks and the HTTP handlers both go
// through it.
type RunManager struct {
	mu   sync.RWMutex
	runs map[string]*runEntry
}

// NewRunManager creates an empty manager.
func NewRunManager() *RunManager {
	return &RunManager{runs: make(map[string]*runEntry)}
}

// Create registers a new run in the READY state and returns its ID.
func (m *RunManager) Create(name, algorithm string) string {
	id := uuid.NewString()
	entry := &runEntry{run: Run{
		ID:        id,
		Name:      name,
		Algorithm: algorithm,
		State:     optimization.StateReady,
		StartTime: time.Now().UTC(),
	}}

	m.mu.Lock()
	m.runs[id] = entry
	m.mu.Unlock()
	return id
}

// Attach associates the worker driving the run, so Cancel can reach it.
func (m *RunManager) Attach(id string, w *optimization.Worker) {
	if e := m.entry(id); e != nil {
		e.mu.Lock()
		e.worker = w
		e.run.State = w.State()
		e.mu.Unlock()
	}
}

// Get returns a snapshot of the run, if it exists.
func (m *RunManager) Get(id string) (Run, bool) {
	e := m.entry(id)
	if e == nil {
		return Run{}, false
	}
	return e.snapshot(), true
}

// List returns snapshots of all runs, newest first.
func (m *RunManager) List() []Run {
	m.mu.RLock()
	entries := make([]*runEntry, 0, len(m.runs))
	for _, e := range m.runs {
		entries = append(entries, e)
	}
	m.mu.RUnlock()

	runs := make([]Run, len(entries))
	for i, e := range entries {
		runs[i] = e.snapshot()
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartTime.After(runs[j].StartTime)
	})
	return runs
}

// Active counts the runs that have not reached a terminal state.
func (m *RunManager) Active() int {
	m.mu.RLock()
	entries := make([]*runEntry, 0, len(m.runs))
	for _, e := range m.runs {
		entries = append(entries, e)
	}
	m.mu.RUnlock()

	n := 0
	for _, e := range entries {
		switch e.snapshot().State {
		case optimization.StateReady, optimization.StateRunning:
			n++
		}
	}
	return n
}

// Cancel requests cooperative cancellation of the run.
func (m *RunManager) Cancel(id string) bool {
	e := m.entry(id)
	if e == nil {
		return false
	}
	e.mu.Lock()
	w := e.worker
	e.mu.Unlock()
	if w != nil {
		w.Cancel()
	}
	return true
}

// Progress records a progress notification from the worker.
func (m *RunManager) Progress(id string, p optimization.Progress) {
	if e := m.entry(id); e != nil {
		e.mu.Lock()
		e.run.State = optimization.StateRunning
		e.run.Iteration = p.Iteration
		e.run.BestFitness = p.Best
		e.mu.Unlock()
	}
}

// Finish records the terminal state of the run. Exactly one of result and
// errMsg is meaningful.
func (m *RunManager) Finish(id string, state optimization.RunState, result *optimization.Result, errMsg string) {
	if e := m.entry(id); e != nil {
		now := time.Now().UTC()
		e.mu.Lock()
		e.run.State = state
		e.run.EndTime = &now
		e.run.Result = result
		e.run.Error = errMsg
		if result != nil {
			e.run.BestFitness = result.BestFitness
			e.run.Iteration = result.Iterations
		}
		e.mu.Unlock()
	}
}

func (m *RunManager) entry(id string) *runEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.runs[id]
}
