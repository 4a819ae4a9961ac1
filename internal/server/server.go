// Package server exposes the optimization service over HTTP: starting runs,
// listing and inspecting them, and cooperative cancellation.
package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mahan2079/DeVana-sub002/internal/config"
	"github.com/mahan2079/DeVana-sub002/internal/logging"
	"github.com/mahan2079/DeVana-sub002/internal/optimization"
	"github.com/mahan2079/DeVana-sub002/internal/response"
)

// Logger defines the logging interface used by the server
// This allows us to be flexible with our logging implementation
type Logger interface {
	Debug(msg string, fields ...map[string]interface{})
	Info(msg string, fields ...map[string]interface{})
	Warn(msg string, fields ...map[string]interface{})
	Error(msg string, fields ...map[string]interface{})
	WithFields(fields map[string]interface{}) *logging.Logger
}

// Server implements the HTTP API of the optimization service. It owns the
// run registry and spawns one worker per accepted run.
type Server struct {
	cfg       *config.Config
	logger    Logger
	evaluator response.Evaluator
	runs      *RunManager
	metrics   *Metrics
}

// NewServer creates a new server instance. metrics may be nil, in which case
// no instrumentation is recorded.
func NewServer(cfg *config.Config, logger Logger, evaluator response.Evaluator, metrics *Metrics) *Server {
	return &Server{
		cfg:       cfg,
		logger:    logger,
		evaluator: evaluator,
		runs:      NewRunManager(),
		metrics:   metrics,
	}
}

// Runs exposes the run registry, mainly for tests.
func (s *Server) Runs() *RunManager { return s.runs }

func (s *Server) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/optimize", s.handleOptimize)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{id}", s.handleGetRun)
		r.Delete("/runs/{id}", s.handleCancelRun)
	})
}

// handleOptimize accepts a problem definition, starts a worker for it, and
// responds with the run ID before the run finishes.
func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	var problem config.Problem
	if err := json.NewDecoder(r.Body).Decode(&problem); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	problem.ApplyDefaults(s.cfg)
	if err := problem.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Soft admission bound; a run frees its slot on any terminal state.
	if limit := s.cfg.Optimization.MaxConcurrentRuns; limit > 0 && s.runs.Active() >= limit {
		s.respondError(w, http.StatusTooManyRequests, "too many concurrent runs")
		return
	}

	id := s.runs.Create(problem.Name, problem.Algorithm)
	runLogger := s.logger.WithFields(map[string]interface{}{
		"run_id":    id,
		"algorithm": problem.Algorithm,
	})

	engine, err := s.buildEngine(&problem)
	if err != nil {
		s.runs.Finish(id, optimization.StateFailed, nil, err.Error())
		if optimization.IsConfigurationError(err) {
			s.respondError(w, http.StatusBadRequest, err.Error())
		} else {
			runLogger.Error("Failed to build engine", map[string]interface{}{"error": err.Error()})
			s.respondError(w, http.StatusInternalServerError, "failed to build engine")
		}
		return
	}

	worker := optimization.NewWorker(engine, optimization.Callbacks{
		OnProgress: func(p optimization.Progress) {
			s.runs.Progress(id, p)
			runLogger.Debug("Progress", map[string]interface{}{
				"iteration": p.Iteration,
				"best":      p.Best,
			})
		},
		OnFinished: func(res *optimization.Result) {
			state := optimization.StateCompleted
			if res.Cancelled {
				state = optimization.StateCancelled
			}
			s.runs.Finish(id, state, res, "")
			s.observeFinish(problem.Algorithm, state)
			runLogger.Info("Run finished", map[string]interface{}{
				"state":      state,
				"best":       res.BestFitness,
				"iterations": res.Iterations,
				"converged":  res.Converged,
			})
		},
		OnError: func(err error) {
			state := optimization.StateFailed
			if errors.Is(err, optimization.ErrCancelled) {
				state = optimization.StateCancelled
			}
			s.runs.Finish(id, state, nil, err.Error())
			s.observeFinish(problem.Algorithm, state)
			runLogger.Error("Run ended with error", map[string]interface{}{
				"state": state,
				"error": err.Error(),
			})
		},
	})
	s.runs.Attach(id, worker)

	// Incremented before Start: the worker may finish (and decrement)
	// before this handler returns.
	if s.metrics != nil {
		s.metrics.RunsStarted.WithLabelValues(problem.Algorithm).Inc()
		s.metrics.RunsRunning.Inc()
	}
	if err := worker.Start(); err != nil {
		if s.metrics != nil {
			s.metrics.RunsRunning.Dec()
		}
		s.runs.Finish(id, optimization.StateFailed, nil, err.Error())
		runLogger.Error("Failed to start worker", map[string]interface{}{"error": err.Error()})
		s.respondError(w, http.StatusInternalServerError, "failed to start run")
		return
	}
	runLogger.Info("Run started")

	s.respondStatusJSON(w, http.StatusAccepted, map[string]string{"id": id, "state": string(optimization.StateRunning)})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, map[string]interface{}{"runs": s.runs.List()})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, ok := s.runs.Get(chi.URLParam(r, "id"))
	if !ok {
		s.respondError(w, http.StatusNotFound, "run not found")
		return
	}
	s.respondJSON(w, run)
}

func (s *Server) handleCancelRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.runs.Cancel(id) {
		s.respondError(w, http.StatusNotFound, "run not found")
		return
	}
	s.respondStatusJSON(w, http.StatusAccepted, map[string]string{"id": id})
}

// buildEngine assembles the engine for the problem's algorithm, hooking the
// evaluation metrics in.
func (s *Server) buildEngine(p *config.Problem) (optimization.Engine, error) {
	var onEval func(optimization.Evaluation)
	if s.metrics != nil {
		onEval = func(ev optimization.Evaluation) {
			s.metrics.Evaluations.Inc()
			if ev.Failed {
				s.metrics.EvalFailures.Inc()
			}
		}
	}
	zapLogger := logging.NewZapLogger(s.logger.WithFields(map[string]interface{}{
		"component": p.Algorithm,
	}))
	return BuildEngine(p, s.evaluator, zapLogger, onEval)
}

func (s *Server) observeFinish(algorithm string, state optimization.RunState) {
	if s.metrics == nil {
		return
	}
	s.metrics.RunsFinished.WithLabelValues(algorithm, string(state)).Inc()
	s.metrics.RunsRunning.Dec()
}

func (s *Server) respondJSON(w http.ResponseWriter, payload interface{}) {
	s.respondStatusJSON(w, http.StatusOK, payload)
}

func (s *Server) respondStatusJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("Failed to encode response", map[string]interface{}{"error": err.Error()})
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
