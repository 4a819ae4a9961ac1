package server

import (
	"go.uber.org/zap"

	"github.com/mahan2079/DeVana-sub002/internal/config"
	"github.com/mahan2079/DeVana-sub002/internal/optimization"
	"github.com/mahan2079/DeVana-sub002/internal/optimization/annealing"
	"github.com/mahan2079/DeVana-sub002/internal/optimization/bayesian"
	"github.com/mahan2079/DeVana-sub002/internal/optimization/evolution"
	"github.com/mahan2079/DeVana-sub002/internal/optimization/genetic"
	"github.com/mahan2079/DeVana-sub002/internal/response"
)

// BuildEngine assembles the run engine for the problem's algorithm. Every
// algorithm shares the same objective evaluator; the ask/tell strategies run
// inside the generic adapter loop while simulated annealing drives its own
// iteration. onEval and zapLogger may be nil. The CLI and the HTTP service
// both build their engines here.
func BuildEngine(p *config.Problem, evaluator response.Evaluator, zapLogger *zap.Logger, onEval func(optimization.Evaluation)) (optimization.Engine, error) {
	space, err := p.BuildSpace()
	if err != nil {
		return nil, err
	}

	objective, err := optimization.NewObjectiveEvaluator(optimization.ObjectiveConfig{
		Space:   space,
		Client:  evaluator,
		System:  p.System,
		Sweep:   p.Sweep,
		Targets: p.EffectiveTargets(),
		Alpha:   p.Objective.Alpha,
		Sparsity: optimization.SparsityConfig{
			ActivityThreshold: p.Objective.Sparsity.ActivityThreshold,
			CountWeight:       p.Objective.Sparsity.CountWeight,
			MagnitudeWeight:   p.Objective.Sparsity.MagnitudeWeight,
		},
		OnEvaluation: onEval,
	})
	if err != nil {
		return nil, err
	}

	switch p.Algorithm {
	case "annealing":
		return annealing.New(annealing.Config{
			Space:              space,
			Objective:          objective,
			InitialTemperature: p.Annealing.InitialTemperature,
			CoolingRate:        p.Annealing.CoolingRate,
			MaxIterations:      p.MaxIterations,
			Tolerance:          p.Tolerance,
			Seed:               p.Seed,
		})
	case "evolution":
		strategy, err := evolution.New(evolution.Config{
			Space:          space,
			PopulationSize: p.Evolution.PopulationSize,
			InitialStep:    p.Evolution.InitialStep,
			Seed:           p.Seed,
		})
		if err != nil {
			return nil, err
		}
		return optimization.NewAdapter(optimization.AdapterConfig{
			Space:     space,
			Objective: objective,
			Strategy:  strategy,
			MaxRounds: p.MaxIterations,
			Tolerance: p.Tolerance,
		})
	case "bayesian":
		strategy, err := bayesian.New(bayesian.Config{
			Space:          space,
			InitialSamples: p.Bayesian.InitialSamples,
			Xi:             p.Bayesian.Xi,
			NoiseVar:       p.Bayesian.NoiseVar,
			Seed:           p.Seed,
			Logger:         zapLogger,
		})
		if err != nil {
			return nil, err
		}
		return optimization.NewAdapter(optimization.AdapterConfig{
			Space:     space,
			Objective: objective,
			Strategy:  strategy,
			MaxRounds: p.MaxIterations,
			Tolerance: p.Tolerance,
		})
	case "genetic":
		strategy, err := genetic.New(genetic.Config{
			Space:          space,
			PopulationSize: p.Genetic.PopulationSize,
			CrossoverProb:  p.Genetic.CrossoverProb,
			MutationProb:   p.Genetic.MutationProb,
			CrossoverEta:   p.Genetic.CrossoverEta,
			MutationEta:    p.Genetic.MutationEta,
			Seed:           p.Seed,
		})
		if err != nil {
			return nil, err
		}
		return optimization.NewAdapter(optimization.AdapterConfig{
			Space:          space,
			Objective:      objective,
			Strategy:       strategy,
			MaxRounds:      p.MaxIterations,
			MultiObjective: true,
		})
	default:
		return nil, optimization.ConfigErrorf("unknown algorithm %q", p.Algorithm)
	}
}
