package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mahan2079/DeVana-sub002/internal/optimization"
	"github.com/mahan2079/DeVana-sub002/internal/response"
)

// Problem is a complete optimization problem definition as loaded from a
// YAML file. It carries everything a run needs except the evaluator and the
// logger: the tunable parameter space, the physical system, the frequency
// sweep with its targets, and the per-algorithm settings.
type Problem struct {
	Name      string `json:"name" yaml:"name"`
	Algorithm string `json:"algorithm" yaml:"algorithm"`

	Parameters []ParameterDef `json:"parameters" yaml:"parameters"`

	System  response.SystemConfig  `json:"system" yaml:"system"`
	Sweep   response.Sweep         `json:"sweep" yaml:"sweep"`
	Targets []response.TargetCurve `json:"targets" yaml:"targets"`

	Objective ObjectiveDef `json:"objective" yaml:"objective"`

	Annealing AnnealingDef `json:"annealing" yaml:"annealing"`
	Evolution EvolutionDef `json:"evolution" yaml:"evolution"`
	Bayesian  BayesianDef  `json:"bayesian" yaml:"bayesian"`
	Genetic   GeneticDef   `json:"genetic" yaml:"genetic"`

	// MaxIterations and Tolerance apply to whichever algorithm runs.
	MaxIterations int     `json:"maxIterations" yaml:"maxIterations"`
	Tolerance     float64 `json:"tolerance" yaml:"tolerance"`
	Seed          int64   `json:"seed" yaml:"seed"`
}

// ParameterDef is one tunable (or pinned) dimension of the design.
type ParameterDef struct {
	Name       string  `json:"name" yaml:"name"`
	Lower      float64 `json:"lower" yaml:"lower"`
	Upper      float64 `json:"upper" yaml:"upper"`
	Fixed      bool    `json:"fixed" yaml:"fixed"`
	FixedValue float64 `json:"fixedValue" yaml:"fixedValue"`
	CostCoeff  float64 `json:"costCoeff" yaml:"costCoeff"`
}

// ObjectiveDef holds the fitness shaping weights.
type ObjectiveDef struct {
	Alpha    float64 `json:"alpha" yaml:"alpha"`
	Sparsity struct {
		ActivityThreshold float64 `json:"activityThreshold" yaml:"activityThreshold"`
		CountWeight       float64 `json:"countWeight" yaml:"countWeight"`
		MagnitudeWeight   float64 `json:"magnitudeWeight" yaml:"magnitudeWeight"`
	} `json:"sparsity" yaml:"sparsity"`
}

// AnnealingDef holds the simulated-annealing hyperparameters.
type AnnealingDef struct {
	InitialTemperature float64 `json:"initialTemperature" yaml:"initialTemperature"`
	CoolingRate        float64 `json:"coolingRate" yaml:"coolingRate"`
}

// EvolutionDef holds the evolution-strategy hyperparameters.
type EvolutionDef struct {
	PopulationSize int     `json:"populationSize" yaml:"populationSize"`
	InitialStep    float64 `json:"initialStep" yaml:"initialStep"`
}

// BayesianDef holds the Bayesian-optimization hyperparameters.
type BayesianDef struct {
	InitialSamples int     `json:"initialSamples" yaml:"initialSamples"`
	Xi             float64 `json:"xi" yaml:"xi"`
	NoiseVar       float64 `json:"noiseVar" yaml:"noiseVar"`
}

// GeneticDef holds the multi-objective genetic hyperparameters.
type GeneticDef struct {
	PopulationSize int     `json:"populationSize" yaml:"populationSize"`
	CrossoverProb  float64 `json:"crossoverProb" yaml:"crossoverProb"`
	MutationProb   float64 `json:"mutationProb" yaml:"mutationProb"`
	CrossoverEta   float64 `json:"crossoverEta" yaml:"crossoverEta"`
	MutationEta    float64 `json:"mutationEta" yaml:"mutationEta"`
}

// LoadProblem reads and validates a problem definition from a YAML file.
func LoadProblem(path string) (*Problem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read problem file: %w", err)
	}
	return ParseProblem(data)
}

// ParseProblem parses and validates a YAML problem definition.
func ParseProblem(data []byte) (*Problem, error) {
	p := &Problem{}
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("parse problem file: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks the cross-field constraints a YAML schema cannot express.
func (p *Problem) Validate() error {
	switch p.Algorithm {
	case "annealing", "evolution", "bayesian", "genetic":
	case "":
		return fmt.Errorf("problem: algorithm is required")
	default:
		return fmt.Errorf("problem: unknown algorithm %q", p.Algorithm)
	}
	if len(p.Parameters) == 0 {
		return fmt.Errorf("problem: at least one parameter is required")
	}
	if !p.Sweep.Valid() {
		return fmt.Errorf("problem: sweep must have points > 0 and end >= start")
	}
	for _, t := range p.Targets {
		if len(t.Target) != 0 && len(t.Target) != p.Sweep.Points {
			return fmt.Errorf("problem: target curve length %d does not match sweep points %d",
				len(t.Target), p.Sweep.Points)
		}
		if len(t.Weight) != 0 && len(t.Weight) != p.Sweep.Points {
			return fmt.Errorf("problem: weight curve length %d does not match sweep points %d",
				len(t.Weight), p.Sweep.Points)
		}
	}
	if p.MaxIterations < 0 {
		return fmt.Errorf("problem: maxIterations must be >= 0")
	}
	if p.Tolerance < 0 {
		return fmt.Errorf("problem: tolerance must be >= 0")
	}
	return nil
}

// ApplyDefaults fills the iteration budget and the convergence tolerance
// from the service configuration when the problem omits them. The HTTP
// handler and the CLI both call this before building an engine.
func (p *Problem) ApplyDefaults(cfg *Config) {
	if p.MaxIterations == 0 {
		p.MaxIterations = cfg.Optimization.DefaultMaxIterations
	}
	if p.Tolerance == 0 {
		p.Tolerance = cfg.Optimization.DefaultTolerance
	}
}

// BuildSpace converts the parameter definitions into a validated
// optimization.ParameterSpace.
func (p *Problem) BuildSpace() (*optimization.ParameterSpace, error) {
	dims := make([]optimization.Dimension, len(p.Parameters))
	for i, def := range p.Parameters {
		dims[i] = optimization.Dimension{
			Name:       def.Name,
			Lower:      def.Lower,
			Upper:      def.Upper,
			Fixed:      def.Fixed,
			FixedValue: def.FixedValue,
			CostCoeff:  def.CostCoeff,
		}
	}
	return optimization.NewParameterSpace(dims)
}

// EffectiveTargets returns the configured targets, or flat unit targets when
// the problem file provides none.
func (p *Problem) EffectiveTargets() []response.TargetCurve {
	if len(p.Targets) > 0 {
		return p.Targets
	}
	return response.FlatTargets(p.Sweep, 1)
}
