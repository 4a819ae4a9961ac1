// Package response defines the contract to the frequency-response evaluator
// that scores a candidate design, and ships a small modal-superposition
// reference implementation for tests, the CLI, and the default server setup.
//
// The evaluator is an external collaborator: the optimization core depends
// only on the Evaluator interface and on Result.Measurement. A missing,
// NaN, or infinite measurement is treated identically as evaluation failure.
package response

import (
	"context"
	"math"
)

// Sweep describes the frequency grid a response is computed on.
type Sweep struct {
	Start  float64 `json:"start" yaml:"start"`
	End    float64 `json:"end" yaml:"end"`
	Points int     `json:"points" yaml:"points"`
}

// Frequencies expands the sweep into its grid.
func (s Sweep) Frequencies() []float64 {
	if s.Points <= 0 {
		return nil
	}
	freqs := make([]float64, s.Points)
	if s.Points == 1 {
		freqs[0] = s.Start
		return freqs
	}
	step := (s.End - s.Start) / float64(s.Points-1)
	for i := range freqs {
		freqs[i] = s.Start + float64(i)*step
	}
	return freqs
}

// Valid reports whether the sweep describes a usable grid.
func (s Sweep) Valid() bool {
	return s.Points > 0 && s.End >= s.Start
}

// TargetCurve pairs a desired response curve with a pointwise weight curve.
// Both are aligned to the sweep grid; an empty Target means "flat unit
// response" and an empty Weight means "uniform weight".
type TargetCurve struct {
	Target []float64 `json:"target,omitempty" yaml:"target,omitempty"`
	Weight []float64 `json:"weight,omitempty" yaml:"weight,omitempty"`
}

// SystemConfig carries the fixed physical description of the system under
// optimization. It is captured once per run and never mutated by the core.
type SystemConfig struct {
	// MainMass, MainStiffness and MainDamping describe the primary
	// structure the candidate absorber parameters attach to.
	MainMass      float64 `json:"mainMass" yaml:"mainMass"`
	MainStiffness float64 `json:"mainStiffness" yaml:"mainStiffness"`
	MainDamping   float64 `json:"mainDamping" yaml:"mainDamping"`
}

// Request is one evaluation call: a patched candidate vector mapped
// positionally to named parameters, the sweep, and the target/weight pairs
// for each monitored mass. ShowFigures is always false in optimization mode;
// it exists so interactive callers can share the same request type.
type Request struct {
	System          SystemConfig
	ParameterNames  []string
	ParameterValues []float64
	Sweep           Sweep
	Targets         []TargetCurve
	ShowFigures     bool
}

// Result is the structured output of one evaluation. Measurement is the
// composite scalar the optimization core consumes; a perfectly matched
// design measures 1.0. Curves carries the achieved response per target,
// aligned to Frequencies.
type Result struct {
	Measurement float64     `json:"measurement"`
	Frequencies []float64   `json:"frequencies,omitempty"`
	Curves      [][]float64 `json:"curves,omitempty"`
}

// MeasurementUsable reports whether the result carries a finite measurement.
func (r *Result) MeasurementUsable() bool {
	return r != nil && !math.IsNaN(r.Measurement) && !math.IsInf(r.Measurement, 0)
}

// Evaluator computes the frequency response of one candidate design.
// Implementations must be safe for concurrent use: multiple optimization
// workers may evaluate at the same time.
type Evaluator interface {
	Evaluate(ctx context.Context, req Request) (*Result, error)
}

// FlatTargets builds n unit-target, unit-weight curve pairs for the sweep.
// Used when a caller supplies no explicit targets.
func FlatTargets(s Sweep, n int) []TargetCurve {
	targets := make([]TargetCurve, n)
	for i := range targets {
		t := make([]float64, s.Points)
		w := make([]float64, s.Points)
		for j := range t {
			t[j] = 1
			w[j] = 1
		}
		targets[i] = TargetCurve{Target: t, Weight: w}
	}
	return targets
}
