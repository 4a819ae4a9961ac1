// Package kernels provides covariance functions for the Gaussian-process
// surrogate of the Bayesian strategy.
package kernels

import (
	"fmt"
	"math"
)

// Kernel is a covariance function between two points in parameter space.
type Kernel interface {
	// Eval computes the kernel value between x1 and x2.
	Eval(x1, x2 []float64) float64

	// Hyperparameters returns the current hyperparameters.
	Hyperparameters() []float64

	// SetHyperparameters sets the kernel's hyperparameters.
	SetHyperparameters(params []float64) error
}

// RBFKernel is the squared-exponential kernel.
type RBFKernel struct {
	// lengthScale controls smoothness (larger = smoother).
	lengthScale float64
	// signalVar controls the amplitude of the modeled function.
	signalVar float64
}

// NewRBFKernel creates an RBF kernel. Both parameters must be positive.
func NewRBFKernel(lengthScale, signalVar float64) *RBFKernel {
	if lengthScale <= 0 {
		panic(fmt.Sprintf("lengthScale must be positive, got %v", lengthScale))
	}
	if signalVar <= 0 {
		panic(fmt.Sprintf("signalVar must be positive, got %v", signalVar))
	}
	return &RBFKernel{lengthScale: lengthScale, signalVar: signalVar}
}

// Eval computes the RBF kernel value between x1 and x2.
func (k *RBFKernel) Eval(x1, x2 []float64) float64 {
	sumSq := 0.0
	for i := range x1 {
		diff := x1[i] - x2[i]
		sumSq += diff * diff
	}
	return k.signalVar * math.Exp(-sumSq/(2*k.lengthScale*k.lengthScale))
}

// Hyperparameters returns {lengthScale, signalVar}.
func (k *RBFKernel) Hyperparameters() []float64 {
	return []float64{k.lengthScale, k.signalVar}
}

// SetHyperparameters sets {lengthScale, signalVar}.
func (k *RBFKernel) SetHyperparameters(params []float64) error {
	if len(params) != 2 {
		return fmt.Errorf("expected 2 hyperparameters, got %d", len(params))
	}
	if params[0] <= 0 || params[1] <= 0 {
		return fmt.Errorf("hyperparameters must be positive, got %v", params)
	}
	k.lengthScale = params[0]
	k.signalVar = params[1]
	return nil
}

// Matern52Kernel is the Matérn 5/2 kernel, the default surrogate covariance:
// rougher than RBF, which suits response-error surfaces with sharp valleys
// near resonance matches.
type Matern52Kernel struct {
	lengthScale float64
	signalVar   float64
}

// NewMatern52Kernel creates a Matérn 5/2 kernel. Both parameters must be
// positive.
func NewMatern52Kernel(lengthScale, signalVar float64) *Matern52Kernel {
	if lengthScale <= 0 {
		panic(fmt.Sprintf("lengthScale must be positive, got %v", lengthScale))
	}
	if signalVar <= 0 {
		panic(fmt.Sprintf("signalVar must be positive, got %v", signalVar))
	}
	return &Matern52Kernel{lengthScale: lengthScale, signalVar: signalVar}
}

// Eval computes the Matérn 5/2 kernel value between x1 and x2.
func (k *Matern52Kernel) Eval(x1, x2 []float64) float64 {
	sumSq := 0.0
	for i := range x1 {
		diff := x1[i] - x2[i]
		sumSq += diff * diff
	}
	r := math.Sqrt(sumSq) / k.lengthScale
	poly := 1.0 + math.Sqrt(5)*r + (5.0/3.0)*r*r
	return k.signalVar * poly * math.Exp(-math.Sqrt(5)*r)
}

// Hyperparameters returns {lengthScale, signalVar}.
func (k *Matern52Kernel) Hyperparameters() []float64 {
	return []float64{k.lengthScale, k.signalVar}
}

// SetHyperparameters sets {lengthScale, signalVar}.
func (k *Matern52Kernel) SetHyperparameters(params []float64) error {
	if len(params) != 2 {
		return fmt.Errorf("expected 2 hyperparameters, got %d", len(params))
	}
	if params[0] <= 0 || params[1] <= 0 {
		return fmt.Errorf("hyperparameters must be positive, got %v", params)
	}
	k.lengthScale = params[0]
	k.signalVar = params[1]
	return nil
}
