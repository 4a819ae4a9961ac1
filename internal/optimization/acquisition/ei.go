// Package acquisition provides acquisition functions for the Bayesian
// strategy.
package acquisition

import (
	"gonum.org/v1/gonum/stat/distuv"
)

// ExpectedImprovement scores a surrogate prediction by how much improvement
// over the best observed value it promises, for minimization.
type ExpectedImprovement struct {
	// bestObserved is the best (lowest) fitness seen so far.
	bestObserved float64
	// xi trades exploration against exploitation.
	xi float64
}

// NewExpectedImprovement creates an ExpectedImprovement function.
func NewExpectedImprovement(bestObserved, xi float64) *ExpectedImprovement {
	return &ExpectedImprovement{bestObserved: bestObserved, xi: xi}
}

// Compute returns the expected improvement of a prediction with mean mu and
// standard deviation sigma. The result is non-negative.
func (ei *ExpectedImprovement) Compute(mu, sigma float64) float64 {
	improvement := ei.bestObserved - mu - ei.xi
	if sigma <= 1e-10 {
		// The prediction is (numerically) certain.
		if improvement > 0 {
			return improvement
		}
		return 0
	}

	z := improvement / sigma
	stdNormal := distuv.UnitNormal
	// EI = improvement·Φ(z) + sigma·φ(z)
	return improvement*stdNormal.CDF(z) + sigma*stdNormal.Prob(z)
}

// UpdateBest updates the best observed value.
func (ei *ExpectedImprovement) UpdateBest(best float64) {
	ei.bestObserved = best
}

// BestObserved returns the best observed value.
func (ei *ExpectedImprovement) BestObserved() float64 {
	return ei.bestObserved
}

// SetXi sets the exploration-exploitation trade-off parameter.
func (ei *ExpectedImprovement) SetXi(xi float64) {
	ei.xi = xi
}
