package optimization

import "math/rand"

// Dimension describes one axis of the search space. A fixed dimension is
// pinned to FixedValue for the duration of a run and excluded from search.
type Dimension struct {
	// Name identifies the physical parameter this dimension maps to.
	Name string
	// Lower and Upper bound the dimension for free search.
	Lower float64
	Upper float64
	// Fixed pins the dimension to FixedValue.
	Fixed bool
	// FixedValue is the pinned value, meaningful only when Fixed is true.
	FixedValue float64
	// CostCoeff is the per-unit linear cost of the parameter magnitude,
	// used only by the third objective of the multi-objective fitness.
	CostCoeff float64
}

// ParameterSpace is an ordered, immutable sequence of dimensions. Order is
// significant: candidates align positionally with the dimension list.
type ParameterSpace struct {
	dims []Dimension
}

// NewParameterSpace validates and captures the given dimensions. It returns
// a configuration error if the list is empty or any free dimension has
// inverted bounds. A space with every dimension fixed is valid; it describes
// a degenerate search with zero degrees of freedom.
func NewParameterSpace(dims []Dimension) (*ParameterSpace, error) {
	if len(dims) == 0 {
		return nil, NewConfigError("parameter space must contain at least one dimension").
			WithComponent("parameter_space")
	}

	seen := make(map[string]struct{}, len(dims))
	copied := make([]Dimension, len(dims))
	for i, d := range dims {
		if d.Name == "" {
			return nil, ConfigErrorf("dimension %d has no name", i).
				WithComponent("parameter_space")
		}
		if _, dup := seen[d.Name]; dup {
			return nil, ConfigErrorf("duplicate dimension name %q", d.Name).
				WithComponent("parameter_space")
		}
		seen[d.Name] = struct{}{}

		if d.Fixed {
			// Collapse the bounds onto the pinned value so bounds
			// queries stay consistent for fixed dimensions.
			d.Lower = d.FixedValue
			d.Upper = d.FixedValue
		} else if d.Lower > d.Upper {
			return nil, ConfigErrorf("dimension %q has inverted bounds [%g, %g]",
				d.Name, d.Lower, d.Upper).WithComponent("parameter_space")
		}
		copied[i] = d
	}

	return &ParameterSpace{dims: copied}, nil
}

// NumDimensions returns the number of dimensions in the space.
func (s *ParameterSpace) NumDimensions() int { return len(s.dims) }

// NumFree returns the number of non-fixed dimensions.
func (s *ParameterSpace) NumFree() int {
	n := 0
	for _, d := range s.dims {
		if !d.Fixed {
			n++
		}
	}
	return n
}

// Bounds returns the lower and upper bound of dimension i.
func (s *ParameterSpace) Bounds(i int) (lower, upper float64) {
	return s.dims[i].Lower, s.dims[i].Upper
}

// IsFixed reports whether dimension i is pinned.
func (s *ParameterSpace) IsFixed(i int) bool { return s.dims[i].Fixed }

// FixedValue returns the pinned value of dimension i.
func (s *ParameterSpace) FixedValue(i int) float64 { return s.dims[i].FixedValue }

// CostCoeff returns the linear cost coefficient of dimension i.
func (s *ParameterSpace) CostCoeff(i int) float64 { return s.dims[i].CostCoeff }

// Names returns the dimension names in order.
func (s *ParameterSpace) Names() []string {
	names := make([]string, len(s.dims))
	for i, d := range s.dims {
		names[i] = d.Name
	}
	return names
}

// Patch overwrites every fixed index of x with its pinned value, in place.
// Search operators are never trusted to respect fixed dimensions; callers
// patch immediately before every evaluation.
func (s *ParameterSpace) Patch(x []float64) {
	for i, d := range s.dims {
		if d.Fixed {
			x[i] = d.FixedValue
		}
	}
}

// Patched returns a patched copy of x, leaving the input untouched.
func (s *ParameterSpace) Patched(x []float64) []float64 {
	out := append([]float64(nil), x...)
	s.Patch(out)
	return out
}

// Clamp projects every free index of x into its bounds, in place.
func (s *ParameterSpace) Clamp(x []float64) {
	for i, d := range s.dims {
		if d.Fixed {
			continue
		}
		if x[i] < d.Lower {
			x[i] = d.Lower
		} else if x[i] > d.Upper {
			x[i] = d.Upper
		}
	}
}

// Contains reports whether x lies inside the space: free indices within
// bounds, fixed indices exactly at their pinned value.
func (s *ParameterSpace) Contains(x []float64) bool {
	if len(x) != len(s.dims) {
		return false
	}
	for i, d := range s.dims {
		if d.Fixed {
			if x[i] != d.FixedValue {
				return false
			}
		} else if x[i] < d.Lower || x[i] > d.Upper {
			return false
		}
	}
	return true
}

// Sample draws one candidate uniformly at random: free dimensions uniform in
// their bounds, fixed dimensions at their pinned value. Exactly one uniform
// variate is consumed per free dimension, in dimension order.
func (s *ParameterSpace) Sample(rng *rand.Rand) []float64 {
	x := make([]float64, len(s.dims))
	for i, d := range s.dims {
		if d.Fixed {
			x[i] = d.FixedValue
			continue
		}
		x[i] = d.Lower + rng.Float64()*(d.Upper-d.Lower)
	}
	return x
}
