package bayesian

import "gonum.org/v1/gonum/mat"

// MatrixPool reuses symmetric matrix allocations across surrogate refits.
// The training-set size grows by one per round, so pooling by exact size
// would never hit; instead the pool keeps recently released matrices and
// reallocates on size mismatch.
type MatrixPool struct {
	sym []*mat.SymDense
}

// NewMatrixPool creates an empty pool.
func NewMatrixPool() *MatrixPool {
	return &MatrixPool{sym: make([]*mat.SymDense, 0, 4)}
}

// GetSymDense returns a zeroed n×n symmetric matrix.
func (p *MatrixPool) GetSymDense(n int) *mat.SymDense {
	for i := len(p.sym) - 1; i >= 0; i-- {
		m := p.sym[i]
		if m.SymmetricDim() == n {
			p.sym = append(p.sym[:i], p.sym[i+1:]...)
			m.Zero()
			return m
		}
	}
	return mat.NewSymDense(n, nil)
}

// PutSymDense returns a matrix to the pool.
func (p *MatrixPool) PutSymDense(m *mat.SymDense) {
	if m == nil {
		return
	}
	if len(p.sym) >= cap(p.sym) && len(p.sym) >= 4 {
		// Keep the pool small; old sizes are never requested again.
		p.sym = p.sym[1:]
	}
	p.sym = append(p.sym, m)
}
