package bayesian

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/mahan2079/DeVana-sub002/internal/optimization/kernels"
)

// GP is the Gaussian-process surrogate model of the Bayesian strategy.
type GP struct {
	kernel   kernels.Kernel
	noiseVar float64

	// Training data.
	X *mat.Dense    // (nSamples, nFeatures)
	y *mat.VecDense // (nSamples)

	// Precomputed values.
	alpha *mat.VecDense
	chol  *mat.Cholesky

	pool   *MatrixPool
	logger *zap.Logger
}

// NewGP creates a Gaussian-process model with the given kernel and noise
// variance. logger may be nil.
func NewGP(kernel kernels.Kernel, noiseVar float64, logger *zap.Logger) *GP {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GP{
		kernel:   kernel,
		noiseVar: noiseVar,
		pool:     NewMatrixPool(),
		logger:   logger.Named("gaussian_process"),
	}
}

// Fit conditions the model on the training data.
func (gp *GP) Fit(X *mat.Dense, y *mat.VecDense) error {
	const op = "GP.Fit"

	if X == nil || y == nil {
		return fmt.Errorf("%s: input matrices must not be nil", op)
	}
	nSamples, nFeatures := X.Dims()
	if nSamples == 0 || nFeatures == 0 {
		return fmt.Errorf("%s: input matrix X must not be empty", op)
	}
	if yLen := y.Len(); nSamples != yLen {
		return fmt.Errorf("%s: dimension mismatch: X has %d samples but y has length %d",
			op, nSamples, yLen)
	}

	gp.logger.Debug("fitting surrogate",
		zap.Int("samples", nSamples),
		zap.Int("features", nFeatures),
		zap.Float64("noise_var", gp.noiseVar),
	)

	gp.X = mat.DenseCopyOf(X)
	gp.y = mat.VecDenseCopyOf(y)

	K := gp.kernelMatrix(X, nSamples)
	defer gp.pool.PutSymDense(K)

	var chol mat.Cholesky
	if ok := chol.Factorize(K); !ok {
		return errors.New(op + ": Cholesky decomposition failed: kernel matrix is not positive definite")
	}

	// Solve K·alpha = y.
	alpha := mat.NewVecDense(nSamples, nil)
	if err := chol.SolveVecTo(alpha, y); err != nil {
		return fmt.Errorf("%s: failed to solve linear system: %w", op, err)
	}

	gp.alpha = alpha
	gp.chol = &chol
	return nil
}

// kernelMatrix builds K(X, X) with the noise variance and a small jitter on
// the diagonal for numerical stability.
func (gp *GP) kernelMatrix(X *mat.Dense, nSamples int) *mat.SymDense {
	K := gp.pool.GetSymDense(nSamples)
	for i := 0; i < nSamples; i++ {
		xi := mat.Row(nil, i, X)
		diag := gp.kernel.Eval(xi, xi)
		jitter := 1e-10 * math.Max(1, math.Abs(diag))
		K.SetSym(i, i, diag+gp.noiseVar+jitter)
		for j := i + 1; j < nSamples; j++ {
			K.SetSym(i, j, gp.kernel.Eval(xi, mat.Row(nil, j, X)))
		}
	}
	return K
}

// Predict returns the posterior predictive mean and variance at the test
// points X.
func (gp *GP) Predict(X *mat.Dense) (*mat.VecDense, *mat.VecDense, error) {
	const op = "GP.Predict"

	if X == nil {
		return nil, nil, errors.New(op + ": input matrix X is nil")
	}
	if gp.X == nil || gp.alpha == nil || gp.chol == nil {
		return nil, nil, errors.New(op + ": model not fitted")
	}

	nTest, _ := X.Dims()
	nTrain, _ := gp.X.Dims()

	mean := mat.NewVecDense(nTest, nil)
	variance := mat.NewVecDense(nTest, nil)

	// Cross-covariance between test and training points, plus the prior
	// variance at each test point.
	kss := make([]float64, nTest)
	kstar := mat.NewDense(nTest, nTrain, nil)
	for i := 0; i < nTest; i++ {
		xs := X.RawRowView(i)
		kss[i] = gp.kernel.Eval(xs, xs) + gp.noiseVar
		for j := 0; j < nTrain; j++ {
			kstar.Set(i, j, gp.kernel.Eval(xs, gp.X.RawRowView(j)))
		}
	}

	// mean = K*·alpha
	mean.MulVec(kstar, gp.alpha)

	// variance = diag(K** − K*·K⁻¹·K*ᵀ) via the Cholesky factor.
	v := mat.NewDense(nTrain, nTest, nil)
	if err := gp.chol.SolveTo(v, kstar.T()); err != nil {
		return nil, nil, fmt.Errorf("%s: failed to solve linear system: %w", op, err)
	}
	for i := 0; i < nTest; i++ {
		var sum float64
		for j := 0; j < nTrain; j++ {
			kij := kstar.At(i, j)
			sum += kij * v.At(j, i)
		}
		variance.SetVec(i, math.Max(0, kss[i]-sum))
	}

	return mean, variance, nil
}
