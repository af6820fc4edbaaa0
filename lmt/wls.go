// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Robust Wavelet Regression for Irregularly Sampled Time Series
// Class: 02-613 at Caregie Mellon University

package lmt

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// workspace holds the scratch buffers of the weighted solve. One workspace
// belongs to one Fit call and is reused across its iterations.
type workspace struct {
	m, k int

	sqw  []float64
	sqwX *mat.Dense
	sqwy *mat.VecDense
	gram *mat.SymDense
	xty  *mat.VecDense
	chol mat.Cholesky
}

func newWorkspace(m, k int) *workspace {
	return &workspace{
		m:    m,
		k:    k,
		sqw:  make([]float64, m),
		sqwX: mat.NewDense(m, k, nil),
		sqwy: mat.NewVecDense(m, nil),
		gram: mat.NewSymDense(k, nil),
		xty:  mat.NewVecDense(k, nil),
	}
}

// WLS returns the coefficients minimizing sum_i w_i (y_i - X_i beta)^2.
// x: m x k design, y: length m response, w: length m nonnegative weights.
// The normal equations X'WX beta = X'Wy are solved by Cholesky; a Gram
// matrix that is not positive definite gives ErrSolveFailed.
func WLS(x *mat.Dense, y *mat.VecDense, w []float64) (*mat.VecDense, error) {
	m, k := x.Dims()
	return newWorkspace(m, k).solve(x, y, w)
}

func (ws *workspace) solve(x *mat.Dense, y *mat.VecDense, w []float64) (*mat.VecDense, error) {
	m, k := x.Dims()
	if m != ws.m || k != ws.k {
		return nil, fmt.Errorf("design is %d x %d, workspace is %d x %d: %w", m, k, ws.m, ws.k, ErrDimension)
	}
	if y.Len() != m || len(w) != m {
		return nil, fmt.Errorf("need %d responses and weights, got %d and %d: %w", m, y.Len(), len(w), ErrDimension)
	}
	if err := checkWeights(w); err != nil {
		return nil, err
	}

	// Scale rows of X and y by sqrt(w)
	ws.sqwX.Copy(x)
	for i := 0; i < m; i++ {
		ws.sqw[i] = math.Sqrt(w[i])
		floats.Scale(ws.sqw[i], ws.sqwX.RawRowView(i))
		ws.sqwy.SetVec(i, ws.sqw[i]*y.AtVec(i))
	}

	// X'WX (k x k, symmetric) and X'Wy
	ws.gram.SymOuterK(1, ws.sqwX.T())
	ws.xty.MulVec(ws.sqwX.T(), ws.sqwy)

	if ok := ws.chol.Factorize(ws.gram); !ok {
		return nil, ErrSolveFailed
	}

	beta := mat.NewVecDense(k, nil)
	if err := ws.chol.SolveVecTo(beta, ws.xty); err != nil {
		// mat.Condition: the factorization succeeded but the system is
		// numerically singular
		return nil, fmt.Errorf("%w: %v", ErrSolveFailed, err)
	}
	return beta, nil
}

// checkWeights rejects negative or non-finite weights and an all-zero vector.
func checkWeights(w []float64) error {
	positive := false
	for i, v := range w {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("weight %d is %v: %w", i, v, ErrInvalidWeight)
		}
		if v > 0 {
			positive = true
		}
	}
	if !positive {
		return ErrZeroWeights
	}
	return nil
}

// Fitted returns X beta.
func Fitted(x mat.Matrix, beta mat.Vector) *mat.VecDense {
	m, _ := x.Dims()
	fitted := mat.NewVecDense(m, nil)
	fitted.MulVec(x, beta)
	return fitted
}

// Residuals returns y - X beta.
func Residuals(x mat.Matrix, y, beta mat.Vector) *mat.VecDense {
	resid := Fitted(x, beta)
	resid.SubVec(y, resid)
	return resid
}
