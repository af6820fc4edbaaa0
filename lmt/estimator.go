// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Robust Wavelet Regression for Irregularly Sampled Time Series
// Class: 02-613 at Caregie Mellon University

package lmt

import (
	"context"
	"fmt"
	"io"
	"math"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// estimator carries the fixed inputs of one EM run. The per-iteration
// estimates live in emState values.
type estimator struct {
	design     *Design
	prior      []float64
	df         float64
	priorScale float64 // prior[0], divides tau for the prior block
	ws         *workspace
	log        logrus.FieldLogger
}

// Fit runs the EM estimator for the Student-t wavelet model.
// basis: basisRows x basisCols, row-indexed by the rescaled time grid
// times, values: the n observations
// prior: at least k-1 prior precisions; prior[0] also scales the prior block
// opts.NumCoeffs selects k; 0 means all basis columns.
// Non-convergence is not an error: check Result.Converged.
func Fit(basis mat.Matrix, times, values, prior []float64, opts Options) (*Result, error) {
	return FitContext(context.Background(), basis, times, values, prior, opts)
}

// FitContext is Fit with a context checked before every EM iteration, so a
// deadline bounds the run time.
func FitContext(ctx context.Context, basis mat.Matrix, times, values, prior []float64, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	est, err := newEstimator(basis, times, values, prior, opts)
	if err != nil {
		return nil, err
	}
	d := est.design

	state, err := est.initState()
	if err != nil {
		return nil, fmt.Errorf("initial fit: %w", err)
	}

	iterations, converged := opts.MaxIter, false
	for iter := 0; iter < opts.MaxIter; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("EM stopped after %d iterations: %w", iter, err)
		}

		next, err := est.step(state)
		if err != nil {
			return nil, fmt.Errorf("EM iteration %d: %w", iter+1, err)
		}

		// Signed relative change: a small decrease also stops the loop
		delta := (next.logPost - state.logPost) / math.Abs(next.logPost+state.logPost) * 2

		entry := est.log.WithFields(logrus.Fields{
			"k":            d.K,
			"iter":         iter + 1,
			"tau":          next.tau,
			"logPosterior": next.logPost,
			"delta":        delta,
		})
		if next.logPost < state.logPost {
			entry.Debug("logPosterior decreased")
		} else {
			entry.Debug("EM iteration")
		}

		state = next
		if delta < opts.Tol {
			iterations, converged = iter+1, true
			break
		}
	}

	if !converged {
		est.log.WithFields(logrus.Fields{
			"k":       d.K,
			"maxIter": opts.MaxIter,
		}).Warn("EM did not converge")
	}

	return &Result{
		Coefficients:  mat.Col(nil, 0, state.coef),
		Scale:         state.tau,
		LogLikelihood: state.logLik,
		LogPosterior:  state.logPost,
		Iterations:    iterations,
		Converged:     converged,
	}, nil
}

// newEstimator assembles the design and checks the prior scale.
// opts must already have its defaults applied.
func newEstimator(basis mat.Matrix, times, values, prior []float64, opts Options) (*estimator, error) {
	if opts.NumCoeffs == 0 {
		_, opts.NumCoeffs = basis.Dims()
	}

	d, err := AssembleDesign(basis, times, values, prior, opts.NumCoeffs)
	if err != nil {
		return nil, err
	}

	est := &estimator{
		design: d,
		prior:  prior[:d.K-1],
		df:     opts.DF,
		ws:     newWorkspace(d.M, d.K),
		log:    opts.Logger,
	}
	if est.log == nil {
		est.log = discardLogger()
	}
	if d.K > 1 {
		est.priorScale = prior[0]
		if !(est.priorScale > 0) || math.IsInf(est.priorScale, 0) {
			return nil, fmt.Errorf("prior[0] = %v: %w", est.priorScale, ErrPriorScale)
		}
	}
	return est, nil
}

// initState sets observation weights to 1 and prior-row weights to the prior
// precisions, then runs the first weighted solve.
func (est *estimator) initState() (*emState, error) {
	d := est.design
	w := make([]float64, d.M)
	for i := 0; i < d.N; i++ {
		w[i] = 1
	}
	copy(w[d.N:], est.prior)
	return est.mStep(w)
}

// step is one E step followed by one M step. prev is not modified.
func (est *estimator) step(prev *emState) (*emState, error) {
	n := est.design.N
	w := make([]float64, len(prev.weights))
	copy(w, prev.weights)

	// E step: t scale-mixture weights; prior rows keep their precisions
	for i := 0; i < n; i++ {
		r := prev.resid.AtVec(i)
		w[i] = (est.df + 1) / (est.df + r*r/prev.tau)
	}
	return est.mStep(w)
}

// mStep solves for the coefficients under weights w and recomputes tau and
// the log-likelihood and log-posterior.
func (est *estimator) mStep(w []float64) (*emState, error) {
	d := est.design

	coef, err := est.ws.solve(d.X, d.Y, w)
	if err != nil {
		return nil, err
	}
	resid := Residuals(d.X, d.Y, coef)
	r := resid.RawVector().Data

	tau := 0.0
	for i, v := range r {
		tau += v * v * w[i]
	}
	tau /= floats.Sum(w)
	if !(tau > 0) || math.IsInf(tau, 0) {
		return nil, fmt.Errorf("tau = %v: %w", tau, ErrDegenerateScale)
	}

	logLik := StudentTLogDensity(r[:d.N], est.df, 0, math.Sqrt(tau))
	logPrior := 0.0
	if d.K > 1 {
		logPrior = NormalLogDensity(r[d.N:], 0, math.Sqrt(tau/est.priorScale))
	}

	return &emState{
		coef:    coef,
		resid:   resid,
		weights: w,
		tau:     tau,
		logLik:  logLik,
		logPost: logLik + logPrior,
	}, nil
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
