// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Robust Wavelet Regression for Irregularly Sampled Time Series
// Class: 02-613 at Caregie Mellon University

package lmt

import (
	"bytes"
	"context"
	"math"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ============================================================================
// FIXTURES
// ============================================================================

// Two interleaved levels: rows 0 and 2 load on coefficient 0, rows 1 and 3
// on coefficient 1.
func alternatingProblem() (*mat.Dense, []float64, []float64, []float64) {
	basis := mat.NewDense(4, 2, []float64{
		1, 0,
		0, 1,
		1, 0,
		0, 1,
	})
	return basis, []float64{0, 1, 2, 3}, []float64{1.0, 2.0, 1.1, 2.2}, []float64{1.0}
}

// cosineBasis is a DCT-II style basis with a constant first column.
func cosineBasis(rows, cols int) *mat.Dense {
	b := mat.NewDense(rows, cols, nil)
	for r := 0; r < rows; r++ {
		b.Set(r, 0, 1)
		for j := 1; j < cols; j++ {
			b.Set(r, j, math.Cos(math.Pi*float64(j)*(float64(r)+0.5)/float64(rows)))
		}
	}
	return b
}

// smoothSignal samples 2 + 1.5*cos(pi*s) at irregular times with a small
// deterministic wiggle and two large outliers.
func smoothSignal(n int) (times, values []float64) {
	times = make([]float64, n)
	for i := range times {
		times[i] = float64(i)*1.7 + 0.3*math.Sin(float64(i))
	}
	values = make([]float64, n)
	for i := range values {
		s := (times[i] - times[0]) / (times[n-1] - times[0])
		values[i] = 2 + 1.5*math.Cos(math.Pi*s) + 0.1*math.Sin(7.3*float64(i))
		if i == 5 || i == 23 {
			values[i] += 5
		}
	}
	return times, values
}

func constPrior(n int, v float64) []float64 {
	p := make([]float64, n)
	for i := range p {
		p[i] = v
	}
	return p
}

// ============================================================================
// FIT TESTS
// ============================================================================

func TestFitAlternatingLevels(t *testing.T) {
	basis, times, values, prior := alternatingProblem()

	res, err := Fit(basis, times, values, prior, Options{DF: 5, NumCoeffs: 2, MaxIter: 50, Tol: 1e-9})
	require.NoError(t, err)

	require.Len(t, res.Coefficients, 2)
	// Coefficient 0 is free of the prior and its residuals are symmetric
	assert.InDelta(t, 1.05, res.Coefficients[0], 1e-9)
	// Coefficient 1 is shrunk from the data toward 0 by the prior
	assert.InDelta(t, 1.410341761234203, res.Coefficients[1], 1e-9)
	assert.InDelta(t, 0.5467538829352998, res.Scale, 1e-9)
	assert.InDelta(t, 0.22646271978422866, res.LogLikelihood, 1e-9)
	assert.InDelta(t, -1.2906345655868232, res.LogPosterior, 1e-9)
	assert.True(t, res.Converged)
	assert.Equal(t, 1, res.Iterations)
}

// The first EM step of the alternating problem lowers the log-posterior; the
// signed relative change is negative and stops the loop.
func TestFitStopsOnDecrease(t *testing.T) {
	basis, times, values, prior := alternatingProblem()
	est, err := newEstimator(basis, times, values, prior, Options{DF: 5, NumCoeffs: 2}.withDefaults())
	require.NoError(t, err)

	s0, err := est.initState()
	require.NoError(t, err)
	assert.InDelta(t, -1.2813806581802665, s0.logPost, 1e-9)

	s1, err := est.step(s0)
	require.NoError(t, err)
	assert.Less(t, s1.logPost, s0.logPost)
}

func TestFitSmoothSignal(t *testing.T) {
	basis := cosineBasis(32, 8)
	times, values := smoothSignal(40)
	prior := constPrior(7, 0.5)

	tests := []struct {
		k          int
		iterations int
		logLik     float64
		logPost    float64
	}{
		{8, 6, 33.269918522712814, 27.578112433958072},
		{2, 5, 31.645532127815994, 19.784013988195802},
	}

	for _, test := range tests {
		res, err := Fit(basis, times, values, prior, Options{DF: 5, NumCoeffs: test.k})
		require.NoError(t, err, "k = %d", test.k)

		require.Len(t, res.Coefficients, test.k)
		for _, c := range res.Coefficients {
			assert.False(t, math.IsNaN(c) || math.IsInf(c, 0))
		}
		assert.True(t, res.Converged)
		assert.Equal(t, test.iterations, res.Iterations, "k = %d", test.k)
		assert.InDelta(t, test.logLik, res.LogLikelihood, 1e-7, "k = %d", test.k)
		assert.InDelta(t, test.logPost, res.LogPosterior, 1e-7, "k = %d", test.k)

		// Outliers are downweighted, so the level and amplitude are recovered
		assert.InDelta(t, 2.0, res.Coefficients[0], 0.05)
		assert.InDelta(t, 1.5, res.Coefficients[1], 0.05)
		assert.Greater(t, res.Scale, 0.0)
	}
}

// On the smooth signal the first EM transition raises the log-posterior and
// the outlier weights fall below the rest.
func TestFitFirstStepImproves(t *testing.T) {
	basis := cosineBasis(32, 8)
	times, values := smoothSignal(40)

	est, err := newEstimator(basis, times, values, constPrior(7, 0.5), Options{DF: 5}.withDefaults())
	require.NoError(t, err)

	s0, err := est.initState()
	require.NoError(t, err)
	s1, err := est.step(s0)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, s1.logPost, s0.logPost)

	obs := s1.weights[:est.design.N]
	meanWeight := stat.Mean(obs, nil)
	assert.Less(t, obs[5], meanWeight)
	assert.Less(t, obs[23], meanWeight)

	// Prior-row weights are never updated
	assert.Equal(t, constPrior(7, 0.5), s1.weights[est.design.N:])
}

// With very large df the E step leaves the weights at 1.
func TestFitLargeDFWeightsApproachOne(t *testing.T) {
	basis := cosineBasis(32, 8)
	times, values := smoothSignal(40)

	for _, df := range []float64{1e3, 1e6, 1e12} {
		est, err := newEstimator(basis, times, values, constPrior(7, 0.5), Options{DF: df}.withDefaults())
		require.NoError(t, err)

		s0, err := est.initState()
		require.NoError(t, err)
		s1, err := est.step(s0)
		require.NoError(t, err)

		maxDev := 0.0
		for _, w := range s1.weights[:est.design.N] {
			maxDev = math.Max(maxDev, math.Abs(w-1))
		}
		// Largest squared standardized residual is well below 1000
		assert.Less(t, maxDev, 1000/df, "df = %v", df)
	}
}

func TestFitDeterministic(t *testing.T) {
	basis := cosineBasis(32, 8)
	times, values := smoothSignal(40)
	prior := constPrior(7, 0.5)

	a, err := Fit(basis, times, values, prior, Options{DF: 4})
	require.NoError(t, err)
	b, err := Fit(basis, times, values, prior, Options{DF: 4})
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.True(t, floats.Equal(a.Coefficients, b.Coefficients))
}

// n == k: still solvable because of the prior rows, and never NaN.
func TestFitMinimalRank(t *testing.T) {
	basis := mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	})
	res, err := Fit(basis, []float64{0, 1, 2}, []float64{1, 2, 3}, []float64{1, 1}, Options{DF: 5, MaxIter: 100})
	require.NoError(t, err)

	assert.InDelta(t, 1.0, res.Coefficients[0], 1e-12)
	assert.InDelta(t, 1.0171111297923696, res.Coefficients[1], 1e-9)
	assert.InDelta(t, 1.36320333641932, res.Coefficients[2], 1e-9)
	assert.Equal(t, 4, res.Iterations)
}

func TestFitNotConverged(t *testing.T) {
	basis := cosineBasis(32, 8)
	times, values := smoothSignal(40)

	res, err := Fit(basis, times, values, constPrior(7, 0.5), Options{DF: 5, MaxIter: 3})
	require.NoError(t, err)
	assert.False(t, res.Converged)
	assert.Equal(t, 3, res.Iterations)
	for _, c := range res.Coefficients {
		assert.False(t, math.IsNaN(c))
	}
}

func TestFitErrors(t *testing.T) {
	basis, times, values, _ := alternatingProblem()

	_, err := Fit(basis, times, values, []float64{0}, Options{NumCoeffs: 2})
	assert.ErrorIs(t, err, ErrPriorScale)

	_, err = Fit(basis, times, values, []float64{-1}, Options{NumCoeffs: 2})
	assert.ErrorIs(t, err, ErrPriorScale)

	_, err = Fit(basis, times, values, nil, Options{NumCoeffs: 2})
	assert.ErrorIs(t, err, ErrPriorLength)

	_, err = Fit(basis, []float64{1, 1, 1, 1}, values, []float64{1}, Options{NumCoeffs: 2})
	assert.ErrorIs(t, err, ErrDegenerateTimeRange)

	// A perfect intercept-only fit has zero residual scale
	_, err = Fit(cosineBasis(8, 2), times, []float64{3, 3, 3, 3}, nil, Options{NumCoeffs: 1})
	assert.ErrorIs(t, err, ErrDegenerateScale)
}

func TestFitContextCanceled(t *testing.T) {
	basis := cosineBasis(32, 8)
	times, values := smoothSignal(40)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := FitContext(ctx, basis, times, values, constPrior(7, 0.5), Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFitLogsIterations(t *testing.T) {
	basis := cosineBasis(32, 8)
	times, values := smoothSignal(40)

	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetLevel(logrus.DebugLevel)

	_, err := Fit(basis, times, values, constPrior(7, 0.5), Options{DF: 5, Logger: logger})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "EM iteration")
	assert.Contains(t, buf.String(), "logPosterior=")
}

func TestOptionsDefaults(t *testing.T) {
	o := Options{}.withDefaults()
	assert.Equal(t, DefaultDF, o.DF)
	assert.Equal(t, DefaultMaxIter, o.MaxIter)
	assert.Equal(t, DefaultTol, o.Tol)

	o = Options{DF: 0.5}.withDefaults()
	assert.Equal(t, 1.0, o.DF)
}
