// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Robust Wavelet Regression for Irregularly Sampled Time Series
// Class: 02-613 at Caregie Mellon University

package lmt

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// FitPair fits the full and the smooth model on separate goroutines and
// returns both results with the comparison statistics. The fits share only
// read-only inputs. The first error cancels the other fit.
func FitPair(ctx context.Context, basis mat.Matrix, times, values, prior []float64, full, smooth Options) (*PairResult, error) {
	var out PairResult

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := FitContext(ctx, basis, times, values, prior, full)
		if err != nil {
			return fmt.Errorf("full model (k=%d): %w", full.NumCoeffs, err)
		}
		out.Full = r
		return nil
	})
	g.Go(func() error {
		r, err := FitContext(ctx, basis, times, values, prior, smooth)
		if err != nil {
			return fmt.Errorf("smooth model (k=%d): %w", smooth.NumCoeffs, err)
		}
		out.Smooth = r
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out.Comparison = Compare(out.Full, out.Smooth)
	return &out, nil
}

// Compare returns llr = 2*(logLik_full - logLik_smooth) and
// lpr = logPost_full - logPost_smooth.
func Compare(full, smooth *Result) Comparison {
	return Comparison{
		LLR: 2 * (full.LogLikelihood - smooth.LogLikelihood),
		LPR: full.LogPosterior - smooth.LogPosterior,
	}
}
