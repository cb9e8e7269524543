// Package regression fits simple linear regression and binary logistic
// regression models.
package regression

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"statbench/domain/core"
	"statbench/domain/stats"
	"statbench/internal/analysis/distributions"
)

// Linear fits y = intercept + slope·x by ordinary least squares. Pairs with a
// non-finite side are dropped. The slope's standard error, t and p-value need
// at least three pairs; with two the p-value is 1.
func Linear(x, y []float64) (*stats.LinearRegressionResult, error) {
	if len(x) != len(y) {
		return nil, core.NewInvalidConfigError("linear regression", "x and y must have equal length")
	}
	xs, ys := finitePairs(x, y)
	n := len(xs)
	if n < 2 {
		return nil, core.NewInsufficientDataError("linear regression", n, 2)
	}
	if stat.Variance(xs, nil) == 0 {
		return nil, core.NewDegeneracyError("linear regression", "x has zero variance")
	}

	intercept, slope := stat.LinearRegression(xs, ys, nil, false)

	res := &stats.LinearRegressionResult{
		Slope:     slope,
		Intercept: intercept,
		N:         n,
		PValue:    1,
	}
	if stat.Variance(ys, nil) > 0 {
		res.RSquared = stat.RSquared(xs, ys, nil, intercept, slope)
	}

	sse, sae := 0.0, 0.0
	for i := range xs {
		e := ys[i] - res.Predict(xs[i])
		sse += e * e
		sae += math.Abs(e)
	}
	res.RMSE = math.Sqrt(sse / float64(n))
	res.MAE = sae / float64(n)

	if n >= 3 {
		meanX := stat.Mean(xs, nil)
		sxx := 0.0
		for _, v := range xs {
			sxx += (v - meanX) * (v - meanX)
		}
		df := float64(n - 2)
		res.SlopeStdErr = math.Sqrt(sse / df / sxx)
		switch {
		case res.SlopeStdErr > 0:
			res.TStatistic = slope / res.SlopeStdErr
			res.PValue = distributions.TTwoTailedP(res.TStatistic, df)
		case slope != 0:
			// exact fit
			res.PValue = 0
		}
	}
	return res, nil
}

func finitePairs(x, y []float64) ([]float64, []float64) {
	xs := make([]float64, 0, len(x))
	ys := make([]float64, 0, len(y))
	for i := range x {
		if !finite(x[i]) || !finite(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	return xs, ys
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
