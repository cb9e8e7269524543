// Package normality implements the Shapiro-Wilk, Anderson-Darling and
// D'Agostino K² diagnostics. Each test stands alone; combining them into a
// verdict is left to callers.
package normality

import (
	"math"
	"sort"

	"github.com/dgryski/go-onlinestats"

	"statbench/domain/core"
	"statbench/domain/stats"
	"statbench/internal/analysis/descriptive"
	"statbench/internal/analysis/distributions"
)

const (
	TestShapiroWilk     = "shapiro_wilk"
	TestAndersonDarling = "anderson_darling"
	TestDAgostinoK2     = "dagostino_k2"

	shapiroMinN   = 3
	shapiroMaxN   = 5000
	andersonMinN  = 3
	dagostinoMinN = 20
)

func newResult(test string, n int, statistic, p, alpha float64) *stats.NormalityResult {
	tr := stats.NewTestResult(statistic, p, alpha)
	return &stats.NormalityResult{
		TestResult: tr,
		Test:       test,
		N:          n,
		IsNormal:   tr.PValue > alpha,
	}
}

func prepare(test string, sample []float64, minN int, alpha float64) ([]float64, error) {
	if err := stats.ValidateAlpha(alpha); err != nil {
		return nil, err
	}
	data := descriptive.Clean(sample)
	if len(data) < minN {
		return nil, core.NewInsufficientDataError(test, len(data), minN)
	}
	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)
	if sorted[0] == sorted[len(sorted)-1] {
		return nil, core.NewDegeneracyError(test, "sample has zero variance")
	}
	return sorted, nil
}

// ShapiroWilk computes W from the AS R94 order-statistic weights and its
// p-value via Royston's normalizing transform (exact for n = 3).
// Requires 3 <= n <= 5000.
func ShapiroWilk(sample []float64, alpha float64) (*stats.NormalityResult, error) {
	x, err := prepare(TestShapiroWilk, sample, shapiroMinN, alpha)
	if err != nil {
		return nil, err
	}
	n := len(x)
	if n > shapiroMaxN {
		return nil, core.NewInvalidConfigError(TestShapiroWilk, "sample size above 5000")
	}

	// a[1..n/2] weight the spreads x(n+1-i) - x(i).
	a := onlinestats.SwilkCoeffs(n)
	num := 0.0
	for i := 1; i <= n/2; i++ {
		num += a[i] * (x[n-i] - x[i-1])
	}
	mean := descriptive.Mean(x)
	ss := 0.0
	for _, v := range x {
		d := v - mean
		ss += d * d
	}
	w := num * num / ss
	w = math.Max(0.001, math.Min(0.9999, w))

	return newResult(TestShapiroWilk, n, w, shapiroPValue(w, n), alpha), nil
}

func poly(c []float64, x float64) float64 {
	out := 0.0
	for i := len(c) - 1; i >= 0; i-- {
		out = out*x + c[i]
	}
	return out
}

func shapiroPValue(w float64, n int) float64 {
	if n == 3 {
		return stats.ClampProbability(6 / math.Pi * (math.Asin(math.Sqrt(w)) - math.Asin(math.Sqrt(0.75))))
	}
	nf := float64(n)
	y := math.Log(1 - w)
	var mu, sigma float64
	if n <= 11 {
		gamma := 0.459*nf - 2.273
		if y >= gamma {
			return 0
		}
		y = -math.Log(gamma - y)
		mu = poly([]float64{0.544, -0.39978, 0.025054, -0.0006714}, nf)
		sigma = math.Exp(poly([]float64{1.3822, -0.77857, 0.062767, -0.0020322}, nf))
	} else {
		ln := math.Log(nf)
		mu = poly([]float64{-1.5861, -0.31082, -0.083751, 0.0038915}, ln)
		sigma = math.Exp(poly([]float64{-0.4803, -0.082676, 0.0030302}, ln))
	}
	return 1 - distributions.NormalCDF((y-mu)/sigma)
}
