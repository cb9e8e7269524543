// Package parametric implements t-tests and one-way ANOVA.
package parametric

import (
	"errors"
	"math"

	"statbench/domain/core"
	"statbench/domain/stats"
	"statbench/internal/analysis/descriptive"
	"statbench/internal/analysis/distributions"
)

const minGroupSize = 2

type sampleStats struct {
	n        int
	mean     float64
	variance float64
}

func summarize(test string, sample []float64) (sampleStats, error) {
	data := descriptive.Clean(sample)
	if len(data) < minGroupSize {
		return sampleStats{}, core.NewInsufficientDataError(test, len(data), minGroupSize)
	}
	return sampleStats{
		n:        len(data),
		mean:     descriptive.Mean(data),
		variance: descriptive.SampleVariance(data),
	}, nil
}

// finish fills the inferential part of a t-test from the mean difference, its
// standard error and degrees of freedom.
func finish(res *stats.TTestResult, diff, se, df, effect, alpha float64) {
	t := diff / se
	res.TestResult = stats.NewTestResult(t, distributions.TTwoTailedP(t, df), alpha)
	res.DegreesOfFreedom = df
	res.EffectSize = effect
	res.MeanDifference = diff
	res.StdErr = se

	margin := distributions.TCritical(alpha, df) * se
	res.CILower = diff - margin
	res.CIUpper = diff + margin
}

// OneSampleTTest tests H0: mean == mu0 with t = (x̄ - mu0) / (s / √n), df = n - 1.
func OneSampleTTest(sample []float64, mu0, alpha float64) (*stats.TTestResult, error) {
	if err := stats.ValidateAlpha(alpha); err != nil {
		return nil, err
	}
	s, err := summarize("one-sample t-test", sample)
	if err != nil {
		return nil, err
	}
	sd := math.Sqrt(s.variance)
	if sd == 0 {
		return nil, core.NewDegeneracyError("one-sample t-test", "sample has zero variance")
	}

	res := &stats.TTestResult{Kind: stats.TTestOneSample, N1: s.n, Mean1: s.mean}
	diff := s.mean - mu0
	finish(res, diff, sd/math.Sqrt(float64(s.n)), float64(s.n-1), diff/sd, alpha)
	return res, nil
}

// IndependentTTest is the pooled-variance two-sample t-test with
// df = n1 + n2 - 2. MeanDifference is mean(a) - mean(b) and EffectSize is Cohen's d.
func IndependentTTest(a, b []float64, alpha float64) (*stats.TTestResult, error) {
	if err := stats.ValidateAlpha(alpha); err != nil {
		return nil, err
	}
	sa, err := summarize("independent t-test", a)
	if err != nil {
		return nil, err
	}
	sb, err := summarize("independent t-test", b)
	if err != nil {
		return nil, err
	}

	df := float64(sa.n + sb.n - 2)
	pooled := ((float64(sa.n)-1)*sa.variance + (float64(sb.n)-1)*sb.variance) / df
	sp := math.Sqrt(pooled)
	if sp == 0 {
		return nil, core.NewDegeneracyError("independent t-test", "both groups have zero variance")
	}

	res := &stats.TTestResult{
		Kind:  stats.TTestIndependent,
		N1:    sa.n,
		N2:    sb.n,
		Mean1: sa.mean,
		Mean2: sb.mean,
	}
	diff := sa.mean - sb.mean
	se := sp * math.Sqrt(1/float64(sa.n)+1/float64(sb.n))
	finish(res, diff, se, df, diff/sp, alpha)
	return res, nil
}

// WelchTTest drops the equal-variance assumption and uses the
// Welch-Satterthwaite degrees of freedom.
func WelchTTest(a, b []float64, alpha float64) (*stats.TTestResult, error) {
	if err := stats.ValidateAlpha(alpha); err != nil {
		return nil, err
	}
	sa, err := summarize("welch t-test", a)
	if err != nil {
		return nil, err
	}
	sb, err := summarize("welch t-test", b)
	if err != nil {
		return nil, err
	}

	va := sa.variance / float64(sa.n)
	vb := sb.variance / float64(sb.n)
	se := math.Sqrt(va + vb)
	if se == 0 {
		return nil, core.NewDegeneracyError("welch t-test", "both groups have zero variance")
	}
	df := (va + vb) * (va + vb) / (va*va/float64(sa.n-1) + vb*vb/float64(sb.n-1))

	res := &stats.TTestResult{
		Kind:  stats.TTestWelch,
		N1:    sa.n,
		N2:    sb.n,
		Mean1: sa.mean,
		Mean2: sb.mean,
	}
	diff := sa.mean - sb.mean
	finish(res, diff, se, df, diff/math.Sqrt((sa.variance+sb.variance)/2), alpha)
	return res, nil
}

// PairedTTest is a one-sample t-test on the differences a[i] - b[i].
// Pairs where either side is not finite are dropped.
func PairedTTest(a, b []float64, alpha float64) (*stats.TTestResult, error) {
	if err := stats.ValidateAlpha(alpha); err != nil {
		return nil, err
	}
	if len(a) != len(b) {
		return nil, core.NewInvalidConfigError("paired t-test", "samples must have equal length")
	}

	var xs, ys, diffs []float64
	for i := range a {
		if !finite(a[i]) || !finite(b[i]) {
			continue
		}
		xs = append(xs, a[i])
		ys = append(ys, b[i])
		diffs = append(diffs, a[i]-b[i])
	}
	if len(diffs) < minGroupSize {
		return nil, core.NewInsufficientDataError("paired t-test", len(diffs), minGroupSize)
	}

	res, err := OneSampleTTest(diffs, 0, alpha)
	if err != nil {
		if errors.Is(err, core.ErrNumericDegeneracy) {
			return nil, core.NewDegeneracyError("paired t-test", "differences have zero variance")
		}
		return nil, err
	}
	res.Kind = stats.TTestPaired
	res.N2 = res.N1
	res.Mean1 = descriptive.Mean(xs)
	res.Mean2 = descriptive.Mean(ys)
	return res, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
