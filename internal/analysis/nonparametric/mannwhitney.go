// Package nonparametric implements rank-based two-sample tests.
package nonparametric

import (
	"math"

	"statbench/domain/core"
	"statbench/domain/stats"
	"statbench/internal/analysis/descriptive"
	"statbench/internal/analysis/distributions"
)

// smallSampleThreshold marks results where an exact p-value would be preferable
// to the normal approximation.
const smallSampleThreshold = 20

// Options tunes MannWhitneyU. The zero value ranks ties positionally.
type Options struct {
	TieMethod stats.RankMethod
}

// MannWhitneyU ranks the pooled sample (a first, then b) and compares rank
// sums. U1 = n1·n2 + n1(n1+1)/2 - R1, U2 = n1·n2 - U1 and the reported
// statistic is min(U1, U2). The p-value uses the normal approximation with a
// 0.5 continuity correction; EffectSize is r = |z|/√N.
func MannWhitneyU(a, b []float64, alpha float64, opts Options) (*stats.MannWhitneyResult, error) {
	if err := stats.ValidateAlpha(alpha); err != nil {
		return nil, err
	}
	x, y := descriptive.Clean(a), descriptive.Clean(b)
	if len(x) < 1 || len(y) < 1 {
		return nil, core.NewInsufficientDataError("mann-whitney", min(len(x), len(y)), 1)
	}
	method := opts.TieMethod
	if method == "" {
		method = stats.RankPositional
	}

	n1, n2 := float64(len(x)), float64(len(y))
	pooled := append(append(make([]float64, 0, len(x)+len(y)), x...), y...)
	ranks := descriptive.Rank(pooled, method)

	var r1, r2 float64
	for i, r := range ranks {
		if i < len(x) {
			r1 += r
		} else {
			r2 += r
		}
	}

	u1 := n1*n2 + n1*(n1+1)/2 - r1
	u2 := n1*n2 - u1
	u := math.Min(u1, u2)

	total := n1 + n2
	variance := n1 * n2 * (total + 1) / 12
	if method == stats.RankAverage {
		variance -= n1 * n2 * descriptive.TieSum(pooled) / (12 * total * (total - 1))
	}
	if variance <= 0 {
		return nil, core.NewDegeneracyError("mann-whitney", "all pooled values are tied")
	}

	meanU := n1 * n2 / 2
	z := math.Max(0, math.Abs(u-meanU)-0.5) / math.Sqrt(variance)
	p := 2 * (1 - distributions.NormalCDF(z))

	res := &stats.MannWhitneyResult{
		TestResult:  stats.NewTestResult(u, p, alpha),
		U1:          u1,
		U2:          u2,
		R1:          r1,
		R2:          r2,
		Z:           z,
		N1:          len(x),
		N2:          len(y),
		TieMethod:   method,
		SmallSample: len(x) < smallSampleThreshold || len(y) < smallSampleThreshold,
	}
	res.EffectSize = z / math.Sqrt(total)
	return res, nil
}
