package normality

import (
	"math"

	"statbench/domain/stats"
	"statbench/internal/analysis/descriptive"
	"statbench/internal/analysis/distributions"
)

// DAgostinoK2 combines the skewness and kurtosis z-scores into K² = Z1² + Z2²,
// referred to χ²(2). Requires n >= 20.
func DAgostinoK2(sample []float64, alpha float64) (*stats.NormalityResult, error) {
	x, err := prepare(TestDAgostinoK2, sample, dagostinoMinN, alpha)
	if err != nil {
		return nil, err
	}
	n := float64(len(x))
	b1, excess := descriptive.Shape(x)

	z1 := skewnessZ(b1, n)
	z2 := kurtosisZ(excess+3, n)
	k2 := z1*z1 + z2*z2

	res := newResult(TestDAgostinoK2, len(x), k2, distributions.ChiSquareSurvival(k2, 2), alpha)
	res.DegreesOfFreedom = 2
	return res, nil
}

// skewnessZ is D'Agostino's transform of the sample skewness.
func skewnessZ(b1, n float64) float64 {
	y := b1 * math.Sqrt((n+1)*(n+3)/(6*(n-2)))
	beta2 := 3 * (n*n + 27*n - 70) * (n + 1) * (n + 3) / ((n - 2) * (n + 5) * (n + 7) * (n + 9))
	w2 := -1 + math.Sqrt(2*(beta2-1))
	delta := 1 / math.Sqrt(0.5*math.Log(w2))
	alpha := math.Sqrt(2 / (w2 - 1))
	ya := y / alpha
	return delta * math.Log(ya+math.Sqrt(ya*ya+1))
}

// kurtosisZ is the Anscombe-Glynn transform of the (non-excess) kurtosis b2.
func kurtosisZ(b2, n float64) float64 {
	e := 3 * (n - 1) / (n + 1)
	v := 24 * n * (n - 2) * (n - 3) / ((n + 1) * (n + 1) * (n + 3) * (n + 5))
	x := (b2 - e) / math.Sqrt(v)

	sqrtBeta1 := 6 * (n*n - 5*n + 2) / ((n + 7) * (n + 9)) * math.Sqrt(6*(n+3)*(n+5)/(n*(n-2)*(n-3)))
	a := 6 + 8/sqrtBeta1*(2/sqrtBeta1+math.Sqrt(1+4/(sqrtBeta1*sqrtBeta1)))
	term := 1 - 2/(9*a)
	den := 1 + x*math.Sqrt(2/(a-4))
	if den == 0 {
		return 0
	}
	return (term - math.Cbrt((1-2/a)/den)) / math.Sqrt(2/(9*a))
}
