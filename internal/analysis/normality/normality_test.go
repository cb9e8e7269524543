package normality

import (
	"errors"
	"math"
	"testing"

	"github.com/dgryski/go-onlinestats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"statbench/domain/core"
	"statbench/domain/stats"
	"statbench/internal/analysis/distributions"
)

func normalScores(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 10 + 2*distributions.NormalInverseCDF((float64(i)+0.5)/float64(n))
	}
	return out
}

func exponentialScores(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = -math.Log(1 - (float64(i)+0.5)/float64(n))
	}
	return out
}

func TestShapiroWilk_MatchesReference(t *testing.T) {
	samples := map[string][]float64{
		"n=3":  {1, 2, 4},
		"n=8":  {4.2, 3.9, 5.1, 4.8, 6.0, 3.1, 4.4, 5.5},
		"n=15": {2.1, 3.4, 1.9, 5.6, 4.4, 3.3, 2.8, 6.1, 3.9, 4.0, 2.2, 3.1, 4.8, 5.0, 3.6},
		"n=40": exponentialScores(40),
	}
	for name, sample := range samples {
		t.Run(name, func(t *testing.T) {
			res, err := ShapiroWilk(sample, 0.05)
			require.NoError(t, err)

			w, p, err := onlinestats.SWilk(sample)
			require.NoError(t, err)
			assert.InDelta(t, w, res.Statistic, 1e-4)
			assert.InDelta(t, p, res.PValue, 1e-3)
			assert.Equal(t, len(sample), res.N)
		})
	}
}

func TestShapiroWilk_WeightsOfElevenMen(t *testing.T) {
	weights := []float64{148, 154, 158, 160, 161, 162, 166, 170, 182, 195, 236}
	res, err := ShapiroWilk(weights, 0.05)
	require.NoError(t, err)
	assert.InDelta(t, 0.788815, res.Statistic, 1e-5)
	assert.InDelta(t, 0.006704, res.PValue, 1e-5)
	assert.False(t, res.IsNormal)
}

func TestNormality_NormalScoresPass(t *testing.T) {
	sample := normalScores(50)
	for _, test := range []struct {
		name string
		run  func([]float64, float64) (*stats.NormalityResult, error)
	}{
		{TestShapiroWilk, ShapiroWilk},
		{TestAndersonDarling, AndersonDarling},
		{TestDAgostinoK2, DAgostinoK2},
	} {
		t.Run(test.name, func(t *testing.T) {
			res, err := test.run(sample, 0.05)
			require.NoError(t, err)
			assert.True(t, res.IsNormal, "p=%v", res.PValue)
			assert.Equal(t, test.name, res.Test)
			assert.Equal(t, res.PValue > 0.05, res.IsNormal)
			assert.Equal(t, res.PValue < 0.05, res.Significant)
		})
	}
}

func TestNormality_SkewedSampleFails(t *testing.T) {
	sample := exponentialScores(60)

	sw, err := ShapiroWilk(sample, 0.05)
	require.NoError(t, err)
	assert.False(t, sw.IsNormal)

	ad, err := AndersonDarling(sample, 0.05)
	require.NoError(t, err)
	assert.False(t, ad.IsNormal)
	assert.Greater(t, ad.Statistic, 1.092)

	k2, err := DAgostinoK2(sample, 0.05)
	require.NoError(t, err)
	assert.False(t, k2.IsNormal)
	assert.Equal(t, 2.0, k2.DegreesOfFreedom)
}

func TestNormality_Preconditions(t *testing.T) {
	_, err := ShapiroWilk([]float64{1, 2}, 0.05)
	assert.True(t, errors.Is(err, core.ErrInsufficientData))

	_, err = ShapiroWilk([]float64{1, 2, math.NaN()}, 0.05)
	assert.True(t, errors.Is(err, core.ErrInsufficientData))

	_, err = DAgostinoK2(normalScores(19), 0.05)
	assert.True(t, errors.Is(err, core.ErrInsufficientData))

	res, err := AndersonDarling([]float64{5, 5, 5, 5}, 0.05)
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, core.ErrNumericDegeneracy))

	_, err = ShapiroWilk(normalScores(10), 1.5)
	assert.True(t, errors.Is(err, core.ErrInvalidConfiguration))

	_, err = ShapiroWilk(normalScores(5001), 0.05)
	assert.True(t, errors.Is(err, core.ErrInvalidConfiguration))
}

func TestAndersonDarling_CriticalValues(t *testing.T) {
	res, err := AndersonDarling(normalScores(30), 0.05)
	require.NoError(t, err)
	require.Len(t, res.CriticalValues, 5)
	assert.Equal(t, 0.787, res.CriticalValues[2].Value)
	assert.Equal(t, 0.05, res.CriticalValues[2].Significance)

	// Inside the table the p-value is read off by linear interpolation.
	assert.InDelta(t, 0.05, andersonPValue(0.787), 1e-12)
	assert.InDelta(t, 0.075, andersonPValue((0.656+0.787)/2), 1e-12)
}

func TestAndersonPValue_Monotone(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		a := rapid.Float64Range(0, 5).Draw(rt, "a")
		b := rapid.Float64Range(0, 5).Draw(rt, "b")
		if a > b {
			a, b = b, a
		}
		pa, pb := andersonPValue(a), andersonPValue(b)
		if pb > pa+1e-12 || pa < 0 || pa > 1 {
			rt.Fatalf("p(%v)=%v p(%v)=%v", a, pa, b, pb)
		}
	})
}
