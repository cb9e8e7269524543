package parametric

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"statbench/domain/core"
	"statbench/domain/stats"
)

func TestIndependentTTest_SeparatedGroups(t *testing.T) {
	a := []float64{1, 2, 3, 4, 5}
	b := []float64{6, 7, 8, 9, 10}

	res, err := IndependentTTest(a, b, 0.05)
	require.NoError(t, err)

	assert.Equal(t, stats.TTestIndependent, res.Kind)
	assert.InDelta(t, -5.0, res.MeanDifference, 1e-12)
	assert.InDelta(t, -5.0, res.Statistic, 1e-12)
	assert.Equal(t, 8.0, res.DegreesOfFreedom)
	assert.InDelta(t, 0.00105, res.PValue, 1e-4)
	assert.Less(t, res.PValue, 0.002)
	assert.True(t, res.Significant)
	assert.InDelta(t, -5/math.Sqrt(2.5), res.EffectSize, 1e-12)
	assert.InDelta(t, -7.306004, res.CILower, 1e-4)
	assert.InDelta(t, -2.693996, res.CIUpper, 1e-4)
}

func TestWelchTTest(t *testing.T) {
	res, err := WelchTTest([]float64{1, 2, 3, 4, 5}, []float64{6, 7, 8, 9, 10}, 0.05)
	require.NoError(t, err)
	assert.InDelta(t, 8.0, res.DegreesOfFreedom, 1e-9)
	assert.InDelta(t, -5.0, res.Statistic, 1e-12)

	unequal, err := WelchTTest([]float64{1, 2, 3, 4, 5}, []float64{0, 10, 20, 30, 40, 50}, 0.05)
	require.NoError(t, err)
	assert.Less(t, unequal.DegreesOfFreedom, 9.0)
	assert.Greater(t, unequal.DegreesOfFreedom, 4.0)
}

func TestOneSampleTTest(t *testing.T) {
	centred, err := OneSampleTTest([]float64{1, 2, 3, 4, 5}, 3, 0.05)
	require.NoError(t, err)
	assert.InDelta(t, 0, centred.Statistic, 1e-12)
	assert.InDelta(t, 1, centred.PValue, 1e-12)
	assert.False(t, centred.Significant)

	shifted, err := OneSampleTTest([]float64{1, 2, 3, 4, 5}, 0, 0.05)
	require.NoError(t, err)
	assert.InDelta(t, 3/math.Sqrt(0.5), shifted.Statistic, 1e-12)
	assert.Equal(t, 4.0, shifted.DegreesOfFreedom)
	assert.Less(t, shifted.CILower, 3.0)
	assert.Greater(t, shifted.CIUpper, 3.0)
}

func TestPairedTTest(t *testing.T) {
	res, err := PairedTTest([]float64{10, 12, 14, 16}, []float64{9, 10, 12, 13}, 0.05)
	require.NoError(t, err)
	assert.Equal(t, stats.TTestPaired, res.Kind)
	assert.InDelta(t, 2.0, res.MeanDifference, 1e-12)
	assert.InDelta(t, 2/(math.Sqrt(2.0/3.0)/2), res.Statistic, 1e-9)
	assert.Equal(t, 3.0, res.DegreesOfFreedom)
	assert.Equal(t, 13.0, res.Mean1)
	assert.Equal(t, 11.0, res.Mean2)

	_, err = PairedTTest([]float64{1, 2, 3}, []float64{1, 2}, 0.05)
	assert.True(t, errors.Is(err, core.ErrInvalidConfiguration))

	_, err = PairedTTest([]float64{2, 3, 4}, []float64{1, 2, 3}, 0.05)
	assert.True(t, errors.Is(err, core.ErrNumericDegeneracy))
}

func TestTTest_Preconditions(t *testing.T) {
	res, err := IndependentTTest([]float64{1}, []float64{2, 3}, 0.05)
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, core.ErrInsufficientData))

	_, err = IndependentTTest([]float64{1, 1}, []float64{2, 2}, 0.05)
	assert.True(t, errors.Is(err, core.ErrNumericDegeneracy))

	_, err = OneSampleTTest([]float64{1, 2}, 0, 0)
	assert.True(t, errors.Is(err, core.ErrInvalidConfiguration))

	_, err = OneSampleTTest([]float64{1, math.NaN()}, 0, 0.05)
	assert.True(t, errors.Is(err, core.ErrInsufficientData))
}

func TestOneWayANOVA(t *testing.T) {
	groups := []stats.Group{
		{Label: "a", Values: []float64{1, 2, 3}},
		{Label: "b", Values: []float64{4, 5, 6}},
		{Label: "c", Values: []float64{7, 8, 9}},
	}
	res, err := OneWayANOVA(groups, 0.05)
	require.NoError(t, err)

	assert.InDelta(t, 54, res.SSBetween, 1e-9)
	assert.InDelta(t, 6, res.SSWithin, 1e-9)
	assert.InDelta(t, 60, res.SSTotal, 1e-9)
	assert.Equal(t, 2, res.DFBetween)
	assert.Equal(t, 6, res.DFWithin)
	assert.InDelta(t, 27, res.Statistic, 1e-9)
	assert.InDelta(t, 0.9, res.EffectSize, 1e-12)
	assert.True(t, res.Significant)
	assert.Len(t, res.Groups, 3)
	assert.Equal(t, 5.0, res.Groups[1].Mean)
}

func TestOneWayANOVA_Preconditions(t *testing.T) {
	_, err := OneWayANOVA([]stats.Group{{Label: "a", Values: []float64{1, 2}}}, 0.05)
	assert.True(t, errors.Is(err, core.ErrInsufficientData))

	_, err = OneWayANOVA([]stats.Group{
		{Label: "a", Values: []float64{1, 2}},
		{Label: "b", Values: []float64{3}},
	}, 0.05)
	assert.True(t, errors.Is(err, core.ErrInsufficientData))

	_, err = OneWayANOVA([]stats.Group{
		{Label: "a", Values: []float64{1, 1}},
		{Label: "b", Values: []float64{3, 3}},
	}, 0.05)
	assert.True(t, errors.Is(err, core.ErrNumericDegeneracy))
}

func TestOneWayANOVA_SumOfSquaresIdentity(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		k := rapid.IntRange(2, 6).Draw(rt, "k")
		groups := make([]stats.Group, k)
		for i := range groups {
			groups[i] = stats.Group{
				Label:  string(rune('a' + i)),
				Values: rapid.SliceOfN(rapid.Float64Range(-100, 100), 2, 30).Draw(rt, "values"),
			}
		}
		res, err := OneWayANOVA(groups, 0.05)
		if errors.Is(err, core.ErrNumericDegeneracy) {
			return
		}
		if err != nil {
			rt.Fatalf("unexpected error: %v", err)
		}
		if diff := res.SSBetween + res.SSWithin - res.SSTotal; math.Abs(diff) > 1e-6*math.Max(1, res.SSTotal) {
			rt.Fatalf("SS identity broken by %v", diff)
		}
		if res.PValue < 0 || res.PValue > 1 || res.EffectSize < 0 || res.EffectSize > 1+1e-12 {
			rt.Fatalf("out of range: p=%v eta2=%v", res.PValue, res.EffectSize)
		}
	})
}
