package stats

import (
	"fmt"
	"math"

	"statbench/domain/core"
)

// ============================================================================
// INPUT PRIMITIVES
// ============================================================================

// MissingLabel replaces null, undefined and empty categorical values.
const MissingLabel = "Missing"

// Group is a named Sample. Labels come from raw categorical values coerced to strings.
type Group struct {
	Label  string    `json:"label"`
	Values []float64 `json:"values"`
}

// Column is a named numeric vector, used for correlation matrices.
type Column struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

// Observation is one row of a two-factor design.
type Observation struct {
	A     string  `json:"a"`
	B     string  `json:"b"`
	Value float64 `json:"value"`
}

// ColumnType is the tagged classification of a raw column.
type ColumnType string

const (
	ColumnNumeric     ColumnType = "numeric"
	ColumnCategorical ColumnType = "categorical"
	ColumnEmpty       ColumnType = "empty"
	ColumnUnknown     ColumnType = "unknown"
)

// ColumnProfile describes how a column was classified.
type ColumnProfile struct {
	Name         string     `json:"name"`
	Type         ColumnType `json:"type"`
	NonEmpty     int        `json:"non_empty"`
	NumericCount int        `json:"numeric_count"`
	UniqueCount  int        `json:"unique_count"`
	NumericRatio float64    `json:"numeric_ratio"`
	SampleLabels []string   `json:"sample_labels,omitempty"`
}

// ============================================================================
// TEST RESULTS
// ============================================================================

// TestResult is the common shape of every hypothesis test.
// INVARIANTS:
// - PValue is clamped to [0, 1] and never NaN
// - Significant == PValue < Alpha
// - Alpha is echoed back unmodified
type TestResult struct {
	Statistic        float64 `json:"statistic"`
	PValue           float64 `json:"p_value"`
	DegreesOfFreedom float64 `json:"degrees_of_freedom,omitempty"`
	EffectSize       float64 `json:"effect_size"`
	Alpha            float64 `json:"alpha"`
	Significant      bool    `json:"significant"`
}

// NewTestResult builds a TestResult, clamping the p-value and deriving significance.
func NewTestResult(statistic, pValue, alpha float64) TestResult {
	p := ClampProbability(pValue)
	return TestResult{
		Statistic:   statistic,
		PValue:      p,
		Alpha:       alpha,
		Significant: p < alpha,
	}
}

// ClampProbability maps p into [0, 1]; NaN becomes 1 (no evidence).
func ClampProbability(p float64) float64 {
	switch {
	case math.IsNaN(p):
		return 1
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

// ValidateAlpha rejects significance levels outside (0, 1).
func ValidateAlpha(alpha float64) error {
	if math.IsNaN(alpha) || alpha <= 0 || alpha >= 1 {
		return core.NewInvalidConfigError("alpha", fmt.Sprintf("must be in (0, 1), got %v", alpha))
	}
	return nil
}

// Summary holds descriptive statistics for a Sample.
// Std and Variance use the sample (n-1) formula; Kurtosis is excess kurtosis.
type Summary struct {
	Count    int     `json:"count"`
	Mean     float64 `json:"mean"`
	Median   float64 `json:"median"`
	Std      float64 `json:"std"`
	Variance float64 `json:"variance"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Q1       float64 `json:"q1"`
	Q3       float64 `json:"q3"`
	IQR      float64 `json:"iqr"`
	Skewness float64 `json:"skewness"`
	Kurtosis float64 `json:"kurtosis"`
	Range    float64 `json:"range"`
}

// CriticalValue pairs a significance level with its tabulated critical statistic.
type CriticalValue struct {
	Significance float64 `json:"significance"`
	Value        float64 `json:"value"`
}

// NormalityResult is the outcome of one normality diagnostic.
type NormalityResult struct {
	TestResult
	Test           string          `json:"test"`
	N              int             `json:"n"`
	IsNormal       bool            `json:"is_normal"`
	CriticalValues []CriticalValue `json:"critical_values,omitempty"`
}

// TTestKind names the t-test variant.
type TTestKind string

const (
	TTestOneSample   TTestKind = "one_sample"
	TTestIndependent TTestKind = "independent"
	TTestWelch       TTestKind = "welch"
	TTestPaired      TTestKind = "paired"
)

// TTestResult is the outcome of a t-test. EffectSize holds Cohen's d.
type TTestResult struct {
	TestResult
	Kind           TTestKind `json:"kind"`
	N1             int       `json:"n1"`
	N2             int       `json:"n2"`
	Mean1          float64   `json:"mean1"`
	Mean2          float64   `json:"mean2"`
	MeanDifference float64   `json:"mean_difference"`
	StdErr         float64   `json:"std_err"`
	CILower        float64   `json:"ci_lower"`
	CIUpper        float64   `json:"ci_upper"`
}

// GroupStats summarises one group for ANOVA and post-hoc procedures.
type GroupStats struct {
	Label    string  `json:"label"`
	N        int     `json:"n"`
	Mean     float64 `json:"mean"`
	Variance float64 `json:"variance"`
	Std      float64 `json:"std"`
}

// ANOVAResult is the outcome of a one-way ANOVA. EffectSize holds eta squared.
type ANOVAResult struct {
	TestResult
	Groups    []GroupStats `json:"groups"`
	SSBetween float64      `json:"ss_between"`
	SSWithin  float64      `json:"ss_within"`
	SSTotal   float64      `json:"ss_total"`
	DFBetween int          `json:"df_between"`
	DFWithin  int          `json:"df_within"`
	MSBetween float64      `json:"ms_between"`
	MSWithin  float64      `json:"ms_within"`
}

// RankMethod selects how tied values are ranked.
type RankMethod string

const (
	// RankPositional breaks ties by order of appearance.
	RankPositional RankMethod = "positional"
	// RankAverage assigns tied values the mean of their positions.
	RankAverage RankMethod = "average"
)

// MannWhitneyResult is the outcome of a Mann-Whitney U test. Statistic holds U and
// EffectSize holds r = |z|/sqrt(N).
type MannWhitneyResult struct {
	TestResult
	U1          float64    `json:"u1"`
	U2          float64    `json:"u2"`
	R1          float64    `json:"r1"`
	R2          float64    `json:"r2"`
	Z           float64    `json:"z"`
	N1          int        `json:"n1"`
	N2          int        `json:"n2"`
	TieMethod   RankMethod `json:"tie_method"`
	SmallSample bool       `json:"small_sample"`
}

// CorrelationMethod names a correlation coefficient.
type CorrelationMethod string

const (
	CorrelationPearson  CorrelationMethod = "pearson"
	CorrelationSpearman CorrelationMethod = "spearman"
)

// CorrelationResult is the outcome of a correlation test. Statistic holds the t transform
// and EffectSize the coefficient.
type CorrelationResult struct {
	TestResult
	Method      CorrelationMethod `json:"method"`
	Coefficient float64           `json:"coefficient"`
	N           int               `json:"n"`
}

// CorrelationMatrix holds every pairwise correlation among a set of columns.
// Coefficients is symmetric with a unit diagonal.
type CorrelationMatrix struct {
	Method       CorrelationMethod `json:"method"`
	Alpha        float64           `json:"alpha"`
	Columns      []string          `json:"columns"`
	Coefficients [][]float64       `json:"coefficients"`
	PValues      [][]float64       `json:"p_values"`
	N            [][]int           `json:"n"`
	Valid        [][]bool          `json:"valid"`
}
