package app

import "statbench/domain/stats"

// Every request names its dataset and columns explicitly. A zero Alpha falls
// back to the service default.

// DescribeRequest summarises one numeric column
type DescribeRequest struct {
	DatasetID string `json:"-"`
	Column    string `json:"column" binding:"required"`
}

// NormalityRequest runs all three normality diagnostics on one column
type NormalityRequest struct {
	DatasetID string  `json:"-"`
	Column    string  `json:"column" binding:"required"`
	Alpha     float64 `json:"alpha"`
}

// GroupTestMethod names a two-or-more group comparison
type GroupTestMethod string

const (
	GroupTestStudent     GroupTestMethod = "ttest"
	GroupTestWelch       GroupTestMethod = "welch"
	GroupTestMannWhitney GroupTestMethod = "mannwhitney"
	GroupTestANOVA       GroupTestMethod = "anova"
)

// GroupTestRequest compares ValueColumn across the groups of GroupColumn.
// Two-sample methods need exactly two groups; Groups selects them when the
// column has more.
type GroupTestRequest struct {
	DatasetID   string           `json:"-"`
	GroupColumn string           `json:"group_column" binding:"required"`
	ValueColumn string           `json:"value_column" binding:"required"`
	TestMethod  GroupTestMethod  `json:"test_method" binding:"required"`
	Groups      []string         `json:"groups,omitempty"`
	TieMethod   stats.RankMethod `json:"tie_method,omitempty"`
	Alpha       float64          `json:"alpha"`
}

// PairedRequest runs a paired t-test on two columns of the same rows
type PairedRequest struct {
	DatasetID string  `json:"-"`
	ColumnA   string  `json:"column_a" binding:"required"`
	ColumnB   string  `json:"column_b" binding:"required"`
	Alpha     float64 `json:"alpha"`
}

// OneSampleRequest tests a column mean against Mu
type OneSampleRequest struct {
	DatasetID string  `json:"-"`
	Column    string  `json:"column" binding:"required"`
	Mu        float64 `json:"mu"`
	Alpha     float64 `json:"alpha"`
}

// PostHocRequest runs one or more pairwise procedures over the same fitted
// groups. An empty Methods runs all four.
type PostHocRequest struct {
	DatasetID   string   `json:"-"`
	GroupColumn string   `json:"group_column" binding:"required"`
	ValueColumn string   `json:"value_column" binding:"required"`
	Methods     []string `json:"methods,omitempty"`
	Alpha       float64  `json:"alpha"`
}

// TwoWayRequest decomposes ValueColumn by two categorical factors
type TwoWayRequest struct {
	DatasetID   string  `json:"-"`
	FactorA     string  `json:"factor_a" binding:"required"`
	FactorB     string  `json:"factor_b" binding:"required"`
	ValueColumn string  `json:"value_column" binding:"required"`
	Alpha       float64 `json:"alpha"`
}

// CorrelationRequest correlates two or more numeric columns
type CorrelationRequest struct {
	DatasetID string                  `json:"-"`
	Columns   []string                `json:"columns" binding:"required,min=2"`
	Method    stats.CorrelationMethod `json:"method,omitempty"`
	TieMethod stats.RankMethod        `json:"tie_method,omitempty"`
	Alpha     float64                 `json:"alpha"`
}

// IndependenceRequest cross-tabulates two categorical columns
type IndependenceRequest struct {
	DatasetID string  `json:"-"`
	RowColumn string  `json:"row_column" binding:"required"`
	ColColumn string  `json:"col_column" binding:"required"`
	Alpha     float64 `json:"alpha"`
}

// LinearRequest regresses YColumn on XColumn
type LinearRequest struct {
	DatasetID string `json:"-"`
	XColumn   string `json:"x_column" binding:"required"`
	YColumn   string `json:"y_column" binding:"required"`
}

// LogisticRequest trains a binary classifier. Zero numeric settings fall back
// to the service defaults; a nil Seed gives an unseeded split.
type LogisticRequest struct {
	DatasetID    string   `json:"-"`
	Features     []string `json:"features" binding:"required,min=1"`
	Target       string   `json:"target" binding:"required"`
	TestSize     float64  `json:"test_size"`
	LearningRate float64  `json:"learning_rate"`
	Iterations   int      `json:"iterations"`
	Threshold    float64  `json:"threshold"`
	Seed         *int64   `json:"seed,omitempty"`
}
