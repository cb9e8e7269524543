package app

import (
	"time"

	"github.com/google/uuid"

	"statbench/domain/stats"
	"statbench/ports"
)

// Outcome is what every workbench operation returns: the engine result plus
// the parameters that produced it.
type Outcome struct {
	RunID       uuid.UUID               `json:"run_id"`
	Kind        string                  `json:"kind"`
	DatasetID   string                  `json:"dataset_id"`
	Params      interface{}             `json:"params"`
	Result      interface{}             `json:"result"`
	Assumptions *ports.AssumptionReport `json:"assumptions,omitempty"`
	Message     string                  `json:"message,omitempty"`
	CreatedAt   time.Time               `json:"created_at"`
}

// Outcome kinds, also stored as the run kind
const (
	KindDescribe     = "describe"
	KindNormality    = "normality"
	KindGroupTest    = "group_test"
	KindPaired       = "paired"
	KindOneSample    = "one_sample"
	KindPostHoc      = "posthoc"
	KindTwoWay       = "twoway"
	KindCorrelation  = "correlation"
	KindIndependence = "independence"
	KindLinear       = "linear"
	KindLogistic     = "logistic"
)

// NormalityReport holds the three diagnostics. A test that could not run has
// no entry in Results and an explanation in Messages.
type NormalityReport struct {
	Results  map[string]*stats.NormalityResult `json:"results"`
	Messages map[string]string                 `json:"messages,omitempty"`
}

// CorrelationReport carries the full matrix and, for exactly two columns,
// the single pairwise test.
type CorrelationReport struct {
	Matrix *stats.CorrelationMatrix `json:"matrix"`
	Pair   *stats.CorrelationResult `json:"pair,omitempty"`
}

// PostHocReport holds one result per requested method, all sharing the same
// pooled error term.
type PostHocReport struct {
	MSE      float64                                      `json:"mse"`
	DFWithin int                                          `json:"df_within"`
	Groups   []stats.GroupStats                           `json:"groups"`
	Results  map[stats.PostHocMethod]*stats.PostHocResult `json:"results"`
}
