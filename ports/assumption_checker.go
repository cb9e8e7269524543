package ports

import "context"

// AssumptionRequest asks an external service whether grouped data meets the
// assumptions of a test
type AssumptionRequest struct {
	GroupedData map[string][]float64 `json:"grouped_data"`
	TestType    string               `json:"test_type"`
	Alpha       float64              `json:"alpha"`
}

// AssumptionViolation is one failed assumption
type AssumptionViolation struct {
	Assumption string `json:"assumption"`
	Severity   string `json:"severity"`
	Message    string `json:"message"`
}

// AssumptionReport is the checker's verdict
type AssumptionReport struct {
	CanProceed bool                  `json:"can_proceed"`
	Violations []AssumptionViolation `json:"violations,omitempty"`
}

// AssumptionChecker double-checks test assumptions before a group test runs.
// Callers treat any error as "no opinion".
type AssumptionChecker interface {
	Check(ctx context.Context, req AssumptionRequest) (*AssumptionReport, error)
}
