package guardian

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statbench/ports"
)

func TestCheck(t *testing.T) {
	var got ports.AssumptionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/check", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"result":{"can_proceed":false,"violations":[
			{"assumption":"normality","severity":"high","message":"group b is skewed"},
			"equal variances rejected"]}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/", time.Second)
	report, err := client.Check(context.Background(), ports.AssumptionRequest{
		GroupedData: map[string][]float64{"a": {1, 2}, "b": {3, 9}},
		TestType:    "ttest",
		Alpha:       0.05,
	})
	require.NoError(t, err)

	assert.Equal(t, "ttest", got.TestType)
	assert.Equal(t, []float64{3, 9}, got.GroupedData["b"])
	assert.False(t, report.CanProceed)
	require.Len(t, report.Violations, 2)
	assert.Equal(t, "normality", report.Violations[0].Assumption)
	assert.Equal(t, "equal variances rejected", report.Violations[1].Message)
}

func TestCheckFailures(t *testing.T) {
	tests := map[string]http.HandlerFunc{
		"server error": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "down", http.StatusServiceUnavailable)
		},
		"not json": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html>"))
		},
		"missing verdict": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"violations":[]}`))
		},
	}
	for name, handler := range tests {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(handler)
			defer srv.Close()
			_, err := NewClient(srv.URL, 0).Check(context.Background(), ports.AssumptionRequest{TestType: "anova"})
			assert.Error(t, err)
		})
	}
}
