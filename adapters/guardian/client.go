// Package guardian is an HTTP client for an external assumption-checking
// service consulted before group comparisons.
package guardian

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"statbench/ports"
)

// Client implements ports.AssumptionChecker over HTTP
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a client; a zero timeout defaults to five seconds
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		BaseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

var _ ports.AssumptionChecker = (*Client)(nil)

// Check posts the grouped data to /check and parses the verdict. The service
// may wrap its answer in a "result" object.
func (c *Client) Check(ctx context.Context, req ports.AssumptionRequest) (*ports.AssumptionReport, error) {
	raw, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/check", bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("guardian request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("guardian http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return parseReport(body)
}

func parseReport(body []byte) (*ports.AssumptionReport, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("guardian returned invalid JSON")
	}
	root := gjson.ParseBytes(body)
	if r := root.Get("result"); r.IsObject() {
		root = r
	}
	canProceed := root.Get("can_proceed")
	if !canProceed.Exists() {
		return nil, fmt.Errorf("guardian response missing can_proceed")
	}

	report := &ports.AssumptionReport{CanProceed: canProceed.Bool()}
	root.Get("violations").ForEach(func(_, v gjson.Result) bool {
		if v.Type == gjson.String {
			report.Violations = append(report.Violations, ports.AssumptionViolation{Message: v.String()})
			return true
		}
		report.Violations = append(report.Violations, ports.AssumptionViolation{
			Assumption: v.Get("assumption").String(),
			Severity:   v.Get("severity").String(),
			Message:    v.Get("message").String(),
		})
		return true
	})
	return report, nil
}
