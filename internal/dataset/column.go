package dataset

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"statbench/domain/core"
	"statbench/domain/stats"
)

// ClassifyConfig holds the column classification thresholds
type ClassifyConfig struct {
	NumericThreshold float64 `json:"numeric_threshold"` // share of non-empty values that must parse as numbers
	MaxCategories    int     `json:"max_categories"`    // unique non-empty values must stay below this
	SampleLabels     int     `json:"sample_labels"`     // labels echoed back in the profile
}

// DefaultClassifyConfig returns the workbench defaults
func DefaultClassifyConfig() ClassifyConfig {
	return ClassifyConfig{
		NumericThreshold: 0.8,
		MaxCategories:    20,
		SampleLabels:     5,
	}
}

var thousands = regexp.MustCompile(`^-?\d{1,3}(,\d{3})+(\.\d+)?$`)

// IsEmpty reports whether a raw cell counts as missing: nil, blank, "null" or "undefined".
func IsEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		s := strings.ToLower(strings.TrimSpace(t))
		return s == "" || s == "null" || s == "undefined"
	case float64:
		return math.IsNaN(t)
	case float32:
		return math.IsNaN(float64(t))
	}
	return false
}

// ParseNumber converts a raw cell to a finite float64.
// Strings may carry surrounding whitespace, a currency sign, a trailing percent
// sign, thousands separators or accounting-style parentheses.
func ParseNumber(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int8:
		f = float64(t)
	case int16:
		f = float64(t)
	case int32:
		f = float64(t)
	case int64:
		f = float64(t)
	case uint:
		f = float64(t)
	case uint8:
		f = float64(t)
	case uint16:
		f = float64(t)
	case uint32:
		f = float64(t)
	case uint64:
		f = float64(t)
	case string:
		parsed, ok := parseNumericString(t)
		if !ok {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func parseNumericString(s string) (float64, bool) {
	clean := strings.TrimSpace(s)
	if clean == "" {
		return 0, false
	}
	negative := false
	if strings.HasPrefix(clean, "(") && strings.HasSuffix(clean, ")") {
		clean = strings.TrimSuffix(strings.TrimPrefix(clean, "("), ")")
		negative = true
	}
	for _, symbol := range []string{"$", "€", "£", "¥", "%"} {
		clean = strings.ReplaceAll(clean, symbol, "")
	}
	clean = strings.TrimSpace(clean)
	if thousands.MatchString(clean) {
		clean = strings.ReplaceAll(clean, ",", "")
	}
	f, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, false
	}
	if negative {
		f = -f
	}
	return f, true
}

// CategoryLabel coerces a raw value to a category label.
// Missing values map to stats.MissingLabel.
func CategoryLabel(v any) string {
	if IsEmpty(v) {
		return stats.MissingLabel
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(t)
	}
	return fmt.Sprintf("%v", v)
}

// CategoryLabels maps CategoryLabel over a column.
func CategoryLabels(values []any) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = CategoryLabel(v)
	}
	return out
}

// NumericValues keeps the values that parse as finite numbers, in order.
func NumericValues(values []any) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if f, ok := ParseNumber(v); ok {
			out = append(out, f)
		}
	}
	return out
}

// ClassifyColumn tags a raw column as numeric, categorical, empty or unknown.
// Numeric wins when more than cfg.NumericThreshold of the non-empty values parse
// as numbers; otherwise the column is categorical when it has fewer than
// cfg.MaxCategories distinct non-empty values.
func ClassifyColumn(name string, values []any, cfg ClassifyConfig) stats.ColumnProfile {
	profile := stats.ColumnProfile{Name: name}
	seen := make(map[string]struct{})
	for _, v := range values {
		if IsEmpty(v) {
			continue
		}
		profile.NonEmpty++
		if _, ok := ParseNumber(v); ok {
			profile.NumericCount++
		}
		label := CategoryLabel(v)
		if _, ok := seen[label]; !ok {
			seen[label] = struct{}{}
			if len(profile.SampleLabels) < cfg.SampleLabels {
				profile.SampleLabels = append(profile.SampleLabels, label)
			}
		}
	}
	profile.UniqueCount = len(seen)

	if profile.NonEmpty == 0 {
		profile.Type = stats.ColumnEmpty
		return profile
	}
	profile.NumericRatio = float64(profile.NumericCount) / float64(profile.NonEmpty)
	switch {
	case profile.NumericRatio > cfg.NumericThreshold:
		profile.Type = stats.ColumnNumeric
	case profile.UniqueCount < cfg.MaxCategories:
		profile.Type = stats.ColumnCategorical
	default:
		profile.Type = stats.ColumnUnknown
	}
	return profile
}

// GroupBy splits valueCol by the labels in groupCol. Groups are sorted by
// label; rows whose value is not numeric are skipped.
func GroupBy(groupCol, valueCol []any) ([]stats.Group, error) {
	if len(groupCol) != len(valueCol) {
		return nil, core.NewInvalidConfigError("group by", "group and value columns differ in length")
	}
	index := make(map[string]int)
	var groups []stats.Group
	for i, raw := range valueCol {
		v, ok := ParseNumber(raw)
		if !ok {
			continue
		}
		label := CategoryLabel(groupCol[i])
		idx, exists := index[label]
		if !exists {
			idx = len(groups)
			index[label] = idx
			groups = append(groups, stats.Group{Label: label})
		}
		groups[idx].Values = append(groups[idx].Values, v)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Label < groups[j].Label })
	return groups, nil
}

// Paired keeps the rows where both columns hold numbers.
func Paired(a, b []any) ([]float64, []float64, error) {
	if len(a) != len(b) {
		return nil, nil, core.NewInvalidConfigError("paired", "columns differ in length")
	}
	xs := make([]float64, 0, len(a))
	ys := make([]float64, 0, len(b))
	for i := range a {
		x, okX := ParseNumber(a[i])
		y, okY := ParseNumber(b[i])
		if okX && okY {
			xs = append(xs, x)
			ys = append(ys, y)
		}
	}
	return xs, ys, nil
}
