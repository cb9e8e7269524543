package dataset

import (
	"fmt"
	"strings"

	"statbench/domain/core"
	"statbench/domain/stats"
)

// Table is a rectangular dataset held in memory. Rows may be shorter than
// Headers; missing trailing cells read as nil.
type Table struct {
	Name    string   `json:"name"`
	Headers []string `json:"headers"`
	Rows    [][]any  `json:"rows"`
}

// NewTable builds a Table from string records, trimming every header.
func NewTable(name string, headers []string, records [][]string) *Table {
	t := &Table{
		Name:    name,
		Headers: make([]string, len(headers)),
		Rows:    make([][]any, 0, len(records)),
	}
	for i, h := range headers {
		t.Headers[i] = strings.TrimSpace(h)
	}
	for _, rec := range records {
		row := make([]any, len(rec))
		for j, cell := range rec {
			row[j] = cell
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// Len is the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// ColumnIndex returns the position of a header, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, h := range t.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

// Column returns the raw values of a named column.
func (t *Table) Column(name string) ([]any, error) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil, fmt.Errorf("%w %q", core.ErrColumnNotFound, name)
	}
	out := make([]any, len(t.Rows))
	for i, row := range t.Rows {
		if idx < len(row) {
			out[i] = row[idx]
		}
	}
	return out, nil
}

// NumericColumn returns the cleaned numeric values of a named column.
func (t *Table) NumericColumn(name string) ([]float64, error) {
	values, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	return NumericValues(values), nil
}

// Profile classifies every column in header order.
func (t *Table) Profile(cfg ClassifyConfig) []stats.ColumnProfile {
	out := make([]stats.ColumnProfile, 0, len(t.Headers))
	for _, h := range t.Headers {
		values, _ := t.Column(h)
		out = append(out, ClassifyColumn(h, values, cfg))
	}
	return out
}
