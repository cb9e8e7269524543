package dataset

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statbench/domain/core"
	"statbench/domain/stats"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   any
		want float64
		ok   bool
	}{
		{"42", 42, true},
		{" 3.5 ", 3.5, true},
		{"$1,234.50", 1234.5, true},
		{"(12)", -12, true},
		{"15%", 15, true},
		{7, 7, true},
		{int64(-3), -3, true},
		{2.25, 2.25, true},
		{"abc", 0, false},
		{"NaN", 0, false},
		{"", 0, false},
		{nil, 0, false},
		{true, 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseNumber(tt.in)
		assert.Equal(t, tt.ok, ok, "%v", tt.in)
		if tt.ok {
			assert.InDelta(t, tt.want, got, 1e-12, "%v", tt.in)
		}
	}
}

func TestCategoryLabel(t *testing.T) {
	assert.Equal(t, stats.MissingLabel, CategoryLabel(nil))
	assert.Equal(t, stats.MissingLabel, CategoryLabel("  "))
	assert.Equal(t, stats.MissingLabel, CategoryLabel("undefined"))
	assert.Equal(t, "north", CategoryLabel(" north "))
	assert.Equal(t, "1", CategoryLabel(1.0))
	assert.Equal(t, "2.5", CategoryLabel(2.5))
	assert.Equal(t, "7", CategoryLabel(7))
	assert.Equal(t, "true", CategoryLabel(true))
}

func TestClassifyColumn(t *testing.T) {
	cfg := DefaultClassifyConfig()

	numeric := ClassifyColumn("score", []any{"1", "2", "3", "4", "5", "x", ""}, cfg)
	assert.Equal(t, stats.ColumnNumeric, numeric.Type)
	assert.Equal(t, 6, numeric.NonEmpty)
	assert.Equal(t, 5, numeric.NumericCount)

	// exactly 80% numeric is not enough
	borderline := ClassifyColumn("mixed", []any{"1", "2", "3", "4", "a"}, cfg)
	assert.Equal(t, stats.ColumnCategorical, borderline.Type)

	categorical := ClassifyColumn("region", []any{"north", "south", "north", nil}, cfg)
	assert.Equal(t, stats.ColumnCategorical, categorical.Type)
	assert.Equal(t, 2, categorical.UniqueCount)
	assert.Equal(t, []string{"north", "south"}, categorical.SampleLabels)

	empty := ClassifyColumn("blank", []any{nil, "", "null"}, cfg)
	assert.Equal(t, stats.ColumnEmpty, empty.Type)

	ids := make([]any, 25)
	for i := range ids {
		ids[i] = "id-" + string(rune('a'+i))
	}
	unknown := ClassifyColumn("id", ids, cfg)
	assert.Equal(t, stats.ColumnUnknown, unknown.Type)
}

func TestGroupBy(t *testing.T) {
	groups, err := GroupBy(
		[]any{"b", "a", "b", nil, "a", "b"},
		[]any{"1", "2", "3", "4", "oops", 5.0},
	)
	require.NoError(t, err)
	require.Len(t, groups, 3)
	assert.Equal(t, stats.Group{Label: stats.MissingLabel, Values: []float64{4}}, groups[0])
	assert.Equal(t, stats.Group{Label: "a", Values: []float64{2}}, groups[1])
	assert.Equal(t, stats.Group{Label: "b", Values: []float64{1, 3, 5}}, groups[2])

	_, err = GroupBy([]any{"a"}, nil)
	assert.True(t, errors.Is(err, core.ErrInvalidConfiguration))
}

func TestPaired(t *testing.T) {
	xs, ys, err := Paired([]any{"1", "x", "3", "4"}, []any{"2", "5", nil, "8"})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 4}, xs)
	assert.Equal(t, []float64{2, 8}, ys)
}

func TestTable(t *testing.T) {
	table := NewTable("demo", []string{" group ", "value"}, [][]string{
		{"a", "1"},
		{"b", "2"},
		{"a"},
	})
	assert.Equal(t, 3, table.Len())
	assert.Equal(t, []string{"group", "value"}, table.Headers)

	values, err := table.Column("value")
	require.NoError(t, err)
	assert.Equal(t, []any{"1", "2", nil}, values)

	nums, err := table.NumericColumn("value")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, nums)

	_, err = table.Column("missing")
	assert.True(t, core.IsNotFoundError(err))
	assert.True(t, errors.Is(err, core.ErrColumnNotFound))

	profiles := table.Profile(DefaultClassifyConfig())
	require.Len(t, profiles, 2)
	assert.Equal(t, stats.ColumnCategorical, profiles[0].Type)
	assert.Equal(t, stats.ColumnNumeric, profiles[1].Type)
}

func TestLocalFileStorage(t *testing.T) {
	ctx := context.Background()
	storage := NewLocalFileStorageWithPath(t.TempDir())

	path, err := storage.Store(ctx, strings.NewReader("a,b\n1,2\n"), "sample.csv")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, ".csv"))

	exists, err := storage.Exists(ctx, path)
	require.NoError(t, err)
	assert.True(t, exists)

	r, err := storage.GetReader(ctx, path)
	require.NoError(t, err)
	body, err := io.ReadAll(r)
	r.Close()
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n", string(body))

	require.NoError(t, storage.Delete(ctx, path))
	exists, err = storage.Exists(ctx, path)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = storage.Store(ctx, strings.NewReader("x"), "notes.txt")
	assert.Error(t, err)

	small := DefaultStorageConfig()
	small.BasePath = t.TempDir()
	small.MaxFileSize = 4
	_, err = NewLocalFileStorage(small).Store(ctx, strings.NewReader("too large"), "big.csv")
	assert.Error(t, err)
}
