package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statbench/domain/core"
	"statbench/internal/migration"
	"statbench/models"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	ctx := context.Background()
	db, err := Open(ctx, "sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, migration.NewRunner().Run(ctx, db))
	return db
}

func TestRunRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewRunRepository(newTestDB(t))

	result, err := models.NewJSONDocument(map[string]float64{"statistic": 2.5})
	require.NoError(t, err)
	params, err := models.NewJSONDocument(map[string]string{"column": "score"})
	require.NoError(t, err)

	run := &models.AnalysisRun{Kind: "describe", DatasetID: "ds-1", Params: params, Result: result}
	require.NoError(t, repo.SaveRun(ctx, run))
	assert.NotEqual(t, uuid.Nil, run.ID)
	assert.False(t, run.CreatedAt.IsZero())

	got, err := repo.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, "describe", got.Kind)
	assert.JSONEq(t, `{"statistic":2.5}`, string(got.Result))
	assert.JSONEq(t, `{"column":"score"}`, string(got.Params))

	_, err = repo.GetRun(ctx, uuid.New())
	assert.True(t, core.IsNotFoundError(err))
}

func TestRunRepositoryListAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewRunRepository(newTestDB(t))

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i, kind := range []string{"describe", "normality", "describe"} {
		require.NoError(t, repo.SaveRun(ctx, &models.AnalysisRun{
			Kind:      kind,
			DatasetID: "ds-1",
			Result:    models.JSONDocument(`{}`),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	all, err := repo.ListRuns(ctx, models.RunFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[0].CreatedAt.After(all[2].CreatedAt))

	describes, err := repo.ListRuns(ctx, models.RunFilter{Kind: "describe", Limit: 1})
	require.NoError(t, err)
	require.Len(t, describes, 1)
	assert.Equal(t, base.Add(2*time.Minute), describes[0].CreatedAt.UTC())

	none, err := repo.ListRuns(ctx, models.RunFilter{DatasetID: "other"})
	require.NoError(t, err)
	assert.Empty(t, none)

	require.NoError(t, repo.DeleteRun(ctx, all[0].ID))
	assert.True(t, core.IsNotFoundError(repo.DeleteRun(ctx, all[0].ID)))
}
