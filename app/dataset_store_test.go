package app

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statbench/adapters/excel"
	"statbench/domain/core"
	"statbench/internal/dataset"
	"statbench/internal/errors"
)

func TestDatasetStoreUploadAndRemove(t *testing.T) {
	ctx := context.Background()
	storage := dataset.NewLocalFileStorageWithPath(t.TempDir())
	store := NewDatasetStore(storage, excel.ReadFrom)

	info, err := store.Upload(ctx, "plants.csv", strings.NewReader("species,height\nfern,0.4\noak,12.5\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, info.Rows)
	assert.Equal(t, []string{"species", "height"}, info.Columns)
	assert.Len(t, info.Fingerprint.String(), 64)

	_, statErr := os.Stat(info.StoredPath)
	require.NoError(t, statErr)

	table, err := store.Table(info.ID)
	require.NoError(t, err)
	heights, err := table.NumericColumn("height")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.4, 12.5}, heights)

	require.NoError(t, store.Remove(ctx, info.ID))
	_, statErr = os.Stat(info.StoredPath)
	assert.True(t, os.IsNotExist(statErr))
	_, err = store.Table(info.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.ErrorIs(t, store.Remove(ctx, info.ID), core.ErrNotFound)
}

func TestDatasetStoreRejectsUnsupportedFile(t *testing.T) {
	store := NewDatasetStore(dataset.NewLocalFileStorageWithPath(t.TempDir()), excel.ReadFrom)
	_, err := store.Upload(context.Background(), "notes.txt", strings.NewReader("hello"))
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
	assert.Empty(t, store.List())
}

func TestDatasetStoreFingerprintFollowsContent(t *testing.T) {
	store := NewDatasetStore(nil, excel.ReadFrom)
	a := store.Add(dataset.NewTable("a.csv", []string{"x"}, [][]string{{"1"}, {"2"}}))
	b := store.Add(dataset.NewTable("b.csv", []string{"x"}, [][]string{{"1"}, {"2"}}))
	c := store.Add(dataset.NewTable("c.csv", []string{"x"}, [][]string{{"1"}, {"3"}}))

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, a.Fingerprint, b.Fingerprint)
	assert.NotEqual(t, a.Fingerprint, c.Fingerprint)
	assert.Len(t, store.List(), 3)
}
