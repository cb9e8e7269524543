package app

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"statbench/domain/core"
	"statbench/internal/dataset"
	"statbench/internal/errors"
)

// TableParser turns an uploaded file into a table; name carries the extension.
type TableParser func(src io.Reader, name string) (*dataset.Table, error)

// DatasetInfo describes a loaded dataset
type DatasetInfo struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Rows        int       `json:"rows"`
	Columns     []string  `json:"columns"`
	Fingerprint core.Hash `json:"fingerprint"`
	StoredPath  string    `json:"-"`
	LoadedAt    time.Time `json:"loaded_at"`
}

type storedDataset struct {
	info  DatasetInfo
	table *dataset.Table
}

// DatasetStore keeps parsed tables in memory, keyed by a generated ID. Uploads
// are persisted through a FileStorage before parsing.
type DatasetStore struct {
	mu       sync.RWMutex
	datasets map[string]*storedDataset
	storage  dataset.FileStorage
	parse    TableParser
}

// NewDatasetStore creates a store. storage may be nil, in which case uploads
// are parsed directly without being written to disk.
func NewDatasetStore(storage dataset.FileStorage, parse TableParser) *DatasetStore {
	return &DatasetStore{
		datasets: make(map[string]*storedDataset),
		storage:  storage,
		parse:    parse,
	}
}

// Upload stores src, parses it and registers the resulting table
func (s *DatasetStore) Upload(ctx context.Context, filename string, src io.Reader) (*DatasetInfo, error) {
	var storedPath string
	if s.storage != nil {
		path, err := s.storage.Store(ctx, src, filename)
		if err != nil {
			return nil, errors.WithCode(errors.CodeInvalidInput, err)
		}
		storedPath = path
		r, err := s.storage.GetReader(ctx, path)
		if err != nil {
			return nil, errors.Wrap(err, "failed to reopen stored dataset")
		}
		defer r.Close()
		src = r
	}

	table, err := s.parse(src, filename)
	if err != nil {
		if storedPath != "" {
			s.storage.Delete(ctx, storedPath)
		}
		return nil, errors.WithCode(errors.CodeInvalidInput, err)
	}
	info := s.Add(table)
	if storedPath != "" {
		s.mu.Lock()
		s.datasets[info.ID].info.StoredPath = storedPath
		s.mu.Unlock()
		info.StoredPath = storedPath
	}
	return info, nil
}

// Add registers an already parsed table
func (s *DatasetStore) Add(table *dataset.Table) *DatasetInfo {
	info := DatasetInfo{
		ID:          uuid.New().String(),
		Name:        table.Name,
		Rows:        table.Len(),
		Columns:     append([]string(nil), table.Headers...),
		Fingerprint: core.ComputeTableHash(table.Headers, table.Rows),
		LoadedAt:    time.Now().UTC(),
	}
	s.mu.Lock()
	s.datasets[info.ID] = &storedDataset{info: info, table: table}
	s.mu.Unlock()
	return &info
}

// Table returns the table for id
func (s *DatasetStore) Table(id string) (*dataset.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.datasets[id]
	if !ok {
		return nil, core.NewNotFoundError("dataset", id)
	}
	return d.table, nil
}

// List returns every dataset, oldest first
func (s *DatasetStore) List() []DatasetInfo {
	s.mu.RLock()
	out := make([]DatasetInfo, 0, len(s.datasets))
	for _, d := range s.datasets {
		out = append(out, d.info)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].LoadedAt.Before(out[j].LoadedAt) })
	return out
}

// Remove forgets a dataset and deletes its stored file
func (s *DatasetStore) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	d, ok := s.datasets[id]
	delete(s.datasets, id)
	s.mu.Unlock()
	if !ok {
		return core.NewNotFoundError("dataset", id)
	}
	if d.info.StoredPath != "" && s.storage != nil {
		return s.storage.Delete(ctx, d.info.StoredPath)
	}
	return nil
}
