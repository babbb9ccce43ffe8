package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"social-analytics/models"
)

// DatasetStore persists a MergedDataset as a JSON blob under one key.
type DatasetStore struct {
	kv  KeyValueStore
	key string
}

// NewDatasetStore wraps kv, storing the dataset under key.
func NewDatasetStore(kv KeyValueStore, key string) *DatasetStore {
	return &DatasetStore{kv: kv, key: key}
}

// Load returns the stored dataset, or def when nothing is stored. A blob
// that fails to decode also yields def, together with the decode error.
func (s *DatasetStore) Load(ctx context.Context, def *models.MergedDataset) (*models.MergedDataset, error) {
	raw, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, ErrNotFound) {
		return def, nil
	}
	if err != nil {
		return def, fmt.Errorf("dataset: load %q: %w", s.key, err)
	}

	var ds models.MergedDataset
	if err := json.Unmarshal(raw, &ds); err != nil {
		return def, fmt.Errorf("dataset: decode %q: %w", s.key, err)
	}
	return &ds, nil
}

// Save replaces the stored dataset.
func (s *DatasetStore) Save(ctx context.Context, ds *models.MergedDataset) error {
	raw, err := json.Marshal(ds)
	if err != nil {
		return fmt.Errorf("dataset: encode: %w", err)
	}
	if err := s.kv.Set(ctx, s.key, raw); err != nil {
		return fmt.Errorf("dataset: save %q: %w", s.key, err)
	}
	return nil
}

// Remove deletes the stored dataset. Removing a missing dataset is not an error.
func (s *DatasetStore) Remove(ctx context.Context) error {
	if err := s.kv.Remove(ctx, s.key); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("dataset: remove %q: %w", s.key, err)
	}
	return nil
}

// Close releases the underlying store.
func (s *DatasetStore) Close() error {
	return s.kv.Close()
}
