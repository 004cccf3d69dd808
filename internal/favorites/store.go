// Package favorites persists user-chosen catalog rows keyed by their derived
// program key, with an index list tracking which keys exist.
package favorites

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/wokaidabaoma/econ-site/internal/logger"
	"github.com/wokaidabaoma/econ-site/internal/model"
	"github.com/wokaidabaoma/econ-site/internal/storage"

	"github.com/rs/zerolog"
)

// Storage keys are part of the persisted wire format and must not change.
const (
	indexKey    = "program-favorites"
	entryPrefix = "program-"
)

type Store struct {
	kv  storage.Store
	log zerolog.Logger
	now func() time.Time
}

func NewStore(kv storage.Store) *Store {
	return NewStoreWithClock(kv, time.Now)
}

func NewStoreWithClock(kv storage.Store, now func() time.Time) *Store {
	return &Store{
		kv:  kv,
		log: logger.For("favorites"),
		now: now,
	}
}

// Add persists the row under its derived key and registers the key in the
// index. Re-adding an existing key rewrites the entry but leaves the index
// untouched. Returns the derived key.
func (s *Store) Add(ctx context.Context, row model.CatalogRow, selectedColumns []string) (string, error) {
	key := row.Key()
	if key == "" || key == "-" {
		return "", fmt.Errorf("cannot derive program key: row has no university or program name")
	}

	if selectedColumns == nil {
		selectedColumns = []string{}
	}

	record := model.FavoriteRecord{
		Row:             row,
		SelectedColumns: selectedColumns,
		SavedAt:         s.now(),
	}

	data, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("failed to marshal favorite: %w", err)
	}
	if err := s.kv.Set(ctx, entryPrefix+key, string(data)); err != nil {
		return "", err
	}

	keys, err := s.readIndex(ctx)
	if err != nil {
		return "", err
	}
	for _, existing := range keys {
		if existing == key {
			return key, nil
		}
	}
	keys = append(keys, key)

	if err := s.writeIndex(ctx, keys); err != nil {
		return "", err
	}

	s.log.Debug().Str("key", key).Msg("Favorite saved")
	return key, nil
}

// Remove deletes the entry and drops the key from the index. Removing an
// absent key is a no-op.
func (s *Store) Remove(ctx context.Context, key string) error {
	if err := s.kv.Remove(ctx, entryPrefix+key); err != nil {
		return err
	}

	keys, err := s.readIndex(ctx)
	if err != nil {
		return err
	}

	kept := keys[:0]
	for _, existing := range keys {
		if existing != key {
			kept = append(kept, existing)
		}
	}
	return s.writeIndex(ctx, kept)
}

// List resolves every indexed key to its record. Keys whose entries are
// missing or undecodable are logged and skipped; the index and the value set
// can drift and a partial read beats no read.
func (s *Store) List(ctx context.Context) ([]model.FavoriteRecord, error) {
	keys, err := s.readIndex(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]model.FavoriteRecord, 0, len(keys))
	for _, key := range keys {
		raw, err := s.kv.Get(ctx, entryPrefix+key)
		if errors.Is(err, storage.ErrKeyNotFound) {
			s.log.Warn().Str("key", key).Msg("Indexed favorite has no entry, skipping")
			continue
		}
		if err != nil {
			return nil, err
		}

		record, err := decodeRecord(raw)
		if err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("Undecodable favorite entry, skipping")
			continue
		}
		records = append(records, record)
	}

	return records, nil
}

// Keys returns the raw index list.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	return s.readIndex(ctx)
}

// decodeRecord accepts both entry shapes: the current wrapper and the legacy
// bare catalog row, normalizing both to FavoriteRecord.
func decodeRecord(raw string) (model.FavoriteRecord, error) {
	var record model.FavoriteRecord
	if err := json.Unmarshal([]byte(raw), &record); err == nil && record.Row != nil {
		if record.SelectedColumns == nil {
			record.SelectedColumns = []string{}
		}
		return record, nil
	}

	var row model.CatalogRow
	if err := json.Unmarshal([]byte(raw), &row); err != nil {
		return model.FavoriteRecord{}, fmt.Errorf("entry matches neither shape: %w", err)
	}
	return model.FavoriteRecord{
		Row:             row,
		SelectedColumns: []string{},
	}, nil
}

func (s *Store) readIndex(ctx context.Context) ([]string, error) {
	raw, err := s.kv.Get(ctx, indexKey)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}

	var keys []string
	if err := json.Unmarshal([]byte(raw), &keys); err != nil {
		s.log.Warn().Err(err).Msg("Corrupt favorites index, starting fresh")
		return []string{}, nil
	}
	return keys, nil
}

func (s *Store) writeIndex(ctx context.Context, keys []string) error {
	data, err := json.Marshal(keys)
	if err != nil {
		return fmt.Errorf("failed to marshal favorites index: %w", err)
	}
	return s.kv.Set(ctx, indexKey, string(data))
}
