// Package journal maintains an ordered collection of trade entries on top
// of an injected durable key-value store.
package journal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/trade-journal/internal/models"
	"github.com/trade-journal/internal/store"
)

// DefaultKey is the collection key used when none is configured, matching
// the key the original client kept its entries under.
const DefaultKey = "journal_entries"

// Store owns one journal collection. It assumes a single logical writer;
// callers must serialize Create/Update/Delete against a given instance.
type Store struct {
	kv      store.KV
	key     string
	entries []models.JournalEntry
}

// Open loads the collection stored under key. A missing key yields an
// empty collection. On a load or decode failure the returned store is
// still usable (empty) alongside the error, so callers can log and carry
// on with unpersisted in-memory state.
func Open(ctx context.Context, kv store.KV, key string) (*Store, error) {
	s := &Store{kv: kv, key: key}

	data, err := kv.Load(ctx, key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return s, nil
		}
		return s, fmt.Errorf("load journal %q: %w", key, err)
	}

	if err := json.Unmarshal(data, &s.entries); err != nil {
		s.entries = nil
		return s, fmt.Errorf("decode journal %q: %w", key, err)
	}
	return s, nil
}

// Create appends the entry to the front of the collection (newest-first
// insertion order) and persists. An empty ID is assigned. On a save
// failure the entry is still in memory and the error is returned.
func (s *Store) Create(ctx context.Context, entry models.JournalEntry) (models.JournalEntry, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	s.entries = append([]models.JournalEntry{entry}, s.entries...)
	return entry, s.save(ctx)
}

// Update replaces the entry with a matching ID. An unknown ID is a silent
// no-op: the collection is unchanged and nothing is written.
func (s *Store) Update(ctx context.Context, entry models.JournalEntry) error {
	for i := range s.entries {
		if s.entries[i].ID == entry.ID {
			s.entries[i] = entry
			return s.save(ctx)
		}
	}
	return nil
}

// Delete removes the entry with the given ID; no-op if absent
func (s *Store) Delete(ctx context.Context, id string) error {
	for i := range s.entries {
		if s.entries[i].ID == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return s.save(ctx)
		}
	}
	return nil
}

// Get returns the entry with the given ID
func (s *Store) Get(id string) (models.JournalEntry, bool) {
	for i := range s.entries {
		if s.entries[i].ID == id {
			return s.entries[i], true
		}
	}
	return models.JournalEntry{}, false
}

// Len returns the number of entries in the collection
func (s *Store) Len() int {
	return len(s.entries)
}

func (s *Store) save(ctx context.Context) error {
	data, err := json.Marshal(s.entries)
	if err != nil {
		return fmt.Errorf("encode journal %q: %w", s.key, err)
	}
	if err := s.kv.Save(ctx, s.key, data); err != nil {
		return fmt.Errorf("save journal %q: %w", s.key, err)
	}
	return nil
}
