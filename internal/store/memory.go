package store

import (
	"context"
	"sync"

	"github.com/andresuchdata/retail-metrics/internal/domain"
)

// MemoryStore is an in-memory RecordStore used by tests and the loader's
// dry-run mode. ReplaceAll swaps the whole slice under a write lock, so
// readers never observe a partially loaded batch.
type MemoryStore struct {
	mu      sync.RWMutex
	records []domain.RawObservation
}

// NewMemoryStore builds an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Find(ctx context.Context, filter domain.RecordFilter) ([]domain.RawObservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.RawObservation, 0, len(s.records))
	for _, rec := range s.records {
		if matches(rec, filter) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *MemoryStore) ReplaceAll(ctx context.Context, records []domain.RawObservation) error {
	copied := make([]domain.RawObservation, len(records))
	copy(copied, records)

	s.mu.Lock()
	s.records = copied
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.records)), nil
}

func matches(rec domain.RawObservation, filter domain.RecordFilter) bool {
	if filter.ProductID != "" && rec.ProductID != filter.ProductID {
		return false
	}
	if filter.Category != "" && rec.Category != filter.Category {
		return false
	}
	if filter.ABCClass != "" && rec.ABCClass != filter.ABCClass {
		return false
	}
	if filter.StoreID != "" && rec.StoreID != filter.StoreID {
		return false
	}
	return true
}
