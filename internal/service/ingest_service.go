package service

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/andresuchdata/retail-metrics/internal/cache"
	"github.com/andresuchdata/retail-metrics/internal/domain"
	"github.com/andresuchdata/retail-metrics/internal/engine"
	"github.com/andresuchdata/retail-metrics/internal/store"
	"github.com/rs/zerolog/log"
)

// IngestService performs bulk loads: ABC classification at load time, then
// replace-all insertion. Loads are serialized through the ingest lock so two
// loaders cannot interleave their replace-all phases.
type IngestService struct {
	store       store.RecordStore
	lock        cache.IngestLock
	statusCache cache.DataStatusCache
}

func NewIngestService(recordStore store.RecordStore, lock cache.IngestLock, statusCache cache.DataStatusCache) *IngestService {
	if lock == nil {
		lock = cache.NewNoopIngestLock()
	}
	if statusCache == nil {
		statusCache = cache.NewNoopDataStatusCache()
	}
	return &IngestService{store: recordStore, lock: lock, statusCache: statusCache}
}

// LoadBatch replaces the dataset with the given batch and returns the
// number of records loaded. ABC classes are assigned here, once, and stored
// with the records; queries never recompute them.
func (s *IngestService) LoadBatch(ctx context.Context, records []domain.RawObservation) (int, error) {
	owner := lockOwner()

	acquired, err := s.lock.Acquire(ctx, owner)
	if err != nil {
		return 0, fmt.Errorf("failed to acquire ingest lock: %w", err)
	}
	if !acquired {
		return 0, fmt.Errorf("another load is in progress")
	}
	defer func() {
		if err := s.lock.Release(ctx, owner); err != nil {
			log.Warn().Err(err).Msg("ingest: failed to release lock")
		}
	}()

	classified := engine.AssignABCClasses(records)

	if err := s.store.ReplaceAll(ctx, classified); err != nil {
		return 0, fmt.Errorf("failed to replace dataset: %w", err)
	}

	if err := s.statusCache.Invalidate(ctx); err != nil {
		log.Warn().Err(err).Msg("ingest: failed to invalidate status cache")
	}

	log.Info().Int("records", len(classified)).Msg("dataset loaded")
	return len(classified), nil
}

func lockOwner() string {
	host, err := os.Hostname()
	if err != nil {
		host = "loader"
	}
	return fmt.Sprintf("%s-%d-%d", host, os.Getpid(), time.Now().UnixNano())
}
