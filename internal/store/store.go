package store

import (
	"context"

	"github.com/andresuchdata/retail-metrics/internal/domain"
)

// RecordStore is the engine's only dependency on persistence. Find answers
// equality queries over productId, category, abcClass and storeId with no
// ordering guarantee. ReplaceAll implements bulk-load semantics: a new load
// clears prior records for the dataset before inserting the batch, and the
// implementation must serialize it against concurrent readers.
type RecordStore interface {
	Find(ctx context.Context, filter domain.RecordFilter) ([]domain.RawObservation, error)
	ReplaceAll(ctx context.Context, records []domain.RawObservation) error
	Count(ctx context.Context) (int64, error)
}
