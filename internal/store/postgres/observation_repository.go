// internal/store/postgres/observation_repository.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/andresuchdata/retail-metrics/internal/domain"
)

// Raw numeric and date fields are stored as text on purpose: the engine's
// preprocessor owns coercion, and the store hands back exactly what was
// loaded.
const createObservationsTable = `
	CREATE TABLE IF NOT EXISTS retail_observations (
		id              BIGSERIAL PRIMARY KEY,
		date            TEXT NOT NULL,
		store_id        TEXT NOT NULL,
		product_id      TEXT NOT NULL,
		category        TEXT NOT NULL DEFAULT '',
		region          TEXT NOT NULL DEFAULT '',
		seasonality     TEXT NOT NULL DEFAULT '',
		weather         TEXT NOT NULL DEFAULT '',
		inventory_level TEXT NOT NULL DEFAULT '',
		units_sold      TEXT NOT NULL DEFAULT '',
		price           TEXT NOT NULL DEFAULT '',
		unit_cost       TEXT NOT NULL DEFAULT '',
		duration        TEXT NOT NULL DEFAULT '',
		abc_class       TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_retail_observations_product ON retail_observations (product_id);
	CREATE INDEX IF NOT EXISTS idx_retail_observations_category ON retail_observations (category);
	CREATE INDEX IF NOT EXISTS idx_retail_observations_abc ON retail_observations (abc_class);
	CREATE INDEX IF NOT EXISTS idx_retail_observations_store ON retail_observations (store_id);
`

const insertBatchSize = 500

// ObservationRepository is the PostgreSQL RecordStore.
type ObservationRepository struct {
	db *DB
}

func NewObservationRepository(db *DB) *ObservationRepository {
	return &ObservationRepository{db: db}
}

// EnsureSchema creates the observations table and its filter indexes.
func (r *ObservationRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createObservationsTable); err != nil {
		return fmt.Errorf("failed to ensure observations schema: %w", err)
	}
	return nil
}

// Find returns the observations matching the equality filter. No ordering
// is guaranteed beyond insertion order.
func (r *ObservationRepository) Find(ctx context.Context, filter domain.RecordFilter) ([]domain.RawObservation, error) {
	query := `
        SELECT
            date, store_id, product_id, category, region, seasonality, weather,
            inventory_level, units_sold, price, unit_cost, duration, abc_class
        FROM retail_observations
        WHERE 1=1
    `

	var args []interface{}
	var conditions []string
	argCounter := 1

	if filter.ProductID != "" {
		conditions = append(conditions, fmt.Sprintf("product_id = $%d", argCounter))
		args = append(args, filter.ProductID)
		argCounter++
	}

	if filter.Category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argCounter))
		args = append(args, filter.Category)
		argCounter++
	}

	if filter.ABCClass != "" {
		conditions = append(conditions, fmt.Sprintf("abc_class = $%d", argCounter))
		args = append(args, filter.ABCClass)
		argCounter++
	}

	if filter.StoreID != "" {
		conditions = append(conditions, fmt.Sprintf("store_id = $%d", argCounter))
		args = append(args, filter.StoreID)
		argCounter++
	}

	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY id"

	var records []domain.RawObservation
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("error finding observations: %w", err)
	}

	return records, nil
}

// ReplaceAll clears the dataset and loads the batch inside one transaction,
// so concurrent readers see either the old dataset or the new one, never a
// partial state.
func (r *ObservationRepository) ReplaceAll(ctx context.Context, records []domain.RawObservation) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM retail_observations"); err != nil {
			return fmt.Errorf("failed to clear observations: %w", err)
		}

		for start := 0; start < len(records); start += insertBatchSize {
			end := start + insertBatchSize
			if end > len(records) {
				end = len(records)
			}
			if err := insertBatch(ctx, tx, records[start:end]); err != nil {
				return err
			}
		}
		return nil
	})
}

func insertBatch(ctx context.Context, tx *sql.Tx, batch []domain.RawObservation) error {
	if len(batch) == 0 {
		return nil
	}

	var (
		placeholders []string
		args         []interface{}
	)
	for i, rec := range batch {
		base := i * 13
		placeholders = append(placeholders, fmt.Sprintf(
			"($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7,
			base+8, base+9, base+10, base+11, base+12, base+13,
		))
		args = append(args,
			rec.Date, rec.StoreID, rec.ProductID, rec.Category, rec.Region,
			rec.Seasonality, rec.Weather, rec.InventoryLevel, rec.UnitsSold,
			rec.Price, rec.UnitCost, rec.Duration, rec.ABCClass,
		)
	}

	query := `
		INSERT INTO retail_observations (
			date, store_id, product_id, category, region, seasonality, weather,
			inventory_level, units_sold, price, unit_cost, duration, abc_class
		) VALUES ` + strings.Join(placeholders, ", ")

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert observation batch: %w", err)
	}
	return nil
}

// Count returns the number of loaded observations.
func (r *ObservationRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM retail_observations"); err != nil {
		return 0, fmt.Errorf("error counting observations: %w", err)
	}
	return count, nil
}
