// cmd/loader/csv.go
package main

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"net/url"
	"os"

	"github.com/andresuchdata/retail-metrics/internal/config"
	"github.com/andresuchdata/retail-metrics/internal/domain"
	"github.com/andresuchdata/retail-metrics/internal/engine"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// readBatch parses every CSV file into one observation batch. Headers are
// mapped through the canonical field names, so "Units Sold", "units_sold"
// and "sales" all land in the same column; unknown headers are preserved in
// the record's extra fields.
func readBatch(files []string) ([]domain.RawObservation, error) {
	var batch []domain.RawObservation
	for _, file := range files {
		records, err := readCSVFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", file, err)
		}
		batch = append(batch, records...)
	}
	return batch, nil
}

func readCSVFile(path string) ([]domain.RawObservation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	fields := make([]string, len(header))
	for i, h := range header {
		fields[i] = engine.CanonicalFieldName(h)
	}

	var records []domain.RawObservation
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}

		var rec domain.RawObservation
		for i, value := range row {
			if i >= len(fields) {
				break
			}
			assignField(&rec, fields[i], value)
		}
		records = append(records, rec)
	}
	return records, nil
}

func assignField(rec *domain.RawObservation, field, value string) {
	switch field {
	case "date":
		rec.Date = value
	case "store_id":
		rec.StoreID = value
	case "product_id":
		rec.ProductID = value
	case "category":
		rec.Category = value
	case "region":
		rec.Region = value
	case "seasonality":
		rec.Seasonality = value
	case "weather":
		rec.Weather = value
	case "inventory_level":
		rec.InventoryLevel = value
	case "units_sold":
		rec.UnitsSold = value
	case "price":
		rec.Price = value
	case "unit_cost":
		rec.UnitCost = value
	case "duration":
		rec.Duration = value
	case "abc_class":
		rec.ABCClass = value
	default:
		if rec.Extra == nil {
			rec.Extra = make(map[string]string)
		}
		rec.Extra[field] = value
	}
}

// openVerifyDB opens a plain database/sql connection for the read-only
// verify command.
func openVerifyDB(cfg *config.Config) (*sql.DB, error) {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		url.QueryEscape(cfg.Database.User), url.QueryEscape(cfg.Database.Password),
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName, cfg.Database.SSLMode)

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}
