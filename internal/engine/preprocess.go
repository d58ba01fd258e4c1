// internal/engine/preprocess.go
package engine

import (
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/retail-metrics/internal/domain"
)

const dateLayout = "2006-01-02"

// dateLayouts are the formats accepted for the observation date, tried in
// order. Anything else is an unparseable date and the row is dropped.
var dateLayouts = []string{
	dateLayout,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"01/02/2006",
	"2006/01/02",
}

// Clean turns a raw record batch into a well-typed table.
//
// Policy, in order:
//   - inventory level: missing is filled with 0 before coercion; values that
//     still fail to parse, and negative values, drop the row (discarded, not
//     clamped).
//   - units sold and duration: unparseable values drop the row. A missing
//     duration is legal (the field is optional); a missing units sold is an
//     input-integrity failure and drops the row.
//   - price and unit cost: missing or unparseable values become nil. The
//     unit cost fallback is applied at calculation time, not here.
//   - date: rows with unparseable dates are dropped, after numeric cleaning.
//
// Clean never mutates its input and returns a new table. Empty input
// returns an empty table.
func Clean(records []domain.RawObservation) Table {
	if len(records) == 0 {
		return Table{}
	}

	rows := make([]Observation, 0, len(records))
	for _, rec := range records {
		inventoryRaw := strings.TrimSpace(rec.InventoryLevel)
		if inventoryRaw == "" {
			inventoryRaw = "0"
		}
		inventory, ok := parseNumber(inventoryRaw)
		if !ok || inventory < 0 {
			continue
		}

		sold, ok := parseNumber(rec.UnitsSold)
		if !ok {
			continue
		}

		duration, ok := parseOptNumber(rec.Duration)
		if !ok {
			continue
		}

		date, ok := parseDate(rec.Date)
		if !ok {
			continue
		}

		rows = append(rows, Observation{
			Date:           date,
			StoreID:        rec.StoreID,
			ProductID:      rec.ProductID,
			Category:       rec.Category,
			Region:         rec.Region,
			Seasonality:    rec.Seasonality,
			Weather:        rec.Weather,
			InventoryLevel: inventory,
			UnitsSold:      sold,
			Price:          parseLenientNumber(rec.Price),
			UnitCost:       parseLenientNumber(rec.UnitCost),
			Duration:       duration,
			ABCClass:       strings.TrimSpace(rec.ABCClass),
			Extra:          rec.Extra,
		})
	}

	return Table{rows: rows}
}

// parseNumber parses a required numeric field. Empty or malformed input
// fails the parse.
func parseNumber(raw string) (float64, bool) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return 0, false
	}
	v = strings.ReplaceAll(v, ",", "")
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// parseOptNumber parses an optional numeric field. Absence is fine (nil,
// true); a present but malformed value fails the parse.
func parseOptNumber(raw string) (*float64, bool) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return nil, true
	}
	f, ok := parseNumber(v)
	if !ok {
		return nil, false
	}
	return &f, true
}

// parseLenientNumber parses a field where malformed input degrades to
// missing instead of dropping the row.
func parseLenientNumber(raw string) *float64 {
	f, ok := parseNumber(raw)
	if !ok {
		return nil
	}
	return &f
}

func parseDate(raw string) (time.Time, bool) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, v); err == nil {
			return d.Truncate(24 * time.Hour), true
		}
	}
	return time.Time{}, false
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatOptFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return formatFloat(*f)
}

// canonicalFieldNames maps the header spellings seen in source CSV exports
// to the internal field names. All renaming happens here so the calculators
// never see raw headers.
var canonicalFieldNames = map[string]string{
	"date":           "date",
	"storeid":        "store_id",
	"store":          "store_id",
	"productid":      "product_id",
	"product":        "product_id",
	"itemid":         "product_id",
	"category":       "category",
	"region":         "region",
	"seasonality":    "seasonality",
	"weather":        "weather",
	"inventorylevel": "inventory_level",
	"inventory":      "inventory_level",
	"stocklevel":     "inventory_level",
	"unitssold":      "units_sold",
	"sales":          "units_sold",
	"quantity":       "units_sold",
	"price":          "price",
	"unitcost":       "unit_cost",
	"cost":           "unit_cost",
	"duration":       "duration",
	"abcclass":       "abc_class",
}

var fieldNameSanitizer = strings.NewReplacer(" ", "", "_", "", ".", "", "-", "", "/", "")

// CanonicalFieldName resolves a raw CSV header to the internal field name.
// Unknown headers are returned sanitized so extra fields pass through
// untouched under a stable key.
func CanonicalFieldName(header string) string {
	key := fieldNameSanitizer.Replace(strings.TrimSpace(strings.ToLower(header)))
	if canonical, ok := canonicalFieldNames[key]; ok {
		return canonical
	}
	return key
}
