package engine

import (
	"testing"
	"time"

	"github.com/andresuchdata/retail-metrics/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawRecord(overrides func(*domain.RawObservation)) domain.RawObservation {
	rec := domain.RawObservation{
		Date:           "2024-03-15",
		StoreID:        "S001",
		ProductID:      "P001",
		Category:       "Groceries",
		InventoryLevel: "100",
		UnitsSold:      "10",
		Price:          "5.50",
		UnitCost:       "4.00",
	}
	if overrides != nil {
		overrides(&rec)
	}
	return rec
}

func TestCleanFillsMissingInventoryWithZero(t *testing.T) {
	table := Clean([]domain.RawObservation{
		rawRecord(func(r *domain.RawObservation) { r.InventoryLevel = "" }),
	})

	require.Equal(t, 1, table.Len())
	assert.Equal(t, 0.0, table.Rows()[0].InventoryLevel)
}

func TestCleanDropsNegativeInventory(t *testing.T) {
	table := Clean([]domain.RawObservation{
		rawRecord(func(r *domain.RawObservation) { r.InventoryLevel = "-5" }),
		rawRecord(nil),
	})

	require.Equal(t, 1, table.Len())
	assert.Equal(t, 100.0, table.Rows()[0].InventoryLevel)
}

func TestCleanDropsUnparseableInventory(t *testing.T) {
	table := Clean([]domain.RawObservation{
		rawRecord(func(r *domain.RawObservation) { r.InventoryLevel = "not-a-number" }),
	})

	assert.True(t, table.Empty())
}

func TestCleanDropsRowsWithBadUnitsSold(t *testing.T) {
	table := Clean([]domain.RawObservation{
		rawRecord(func(r *domain.RawObservation) { r.UnitsSold = "" }),
		rawRecord(func(r *domain.RawObservation) { r.UnitsSold = "abc" }),
		rawRecord(nil),
	})

	require.Equal(t, 1, table.Len())
}

func TestCleanDurationPolicy(t *testing.T) {
	// A missing duration is a legal absence; an unparseable one drops the row.
	table := Clean([]domain.RawObservation{
		rawRecord(func(r *domain.RawObservation) { r.Duration = "" }),
		rawRecord(func(r *domain.RawObservation) { r.Duration = "3.5" }),
		rawRecord(func(r *domain.RawObservation) { r.Duration = "bogus" }),
	})

	require.Equal(t, 2, table.Len())
	rows := table.Rows()
	assert.Nil(t, rows[0].Duration)
	require.NotNil(t, rows[1].Duration)
	assert.Equal(t, 3.5, *rows[1].Duration)
}

func TestCleanLenientPriceAndCost(t *testing.T) {
	table := Clean([]domain.RawObservation{
		rawRecord(func(r *domain.RawObservation) {
			r.Price = "n/a"
			r.UnitCost = ""
		}),
	})

	require.Equal(t, 1, table.Len())
	row := table.Rows()[0]
	assert.Nil(t, row.Price)
	assert.Nil(t, row.UnitCost)
}

func TestCleanParsesThousandsSeparators(t *testing.T) {
	table := Clean([]domain.RawObservation{
		rawRecord(func(r *domain.RawObservation) { r.InventoryLevel = "1,250" }),
	})

	require.Equal(t, 1, table.Len())
	assert.Equal(t, 1250.0, table.Rows()[0].InventoryLevel)
}

func TestCleanAcceptsMultipleDateLayouts(t *testing.T) {
	cases := []string{
		"2024-03-15",
		"2024-03-15T00:00:00Z",
		"2024-03-15 00:00:00",
		"03/15/2024",
		"2024/03/15",
	}
	want := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	for _, raw := range cases {
		table := Clean([]domain.RawObservation{
			rawRecord(func(r *domain.RawObservation) { r.Date = raw }),
		})
		require.Equal(t, 1, table.Len(), "date %q", raw)
		assert.True(t, want.Equal(table.Rows()[0].Date), "date %q", raw)
	}
}

func TestCleanDropsUnparseableDates(t *testing.T) {
	table := Clean([]domain.RawObservation{
		rawRecord(func(r *domain.RawObservation) { r.Date = "15th of March" }),
		rawRecord(func(r *domain.RawObservation) { r.Date = "" }),
	})

	assert.True(t, table.Empty())
}

func TestCleanDoesNotMutateInput(t *testing.T) {
	records := []domain.RawObservation{
		rawRecord(func(r *domain.RawObservation) { r.InventoryLevel = "" }),
	}
	Clean(records)

	assert.Equal(t, "", records[0].InventoryLevel)
}

func TestCleanIsIdempotent(t *testing.T) {
	records := []domain.RawObservation{
		rawRecord(nil),
		rawRecord(func(r *domain.RawObservation) {
			r.ProductID = "P002"
			r.InventoryLevel = ""
			r.Price = "bad"
			r.Duration = "2"
		}),
		rawRecord(func(r *domain.RawObservation) { r.Date = "garbage" }),
	}

	once := Clean(records)
	twice := Clean(once.Raw())

	assert.Equal(t, once.Rows(), twice.Rows())
}

func TestCanonicalFieldName(t *testing.T) {
	cases := map[string]string{
		"Date":            "date",
		"Store ID":        "store_id",
		"product_id":      "product_id",
		"Item ID":         "product_id",
		"Inventory Level": "inventory_level",
		"stock_level":     "inventory_level",
		"Units Sold":      "units_sold",
		"Sales":           "units_sold",
		"Unit Cost":       "unit_cost",
		"ABC Class":       "abc_class",
		"Promo Flag":      "promoflag",
	}
	for header, want := range cases {
		assert.Equal(t, want, CanonicalFieldName(header), "header %q", header)
	}
}
