package service

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/andresuchdata/retail-metrics/internal/descriptions"
	"github.com/andresuchdata/retail-metrics/internal/domain"
	"github.com/andresuchdata/retail-metrics/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func testRecords() []domain.RawObservation {
	return []domain.RawObservation{
		{Date: "2024-01-10", StoreID: "S001", ProductID: "P001", Category: "Groceries", InventoryLevel: "10", UnitsSold: "5", Price: "2", UnitCost: "1", ABCClass: "A"},
		{Date: "2024-01-20", StoreID: "S001", ProductID: "P001", Category: "Groceries", InventoryLevel: "20", UnitsSold: "2", Price: "3", UnitCost: "2", ABCClass: "A"},
		{Date: "2024-02-05", StoreID: "S002", ProductID: "P002", Category: "Toys", InventoryLevel: "10", UnitsSold: "4", Price: "1", UnitCost: "1", ABCClass: "B"},
	}
}

func newTestService(t *testing.T, records []domain.RawObservation, opts ...Option) *MetricsService {
	t.Helper()
	s := store.NewMemoryStore()
	require.NoError(t, s.ReplaceAll(context.Background(), records))
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewMetricsService(s, descriptions.Empty(), opts...)
}

func TestTurnoverSeries(t *testing.T) {
	svc := newTestService(t, testRecords())

	result, err := svc.Turnover(context.Background(), domain.MetricParams{})
	require.NoError(t, err)

	require.Len(t, result.Points, 2)
	assert.False(t, result.Single)
	require.NotNil(t, result.Points[0].TurnoverRatio)
	assert.InDelta(t, 0.8, *result.Points[0].TurnoverRatio, 1e-9)
}

func TestTurnoverSingleFormUnderItemFilter(t *testing.T) {
	svc := newTestService(t, testRecords())

	result, err := svc.Turnover(context.Background(), domain.MetricParams{ItemID: "P002"})
	require.NoError(t, err)

	require.Len(t, result.Points, 1)
	assert.True(t, result.Single)

	payload, err := json.Marshal(result)
	require.NoError(t, err)
	assert.True(t, json.Valid(payload))
	// Single form serializes as an object, not a one-element array.
	assert.Equal(t, byte('{'), payload[0])
}

func TestTurnoverNoMatchingRecords(t *testing.T) {
	svc := newTestService(t, testRecords())

	_, err := svc.Turnover(context.Background(), domain.MetricParams{ItemID: "P999"})

	assert.ErrorIs(t, err, domain.ErrInsufficientData())
}

func TestStockoutRateFiltered(t *testing.T) {
	records := append(testRecords(),
		domain.RawObservation{Date: "2024-03-01", StoreID: "S001", ProductID: "P003", Category: "Toys", InventoryLevel: "0", UnitsSold: "3", Duration: "2"},
	)
	svc := newTestService(t, records)

	summary, err := svc.StockoutRate(context.Background(), domain.MetricParams{Category: "Toys"})
	require.NoError(t, err)

	assert.Equal(t, 50.0, summary.StockoutRate)
	assert.Equal(t, 1, summary.StockoutFrequency)
	assert.Equal(t, 2.0, summary.AverageDuration)
}

func TestStockoutHeatmap(t *testing.T) {
	records := append(testRecords(),
		domain.RawObservation{Date: "2024-03-01", StoreID: "S001", ProductID: "P003", InventoryLevel: "0", UnitsSold: "3"},
	)
	svc := newTestService(t, records)

	cells, err := svc.StockoutHeatmap(context.Background(), domain.MetricParams{})
	require.NoError(t, err)

	assert.Equal(t, []domain.HeatmapCell{
		{ProductID: "P003", Month: "2024-03", StockoutCount: 1},
	}, cells)
}

func TestDaysOfSupplyPerProduct(t *testing.T) {
	svc := newTestService(t, testRecords())

	result, err := svc.DaysOfSupply(context.Background(), domain.MetricParams{})
	require.NoError(t, err)

	require.Len(t, result.Items, 2)
	assert.False(t, result.Single)
	assert.Equal(t, "P001", result.Items[0].ItemID)
	assert.Equal(t, "P002", result.Items[1].ItemID)
}

func TestCarryingCostUsesDefaultRate(t *testing.T) {
	svc := newTestService(t, testRecords())

	result, err := svc.CarryingCost(context.Background(), domain.MetricParams{ItemID: "P002"})
	require.NoError(t, err)

	require.Len(t, result.Items, 1)
	assert.True(t, result.Single)
	// Inventory value 10*1 at the 20% default rate.
	require.NotNil(t, result.Items[0].Value)
	assert.InDelta(t, 2.0, *result.Items[0].Value, 1e-9)
}

func TestClassifyEmptyFilterResult(t *testing.T) {
	svc := newTestService(t, testRecords())

	_, err := svc.Classify(context.Background(), domain.MetricParams{ItemID: "P999"})

	assert.ErrorIs(t, err, domain.ErrInsufficientData())
}

func TestClassifyUsesInjectedClock(t *testing.T) {
	// Every sale in the fixture is within 180 days of the fixed clock; with
	// a clock two years later everything is obsolete.
	later := fixedNow.AddDate(2, 0, 0)
	svc := newTestService(t, testRecords(), WithClock(func() time.Time { return later }))

	result, err := svc.Classify(context.Background(), domain.MetricParams{})
	require.NoError(t, err)

	assert.Equal(t, []string{"P001", "P002"}, result.ObsoleteItems)
}

func TestMetricDescriptionsAttached(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api_descriptions.json")
	payload := `{
		"metrics": {
			"sections": [
				{"key": "turnover", "description": "How fast inventory sells through."},
				{"key": "days_of_supply", "description": "How long current stock lasts."}
			]
		}
	}`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0644))

	catalog, err := descriptions.Load(path)
	require.NoError(t, err)

	s := store.NewMemoryStore()
	require.NoError(t, s.ReplaceAll(context.Background(), testRecords()))
	svc := NewMetricsService(s, catalog, WithClock(func() time.Time { return fixedNow }))

	result, err := svc.Turnover(context.Background(), domain.MetricParams{})
	require.NoError(t, err)
	require.NotEmpty(t, result.Points)
	assert.Equal(t, "How fast inventory sells through.", result.Points[0].Description)

	dos, err := svc.DaysOfSupply(context.Background(), domain.MetricParams{})
	require.NoError(t, err)
	require.NotEmpty(t, dos.Items)
	assert.Equal(t, "How long current stock lasts.", dos.Items[0].Description)
}

func TestDataStatus(t *testing.T) {
	svc := newTestService(t, testRecords())

	status, err := svc.DataStatus(context.Background())
	require.NoError(t, err)

	assert.True(t, status.IsLoaded)
	assert.Equal(t, int64(3), status.RecordCount)
}

func TestDataStatusEmptyStore(t *testing.T) {
	svc := newTestService(t, nil)

	status, err := svc.DataStatus(context.Background())
	require.NoError(t, err)

	assert.False(t, status.IsLoaded)
	assert.Zero(t, status.RecordCount)
}
