package engine

import (
	"testing"

	"github.com/andresuchdata/retail-metrics/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDaysOfSupply(t *testing.T) {
	table := NewTable([]Observation{
		obs("2024-01-01", "P001", 100, 10, nil, nil),
		obs("2024-01-11", "P001", 50, 10, nil, nil),
	})

	results, err := DaysOfSupplyAll(table)
	require.NoError(t, err)
	require.Len(t, results, 1)

	// Span is 10 days, 20 sold: 2/day. Latest inventory 50 lasts 25 days.
	require.NotNil(t, results[0].Value)
	assert.InDelta(t, 25.0, *results[0].Value, 1e-9)
}

func TestDaysOfSupplySingleDayHistory(t *testing.T) {
	table := NewTable([]Observation{
		obs("2024-01-01", "P001", 30, 10, nil, nil),
	})

	results, err := DaysOfSupplyAll(table)
	require.NoError(t, err)
	require.Len(t, results, 1)

	// The span floors to one day, so demand is 10/day.
	require.NotNil(t, results[0].Value)
	assert.InDelta(t, 3.0, *results[0].Value, 1e-9)
}

func TestDaysOfSupplyZeroDemandIsUndefined(t *testing.T) {
	table := NewTable([]Observation{
		obs("2024-01-01", "P001", 30, 0, nil, nil),
		obs("2024-01-10", "P001", 30, 0, nil, nil),
	})

	results, err := DaysOfSupplyAll(table)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Nil(t, results[0].Value)
}

func TestDaysOfSupplyUsesLatestObservationInventory(t *testing.T) {
	table := NewTable([]Observation{
		obs("2024-01-10", "P001", 0, 5, nil, nil),
		obs("2024-01-01", "P001", 100, 5, nil, nil),
	})

	results, err := DaysOfSupplyAll(table)
	require.NoError(t, err)
	require.Len(t, results, 1)

	// The most recent row has zero inventory regardless of input order.
	require.NotNil(t, results[0].Value)
	assert.Equal(t, 0.0, *results[0].Value)
}

func TestDaysOfSupplySortedByProduct(t *testing.T) {
	table := NewTable([]Observation{
		obs("2024-01-01", "P002", 10, 1, nil, nil),
		obs("2024-01-01", "P001", 10, 1, nil, nil),
	})

	results, err := DaysOfSupplyAll(table)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "P001", results[0].ItemID)
	assert.Equal(t, "P002", results[1].ItemID)
}

func TestDaysOfSupplyEmptyTable(t *testing.T) {
	_, err := DaysOfSupplyAll(Table{})

	me, ok := domain.IsMetricError(err)
	require.True(t, ok)
	assert.Equal(t, domain.ErrCodeInsufficientData, me.Code)
}
