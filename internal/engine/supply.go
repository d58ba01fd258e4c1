// internal/engine/supply.go
package engine

import (
	"github.com/andresuchdata/retail-metrics/internal/domain"
)

// DaysOfSupplyAll computes days of supply for every product in the table:
//
//	days of supply = current inventory / average daily demand
//
// Current inventory is the inventory level of the product's most recent
// observation, not an average. Average daily demand is total units sold over
// the observed span in days, floored to one day so a single-day history does
// not divide by zero. Zero demand makes the result undefined, never an
// infinity.
func DaysOfSupplyAll(t Table) ([]domain.DaysOfSupply, error) {
	if t.Empty() {
		return nil, domain.ErrInsufficientData()
	}

	groups := t.productRows()
	products := t.Products()

	results := make([]domain.DaysOfSupply, 0, len(products))
	for _, product := range products {
		rows := groups[product]
		results = append(results, domain.DaysOfSupply{
			ItemID: product,
			Value:  daysOfSupply(rows),
		})
	}
	return results, nil
}

// daysOfSupply computes the metric over one product's rows. Returns nil
// (undefined) when demand is zero.
func daysOfSupply(rows []Observation) *float64 {
	if len(rows) == 0 {
		return nil
	}

	latest := rows[0]
	minDate, maxDate := rows[0].Date, rows[0].Date
	totalSold := 0.0
	for _, r := range rows {
		if r.Date.After(latest.Date) {
			latest = r
		}
		if r.Date.Before(minDate) {
			minDate = r.Date
		}
		if r.Date.After(maxDate) {
			maxDate = r.Date
		}
		totalSold += r.UnitsSold
	}

	spanDays := int(maxDate.Sub(minDate).Hours() / 24)
	if spanDays == 0 {
		spanDays = 1
	}

	avgDailyDemand := totalSold / float64(spanDays)
	if avgDailyDemand == 0 {
		return nil
	}

	dos := latest.InventoryLevel / avgDailyDemand
	return &dos
}
