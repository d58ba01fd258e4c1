// internal/engine/stockout.go
package engine

import (
	"sort"

	"github.com/andresuchdata/retail-metrics/internal/domain"
)

// isStockoutEvent reports whether a row records a sale against depleted
// stock. The conjunction is the stockout signal; zero inventory alone is
// not.
func isStockoutEvent(o Observation) bool {
	return o.InventoryLevel <= 0 && o.UnitsSold > 0
}

// StockoutRate computes the stockout rate, frequency and average duration
// over the filtered set:
//
//	rate = stockout events / rows with unitsSold > 0 * 100
//
// With no sales rows the rate is 0 with an explanatory message rather than
// a division failure.
func StockoutRate(t Table) (domain.StockoutSummary, error) {
	if t.Empty() {
		return domain.StockoutSummary{}, domain.ErrInsufficientData()
	}

	var (
		events      int
		salesRows   int
		durationSum float64
		durationN   int
	)
	for _, r := range t.rows {
		if r.UnitsSold > 0 {
			salesRows++
		}
		if isStockoutEvent(r) {
			events++
			if r.Duration != nil {
				durationSum += *r.Duration
				durationN++
			}
		}
	}

	if salesRows == 0 {
		return domain.StockoutSummary{
			StockoutRate: 0,
			Message:      "no sales, so stockout rate is 0",
		}, nil
	}

	avgDuration := 0.0
	if durationN > 0 {
		avgDuration = durationSum / float64(durationN)
	}

	return domain.StockoutSummary{
		StockoutRate:      float64(events) / float64(salesRows) * 100,
		StockoutFrequency: events,
		AverageDuration:   avgDuration,
	}, nil
}

// StockoutHeatmap counts stockout events per product per calendar month.
// Cells are ordered by product then month; a set with no events yields an
// empty slice.
func StockoutHeatmap(t Table) []domain.HeatmapCell {
	type cellKey struct {
		product string
		month   string
	}
	counts := make(map[cellKey]int)
	for _, r := range t.rows {
		if !isStockoutEvent(r) {
			continue
		}
		counts[cellKey{product: r.ProductID, month: r.Date.Format("2006-01")}]++
	}

	cells := make([]domain.HeatmapCell, 0, len(counts))
	for k, n := range counts {
		cells = append(cells, domain.HeatmapCell{
			ProductID:     k.product,
			Month:         k.month,
			StockoutCount: n,
		})
	}
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].ProductID != cells[j].ProductID {
			return cells[i].ProductID < cells[j].ProductID
		}
		return cells[i].Month < cells[j].Month
	})
	return cells
}
