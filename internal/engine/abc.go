// internal/engine/abc.go
package engine

import (
	"sort"

	"github.com/andresuchdata/retail-metrics/internal/domain"
)

// ABC class cumulative-percentage boundaries.
const (
	abcClassABoundary = 80.0
	abcClassBBoundary = 95.0
)

// AssignABCClasses performs the load-time Pareto classification. Rows are
// ranked descending by salesValue = unitsSold*price; each row's class comes
// from the cumulative share of total sales value up to and including it:
// A while <= 80%, B while <= 95%, else C.
//
// This is row-level, assigned once at ingestion and stored with the record.
// Ties rank in input order (stable sort) so repeated loads of the same batch
// classify identically. When the batch has no sales value at all every row
// is C. The input is not mutated; a new slice is returned in input order.
func AssignABCClasses(records []domain.RawObservation) []domain.RawObservation {
	out := make([]domain.RawObservation, len(records))
	copy(out, records)
	if len(out) == 0 {
		return out
	}

	values := make([]float64, len(out))
	total := 0.0
	for i, rec := range out {
		sold, okSold := parseNumber(rec.UnitsSold)
		price, okPrice := parseNumber(rec.Price)
		if okSold && okPrice {
			values[i] = sold * price
		}
		total += values[i]
	}

	order := make([]int, len(out))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return values[order[a]] > values[order[b]]
	})

	if total <= 0 {
		for i := range out {
			out[i].ABCClass = "C"
		}
		return out
	}

	cumulative := 0.0
	for _, idx := range order {
		cumulative += values[idx]
		pct := cumulative / total * 100
		switch {
		case pct <= abcClassABoundary:
			out[idx].ABCClass = "A"
		case pct <= abcClassBBoundary:
			out[idx].ABCClass = "B"
		default:
			out[idx].ABCClass = "C"
		}
	}
	return out
}
