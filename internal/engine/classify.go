// internal/engine/classify.go
package engine

import (
	"sort"
	"time"

	"github.com/andresuchdata/retail-metrics/internal/domain"
)

// Default classification thresholds.
const (
	DefaultSlowTurnoverThreshold = 2.0
	DefaultDOSThreshold          = 180.0
	DefaultInactivityDays        = 180
)

// ClassifyThresholds are the tunable cut-offs for slow-mover and obsolete
// detection.
type ClassifyThresholds struct {
	SlowTurnover   float64
	DOS            float64
	InactivityDays int
}

// withDefaults fills unset thresholds with the documented defaults.
func (th ClassifyThresholds) withDefaults() ClassifyThresholds {
	if th.SlowTurnover <= 0 {
		th.SlowTurnover = DefaultSlowTurnoverThreshold
	}
	if th.DOS <= 0 {
		th.DOS = DefaultDOSThreshold
	}
	if th.InactivityDays <= 0 {
		th.InactivityDays = DefaultInactivityDays
	}
	return th
}

// Classify detects slow-moving and obsolete products over the whole filtered
// set.
//
// A product is a slow mover when its turnover ratio is below the threshold
// or its days of supply is above the threshold; either weak signal suffices.
// The per-product turnover here groups the denominator by product, unlike
// the global denominator in Turnover.
//
// A product is obsolete when its most recent sale is older than
// now - inactivityDays, or when it has zero lifetime sales; the two triggers
// are unioned. The sets are deduplicated and may overlap.
//
// A product whose metrics cannot be computed is skipped for that signal;
// one product's failure never aborts the others.
func Classify(t Table, th ClassifyThresholds, now time.Time) domain.ClassificationResult {
	th = th.withDefaults()
	groups := t.productRows()
	products := t.Products()
	cutoff := now.AddDate(0, 0, -th.InactivityDays)

	slow := make([]string, 0)
	obsolete := make([]string, 0)

	for _, product := range products {
		rows := groups[product]

		if isSlowMover(rows, th) {
			slow = append(slow, product)
		}

		lastSale, hasSales := lastSaleDate(rows)
		if !hasSales || lastSale.Before(cutoff) {
			obsolete = append(obsolete, product)
		}
	}

	sort.Strings(slow)
	sort.Strings(obsolete)
	return domain.ClassificationResult{
		SlowMovers:    slow,
		ObsoleteItems: obsolete,
	}
}

// isSlowMover evaluates the OR of the two weak signals. Undefined metrics
// do not trigger: a product with no computable inventory value is not slow
// by turnover, and a product with undefined days of supply is not slow by
// supply.
func isSlowMover(rows []Observation, th ClassifyThresholds) bool {
	if avg := avgInventoryValue(rows); avg != nil && *avg > 0 {
		var totalCOGS float64
		for _, r := range rows {
			if r.Price != nil {
				totalCOGS += r.UnitsSold * *r.Price
			}
		}
		if totalCOGS / *avg < th.SlowTurnover {
			return true
		}
	}

	if dos := daysOfSupply(rows); dos != nil && *dos > th.DOS {
		return true
	}
	return false
}

// lastSaleDate returns the most recent date with unitsSold > 0 for the
// product, and false when it never sold.
func lastSaleDate(rows []Observation) (time.Time, bool) {
	var (
		last time.Time
		ok   bool
	)
	for _, r := range rows {
		if r.UnitsSold <= 0 {
			continue
		}
		if !ok || r.Date.After(last) {
			last = r.Date
			ok = true
		}
	}
	return last, ok
}
