// internal/engine/table.go
package engine

import (
	"sort"
	"time"

	"github.com/andresuchdata/retail-metrics/internal/domain"
)

// Observation is one cleaned store-product-day row. All numeric fields have
// survived coercion; optional fields are nil when the source value was
// absent or unparseable.
type Observation struct {
	Date           time.Time
	StoreID        string
	ProductID      string
	Category       string
	Region         string
	Seasonality    string
	Weather        string
	InventoryLevel float64
	UnitsSold      float64
	Price          *float64
	UnitCost       *float64
	Duration       *float64
	ABCClass       string
	Extra          map[string]string
}

// EffectiveUnitCost returns the unit cost, falling back to price*0.8 when no
// measured cost is present. The fallback is an explicit policy, not data.
// The second return is false when neither cost nor price is available.
func (o Observation) EffectiveUnitCost() (float64, bool) {
	if o.UnitCost != nil {
		return *o.UnitCost, true
	}
	if o.Price != nil {
		return *o.Price * 0.8, true
	}
	return 0, false
}

// Table is the immutable cleaned record set every calculator runs over. It
// is constructed once per request and never mutated; concurrent calculators
// may share it freely.
type Table struct {
	rows []Observation
}

// NewTable copies rows into a fresh table.
func NewTable(rows []Observation) Table {
	copied := make([]Observation, len(rows))
	copy(copied, rows)
	return Table{rows: copied}
}

// Len returns the number of rows.
func (t Table) Len() int { return len(t.rows) }

// Empty reports whether the table has no rows.
func (t Table) Empty() bool { return len(t.rows) == 0 }

// Rows returns a copy of the rows, preserving input order.
func (t Table) Rows() []Observation {
	copied := make([]Observation, len(t.rows))
	copy(copied, t.rows)
	return copied
}

// Products returns the distinct product IDs in the table, sorted.
func (t Table) Products() []string {
	seen := make(map[string]struct{}, len(t.rows))
	var ids []string
	for _, r := range t.rows {
		if _, ok := seen[r.ProductID]; ok {
			continue
		}
		seen[r.ProductID] = struct{}{}
		ids = append(ids, r.ProductID)
	}
	sort.Strings(ids)
	return ids
}

// hasPrice reports whether at least one row carries a price. Inventory level
// and units sold are guaranteed by cleaning, so price is the only required
// turnover column that can still be missing.
func (t Table) hasPrice() bool {
	for _, r := range t.rows {
		if r.Price != nil {
			return true
		}
	}
	return false
}

// productRows groups row indices by product, preserving input order within
// each group.
func (t Table) productRows() map[string][]Observation {
	groups := make(map[string][]Observation)
	for _, r := range t.rows {
		groups[r.ProductID] = append(groups[r.ProductID], r)
	}
	return groups
}

// Raw converts the cleaned table back to the canonical raw representation.
// Cleaning is idempotent over this round trip.
func (t Table) Raw() []domain.RawObservation {
	out := make([]domain.RawObservation, 0, len(t.rows))
	for _, r := range t.rows {
		out = append(out, domain.RawObservation{
			Date:           r.Date.Format(dateLayout),
			StoreID:        r.StoreID,
			ProductID:      r.ProductID,
			Category:       r.Category,
			Region:         r.Region,
			Seasonality:    r.Seasonality,
			Weather:        r.Weather,
			InventoryLevel: formatFloat(r.InventoryLevel),
			UnitsSold:      formatFloat(r.UnitsSold),
			Price:          formatOptFloat(r.Price),
			UnitCost:       formatOptFloat(r.UnitCost),
			Duration:       formatOptFloat(r.Duration),
			ABCClass:       r.ABCClass,
			Extra:          r.Extra,
		})
	}
	return out
}
