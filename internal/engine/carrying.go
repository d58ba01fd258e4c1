// internal/engine/carrying.go
package engine

import (
	"github.com/andresuchdata/retail-metrics/internal/domain"
)

// DefaultCarryingCostRate is the annual holding cost rate applied when the
// caller does not supply one.
const DefaultCarryingCostRate = 0.20

// CarryingCostAll estimates the holding cost per product:
//
//	carrying cost = mean(inventoryLevel * unitCost) * rate
//
// Unit cost falls back to price*0.8 per the cleaning policy. A product whose
// inventory value cannot be computed for any row gets an undefined cost.
func CarryingCostAll(t Table, rate float64) ([]domain.CarryingCost, error) {
	if t.Empty() {
		return nil, domain.ErrInsufficientData()
	}
	if rate <= 0 {
		rate = DefaultCarryingCostRate
	}

	groups := t.productRows()
	products := t.Products()

	results := make([]domain.CarryingCost, 0, len(products))
	for _, product := range products {
		avg := avgInventoryValue(groups[product])
		var cost *float64
		if avg != nil {
			c := *avg * rate
			cost = &c
		}
		results = append(results, domain.CarryingCost{
			ItemID: product,
			Value:  cost,
		})
	}
	return results, nil
}

// avgInventoryValue returns the mean inventoryLevel*unitCost over the rows
// where a unit cost is available, or nil when it is undefined.
func avgInventoryValue(rows []Observation) *float64 {
	var (
		sum float64
		n   int
	)
	for _, r := range rows {
		cost, ok := r.EffectiveUnitCost()
		if !ok {
			continue
		}
		sum += r.InventoryLevel * cost
		n++
	}
	if n == 0 {
		return nil
	}
	avg := sum / float64(n)
	return &avg
}
