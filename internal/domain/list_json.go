package domain

import "encoding/json"

// DaysOfSupplyResult is a list of per-product results, or a single record
// when an item filter narrowed the set to exactly one product.
type DaysOfSupplyResult struct {
	Items  []DaysOfSupply
	Single bool
}

func (r DaysOfSupplyResult) MarshalJSON() ([]byte, error) {
	if r.Single && len(r.Items) == 1 {
		return json.Marshal(r.Items[0])
	}
	return json.Marshal(r.Items)
}

// CarryingCostResult follows the same single-or-list convention.
type CarryingCostResult struct {
	Items  []CarryingCost
	Single bool
}

func (r CarryingCostResult) MarshalJSON() ([]byte, error) {
	if r.Single && len(r.Items) == 1 {
		return json.Marshal(r.Items[0])
	}
	return json.Marshal(r.Items)
}
