// internal/domain/models.go
package domain

import "time"

// RawObservation is one store-product-day row exactly as it came out of the
// record store. Numeric and date fields are kept as raw strings; the engine's
// preprocessor owns all coercion so that every call site applies the same
// cleaning rules.
type RawObservation struct {
	Date           string            `json:"date" db:"date"`
	StoreID        string            `json:"store_id" db:"store_id"`
	ProductID      string            `json:"product_id" db:"product_id"`
	Category       string            `json:"category" db:"category"`
	Region         string            `json:"region" db:"region"`
	Seasonality    string            `json:"seasonality" db:"seasonality"`
	Weather        string            `json:"weather" db:"weather"`
	InventoryLevel string            `json:"inventory_level" db:"inventory_level"`
	UnitsSold      string            `json:"units_sold" db:"units_sold"`
	Price          string            `json:"price" db:"price"`
	UnitCost       string            `json:"unit_cost" db:"unit_cost"`
	Duration       string            `json:"duration" db:"duration"`
	ABCClass       string            `json:"abc_class" db:"abc_class"`
	Extra          map[string]string `json:"extra,omitempty" db:"-"`
}

// RecordFilter is the equality query the engine issues against the record
// store. Empty fields are not part of the query.
type RecordFilter struct {
	ProductID string `json:"product_id"`
	Category  string `json:"category"`
	ABCClass  string `json:"abc_class"`
	StoreID   string `json:"store_id"`
}

// IsZero reports whether the filter has no constraints.
func (f RecordFilter) IsZero() bool {
	return f.ProductID == "" && f.Category == "" && f.ABCClass == "" && f.StoreID == ""
}

// Period is the calendar bucketing granularity for turnover resampling.
type Period string

const (
	PeriodDaily     Period = "daily"
	PeriodWeekly    Period = "weekly"
	PeriodMonthly   Period = "monthly"
	PeriodQuarterly Period = "quarterly"
	PeriodYearly    Period = "yearly"
)

// Valid reports whether the period is one of the supported granularities.
func (p Period) Valid() bool {
	switch p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodQuarterly, PeriodYearly:
		return true
	}
	return false
}

// MetricParams carries the optional request parameters accepted by the
// engine's entry points. Zero values fall back to the documented defaults.
type MetricParams struct {
	ItemID   string `json:"item_id"`
	Category string `json:"category"`
	ABCClass string `json:"abc_class"`
	StoreID  string `json:"store_id"`
	Period   Period `json:"period"`

	CarryingCostRate      float64 `json:"carrying_cost_rate"`
	SlowTurnoverThreshold float64 `json:"slow_turnover_threshold"`
	DOSThreshold          float64 `json:"dos_threshold"`
	InactivityDays        int     `json:"inactivity_days"`
}

// Filter derives the record store query from the request parameters.
func (p MetricParams) Filter() RecordFilter {
	return RecordFilter{
		ProductID: p.ItemID,
		Category:  p.Category,
		ABCClass:  p.ABCClass,
		StoreID:   p.StoreID,
	}
}

// TurnoverPoint is the turnover ratio for one resampled calendar bucket.
// Ratio is nil when the division produced an infinity; infinities are always
// normalized to undefined so results stay serializable and comparable.
type TurnoverPoint struct {
	Date          time.Time `json:"date"`
	TurnoverRatio *float64  `json:"turnover_ratio"`
	Description   string    `json:"description,omitempty"`
}

// TurnoverResult is either a list of points (no item filter, or several
// buckets) or a single point when an item filter narrowed the series to
// exactly one bucket. The scalar form is preserved for API compatibility.
type TurnoverResult struct {
	Points []TurnoverPoint
	Single bool
}

// StockoutSummary summarizes stockout events over the filtered set.
type StockoutSummary struct {
	StockoutRate      float64 `json:"stockout_rate"`
	StockoutFrequency int     `json:"stockout_frequency"`
	AverageDuration   float64 `json:"average_duration"`
	Message           string  `json:"message,omitempty"`
	Description       string  `json:"description,omitempty"`
}

// HeatmapCell is the stockout event count for one product in one month.
type HeatmapCell struct {
	ProductID     string `json:"product_id"`
	Month         string `json:"month"`
	StockoutCount int    `json:"stockout_count"`
}

// DaysOfSupply is the estimated days current stock lasts at recent demand.
// Value is nil (undefined) when average daily demand is zero.
type DaysOfSupply struct {
	ItemID      string   `json:"item_id"`
	Value       *float64 `json:"days_of_supply"`
	Description string   `json:"description,omitempty"`
}

// CarryingCost is the estimated holding cost of a product's average
// inventory value at the configured annual rate.
type CarryingCost struct {
	ItemID      string   `json:"item_id"`
	Value       *float64 `json:"carrying_cost"`
	Description string   `json:"description,omitempty"`
}

// ClassificationResult holds the deduplicated slow-mover and obsolete item
// sets. A product may legitimately appear in both.
type ClassificationResult struct {
	SlowMovers    []string `json:"slow_movers"`
	ObsoleteItems []string `json:"obsolete_items"`
	Description   string   `json:"description,omitempty"`
}

// DataStatus reports whether a dataset has been loaded and how many records
// it holds.
type DataStatus struct {
	IsLoaded    bool  `json:"is_loaded"`
	RecordCount int64 `json:"record_count"`
}
