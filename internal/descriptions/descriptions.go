// Package descriptions holds the static human-readable texts attached to
// metric outputs. The catalog is loaded once at startup from a JSON side
// file and injected into the metrics service; a missing file yields the
// explicit empty catalog, not a process-wide fallback.
package descriptions

import (
	"encoding/json"
	"fmt"
	"os"
)

// Metric keys recognized by the catalog.
const (
	KeyTurnover      = "turnover"
	KeyStockoutRate  = "stockout_rate"
	KeyDaysOfSupply  = "days_of_supply"
	KeyCarryingCost  = "carrying_cost"
	KeySlowMovers    = "slow_movers"
	KeyObsoleteItems = "obsolete_items"
)

// catalogFile mirrors the on-disk layout: output groups, each with keyed
// sections.
type catalogFile map[string]struct {
	Sections []struct {
		Key         string `json:"key"`
		Description string `json:"description"`
	} `json:"sections"`
}

// Catalog maps metric keys to their descriptions.
type Catalog struct {
	byKey map[string]string
}

// Empty returns the catalog with no descriptions available.
func Empty() Catalog {
	return Catalog{}
}

// Load reads the catalog from path. A missing file is the empty state, not
// an error; malformed JSON is an error with the empty catalog returned so
// the caller can log and continue.
func Load(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Empty(), nil
	}
	if err != nil {
		return Empty(), fmt.Errorf("failed to read descriptions file: %w", err)
	}

	var file catalogFile
	if err := json.Unmarshal(data, &file); err != nil {
		return Empty(), fmt.Errorf("failed to parse descriptions file: %w", err)
	}

	byKey := make(map[string]string)
	for _, group := range file {
		for _, section := range group.Sections {
			if section.Key == "" || section.Description == "" {
				continue
			}
			byKey[section.Key] = section.Description
		}
	}
	return Catalog{byKey: byKey}, nil
}

// For returns the description for a metric key, or "" when none is
// available.
func (c Catalog) For(key string) string {
	return c.byKey[key]
}

// IsEmpty reports whether no descriptions are loaded.
func (c Catalog) IsEmpty() bool {
	return len(c.byKey) == 0
}
