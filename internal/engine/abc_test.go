package engine

import (
	"testing"

	"github.com/andresuchdata/retail-metrics/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func salesRecord(product, sold, price string) domain.RawObservation {
	return domain.RawObservation{
		Date:      "2024-01-01",
		ProductID: product,
		UnitsSold: sold,
		Price:     price,
	}
}

func abcClasses(records []domain.RawObservation) []string {
	classes := make([]string, len(records))
	for i, r := range records {
		classes[i] = r.ABCClass
	}
	return classes
}

func TestAssignABCClassesPareto(t *testing.T) {
	// Sales values 100, 50, 30, 20 of a 200 total: cumulative shares are
	// 50%, 75%, 90% and 100%.
	records := []domain.RawObservation{
		salesRecord("P001", "10", "10"),
		salesRecord("P002", "10", "5"),
		salesRecord("P003", "10", "3"),
		salesRecord("P004", "10", "2"),
	}

	out := AssignABCClasses(records)

	assert.Equal(t, []string{"A", "A", "B", "C"}, abcClasses(out))
}

func TestAssignABCClassesReturnsInputOrder(t *testing.T) {
	records := []domain.RawObservation{
		salesRecord("P004", "10", "2"),
		salesRecord("P001", "10", "10"),
		salesRecord("P003", "10", "3"),
		salesRecord("P002", "10", "5"),
	}

	out := AssignABCClasses(records)

	require.Len(t, out, 4)
	assert.Equal(t, "P004", out[0].ProductID)
	assert.Equal(t, []string{"C", "A", "B", "A"}, abcClasses(out))
}

func TestAssignABCClassesTiesRankInInputOrder(t *testing.T) {
	// Two equal values split across the A boundary: the earlier input row
	// wins the better class, and repeated runs agree.
	records := []domain.RawObservation{
		salesRecord("P001", "10", "10"),
		salesRecord("P002", "10", "10"),
	}

	first := AssignABCClasses(records)
	assert.Equal(t, []string{"A", "C"}, abcClasses(first))

	for i := 0; i < 5; i++ {
		assert.Equal(t, abcClasses(first), abcClasses(AssignABCClasses(records)))
	}
}

func TestAssignABCClassesZeroTotal(t *testing.T) {
	records := []domain.RawObservation{
		salesRecord("P001", "0", "10"),
		salesRecord("P002", "10", ""),
	}

	out := AssignABCClasses(records)

	assert.Equal(t, []string{"C", "C"}, abcClasses(out))
}

func TestAssignABCClassesUnparseableValuesCountAsZero(t *testing.T) {
	records := []domain.RawObservation{
		salesRecord("P001", "10", "10"),
		salesRecord("P002", "n/a", "10"),
		salesRecord("P003", "30", "10"),
	}

	out := AssignABCClasses(records)

	// Values are 100, 0 and 300 of a 400 total: P003 covers the first 75%,
	// everything after the 95% boundary is C.
	assert.Equal(t, []string{"C", "C", "A"}, abcClasses(out))
}

func TestAssignABCClassesDoesNotMutateInput(t *testing.T) {
	records := []domain.RawObservation{
		salesRecord("P001", "10", "10"),
	}

	AssignABCClasses(records)

	assert.Equal(t, "", records[0].ABCClass)
}

func TestAssignABCClassesEmptyInput(t *testing.T) {
	assert.Empty(t, AssignABCClasses(nil))
}
