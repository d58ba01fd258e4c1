// internal/engine/turnover.go
package engine

import (
	"math"
	"sort"
	"time"

	"github.com/andresuchdata/retail-metrics/internal/domain"
)

// Turnover computes the inventory turnover ratio per resampled calendar
// period:
//
//	turnover = bucket COGS sum / average inventory value
//
// COGS is unitsSold*price per row and the average inventory value is a
// single scalar over the entire filtered set, applied to every bucket.
// Infinite ratios are normalized to undefined.
func Turnover(t Table, period domain.Period) ([]domain.TurnoverPoint, error) {
	if t.Empty() {
		return nil, domain.ErrInsufficientData()
	}
	if !t.hasPrice() {
		return nil, domain.ErrMissingColumns("price")
	}

	var (
		valueSum   float64
		valueCount int
	)
	for _, r := range t.rows {
		cost, ok := r.EffectiveUnitCost()
		if !ok {
			continue
		}
		valueSum += r.InventoryLevel * cost
		valueCount++
	}
	if valueCount == 0 {
		return nil, domain.ErrZeroDenominator("average inventory value")
	}
	avgInventoryValue := valueSum / float64(valueCount)
	if avgInventoryValue == 0 {
		return nil, domain.ErrZeroDenominator("average inventory value")
	}

	cogsByBucket := make(map[time.Time]float64)
	for _, r := range t.rows {
		bucket := bucketStart(r.Date, period)
		if r.Price != nil {
			cogsByBucket[bucket] += r.UnitsSold * *r.Price
		} else {
			cogsByBucket[bucket] += 0
		}
	}

	buckets := make([]time.Time, 0, len(cogsByBucket))
	for b := range cogsByBucket {
		buckets = append(buckets, b)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Before(buckets[j]) })

	points := make([]domain.TurnoverPoint, 0, len(buckets))
	for _, b := range buckets {
		ratio := cogsByBucket[b] / avgInventoryValue
		points = append(points, domain.TurnoverPoint{
			Date:          b,
			TurnoverRatio: normalizeRatio(ratio),
		})
	}
	return points, nil
}

// bucketStart truncates a date to the start of its calendar bucket. The
// period is keyed on its first letter: day, week, month, quarter, year.
func bucketStart(d time.Time, period domain.Period) time.Time {
	p := domain.PeriodMonthly
	if period.Valid() {
		p = period
	}
	switch p[0] {
	case 'd':
		return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	case 'w':
		// ISO week, Monday start
		day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case 'q':
		quarterMonth := time.Month(((int(d.Month())-1)/3)*3 + 1)
		return time.Date(d.Year(), quarterMonth, 1, 0, 0, 0, 0, time.UTC)
	case 'y':
		return time.Date(d.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
}

// normalizeRatio maps infinities and NaN to undefined so every output stays
// serializable and comparable.
func normalizeRatio(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}
