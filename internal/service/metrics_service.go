package service

import (
	"context"
	"time"

	"github.com/andresuchdata/retail-metrics/internal/cache"
	"github.com/andresuchdata/retail-metrics/internal/descriptions"
	"github.com/andresuchdata/retail-metrics/internal/domain"
	"github.com/andresuchdata/retail-metrics/internal/engine"
	"github.com/andresuchdata/retail-metrics/internal/store"
	"github.com/rs/zerolog/log"
)

// MetricsService is the engine's entry point: it fetches the filtered
// record set, cleans it into an immutable table, runs the requested
// calculators and annotates the output. Nothing is cached between calls;
// every call recomputes from the store.
type MetricsService struct {
	store       store.RecordStore
	catalog     descriptions.Catalog
	statusCache cache.DataStatusCache
	now         func() time.Time
}

// Option configures a MetricsService.
type Option func(*MetricsService)

// WithClock overrides the wall clock used by obsolescence detection.
func WithClock(now func() time.Time) Option {
	return func(s *MetricsService) { s.now = now }
}

// WithStatusCache attaches a dataset-status cache.
func WithStatusCache(c cache.DataStatusCache) Option {
	return func(s *MetricsService) { s.statusCache = c }
}

func NewMetricsService(recordStore store.RecordStore, catalog descriptions.Catalog, opts ...Option) *MetricsService {
	s := &MetricsService{
		store:       recordStore,
		catalog:     catalog,
		statusCache: cache.NewNoopDataStatusCache(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// fetch pulls the filtered records and cleans them into a table.
func (s *MetricsService) fetch(ctx context.Context, filter domain.RecordFilter) (engine.Table, error) {
	records, err := s.store.Find(ctx, filter)
	if err != nil {
		return engine.Table{}, err
	}
	return engine.Clean(records), nil
}

// Turnover computes the turnover ratio series for the filtered set. When an
// item filter narrowed the series to exactly one point the result is the
// scalar form.
func (s *MetricsService) Turnover(ctx context.Context, params domain.MetricParams) (domain.TurnoverResult, error) {
	period := params.Period
	if period == "" {
		period = domain.PeriodMonthly
	}

	table, err := s.fetch(ctx, params.Filter())
	if err != nil {
		return domain.TurnoverResult{}, err
	}

	points, err := engine.Turnover(table, period)
	if err != nil {
		return domain.TurnoverResult{}, err
	}

	if desc := s.catalog.For(descriptions.KeyTurnover); desc != "" {
		for i := range points {
			points[i].Description = desc
		}
	}

	return domain.TurnoverResult{
		Points: points,
		Single: params.ItemID != "" && len(points) == 1,
	}, nil
}

// StockoutRate computes the stockout summary for the filtered set.
func (s *MetricsService) StockoutRate(ctx context.Context, params domain.MetricParams) (domain.StockoutSummary, error) {
	table, err := s.fetch(ctx, params.Filter())
	if err != nil {
		return domain.StockoutSummary{}, err
	}

	summary, err := engine.StockoutRate(table)
	if err != nil {
		return domain.StockoutSummary{}, err
	}

	summary.Description = s.catalog.For(descriptions.KeyStockoutRate)
	return summary, nil
}

// StockoutHeatmap returns per-product per-month stockout event counts.
func (s *MetricsService) StockoutHeatmap(ctx context.Context, params domain.MetricParams) ([]domain.HeatmapCell, error) {
	table, err := s.fetch(ctx, params.Filter())
	if err != nil {
		return nil, err
	}
	return engine.StockoutHeatmap(table), nil
}

// DaysOfSupply computes days of supply per product, narrowing to a single
// record under an item filter.
func (s *MetricsService) DaysOfSupply(ctx context.Context, params domain.MetricParams) (domain.DaysOfSupplyResult, error) {
	table, err := s.fetch(ctx, params.Filter())
	if err != nil {
		return domain.DaysOfSupplyResult{}, err
	}

	items, err := engine.DaysOfSupplyAll(table)
	if err != nil {
		return domain.DaysOfSupplyResult{}, err
	}

	if desc := s.catalog.For(descriptions.KeyDaysOfSupply); desc != "" {
		for i := range items {
			items[i].Description = desc
		}
	}

	return domain.DaysOfSupplyResult{
		Items:  items,
		Single: params.ItemID != "" && len(items) == 1,
	}, nil
}

// CarryingCost computes holding cost per product at the requested rate.
func (s *MetricsService) CarryingCost(ctx context.Context, params domain.MetricParams) (domain.CarryingCostResult, error) {
	rate := params.CarryingCostRate
	if rate <= 0 {
		rate = engine.DefaultCarryingCostRate
	}

	table, err := s.fetch(ctx, params.Filter())
	if err != nil {
		return domain.CarryingCostResult{}, err
	}

	items, err := engine.CarryingCostAll(table, rate)
	if err != nil {
		return domain.CarryingCostResult{}, err
	}

	if desc := s.catalog.For(descriptions.KeyCarryingCost); desc != "" {
		for i := range items {
			items[i].Description = desc
		}
	}

	return domain.CarryingCostResult{
		Items:  items,
		Single: params.ItemID != "" && len(items) == 1,
	}, nil
}

// Classify detects slow-moving and obsolete products over the filtered set.
func (s *MetricsService) Classify(ctx context.Context, params domain.MetricParams) (domain.ClassificationResult, error) {
	table, err := s.fetch(ctx, params.Filter())
	if err != nil {
		return domain.ClassificationResult{}, err
	}
	if table.Empty() {
		return domain.ClassificationResult{}, domain.ErrInsufficientData()
	}

	result := engine.Classify(table, engine.ClassifyThresholds{
		SlowTurnover:   params.SlowTurnoverThreshold,
		DOS:            params.DOSThreshold,
		InactivityDays: params.InactivityDays,
	}, s.now())

	result.Description = s.catalog.For(descriptions.KeySlowMovers)
	return result, nil
}

// DataStatus reports whether a dataset is loaded and its record count,
// consulting the status cache first.
func (s *MetricsService) DataStatus(ctx context.Context) (domain.DataStatus, error) {
	if status, ok, err := s.statusCache.Get(ctx); err == nil && ok {
		return status, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("metrics: status cache get failed")
	}

	count, err := s.store.Count(ctx)
	if err != nil {
		return domain.DataStatus{}, err
	}

	status := domain.DataStatus{
		IsLoaded:    count > 0,
		RecordCount: count,
	}
	if err := s.statusCache.Set(ctx, status); err != nil {
		log.Warn().Err(err).Msg("metrics: status cache set failed")
	}
	return status, nil
}
