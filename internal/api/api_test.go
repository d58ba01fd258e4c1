package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/andresuchdata/retail-metrics/internal/descriptions"
	"github.com/andresuchdata/retail-metrics/internal/domain"
	"github.com/andresuchdata/retail-metrics/internal/service"
	"github.com/andresuchdata/retail-metrics/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T, records []domain.RawObservation) *gin.Engine {
	t.Helper()
	s := store.NewMemoryStore()
	require.NoError(t, s.ReplaceAll(context.Background(), records))
	svc := service.NewMetricsService(s, descriptions.Empty())
	return NewRouter(&Services{MetricsService: svc}, nil)
}

func apiRecords() []domain.RawObservation {
	return []domain.RawObservation{
		{Date: "2024-01-10", StoreID: "S001", ProductID: "P001", Category: "Groceries", InventoryLevel: "10", UnitsSold: "5", Price: "2", UnitCost: "1", ABCClass: "A"},
		{Date: "2024-02-05", StoreID: "S002", ProductID: "P002", Category: "Toys", InventoryLevel: "0", UnitsSold: "4", Price: "1", UnitCost: "1", Duration: "3", ABCClass: "B"},
	}
}

func doRequest(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestGetTurnover(t *testing.T) {
	router := newTestRouter(t, apiRecords())

	w := doRequest(router, "/api/v1/metrics/turnover?period=monthly")

	require.Equal(t, http.StatusOK, w.Code)
	var points []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &points))
	assert.Len(t, points, 2)
}

func TestGetTurnoverScalarUnderItemFilter(t *testing.T) {
	router := newTestRouter(t, apiRecords())

	w := doRequest(router, "/api/v1/metrics/turnover?item_id=P001")

	require.Equal(t, http.StatusOK, w.Code)
	var point map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &point))
	assert.Contains(t, point, "turnover_ratio")
}

func TestGetTurnoverInvalidPeriod(t *testing.T) {
	router := newTestRouter(t, apiRecords())

	w := doRequest(router, "/api/v1/metrics/turnover?period=fortnightly")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMetricErrorsAreUnprocessable(t *testing.T) {
	router := newTestRouter(t, nil)

	w := doRequest(router, "/api/v1/metrics/turnover")

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "insufficient_data", body["code"])
}

func TestGetStockoutRate(t *testing.T) {
	router := newTestRouter(t, apiRecords())

	w := doRequest(router, "/api/v1/metrics/stockout_rate")

	require.Equal(t, http.StatusOK, w.Code)
	var summary domain.StockoutSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, 50.0, summary.StockoutRate)
	assert.Equal(t, 1, summary.StockoutFrequency)
}

func TestGetStockoutHeatmap(t *testing.T) {
	router := newTestRouter(t, apiRecords())

	w := doRequest(router, "/api/v1/metrics/stockout_heatmap")

	require.Equal(t, http.StatusOK, w.Code)
	var cells []domain.HeatmapCell
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cells))
	require.Len(t, cells, 1)
	assert.Equal(t, "P002", cells[0].ProductID)
	assert.Equal(t, "2024-02", cells[0].Month)
}

func TestGetDaysOfSupplyFilteredByClass(t *testing.T) {
	router := newTestRouter(t, apiRecords())

	w := doRequest(router, "/api/v1/metrics/days_of_supply?abc_class=a")

	require.Equal(t, http.StatusOK, w.Code)
	var items []domain.DaysOfSupply
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "P001", items[0].ItemID)
}

func TestGetCarryingCostWithRate(t *testing.T) {
	router := newTestRouter(t, apiRecords())

	w := doRequest(router, "/api/v1/metrics/carrying_cost?item_id=P001&carrying_cost_rate=0.5")

	require.Equal(t, http.StatusOK, w.Code)
	var item domain.CarryingCost
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &item))
	require.NotNil(t, item.Value)
	assert.InDelta(t, 5.0, *item.Value, 1e-9)
}

func TestGetSlowObsolete(t *testing.T) {
	router := newTestRouter(t, apiRecords())

	w := doRequest(router, "/api/v1/metrics/slow_obsolete")

	require.Equal(t, http.StatusOK, w.Code)
	var result domain.ClassificationResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.NotNil(t, result.SlowMovers)
	assert.NotNil(t, result.ObsoleteItems)
}

func TestGetDataStatus(t *testing.T) {
	router := newTestRouter(t, apiRecords())

	w := doRequest(router, "/api/v1/data/status")

	require.Equal(t, http.StatusOK, w.Code)
	var status domain.DataStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.True(t, status.IsLoaded)
	assert.Equal(t, int64(2), status.RecordCount)
}

func TestNormalizeAllowedOrigins(t *testing.T) {
	parsed, allowAll := normalizeAllowedOrigins([]string{"http://a.example, http://b.example", "", "*"})

	assert.True(t, allowAll)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, parsed)
}
