package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/decalhub/decalhub/internal/analytics"
	analytichttp "github.com/decalhub/decalhub/internal/analytics/http"
	"github.com/decalhub/decalhub/internal/decalapi"
	"github.com/decalhub/decalhub/internal/observability"
	"github.com/decalhub/decalhub/jobs"
)

var fixtures = map[string]string{
	"/orders": `[
		{"orderId":"o1","totalAmount":400000,"status":"Completed","currentStage":"Delivered","orderDate":"2024-05-01T08:00:00Z","expectedArrivalDate":"2024-05-03T08:00:00Z","storeId":"s1","assignedEmployeeId":"e1","serviceId":"d1","vehicleId":"v1"},
		{"orderId":"o2","totalAmount":"600000","status":"Pending","currentStage":"Received","orderDate":"2024-05-02","storeId":"s1","assignedEmployeeId":"e1","serviceId":"d1","vehicleId":"v1"}
	]`,
	"/decal-services":    `{"data":[{"serviceId":"d1","serviceName":"Dán đổi màu"}]}`,
	"/stores":            `[{"storeId":"s1","storeName":"Quận 1"},{"storeId":"s2","storeName":"Thủ Đức"}]`,
	"/employees":         `[{"employeeId":"e1","firstName":"Lan","lastName":"Nguyễn","role":"Technician","isActive":true}]`,
	"/customers":         `[{"customerId":"c1","fullName":"Phạm Hùng"}]`,
	"/customer-vehicles": `[{"vehicleId":"v1","customerId":"c1"}]`,
}

func newDecalAPI(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := fixtures[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

type failingPinger struct{}

func (failingPinger) Ping(ctx context.Context) error { return errors.New("connection refused") }

func newTestApp(t *testing.T, pinger Pinger) (http.Handler, *observability.Metrics) {
	t.Helper()
	api := newDecalAPI(t)
	client := decalapi.NewClient(api.URL, "", 2*time.Second)
	if pinger == nil {
		pinger = client
	}
	service := analytics.NewService(client, nil)
	metrics := observability.NewMetrics()
	cfg := &Config{AppEnv: "test", AppRequestTimeout: 5 * time.Second}
	router := NewRouter(RouterParams{
		Config:           cfg,
		DecalAPI:         pinger,
		AnalyticsHandler: analytichttp.NewHandler(nil, service, service.Cache(), cfg.AppRequestTimeout),
		JobHandler:       jobs.NewHandler(nil, nil),
		Metrics:          metrics,
	})
	return router, metrics
}

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
	return rr
}

func TestHealthAndReadiness(t *testing.T) {
	router, _ := newTestApp(t, nil)

	rr := get(router, "/healthz")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))

	rr = get(router, "/readyz")
	require.Equal(t, http.StatusOK, rr.Code)

	down, _ := newTestApp(t, failingPinger{})
	rr = get(down, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestOperationsThroughFullStack(t *testing.T) {
	router, metrics := newTestApp(t, nil)

	rr := get(router, "/analytics/operations")
	require.Equal(t, http.StatusOK, rr.Code)

	var report analytics.OperationalMetrics
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &report))
	assert.Equal(t, 2, report.TotalOrders)
	assert.Equal(t, 50.0, report.CompletionRate)
	require.Len(t, report.StorePerformance, 2)
	assert.Equal(t, 1_000_000.0, report.StorePerformance[0].TotalRevenue)
	assert.Zero(t, report.StorePerformance[1].TotalOrders)

	metricsRR := get(metrics.Handler(), "/metrics")
	assert.Contains(t, metricsRR.Body.String(), `decalhub_http_requests_total{code="200",route="/analytics/operations"} 1`)
}

func TestSalesRangeThroughFullStack(t *testing.T) {
	router, _ := newTestApp(t, nil)

	rr := get(router, "/analytics/sales?start_date=2024-05-02&end_date=2024-05-02")
	require.Equal(t, http.StatusOK, rr.Code)

	var report analytics.SalesAnalytics
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &report))
	assert.Equal(t, 1, report.TotalOrders)
	assert.Equal(t, 600_000.0, report.TotalRevenue)
	require.Len(t, report.SalesByDate, 1)
	assert.Equal(t, "2024-05-02", report.SalesByDate[0].Date)
}

func TestUnknownRouteIsProblem(t *testing.T) {
	router, _ := newTestApp(t, nil)

	rr := get(router, "/analytics/unknown")
	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), `"status":404`)

	rr = get(router, "/jobs/health")
	require.Equal(t, http.StatusOK, rr.Code)
}
