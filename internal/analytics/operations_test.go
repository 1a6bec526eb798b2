package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperationalMetricsEmpty(t *testing.T) {
	report := BuildOperationalMetrics(nil, nil, nil, nil)

	assert.Zero(t, report.TotalOrders)
	assert.Zero(t, report.CompletionRate)
	assert.Zero(t, report.AverageProcessingTime)
	assert.Empty(t, report.OrdersByStage)
	assert.Empty(t, report.StorePerformance)
	assert.Empty(t, report.ServiceConsumption)
}

func TestOperationalMetricsFold(t *testing.T) {
	start := day0(2024, 6, 1)
	employees := []Employee{{ID: "e1", Active: true}, {ID: "e2", Active: false}, {ID: "e3", Active: true}}
	stores := []Store{{ID: "s1", Name: "Quận 1"}, {ID: "s2", Name: "Gò Vấp"}, {ID: "s3", Name: "Biên Hòa"}}
	services := []DecalService{{ID: "d1", Name: "Dán đổi màu"}, {ID: "d2", Name: "PPF"}}
	orders := []Order{
		{Total: vnd(400), Status: StatusCompleted, Stage: "Delivered", StoreID: "s1", ServiceID: "d1",
			OrderDate: start, ExpectedArrival: start.Add(12 * time.Hour)},
		{Total: vnd(600), Status: StatusPending, Stage: "Received", StoreID: "s1", ServiceID: "d1",
			OrderDate: start, ExpectedArrival: start.Add(48 * time.Hour)},
		{Total: vnd(250), Status: StatusInProgress, Stage: "Printing", StoreID: "s3",
			OrderDate: start},
		{Total: vnd(50), Status: "Cancelled", ServiceID: "d1"},
	}

	report := BuildOperationalMetrics(orders, employees, stores, services)

	assert.Equal(t, 4, report.TotalOrders)
	assert.Equal(t, 1, report.CompletedOrders)
	assert.Equal(t, 1, report.PendingOrders)
	assert.Equal(t, 1, report.InProgressOrders)
	assert.Equal(t, 25.0, report.CompletionRate)
	// ceil(0.5) = 1 and ceil(2) = 2.
	assert.Equal(t, 1.5, report.AverageProcessingTime)
	assert.Equal(t, 3, report.TotalEmployees)
	assert.Equal(t, 2, report.ActiveEmployees)

	assert.Equal(t, []StageCount{
		{Stage: "Delivered", Count: 1},
		{Stage: "Received", Count: 1},
		{Stage: "Printing", Count: 1},
		{Stage: "Unknown", Count: 1},
	}, report.OrdersByStage)

	assert.Equal(t, []GroupSales{{ID: "d1", Name: "Dán đổi màu", Orders: 3, Revenue: 1050}}, report.ServiceConsumption)
}

// Stores without orders stay in storePerformance while services without
// orders are dropped from serviceConsumption.
func TestStorePerformanceKeepsEmptyStores(t *testing.T) {
	stores := []Store{{ID: "s1", Name: "Quận 1"}, {ID: "s2", Name: "Gò Vấp"}}
	services := []DecalService{{ID: "d1"}, {ID: "d2"}}
	orders := []Order{
		{Total: vnd(300), Status: StatusCompleted, StoreID: "s1", ServiceID: "d1"},
		{Total: vnd(100), Status: StatusPending, StoreID: "s1", ServiceID: "d1"},
	}

	report := BuildOperationalMetrics(orders, nil, stores, services)

	require.Len(t, report.StorePerformance, 2)
	assert.Equal(t, StorePerformance{
		StoreID: "s1", StoreName: "Quận 1", TotalOrders: 2, TotalRevenue: 400, CompletedOrders: 1, CompletionRate: 50,
	}, report.StorePerformance[0])
	assert.Equal(t, StorePerformance{StoreID: "s2", StoreName: "Gò Vấp"}, report.StorePerformance[1])

	require.Len(t, report.ServiceConsumption, 1)
	assert.Equal(t, "d1", report.ServiceConsumption[0].ID)

	for _, sp := range report.StorePerformance {
		assert.GreaterOrEqual(t, sp.CompletionRate, 0.0)
		assert.LessOrEqual(t, sp.CompletionRate, 100.0)
	}
}
