package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmployeePerformanceEmptyEmployeeSet(t *testing.T) {
	orders := []Order{{Total: vnd(100), EmployeeID: "e1", Status: StatusCompleted}}
	records := BuildEmployeePerformance(nil, orders)
	require.NotNil(t, records)
	assert.Empty(t, records)
}

func TestEmployeePerformanceFold(t *testing.T) {
	employees := []Employee{
		{ID: "e1", FirstName: "Lan", LastName: "Nguyễn", Role: "Technician", Active: true},
		{ID: "e2", FirstName: "Minh", LastName: "Trần", Role: "Sales"},
	}
	start := day0(2024, 5, 1)
	orders := []Order{
		{Total: vnd(1_000_000), EmployeeID: "e1", Status: StatusCompleted, OrderDate: start, ExpectedArrival: start.Add(36 * time.Hour)},
		{Total: vnd(500_000), EmployeeID: "e1", Status: StatusPending, OrderDate: start, ExpectedArrival: start.Add(72 * time.Hour)},
		{EmployeeID: "e1", Status: StatusCompleted, OrderDate: start},
		{Total: vnd(900), EmployeeID: "", Status: StatusCompleted},
	}

	records := BuildEmployeePerformance(employees, orders)
	require.Len(t, records, 2)

	lan := records[0]
	assert.Equal(t, "e1", lan.EmployeeID)
	assert.Equal(t, "Lan Nguyễn", lan.EmployeeName)
	assert.True(t, lan.IsActive)
	assert.Equal(t, 3, lan.TotalOrders)
	assert.Equal(t, 1_500_000.0, lan.TotalRevenue)
	assert.Equal(t, 2, lan.CompletedOrders)
	assert.InDelta(t, 66.6667, lan.CompletionRate, 1e-3)
	assert.Equal(t, 500_000.0, lan.AverageOrderValue)
	// ceil(1.5) = 2 and ceil(3) = 3; the undated arrival is ignored.
	assert.Equal(t, 2.5, lan.AverageProcessingTime)

	minh := records[1]
	assert.Zero(t, minh.TotalOrders)
	assert.Zero(t, minh.CompletionRate)
	assert.Zero(t, minh.AverageOrderValue)
	assert.Zero(t, minh.AverageProcessingTime)
}

func TestEmployeeCompletionRateBounds(t *testing.T) {
	employees := []Employee{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	orders := []Order{
		{EmployeeID: "a", Status: StatusCompleted},
		{EmployeeID: "a", Status: StatusCompleted},
		{EmployeeID: "b", Status: StatusPending},
	}
	for _, rec := range BuildEmployeePerformance(employees, orders) {
		assert.GreaterOrEqual(t, rec.CompletionRate, 0.0)
		assert.LessOrEqual(t, rec.CompletionRate, 100.0)
	}
}

func TestFindEmployeePerformanceNotFound(t *testing.T) {
	records := BuildEmployeePerformance([]Employee{{ID: "e1"}}, nil)

	rec, ok := FindEmployeePerformance(records, "e1")
	assert.True(t, ok)
	assert.Equal(t, "e1", rec.EmployeeID)

	_, ok = FindEmployeePerformance(records, "missing")
	assert.False(t, ok)
}
