package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/decalhub/decalhub/internal/analytics"
)

// readSections splits the blank-line separated CSV sections and parses each.
func readSections(t *testing.T, raw string) [][][]string {
	t.Helper()
	var out [][][]string
	for _, chunk := range strings.Split(strings.TrimSpace(raw), "\n\n") {
		records, err := csv.NewReader(strings.NewReader(chunk)).ReadAll()
		require.NoError(t, err)
		out = append(out, records)
	}
	return out
}

func TestWriteSalesCSV(t *testing.T) {
	report := analytics.SalesAnalytics{
		TotalRevenue:      300,
		TotalOrders:       2,
		AverageOrderValue: 150,
		SalesByDate:       []analytics.DailySales{{Date: "2024-01-01", Orders: 2, Revenue: 300}},
		OrdersByStatus:    []analytics.StatusSales{{Status: "Completed", Count: 1, Revenue: 100}},
		SalesByService:    []analytics.GroupSales{{ID: "d1", Name: "Dán nóc, bóng", Orders: 1, Revenue: 100}},
	}
	buf := &bytes.Buffer{}
	require.NoError(t, WriteSalesCSV(buf, report))

	sections := readSections(t, buf.String())
	require.Len(t, sections, 6)
	assert.Equal(t, []string{"Total Revenue", "300.00"}, sections[0][1])
	assert.Equal(t, []string{"2024-01-01", "2", "300.00"}, sections[1][1])
	assert.Equal(t, []string{"Completed", "1", "100.00"}, sections[2][1])
	assert.Equal(t, []string{"d1", "Dán nóc, bóng", "1", "100.00"}, sections[3][1])
	assert.Len(t, sections[4], 1)
	assert.Equal(t, []string{"Employee ID", "Employee", "Orders", "Revenue"}, sections[5][0])
}

func TestWriteEmployeeCSV(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, WriteEmployeeCSV(buf, []analytics.EmployeePerformance{
		{EmployeeID: "e1", EmployeeName: "Lan Nguyễn", IsActive: true, TotalOrders: 3, CompletionRate: 66.6666},
	}))
	records, err := csv.NewReader(buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Lan Nguyễn", records[1][1])
	assert.Equal(t, "true", records[1][3])
	assert.Equal(t, "66.67", records[1][7])
}

func TestWriteCustomerCSV(t *testing.T) {
	last := time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC)
	report := analytics.BuildCustomerInsights(
		[]analytics.Customer{{ID: "c1", Name: "Phạm Hùng"}},
		[]analytics.Order{{VehicleID: "v1", OrderDate: last}},
		[]analytics.CustomerVehicle{{ID: "v1", CustomerID: "c1"}},
	)
	buf := &bytes.Buffer{}
	require.NoError(t, WriteCustomerCSV(buf, report))

	sections := readSections(t, buf.String())
	require.Len(t, sections, 3)
	assert.Equal(t, "2024-02-20", sections[0][1][5])
	assert.Len(t, sections[1], 6)
	assert.Equal(t, []string{"Total Customers", "1"}, sections[2][1])
}

func TestWriteOperationsCSV(t *testing.T) {
	report := analytics.BuildOperationalMetrics(nil, nil, []analytics.Store{{ID: "s1", Name: "Quận 1"}}, nil)
	buf := &bytes.Buffer{}
	require.NoError(t, WriteOperationsCSV(buf, report))

	sections := readSections(t, buf.String())
	require.Len(t, sections, 4)
	assert.Equal(t, []string{"s1", "Quận 1", "0", "0.00", "0", "0.00"}, sections[2][1])
}
