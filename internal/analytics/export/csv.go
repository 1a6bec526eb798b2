// Package export serialises analytics reports for download.
package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/decalhub/decalhub/internal/analytics"
)

// WriteSalesCSV emits the sales report as consecutive CSV sections separated
// by blank lines.
func WriteSalesCSV(w io.Writer, report analytics.SalesAnalytics) error {
	sections := []func(*csv.Writer) error{
		func(cw *csv.Writer) error {
			return writeRows(cw, []string{"Metric", "Value"}, [][]string{
				{"Total Revenue", formatFloat(report.TotalRevenue)},
				{"Total Orders", strconv.Itoa(report.TotalOrders)},
				{"Average Order Value", formatFloat(report.AverageOrderValue)},
			})
		},
		func(cw *csv.Writer) error {
			rows := make([][]string, 0, len(report.SalesByDate))
			for _, d := range report.SalesByDate {
				rows = append(rows, []string{d.Date, strconv.Itoa(d.Orders), formatFloat(d.Revenue)})
			}
			return writeRows(cw, []string{"Date", "Orders", "Revenue"}, rows)
		},
		func(cw *csv.Writer) error {
			rows := make([][]string, 0, len(report.OrdersByStatus))
			for _, s := range report.OrdersByStatus {
				rows = append(rows, []string{s.Status, strconv.Itoa(s.Count), formatFloat(s.Revenue)})
			}
			return writeRows(cw, []string{"Status", "Orders", "Revenue"}, rows)
		},
		groupSection("Service", report.SalesByService),
		groupSection("Store", report.SalesByStore),
		groupSection("Employee", report.SalesByEmployee),
	}
	return writeSections(w, sections)
}

// WriteEmployeeCSV emits one row per employee.
func WriteEmployeeCSV(w io.Writer, records []analytics.EmployeePerformance) error {
	cw := csv.NewWriter(w)
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.EmployeeID,
			r.EmployeeName,
			r.Role,
			strconv.FormatBool(r.IsActive),
			strconv.Itoa(r.TotalOrders),
			formatFloat(r.TotalRevenue),
			strconv.Itoa(r.CompletedOrders),
			formatFloat(r.CompletionRate),
			formatFloat(r.AverageOrderValue),
			formatFloat(r.AverageProcessingTime),
		})
	}
	if err := writeRows(cw, []string{
		"Employee ID", "Name", "Role", "Active", "Orders", "Revenue",
		"Completed", "Completion Rate", "Average Order Value", "Average Processing Days",
	}, rows); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// WriteCustomerCSV emits the customer table followed by the segment summary.
func WriteCustomerCSV(w io.Writer, report analytics.CustomerInsights) error {
	sections := []func(*csv.Writer) error{
		func(cw *csv.Writer) error {
			rows := make([][]string, 0, len(report.Customers))
			for _, c := range report.Customers {
				last := ""
				if c.LastOrderDate != nil {
					last = c.LastOrderDate.Format(time.DateOnly)
				}
				rows = append(rows, []string{
					c.CustomerID,
					c.CustomerName,
					strconv.Itoa(c.TotalOrders),
					formatFloat(c.TotalSpent),
					formatFloat(c.AverageOrderValue),
					last,
					c.FrequencyLabel,
					c.SegmentLabel,
					strconv.Itoa(len(c.Vehicles)),
				})
			}
			return writeRows(cw, []string{
				"Customer ID", "Name", "Orders", "Total Spent", "Average Order Value",
				"Last Order", "Frequency", "Segment", "Vehicles",
			}, rows)
		},
		func(cw *csv.Writer) error {
			rows := make([][]string, 0, len(report.Segments))
			for _, s := range report.Segments {
				rows = append(rows, []string{s.Label, strconv.Itoa(s.Customers), formatFloat(s.TotalValue), formatFloat(s.AverageValue)})
			}
			return writeRows(cw, []string{"Segment", "Customers", "Total Value", "Average Value"}, rows)
		},
		func(cw *csv.Writer) error {
			return writeRows(cw, []string{"Metric", "Value"}, [][]string{
				{"Total Customers", strconv.Itoa(report.Summary.TotalCustomers)},
				{"Active Customers", strconv.Itoa(report.Summary.ActiveCustomers)},
				{"Average Customer Value", formatFloat(report.Summary.AverageCustomerValue)},
			})
		},
	}
	return writeSections(w, sections)
}

// WriteOperationsCSV emits the operational headline figures, stage counts,
// store performance and service consumption.
func WriteOperationsCSV(w io.Writer, report analytics.OperationalMetrics) error {
	sections := []func(*csv.Writer) error{
		func(cw *csv.Writer) error {
			return writeRows(cw, []string{"Metric", "Value"}, [][]string{
				{"Total Orders", strconv.Itoa(report.TotalOrders)},
				{"Completed Orders", strconv.Itoa(report.CompletedOrders)},
				{"Pending Orders", strconv.Itoa(report.PendingOrders)},
				{"In Progress Orders", strconv.Itoa(report.InProgressOrders)},
				{"Completion Rate", formatFloat(report.CompletionRate)},
				{"Average Processing Days", formatFloat(report.AverageProcessingTime)},
				{"Total Employees", strconv.Itoa(report.TotalEmployees)},
				{"Active Employees", strconv.Itoa(report.ActiveEmployees)},
			})
		},
		func(cw *csv.Writer) error {
			rows := make([][]string, 0, len(report.OrdersByStage))
			for _, s := range report.OrdersByStage {
				rows = append(rows, []string{s.Stage, strconv.Itoa(s.Count)})
			}
			return writeRows(cw, []string{"Stage", "Orders"}, rows)
		},
		func(cw *csv.Writer) error {
			rows := make([][]string, 0, len(report.StorePerformance))
			for _, s := range report.StorePerformance {
				rows = append(rows, []string{
					s.StoreID, s.StoreName, strconv.Itoa(s.TotalOrders), formatFloat(s.TotalRevenue),
					strconv.Itoa(s.CompletedOrders), formatFloat(s.CompletionRate),
				})
			}
			return writeRows(cw, []string{"Store ID", "Store", "Orders", "Revenue", "Completed", "Completion Rate"}, rows)
		},
		groupSection("Service", report.ServiceConsumption),
	}
	return writeSections(w, sections)
}

func groupSection(kind string, groups []analytics.GroupSales) func(*csv.Writer) error {
	return func(cw *csv.Writer) error {
		rows := make([][]string, 0, len(groups))
		for _, g := range groups {
			rows = append(rows, []string{g.ID, g.Name, strconv.Itoa(g.Orders), formatFloat(g.Revenue)})
		}
		return writeRows(cw, []string{kind + " ID", kind, "Orders", "Revenue"}, rows)
	}
}

func writeSections(w io.Writer, sections []func(*csv.Writer) error) error {
	for i, section := range sections {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		cw := csv.NewWriter(w)
		if err := section(cw); err != nil {
			return err
		}
		cw.Flush()
		if err := cw.Error(); err != nil {
			return err
		}
	}
	return nil
}

func writeRows(cw *csv.Writer, header []string, rows [][]string) error {
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
