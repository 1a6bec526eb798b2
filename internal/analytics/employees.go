package analytics

import "github.com/shopspring/decimal"

// EmployeePerformance summarises the orders assigned to one employee.
type EmployeePerformance struct {
	EmployeeID            string  `json:"employeeId"`
	EmployeeName          string  `json:"employeeName"`
	Role                  string  `json:"role"`
	IsActive              bool    `json:"isActive"`
	TotalOrders           int     `json:"totalOrders"`
	TotalRevenue          float64 `json:"totalRevenue"`
	CompletedOrders       int     `json:"completedOrders"`
	CompletionRate        float64 `json:"completionRate"`
	AverageOrderValue     float64 `json:"averageOrderValue"`
	AverageProcessingTime float64 `json:"averageProcessingTime"`
}

// BuildEmployeePerformance returns one record per employee, in input order.
func BuildEmployeePerformance(employees []Employee, orders []Order) []EmployeePerformance {
	byEmployee := make(map[string][]Order)
	for _, o := range orders {
		if o.EmployeeID == "" {
			continue
		}
		byEmployee[o.EmployeeID] = append(byEmployee[o.EmployeeID], o)
	}

	records := make([]EmployeePerformance, 0, len(employees))
	for _, emp := range employees {
		assigned := byEmployee[emp.ID]
		revenue := decimal.Zero
		completed := 0
		durations := make([]float64, 0, len(assigned))
		for _, o := range assigned {
			revenue = revenue.Add(o.Total)
			if o.Status == StatusCompleted {
				completed++
			}
			if days, ok := processingDays(o); ok {
				durations = append(durations, days)
			}
		}
		records = append(records, EmployeePerformance{
			EmployeeID:            emp.ID,
			EmployeeName:          emp.FullName(),
			Role:                  emp.Role,
			IsActive:              emp.Active,
			TotalOrders:           len(assigned),
			TotalRevenue:          money(revenue),
			CompletedOrders:       completed,
			CompletionRate:        percent(completed, len(assigned)),
			AverageOrderValue:     averageMoney(revenue, len(assigned)),
			AverageProcessingTime: mean(durations),
		})
	}
	return records
}

// FindEmployeePerformance picks the record for id. The bool is false when the
// employee is unknown.
func FindEmployeePerformance(records []EmployeePerformance, id string) (EmployeePerformance, bool) {
	for _, rec := range records {
		if rec.EmployeeID == id {
			return rec, true
		}
	}
	return EmployeePerformance{}, false
}
