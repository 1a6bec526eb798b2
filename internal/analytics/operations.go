package analytics

// StageCount counts orders in one workflow stage.
type StageCount struct {
	Stage string `json:"stage"`
	Count int    `json:"count"`
}

// StorePerformance is the per-store slice of the operational report.
type StorePerformance struct {
	StoreID         string  `json:"storeId"`
	StoreName       string  `json:"storeName"`
	TotalOrders     int     `json:"totalOrders"`
	TotalRevenue    float64 `json:"totalRevenue"`
	CompletedOrders int     `json:"completedOrders"`
	CompletionRate  float64 `json:"completionRate"`
}

// OperationalMetrics is the operations report.
type OperationalMetrics struct {
	TotalOrders           int                `json:"totalOrders"`
	CompletedOrders       int                `json:"completedOrders"`
	PendingOrders         int                `json:"pendingOrders"`
	InProgressOrders      int                `json:"inProgressOrders"`
	CompletionRate        float64            `json:"completionRate"`
	AverageProcessingTime float64            `json:"averageProcessingTime"`
	TotalEmployees        int                `json:"totalEmployees"`
	ActiveEmployees       int                `json:"activeEmployees"`
	OrdersByStage         []StageCount       `json:"ordersByStage"`
	StorePerformance      []StorePerformance `json:"storePerformance"`
	ServiceConsumption    []GroupSales       `json:"serviceConsumption"`
}

// BuildOperationalMetrics computes workflow counts, processing time, staffing
// and per-store/per-service throughput. Every store is listed, including those
// without orders; services without orders are dropped.
func BuildOperationalMetrics(orders []Order, employees []Employee, stores []Store, services []DecalService) OperationalMetrics {
	report := OperationalMetrics{
		TotalOrders:      len(orders),
		TotalEmployees:   len(employees),
		OrdersByStage:    make([]StageCount, 0),
		StorePerformance: make([]StorePerformance, 0, len(stores)),
	}

	durations := make([]float64, 0, len(orders))
	byStore := make(map[string]*storeTally)
	for _, o := range orders {
		switch o.Status {
		case StatusCompleted:
			report.CompletedOrders++
		case StatusPending:
			report.PendingOrders++
		case StatusInProgress:
			report.InProgressOrders++
		}
		if days, ok := processingDays(o); ok {
			durations = append(durations, days)
		}
		if o.StoreID != "" {
			st, ok := byStore[o.StoreID]
			if !ok {
				st = &storeTally{}
				byStore[o.StoreID] = st
			}
			st.add(o)
			if o.Status == StatusCompleted {
				st.completed++
			}
		}
	}
	report.CompletionRate = percent(report.CompletedOrders, report.TotalOrders)
	report.AverageProcessingTime = mean(durations)

	for _, emp := range employees {
		if emp.Active {
			report.ActiveEmployees++
		}
	}

	for _, bucket := range foldLabels(orders, func(o Order) string { return o.Stage }) {
		report.OrdersByStage = append(report.OrdersByStage, StageCount{Stage: bucket.label, Count: bucket.count})
	}

	for _, store := range stores {
		st := byStore[store.ID]
		if st == nil {
			st = &storeTally{}
		}
		report.StorePerformance = append(report.StorePerformance, StorePerformance{
			StoreID:         store.ID,
			StoreName:       store.Name,
			TotalOrders:     st.count,
			TotalRevenue:    money(st.revenue),
			CompletedOrders: st.completed,
			CompletionRate:  percent(st.completed, st.count),
		})
	}

	catalog := make([]catalogEntry, 0, len(services))
	for _, svc := range services {
		catalog = append(catalog, catalogEntry{id: svc.ID, name: svc.Name})
	}
	report.ServiceConsumption = foldSeeded(catalog, orders, func(o Order) string { return o.ServiceID })
	return report
}

type storeTally struct {
	tally
	completed int
}
