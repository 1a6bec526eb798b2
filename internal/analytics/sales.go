package analytics

import (
	"sort"
	"time"

	"github.com/decalhub/decalhub/internal/decalapi"
)

// SalesFilter bounds the sales report by order date. Zero bounds are open.
type SalesFilter struct {
	StartDate time.Time
	EndDate   time.Time
}

func (f SalesFilter) bounded() bool {
	return !f.StartDate.IsZero() || !f.EndDate.IsZero()
}

// includes compares calendar days, so both bounds are inclusive.
func (f SalesFilter) includes(o Order) bool {
	if !f.bounded() {
		return true
	}
	if o.OrderDate.IsZero() {
		return false
	}
	key := dateKey(o.OrderDate)
	if !f.StartDate.IsZero() && key < dateKey(f.StartDate) {
		return false
	}
	if !f.EndDate.IsZero() && key > dateKey(f.EndDate) {
		return false
	}
	return true
}

func (f SalesFilter) orderFilter() decalapi.OrderFilter {
	return decalapi.OrderFilter{StartDate: f.StartDate, EndDate: f.EndDate}
}

// DailySales is one calendar-day bucket of the sales time series.
type DailySales struct {
	Date    string  `json:"date"`
	Orders  int     `json:"orders"`
	Revenue float64 `json:"revenue"`
}

// StatusSales counts orders and revenue per status.
type StatusSales struct {
	Status  string  `json:"status"`
	Count   int     `json:"count"`
	Revenue float64 `json:"revenue"`
}

// SalesAnalytics is the sales report.
type SalesAnalytics struct {
	TotalRevenue      float64       `json:"totalRevenue"`
	TotalOrders       int           `json:"totalOrders"`
	AverageOrderValue float64       `json:"averageOrderValue"`
	SalesByDate       []DailySales  `json:"salesByDate"`
	OrdersByStatus    []StatusSales `json:"ordersByStatus"`
	SalesByService    []GroupSales  `json:"salesByService"`
	SalesByStore      []GroupSales  `json:"salesByStore"`
	SalesByEmployee   []GroupSales  `json:"salesByEmployee"`
}

// BuildSalesAnalytics folds orders into revenue totals, a daily series and
// status/service/store/employee breakdowns.
func BuildSalesAnalytics(orders []Order, services []DecalService, stores []Store, employees []Employee, filter SalesFilter) SalesAnalytics {
	scoped := make([]Order, 0, len(orders))
	for _, o := range orders {
		if filter.includes(o) {
			scoped = append(scoped, o)
		}
	}

	revenue := sumTotals(scoped)
	report := SalesAnalytics{
		TotalRevenue:      money(revenue),
		TotalOrders:       len(scoped),
		AverageOrderValue: averageMoney(revenue, len(scoped)),
		SalesByDate:       salesByDate(scoped),
		OrdersByStatus:    make([]StatusSales, 0),
	}

	for _, bucket := range foldLabels(scoped, func(o Order) string { return o.Status }) {
		report.OrdersByStatus = append(report.OrdersByStatus, StatusSales{
			Status:  bucket.label,
			Count:   bucket.count,
			Revenue: money(bucket.revenue),
		})
	}

	serviceCatalog := make([]catalogEntry, 0, len(services))
	for _, svc := range services {
		serviceCatalog = append(serviceCatalog, catalogEntry{id: svc.ID, name: svc.Name})
	}
	storeCatalog := make([]catalogEntry, 0, len(stores))
	for _, st := range stores {
		storeCatalog = append(storeCatalog, catalogEntry{id: st.ID, name: st.Name})
	}
	employeeCatalog := make([]catalogEntry, 0, len(employees))
	for _, emp := range employees {
		employeeCatalog = append(employeeCatalog, catalogEntry{id: emp.ID, name: emp.FullName()})
	}

	report.SalesByService = foldSeeded(serviceCatalog, scoped, func(o Order) string { return o.ServiceID })
	report.SalesByStore = foldSeeded(storeCatalog, scoped, func(o Order) string { return o.StoreID })
	report.SalesByEmployee = foldSeeded(employeeCatalog, scoped, func(o Order) string { return o.EmployeeID })
	return report
}

// salesByDate buckets orders by the UTC calendar day of their order date,
// ascending. Undated orders have no bucket.
func salesByDate(orders []Order) []DailySales {
	byDay := make(map[string]*tally)
	for _, o := range orders {
		if o.OrderDate.IsZero() {
			continue
		}
		key := dateKey(o.OrderDate)
		t, ok := byDay[key]
		if !ok {
			t = &tally{}
			byDay[key] = t
		}
		t.add(o)
	}
	series := make([]DailySales, 0, len(byDay))
	for key, t := range byDay {
		series = append(series, DailySales{Date: key, Orders: t.count, Revenue: money(t.revenue)})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Date < series[j].Date })
	return series
}
