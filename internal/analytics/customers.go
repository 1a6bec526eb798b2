package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

const topCustomerLimit = 10

// PurchaseFrequency classifies how often a customer orders.
type PurchaseFrequency string

const (
	FrequencyNew        PurchaseFrequency = "new"
	FrequencyFrequent   PurchaseFrequency = "frequent"
	FrequencyPeriodic   PurchaseFrequency = "periodic"
	FrequencyOccasional PurchaseFrequency = "occasional"
)

// Label is the display text shown on the dashboard.
func (f PurchaseFrequency) Label() string {
	switch f {
	case FrequencyFrequent:
		return "Thường xuyên"
	case FrequencyPeriodic:
		return "Định kỳ"
	case FrequencyOccasional:
		return "Thỉnh thoảng"
	default:
		return "Khách hàng mới"
	}
}

// Segment is a spend tier in VND.
type Segment string

const (
	SegmentVIP         Segment = "vip"
	SegmentPremium     Segment = "premium"
	SegmentAverage     Segment = "average"
	SegmentNew         Segment = "new"
	SegmentNoPurchases Segment = "no_purchases"
)

// Label is the display text shown on the dashboard.
func (s Segment) Label() string {
	switch s {
	case SegmentVIP:
		return "VIP"
	case SegmentPremium:
		return "Cao cấp"
	case SegmentAverage:
		return "Trung bình"
	case SegmentNew:
		return "Mới"
	default:
		return "Chưa mua"
	}
}

var (
	segmentOrder = []Segment{SegmentVIP, SegmentPremium, SegmentAverage, SegmentNew, SegmentNoPurchases}

	vipThreshold     = decimal.NewFromInt(10_000_000)
	premiumThreshold = decimal.NewFromInt(3_000_000)
	averageThreshold = decimal.NewFromInt(500_000)
)

// segmentFor places spend into exactly one tier. Non-positive spend counts as
// no purchases.
func segmentFor(spent decimal.Decimal) Segment {
	switch {
	case spent.GreaterThan(vipThreshold):
		return SegmentVIP
	case spent.GreaterThan(premiumThreshold):
		return SegmentPremium
	case spent.GreaterThan(averageThreshold):
		return SegmentAverage
	case spent.IsPositive():
		return SegmentNew
	default:
		return SegmentNoPurchases
	}
}

// frequencyFor uses the mean gap in days between the first and last dated
// order: <=30 frequent, <=90 periodic, otherwise occasional.
func frequencyFor(orders []Order) PurchaseFrequency {
	dates := make([]time.Time, 0, len(orders))
	for _, o := range orders {
		if !o.OrderDate.IsZero() {
			dates = append(dates, o.OrderDate)
		}
	}
	if len(dates) < 2 {
		return FrequencyNew
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	span := dates[len(dates)-1].Sub(dates[0])
	gapDays := float64(span) / float64(day) / float64(len(dates)-1)
	switch {
	case gapDays <= 30:
		return FrequencyFrequent
	case gapDays <= 90:
		return FrequencyPeriodic
	default:
		return FrequencyOccasional
	}
}

// CustomerInsight is the per-customer fold.
type CustomerInsight struct {
	CustomerID        string            `json:"customerId"`
	CustomerName      string            `json:"customerName"`
	TotalOrders       int               `json:"totalOrders"`
	TotalSpent        float64           `json:"totalSpent"`
	AverageOrderValue float64           `json:"averageOrderValue"`
	LastOrderDate     *time.Time        `json:"lastOrderDate"`
	LifetimeValue     float64           `json:"lifetimeValue"`
	PurchaseFrequency PurchaseFrequency `json:"purchaseFrequency"`
	FrequencyLabel    string            `json:"purchaseFrequencyLabel"`
	Segment           Segment           `json:"segment"`
	SegmentLabel      string            `json:"segmentLabel"`
	Vehicles          []CustomerVehicle `json:"vehicles"`

	spent decimal.Decimal
}

// SegmentSummary aggregates the customers of one tier.
type SegmentSummary struct {
	Segment      Segment `json:"segment"`
	Label        string  `json:"label"`
	Customers    int     `json:"customers"`
	TotalValue   float64 `json:"totalValue"`
	AverageValue float64 `json:"averageValue"`
}

// CustomerSummary holds the headline customer counts.
type CustomerSummary struct {
	TotalCustomers       int     `json:"totalCustomers"`
	ActiveCustomers      int     `json:"activeCustomers"`
	AverageCustomerValue float64 `json:"averageCustomerValue"`
}

// CustomerInsights is the customer report.
type CustomerInsights struct {
	Customers    []CustomerInsight `json:"customers"`
	TopCustomers []CustomerInsight `json:"topCustomers"`
	Segments     []SegmentSummary  `json:"segments"`
	Summary      CustomerSummary   `json:"summary"`
}

// BuildCustomerInsights joins customers to their orders through owned
// vehicles, ranks them by spend and splits them into spend segments.
func BuildCustomerInsights(customers []Customer, orders []Order, vehicles []CustomerVehicle) CustomerInsights {
	vehiclesByCustomer := make(map[string][]CustomerVehicle)
	for _, v := range vehicles {
		if v.CustomerID == "" || v.ID == "" {
			continue
		}
		vehiclesByCustomer[v.CustomerID] = append(vehiclesByCustomer[v.CustomerID], v)
	}
	ordersByVehicle := make(map[string][]Order)
	for _, o := range orders {
		if o.VehicleID == "" {
			continue
		}
		ordersByVehicle[o.VehicleID] = append(ordersByVehicle[o.VehicleID], o)
	}

	insights := make([]CustomerInsight, 0, len(customers))
	for _, c := range customers {
		owned := vehiclesByCustomer[c.ID]
		seen := make(map[string]struct{}, len(owned))
		ownedOut := make([]CustomerVehicle, 0, len(owned))
		var placed []Order
		for _, v := range owned {
			if _, dup := seen[v.ID]; dup {
				continue
			}
			seen[v.ID] = struct{}{}
			ownedOut = append(ownedOut, v)
			placed = append(placed, ordersByVehicle[v.ID]...)
		}
		insights = append(insights, customerInsight(c, placed, ownedOut))
	}

	sort.SliceStable(insights, func(i, j int) bool {
		return insights[i].spent.GreaterThan(insights[j].spent)
	})

	top := insights
	if len(top) > topCustomerLimit {
		top = top[:topCustomerLimit]
	}

	return CustomerInsights{
		Customers:    insights,
		TopCustomers: append(make([]CustomerInsight, 0, len(top)), top...),
		Segments:     summariseSegments(insights),
		Summary:      summariseCustomers(insights),
	}
}

func customerInsight(c Customer, placed []Order, owned []CustomerVehicle) CustomerInsight {
	spent := sumTotals(placed)
	var last *time.Time
	for _, o := range placed {
		if o.OrderDate.IsZero() {
			continue
		}
		if last == nil || o.OrderDate.After(*last) {
			d := o.OrderDate
			last = &d
		}
	}
	freq := frequencyFor(placed)
	seg := segmentFor(spent)
	return CustomerInsight{
		CustomerID:        c.ID,
		CustomerName:      c.Name,
		TotalOrders:       len(placed),
		TotalSpent:        money(spent),
		AverageOrderValue: averageMoney(spent, len(placed)),
		LastOrderDate:     last,
		LifetimeValue:     money(spent),
		PurchaseFrequency: freq,
		FrequencyLabel:    freq.Label(),
		Segment:           seg,
		SegmentLabel:      seg.Label(),
		Vehicles:          owned,
		spent:             spent,
	}
}

func summariseSegments(insights []CustomerInsight) []SegmentSummary {
	type acc struct {
		count int
		total decimal.Decimal
	}
	accs := make(map[Segment]*acc, len(segmentOrder))
	for _, seg := range segmentOrder {
		accs[seg] = &acc{}
	}
	for _, in := range insights {
		a := accs[in.Segment]
		a.count++
		a.total = a.total.Add(in.spent)
	}
	out := make([]SegmentSummary, 0, len(segmentOrder))
	for _, seg := range segmentOrder {
		a := accs[seg]
		out = append(out, SegmentSummary{
			Segment:      seg,
			Label:        seg.Label(),
			Customers:    a.count,
			TotalValue:   money(a.total),
			AverageValue: averageMoney(a.total, a.count),
		})
	}
	return out
}

func summariseCustomers(insights []CustomerInsight) CustomerSummary {
	total := decimal.Zero
	active := 0
	for _, in := range insights {
		total = total.Add(in.spent)
		if in.TotalOrders > 0 {
			active++
		}
	}
	return CustomerSummary{
		TotalCustomers:       len(insights),
		ActiveCustomers:      active,
		AverageCustomerValue: averageMoney(total, len(insights)),
	}
}
