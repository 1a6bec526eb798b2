package analytics

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const day = 24 * time.Hour

// tally accumulates an order count and exact revenue for one bucket.
type tally struct {
	count   int
	revenue decimal.Decimal
}

func (t *tally) add(o Order) {
	t.count++
	t.revenue = t.revenue.Add(o.Total)
}

// catalogEntry is a seed for a keyed group: one per known service, store or employee.
type catalogEntry struct {
	id   string
	name string
}

// GroupSales is a per-entity bucket of orders and revenue.
type GroupSales struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Orders  int     `json:"orders"`
	Revenue float64 `json:"revenue"`
}

// foldSeeded seeds one bucket per catalog entry, folds orders in by key and
// returns only the buckets that received at least one order, in catalog order.
// Orders whose key is absent or not in the catalog are skipped.
func foldSeeded(catalog []catalogEntry, orders []Order, key func(Order) string) []GroupSales {
	tallies := make(map[string]*tally, len(catalog))
	seeds := make([]catalogEntry, 0, len(catalog))
	for _, entry := range catalog {
		if entry.id == "" {
			continue
		}
		if _, dup := tallies[entry.id]; dup {
			continue
		}
		tallies[entry.id] = &tally{}
		seeds = append(seeds, entry)
	}
	for _, o := range orders {
		id := key(o)
		if id == "" {
			continue
		}
		if t, ok := tallies[id]; ok {
			t.add(o)
		}
	}
	out := make([]GroupSales, 0, len(seeds))
	for _, entry := range seeds {
		t := tallies[entry.id]
		if t.count == 0 {
			continue
		}
		out = append(out, GroupSales{
			ID:      entry.id,
			Name:    entry.name,
			Orders:  t.count,
			Revenue: money(t.revenue),
		})
	}
	return out
}

// labelTally is a bucket keyed by a free-form label such as status or stage.
type labelTally struct {
	label string
	tally
}

// foldLabels groups orders by label in first-seen order. Blank labels fall
// back to "Unknown".
func foldLabels(orders []Order, label func(Order) string) []*labelTally {
	index := make(map[string]*labelTally)
	ordered := make([]*labelTally, 0)
	for _, o := range orders {
		key := labelOrUnknown(label(o))
		bucket, ok := index[key]
		if !ok {
			bucket = &labelTally{label: key}
			index[key] = bucket
			ordered = append(ordered, bucket)
		}
		bucket.add(o)
	}
	return ordered
}

func labelOrUnknown(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return unknownLabel
	}
	return s
}

func sumTotals(orders []Order) decimal.Decimal {
	total := decimal.Zero
	for _, o := range orders {
		total = total.Add(o.Total)
	}
	return total
}

func money(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

// averageMoney divides total by count, returning 0 for an empty denominator.
func averageMoney(total decimal.Decimal, count int) float64 {
	if count == 0 {
		return 0
	}
	return money(total.Div(decimal.NewFromInt(int64(count))))
}

// percent returns part/whole*100, or 0 when whole is 0.
func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// processingDays is ceil((expected arrival - order date) / 1 day). The second
// return is false when either date is missing.
func processingDays(o Order) (float64, bool) {
	if o.OrderDate.IsZero() || o.ExpectedArrival.IsZero() {
		return 0, false
	}
	elapsed := o.ExpectedArrival.Sub(o.OrderDate)
	return math.Ceil(float64(elapsed) / float64(day)), true
}

func dateKey(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}
