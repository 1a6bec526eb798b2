package decalapi

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Order is the order record returned by GET /orders.
type Order struct {
	OrderID             string          `json:"orderId"`
	TotalAmount         decimal.Decimal `json:"totalAmount"`
	Status              string          `json:"status"`
	CurrentStage        string          `json:"currentStage"`
	OrderDate           Time            `json:"orderDate"`
	ExpectedArrivalDate Time            `json:"expectedArrivalDate"`
	StoreID             string          `json:"storeId"`
	AssignedEmployeeID  string          `json:"assignedEmployeeId"`
	ServiceID           string          `json:"serviceId"`
	VehicleID           string          `json:"vehicleId"`
}

// DecalService is a catalog entry returned by GET /decal-services.
type DecalService struct {
	ServiceID   string `json:"serviceId"`
	ServiceName string `json:"serviceName"`
}

// Store is a branch returned by GET /stores.
type Store struct {
	StoreID   string `json:"storeId"`
	StoreName string `json:"storeName"`
}

// Employee is an account returned by GET /employees.
type Employee struct {
	EmployeeID string `json:"employeeId"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Role       string `json:"role"`
	IsActive   bool   `json:"isActive"`
}

// Customer is a customer record returned by GET /customers.
type Customer struct {
	CustomerID string `json:"customerId"`
	FullName   string `json:"fullName"`
}

// CustomerVehicle links a vehicle to its owner, returned by GET /customer-vehicles.
type CustomerVehicle struct {
	VehicleID  string `json:"vehicleId"`
	CustomerID string `json:"customerId"`
}

// OrderFilter narrows GET /orders. Zero bounds are not sent.
type OrderFilter struct {
	StartDate time.Time
	EndDate   time.Time
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Time decodes the timestamp formats the API emits. Empty or null values
// decode to the zero time.
type Time struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Time) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if raw == "" || raw == "null" {
		t.Time = time.Time{}
		return nil
	}
	var lastErr error
	for _, layout := range timeLayouts {
		parsed, err := time.Parse(layout, raw)
		if err == nil {
			t.Time = parsed.UTC()
			return nil
		}
		lastErr = err
	}
	return lastErr
}
