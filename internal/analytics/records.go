package analytics

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Order statuses the reports count explicitly.
const (
	StatusCompleted  = "Completed"
	StatusPending    = "Pending"
	StatusInProgress = "InProgress"

	unknownLabel = "Unknown"
)

// Order is the read-only order view the folds operate on. Empty foreign keys
// and zero dates mean the value is absent.
type Order struct {
	ID              string
	Total           decimal.Decimal
	Status          string
	Stage           string
	OrderDate       time.Time
	ExpectedArrival time.Time
	StoreID         string
	EmployeeID      string
	ServiceID       string
	VehicleID       string
}

// DecalService is a catalog entry.
type DecalService struct {
	ID   string
	Name string
}

// Store is a branch.
type Store struct {
	ID   string
	Name string
}

// Employee is a staff account.
type Employee struct {
	ID        string
	FirstName string
	LastName  string
	Role      string
	Active    bool
}

// FullName joins first and last name, skipping empty parts.
func (e Employee) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(e.FirstName) + " " + strings.TrimSpace(e.LastName))
}

// Customer is a customer record.
type Customer struct {
	ID   string
	Name string
}

// CustomerVehicle links a vehicle to its owner.
type CustomerVehicle struct {
	ID         string `json:"vehicleId"`
	CustomerID string `json:"customerId"`
}
