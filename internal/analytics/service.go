// Package analytics folds the decal service collections into the dashboard
// reports: sales, employee performance, customer insights and operations.
package analytics

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/decalhub/decalhub/internal/decalapi"
)

// Source is the read side of the REST API the reports are computed from.
type Source interface {
	ListOrders(ctx context.Context, filter decalapi.OrderFilter) ([]decalapi.Order, error)
	ListDecalServices(ctx context.Context) ([]decalapi.DecalService, error)
	ListStores(ctx context.Context) ([]decalapi.Store, error)
	ListEmployees(ctx context.Context) ([]decalapi.Employee, error)
	ListCustomers(ctx context.Context) ([]decalapi.Customer, error)
	ListCustomerVehicles(ctx context.Context) ([]decalapi.CustomerVehicle, error)
}

// Service fetches the collections a report needs and folds them.
type Service struct {
	source Source
	cache  *Cache
	now    func() time.Time
}

// NewService wires a Source with an optional Cache.
func NewService(source Source, cache *Cache) *Service {
	return &Service{source: source, cache: cache, now: time.Now}
}

// Cache exposes the cache helper, which may be nil.
func (s *Service) Cache() *Cache {
	return s.cache
}

// GetSalesAnalytics computes the sales report for the filter.
func (s *Service) GetSalesAnalytics(ctx context.Context, filter SalesFilter) (SalesAnalytics, error) {
	return cached(ctx, s, keySales(filter), func(ctx context.Context) (SalesAnalytics, error) {
		in, err := s.load(ctx, filter.orderFilter(), needOrders|needServices|needStores|needEmployees)
		if err != nil {
			return SalesAnalytics{}, err
		}
		return BuildSalesAnalytics(in.orders, in.services, in.stores, in.employees, filter), nil
	})
}

// GetEmployeePerformance computes a record for every employee.
func (s *Service) GetEmployeePerformance(ctx context.Context) ([]EmployeePerformance, error) {
	return cached(ctx, s, keyEmployees, func(ctx context.Context) ([]EmployeePerformance, error) {
		in, err := s.load(ctx, decalapi.OrderFilter{}, needOrders|needEmployees)
		if err != nil {
			return nil, err
		}
		return BuildEmployeePerformance(in.employees, in.orders), nil
	})
}

// GetEmployeePerformanceByID returns the record for one employee. found is
// false, with a nil error, when the employee does not exist.
func (s *Service) GetEmployeePerformanceByID(ctx context.Context, employeeID string) (record EmployeePerformance, found bool, err error) {
	records, err := s.GetEmployeePerformance(ctx)
	if err != nil {
		return EmployeePerformance{}, false, err
	}
	record, found = FindEmployeePerformance(records, employeeID)
	return record, found, nil
}

// GetCustomerInsights computes the customer report.
func (s *Service) GetCustomerInsights(ctx context.Context) (CustomerInsights, error) {
	return cached(ctx, s, keyCustomers, func(ctx context.Context) (CustomerInsights, error) {
		in, err := s.load(ctx, decalapi.OrderFilter{}, needOrders|needCustomers|needVehicles)
		if err != nil {
			return CustomerInsights{}, err
		}
		return BuildCustomerInsights(in.customers, in.orders, in.vehicles), nil
	})
}

// GetOperationalMetrics computes the operations report.
func (s *Service) GetOperationalMetrics(ctx context.Context) (OperationalMetrics, error) {
	return cached(ctx, s, keyOperations, func(ctx context.Context) (OperationalMetrics, error) {
		in, err := s.load(ctx, decalapi.OrderFilter{}, needOrders|needEmployees|needStores|needServices)
		if err != nil {
			return OperationalMetrics{}, err
		}
		return BuildOperationalMetrics(in.orders, in.employees, in.stores, in.services), nil
	})
}

// Dashboard bundles the four reports computed from one set of fetches.
type Dashboard struct {
	GeneratedAt time.Time             `json:"generatedAt"`
	Sales       SalesAnalytics        `json:"sales"`
	Employees   []EmployeePerformance `json:"employees"`
	Customers   CustomerInsights      `json:"customers"`
	Operations  OperationalMetrics    `json:"operations"`
}

// GetDashboard fetches every collection once and builds all reports. The
// filter only scopes the sales report; the other reports use all orders.
func (s *Service) GetDashboard(ctx context.Context, filter SalesFilter) (Dashboard, error) {
	return cached(ctx, s, keyDashboard(filter), func(ctx context.Context) (Dashboard, error) {
		in, err := s.load(ctx, decalapi.OrderFilter{}, needAll)
		if err != nil {
			return Dashboard{}, err
		}
		return Dashboard{
			GeneratedAt: s.now().UTC(),
			Sales:       BuildSalesAnalytics(in.orders, in.services, in.stores, in.employees, filter),
			Employees:   BuildEmployeePerformance(in.employees, in.orders),
			Customers:   BuildCustomerInsights(in.customers, in.orders, in.vehicles),
			Operations:  BuildOperationalMetrics(in.orders, in.employees, in.stores, in.services),
		}, nil
	})
}

func cached[T any](ctx context.Context, s *Service, key string, load func(context.Context) (T, error)) (T, error) {
	if !s.cache.Enabled() {
		return load(ctx)
	}
	var out T
	fullKey, err := s.cache.BuildKey(ctx, key)
	if err != nil {
		return out, err
	}
	err = s.cache.FetchJSON(ctx, fullKey, &out, func(ctx context.Context) (interface{}, error) {
		return load(ctx)
	})
	return out, err
}

type need uint8

const (
	needOrders need = 1 << iota
	needServices
	needStores
	needEmployees
	needCustomers
	needVehicles

	needAll = needOrders | needServices | needStores | needEmployees | needCustomers | needVehicles
)

type inputs struct {
	orders    []Order
	services  []DecalService
	stores    []Store
	employees []Employee
	customers []Customer
	vehicles  []CustomerVehicle
}

// load runs the requested reads concurrently. The first failure cancels the
// rest and fails the whole load.
func (s *Service) load(ctx context.Context, filter decalapi.OrderFilter, what need) (inputs, error) {
	if s.source == nil {
		return inputs{}, fmt.Errorf("analytics: source not configured")
	}
	var in inputs
	g, ctx := errgroup.WithContext(ctx)

	if what&needOrders != 0 {
		g.Go(func() error {
			rows, err := s.source.ListOrders(ctx, filter)
			if err != nil {
				return fmt.Errorf("analytics: list orders: %w", err)
			}
			in.orders = toOrders(rows)
			return nil
		})
	}
	if what&needServices != 0 {
		g.Go(func() error {
			rows, err := s.source.ListDecalServices(ctx)
			if err != nil {
				return fmt.Errorf("analytics: list decal services: %w", err)
			}
			in.services = toServices(rows)
			return nil
		})
	}
	if what&needStores != 0 {
		g.Go(func() error {
			rows, err := s.source.ListStores(ctx)
			if err != nil {
				return fmt.Errorf("analytics: list stores: %w", err)
			}
			in.stores = toStores(rows)
			return nil
		})
	}
	if what&needEmployees != 0 {
		g.Go(func() error {
			rows, err := s.source.ListEmployees(ctx)
			if err != nil {
				return fmt.Errorf("analytics: list employees: %w", err)
			}
			in.employees = toEmployees(rows)
			return nil
		})
	}
	if what&needCustomers != 0 {
		g.Go(func() error {
			rows, err := s.source.ListCustomers(ctx)
			if err != nil {
				return fmt.Errorf("analytics: list customers: %w", err)
			}
			in.customers = toCustomers(rows)
			return nil
		})
	}
	if what&needVehicles != 0 {
		g.Go(func() error {
			rows, err := s.source.ListCustomerVehicles(ctx)
			if err != nil {
				return fmt.Errorf("analytics: list customer vehicles: %w", err)
			}
			in.vehicles = toVehicles(rows)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return inputs{}, err
	}
	return in, nil
}

func toOrders(rows []decalapi.Order) []Order {
	out := make([]Order, 0, len(rows))
	for _, row := range rows {
		out = append(out, Order{
			ID:              row.OrderID,
			Total:           row.TotalAmount,
			Status:          row.Status,
			Stage:           row.CurrentStage,
			OrderDate:       row.OrderDate.Time,
			ExpectedArrival: row.ExpectedArrivalDate.Time,
			StoreID:         row.StoreID,
			EmployeeID:      row.AssignedEmployeeID,
			ServiceID:       row.ServiceID,
			VehicleID:       row.VehicleID,
		})
	}
	return out
}

func toServices(rows []decalapi.DecalService) []DecalService {
	out := make([]DecalService, 0, len(rows))
	for _, row := range rows {
		out = append(out, DecalService{ID: row.ServiceID, Name: row.ServiceName})
	}
	return out
}

func toStores(rows []decalapi.Store) []Store {
	out := make([]Store, 0, len(rows))
	for _, row := range rows {
		out = append(out, Store{ID: row.StoreID, Name: row.StoreName})
	}
	return out
}

func toEmployees(rows []decalapi.Employee) []Employee {
	out := make([]Employee, 0, len(rows))
	for _, row := range rows {
		out = append(out, Employee{
			ID:        row.EmployeeID,
			FirstName: row.FirstName,
			LastName:  row.LastName,
			Role:      row.Role,
			Active:    row.IsActive,
		})
	}
	return out
}

func toCustomers(rows []decalapi.Customer) []Customer {
	out := make([]Customer, 0, len(rows))
	for _, row := range rows {
		out = append(out, Customer{ID: row.CustomerID, Name: row.FullName})
	}
	return out
}

func toVehicles(rows []decalapi.CustomerVehicle) []CustomerVehicle {
	out := make([]CustomerVehicle, 0, len(rows))
	for _, row := range rows {
		out = append(out, CustomerVehicle{ID: row.VehicleID, CustomerID: row.CustomerID})
	}
	return out
}
