// Command devapi serves a seeded, read-only copy of the decal API collections
// so decalhub can be run locally without the real backend.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"

	"github.com/decalhub/decalhub/internal/decalapi"
	"github.com/decalhub/decalhub/internal/platform/httpx"
)

type dataset struct {
	orders    []decalapi.Order
	services  []decalapi.DecalService
	stores    []decalapi.Store
	employees []decalapi.Employee
	customers []decalapi.Customer
	vehicles  []decalapi.CustomerVehicle
}

func main() {
	addr := flag.String("addr", ":5000", "listen address")
	orders := flag.Int("orders", 500, "number of orders to generate")
	seed := flag.Uint64("seed", 42, "random seed")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	data := generate(*orders, *seed, time.Now().UTC())

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Get("/orders", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, filterOrders(data.orders, r.URL.Query().Get("startDate"), r.URL.Query().Get("endDate")))
	})
	r.Get("/decal-services", serve(data.services))
	r.Get("/stores", serve(data.stores))
	r.Get("/employees", serve(data.employees))
	r.Get("/customers", serve(data.customers))
	r.Get("/customer-vehicles", serve(data.vehicles))

	logger.Info("devapi listening", slog.String("addr", *addr), slog.Int("orders", len(data.orders)))
	if err := http.ListenAndServe(*addr, r); err != nil {
		logger.Error("devapi", slog.Any("error", err))
		os.Exit(1)
	}
}

func serve[T any](rows []T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string][]T{"data": rows})
	}
}

func filterOrders(orders []decalapi.Order, start, end string) []decalapi.Order {
	from, _ := time.Parse(time.DateOnly, start)
	to, _ := time.Parse(time.DateOnly, end)
	out := make([]decalapi.Order, 0, len(orders))
	for _, o := range orders {
		d := o.OrderDate.Time.Truncate(24 * time.Hour)
		if !from.IsZero() && d.Before(from) {
			continue
		}
		if !to.IsZero() && d.After(to) {
			continue
		}
		out = append(out, o)
	}
	return out
}

func generate(n int, seed uint64, now time.Time) dataset {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	var d dataset

	for i, name := range []string{"Dán đổi màu", "Dán PPF", "Dán nóc đen", "Tem xe máy", "Dán kính cách nhiệt"} {
		d.services = append(d.services, decalapi.DecalService{ServiceID: fmt.Sprintf("svc-%d", i+1), ServiceName: name})
	}
	for i, name := range []string{"Quận 1", "Thủ Đức", "Biên Hòa"} {
		d.stores = append(d.stores, decalapi.Store{StoreID: fmt.Sprintf("store-%d", i+1), StoreName: name})
	}
	first := []string{"Lan", "Minh", "Hải", "Thảo", "Quang", "Vy"}
	last := []string{"Nguyễn", "Trần", "Lê", "Phạm", "Võ", "Đặng"}
	for i := range first {
		d.employees = append(d.employees, decalapi.Employee{
			EmployeeID: fmt.Sprintf("emp-%d", i+1),
			FirstName:  first[i],
			LastName:   last[i],
			Role:       []string{"Technician", "Designer", "Manager"}[i%3],
			IsActive:   i != len(first)-1,
		})
	}
	for i := 0; i < 40; i++ {
		id := fmt.Sprintf("cus-%d", i+1)
		d.customers = append(d.customers, decalapi.Customer{CustomerID: id, FullName: fmt.Sprintf("%s %s", last[i%len(last)], first[(i/len(last))%len(first)])})
		for v := 0; v <= i%2; v++ {
			d.vehicles = append(d.vehicles, decalapi.CustomerVehicle{VehicleID: fmt.Sprintf("veh-%d-%d", i+1, v+1), CustomerID: id})
		}
	}

	statuses := []string{"Completed", "Completed", "Completed", "Pending", "InProgress", "Cancelled"}
	stages := map[string]string{"Completed": "Delivered", "Pending": "Received", "InProgress": "Printing", "Cancelled": "Cancelled"}
	for i := 0; i < n; i++ {
		ordered := now.AddDate(0, 0, -rng.IntN(180)).Truncate(time.Hour)
		status := statuses[rng.IntN(len(statuses))]
		order := decalapi.Order{
			OrderID:            fmt.Sprintf("ord-%05d", i+1),
			TotalAmount:        decimal.NewFromInt(int64(200+rng.IntN(9800)) * 1000),
			Status:             status,
			CurrentStage:       stages[status],
			OrderDate:          decalapi.Time{Time: ordered},
			StoreID:            d.stores[rng.IntN(len(d.stores))].StoreID,
			AssignedEmployeeID: d.employees[rng.IntN(len(d.employees))].EmployeeID,
			ServiceID:          d.services[rng.IntN(len(d.services))].ServiceID,
			VehicleID:          d.vehicles[rng.IntN(len(d.vehicles))].VehicleID,
		}
		if rng.IntN(10) > 0 {
			order.ExpectedArrivalDate = decalapi.Time{Time: ordered.Add(time.Duration(12+rng.IntN(96)) * time.Hour)}
		}
		d.orders = append(d.orders, order)
	}
	return d
}
