package analytichttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/decalhub/decalhub/internal/platform/httpx"
)

var exportReports = []string{"sales", "employees", "customers", "operations"}

// MountRoutes registers the analytics endpoints onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	limiter := httprate.Limit(10, time.Minute,
		httprate.WithKeyFuncs(rateLimitKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			httpx.Problem(w, http.StatusTooManyRequests, http.StatusText(http.StatusTooManyRequests), "export limit reached, retry later")
		}),
	)

	r.Route("/analytics", func(r chi.Router) {
		r.Get("/sales", h.handleSales)
		r.Get("/employees", h.handleEmployees)
		r.Get("/employees/{employeeID}", h.handleEmployee)
		r.Get("/customers", h.handleCustomers)
		r.Get("/operations", h.handleOperations)
		r.Get("/dashboard", h.handleDashboard)
		r.Post("/cache/bump", h.handleCacheBump)
		r.Group(func(gr chi.Router) {
			gr.Use(limiter)
			for _, report := range exportReports {
				gr.Get("/"+report+"/export.csv", h.exportHandler(report))
			}
		})
	})
}

func rateLimitKey(r *http.Request) (string, error) {
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}
