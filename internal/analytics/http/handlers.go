package analytichttp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/singleflight"

	"github.com/decalhub/decalhub/internal/analytics"
	"github.com/decalhub/decalhub/internal/analytics/export"
	"github.com/decalhub/decalhub/internal/decalapi"
	"github.com/decalhub/decalhub/internal/platform/httpx"
)

const defaultRequestTimeout = 10 * time.Second

// AnalyticsService defines the report contract used by the handler.
type AnalyticsService interface {
	GetSalesAnalytics(ctx context.Context, filter analytics.SalesFilter) (analytics.SalesAnalytics, error)
	GetEmployeePerformance(ctx context.Context) ([]analytics.EmployeePerformance, error)
	GetEmployeePerformanceByID(ctx context.Context, employeeID string) (analytics.EmployeePerformance, bool, error)
	GetCustomerInsights(ctx context.Context) (analytics.CustomerInsights, error)
	GetOperationalMetrics(ctx context.Context) (analytics.OperationalMetrics, error)
	GetDashboard(ctx context.Context, filter analytics.SalesFilter) (analytics.Dashboard, error)
}

// CacheBumper invalidates cached reports.
type CacheBumper interface {
	Bump(ctx context.Context) (int64, error)
}

// WarmupEnqueuer schedules a background cache warmup.
type WarmupEnqueuer interface {
	EnqueueAnalyticsWarmup(ctx context.Context, scope string) error
}

// Handler serves the analytics reports as JSON and CSV.
type Handler struct {
	logger    *slog.Logger
	service   AnalyticsService
	cache     CacheBumper
	warmup    WarmupEnqueuer
	validator *validator.Validate
	flights   singleflight.Group
	csvPool   sync.Pool
	timeout   time.Duration
	now       func() time.Time
}

// NewHandler constructs the analytics HTTP handler. A non-positive timeout
// falls back to ten seconds.
func NewHandler(logger *slog.Logger, service AnalyticsService, cache CacheBumper, timeout time.Duration) *Handler {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		logger:    logger,
		service:   service,
		cache:     cache,
		validator: validator.New(),
		timeout:   timeout,
		now:       time.Now,
	}
	h.csvPool.New = func() interface{} { return new(bytes.Buffer) }
	return h
}

// WithWarmup makes cache bumps enqueue a full warmup.
func (h *Handler) WithWarmup(warmup WarmupEnqueuer) {
	h.warmup = warmup
}

// WithNow overrides the handler clock for testing.
func (h *Handler) WithNow(fn func() time.Time) {
	if fn != nil {
		h.now = fn
	}
}

type salesQuery struct {
	StartDate string `validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `validate:"omitempty,datetime=2006-01-02"`
}

func (h *Handler) parseSalesFilter(r *http.Request) (analytics.SalesFilter, error) {
	q := salesQuery{
		StartDate: strings.TrimSpace(r.URL.Query().Get("start_date")),
		EndDate:   strings.TrimSpace(r.URL.Query().Get("end_date")),
	}
	if err := h.validator.Struct(q); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return analytics.SalesFilter{}, fmt.Errorf("%w: %s must be YYYY-MM-DD", httpx.ErrValidation, queryName(fieldErrs[0].Field()))
		}
		return analytics.SalesFilter{}, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}

	var filter analytics.SalesFilter
	if q.StartDate != "" {
		filter.StartDate, _ = time.Parse(time.DateOnly, q.StartDate)
	}
	if q.EndDate != "" {
		filter.EndDate, _ = time.Parse(time.DateOnly, q.EndDate)
	}
	if !filter.StartDate.IsZero() && !filter.EndDate.IsZero() && filter.EndDate.Before(filter.StartDate) {
		return analytics.SalesFilter{}, fmt.Errorf("%w: end_date is before start_date", httpx.ErrValidation)
	}
	return filter, nil
}

func queryName(field string) string {
	switch field {
	case "StartDate":
		return "start_date"
	case "EndDate":
		return "end_date"
	default:
		return field
	}
}

func filterKey(filter analytics.SalesFilter) string {
	return dateParam(filter.StartDate) + ".." + dateParam(filter.EndDate)
}

func dateParam(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}

func (h *Handler) handleSales(w http.ResponseWriter, r *http.Request) {
	filter, err := h.parseSalesFilter(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	report, err := share(r.Context(), h, "sales:"+filterKey(filter), func(ctx context.Context) (analytics.SalesAnalytics, error) {
		return h.service.GetSalesAnalytics(ctx, filter)
	})
	if err != nil {
		h.respondError(w, "load sales analytics", err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) handleEmployees(w http.ResponseWriter, r *http.Request) {
	records, err := share(r.Context(), h, "employees", h.service.GetEmployeePerformance)
	if err != nil {
		h.respondError(w, "load employee performance", err)
		return
	}
	httpx.JSON(w, http.StatusOK, records)
}

type employeeLookup struct {
	record analytics.EmployeePerformance
	found  bool
}

func (h *Handler) handleEmployee(w http.ResponseWriter, r *http.Request) {
	employeeID := strings.TrimSpace(chi.URLParam(r, "employeeID"))
	if employeeID == "" {
		httpx.RespondError(w, fmt.Errorf("%w: employee id is required", httpx.ErrValidation))
		return
	}
	res, err := share(r.Context(), h, "employee:"+employeeID, func(ctx context.Context) (employeeLookup, error) {
		record, found, err := h.service.GetEmployeePerformanceByID(ctx, employeeID)
		return employeeLookup{record: record, found: found}, err
	})
	if err != nil {
		h.respondError(w, "load employee performance", err)
		return
	}
	if !res.found {
		httpx.RespondError(w, fmt.Errorf("employee %s: %w", employeeID, httpx.ErrNotFound))
		return
	}
	httpx.JSON(w, http.StatusOK, res.record)
}

func (h *Handler) handleCustomers(w http.ResponseWriter, r *http.Request) {
	report, err := share(r.Context(), h, "customers", h.service.GetCustomerInsights)
	if err != nil {
		h.respondError(w, "load customer insights", err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) handleOperations(w http.ResponseWriter, r *http.Request) {
	report, err := share(r.Context(), h, "operations", h.service.GetOperationalMetrics)
	if err != nil {
		h.respondError(w, "load operational metrics", err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	filter, err := h.parseSalesFilter(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	dash, err := share(r.Context(), h, "dashboard:"+filterKey(filter), func(ctx context.Context) (analytics.Dashboard, error) {
		return h.service.GetDashboard(ctx, filter)
	})
	if err != nil {
		h.respondError(w, "load dashboard", err)
		return
	}
	httpx.JSON(w, http.StatusOK, dash)
}

func (h *Handler) exportHandler(report string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.handleExport(w, r, report)
	}
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request, report string) {
	buf := h.csvPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer func() {
		buf.Reset()
		h.csvPool.Put(buf)
	}()

	var err error
	switch report {
	case "sales":
		var filter analytics.SalesFilter
		if filter, err = h.parseSalesFilter(r); err != nil {
			httpx.RespondError(w, err)
			return
		}
		err = writeReport(r.Context(), h, buf, "sales:"+filterKey(filter),
			func(ctx context.Context) (analytics.SalesAnalytics, error) { return h.service.GetSalesAnalytics(ctx, filter) },
			export.WriteSalesCSV)
	case "employees":
		err = writeReport(r.Context(), h, buf, "employees", h.service.GetEmployeePerformance, export.WriteEmployeeCSV)
	case "customers":
		err = writeReport(r.Context(), h, buf, "customers", h.service.GetCustomerInsights, export.WriteCustomerCSV)
	case "operations":
		err = writeReport(r.Context(), h, buf, "operations", h.service.GetOperationalMetrics, export.WriteOperationsCSV)
	default:
		httpx.RespondError(w, fmt.Errorf("report %q: %w", report, httpx.ErrNotFound))
		return
	}
	if err != nil {
		h.respondError(w, "export "+report, err)
		return
	}

	filename := fmt.Sprintf("decalhub-%s-%s.csv", report, h.now().UTC().Format(time.DateOnly))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logError("stream csv", err)
	}
}

type bumpResponse struct {
	Version      int64 `json:"version"`
	WarmupQueued bool  `json:"warmupQueued,omitempty"`
}

func (h *Handler) handleCacheBump(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		httpx.JSON(w, http.StatusOK, bumpResponse{})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	version, err := h.cache.Bump(ctx)
	if err != nil {
		h.respondError(w, "bump analytics cache", err)
		return
	}
	resp := bumpResponse{Version: version}
	if h.warmup != nil {
		if err := h.warmup.EnqueueAnalyticsWarmup(ctx, "all"); err != nil {
			h.logger.Warn("enqueue analytics warmup", slog.Any("error", err))
		} else {
			resp.WarmupQueued = true
		}
	}
	h.logger.Info("analytics cache bumped", slog.Int64("version", version), slog.Bool("warmup_queued", resp.WarmupQueued))
	httpx.JSON(w, http.StatusOK, resp)
}

func writeReport[T any](ctx context.Context, h *Handler, w io.Writer, key string, load func(context.Context) (T, error), write func(io.Writer, T) error) error {
	report, err := share(ctx, h, key, load)
	if err != nil {
		return err
	}
	return write(w, report)
}

// share collapses concurrent identical requests into one service call. The
// shared call runs under its own deadline so one caller leaving does not fail
// the others; each caller still stops waiting when its own context ends.
func share[T any](ctx context.Context, h *Handler, key string, fn func(context.Context) (T, error)) (T, error) {
	resultChan := h.flights.DoChan(key, func() (interface{}, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.timeout)
		defer cancel()
		return fn(callCtx)
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-resultChan:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	h.logError(op, err)

	var apiErr *decalapi.APIError
	var urlErr *url.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		httpx.RespondError(w, err)
	case errors.As(err, &apiErr):
		httpx.RespondError(w, fmt.Errorf("%w: %s %s returned %d", httpx.ErrUpstream, apiErr.Method, apiErr.Path, apiErr.StatusCode))
	case errors.As(err, &urlErr):
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrUpstream, urlErr.Op))
	default:
		httpx.RespondError(w, err)
	}
}

func (h *Handler) logError(op string, err error) {
	h.logger.Error(op, slog.Any("error", err))
}
