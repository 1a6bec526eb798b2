package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/decalhub/decalhub/internal/analytics"
	jobmetrics "github.com/decalhub/decalhub/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

const warmupJobName = "analytics_warmup"

// ReportService is the analytics surface the warmup job recomputes.
type ReportService interface {
	GetSalesAnalytics(ctx context.Context, filter analytics.SalesFilter) (analytics.SalesAnalytics, error)
	GetEmployeePerformance(ctx context.Context) ([]analytics.EmployeePerformance, error)
	GetCustomerInsights(ctx context.Context) (analytics.CustomerInsights, error)
	GetOperationalMetrics(ctx context.Context) (analytics.OperationalMetrics, error)
	GetDashboard(ctx context.Context, filter analytics.SalesFilter) (analytics.Dashboard, error)
}

// CacheBumper invalidates every cached report.
type CacheBumper interface {
	Bump(ctx context.Context) (int64, error)
}

// AnalyticsWarmupJob refills the analytics cache so dashboard reads hit Redis.
type AnalyticsWarmupJob struct {
	Analytics ReportService
	Cache     CacheBumper
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
	Timeout   time.Duration
	clock     func() time.Time
}

// NewAnalyticsWarmupJob wires dependencies for the warmup handler.
func NewAnalyticsWarmupJob(service ReportService, cache CacheBumper, logger *slog.Logger, metrics *jobmetrics.Metrics) *AnalyticsWarmupJob {
	return &AnalyticsWarmupJob{
		Analytics: service,
		Cache:     cache,
		Logger:    logger,
		Metrics:   metrics,
		Timeout:   time.Minute,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes TaskAnalyticsWarmup tasks. A full-scope run bumps the
// cache version first so every report is rebuilt from fresh fetches.
func (j *AnalyticsWarmupJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Analytics == nil {
		return errors.New("analytics warmup: handler not configured")
	}
	var payload WarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("analytics warmup: decode payload: %v: %w", err, asynq.SkipRetry)
	}
	if payload.Scope == "" {
		payload.Scope = ScopeAll
	}
	if !validScope(payload.Scope) {
		return fmt.Errorf("analytics warmup: unknown scope %q: %w", payload.Scope, asynq.SkipRetry)
	}

	tracker := j.metrics().Track(warmupJobName)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.String("scope", payload.Scope))
	logger.Info("starting analytics warmup")
	start := j.now()

	runCtx := ctx
	if j.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, j.Timeout)
		defer cancel()
	}

	if payload.Scope == ScopeAll && j.Cache != nil {
		version, err := j.Cache.Bump(runCtx)
		if err != nil {
			logger.Error("bump analytics cache", slog.Any("error", err))
			return err
		}
		logger.Debug("analytics cache bumped", slog.Int64("version", version))
	}

	warmed := 0
	for _, step := range j.steps(payload.Scope) {
		if err := step.run(runCtx); err != nil {
			logger.Error("warm report", slog.String("report", step.report), slog.Any("error", err))
			return fmt.Errorf("analytics warmup: %s: %w", step.report, err)
		}
		j.metrics().ReportWarmed(step.report)
		warmed++
	}

	logger.Info("completed analytics warmup", slog.Int("reports", warmed), slog.Duration("duration", j.now().Sub(start)))
	return nil
}

type warmupStep struct {
	report string
	run    func(context.Context) error
}

func (j *AnalyticsWarmupJob) steps(scope string) []warmupStep {
	all := []warmupStep{
		{ScopeSales, func(ctx context.Context) error {
			_, err := j.Analytics.GetSalesAnalytics(ctx, analytics.SalesFilter{})
			return err
		}},
		{ScopeEmployees, func(ctx context.Context) error {
			_, err := j.Analytics.GetEmployeePerformance(ctx)
			return err
		}},
		{ScopeCustomers, func(ctx context.Context) error {
			_, err := j.Analytics.GetCustomerInsights(ctx)
			return err
		}},
		{ScopeOperations, func(ctx context.Context) error {
			_, err := j.Analytics.GetOperationalMetrics(ctx)
			return err
		}},
		{ScopeDashboard, func(ctx context.Context) error {
			_, err := j.Analytics.GetDashboard(ctx, analytics.SalesFilter{})
			return err
		}},
	}
	if scope == ScopeAll {
		return all
	}
	for _, step := range all {
		if step.report == scope {
			return []warmupStep{step}
		}
	}
	return nil
}

func (j *AnalyticsWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskAnalyticsWarmup))
	}
	return slog.Default().With(slog.String("job", TaskAnalyticsWarmup))
}

func (j *AnalyticsWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *AnalyticsWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
