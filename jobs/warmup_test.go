package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/decalhub/decalhub/internal/analytics"
	"github.com/decalhub/decalhub/internal/decalapi"
	jobmetrics "github.com/decalhub/decalhub/internal/jobs"
)

type recordingService struct {
	mu      sync.Mutex
	calls   []string
	failOn  string
	failErr error
}

func (s *recordingService) record(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, name)
	if name == s.failOn {
		return s.failErr
	}
	return nil
}

func (s *recordingService) GetSalesAnalytics(ctx context.Context, filter analytics.SalesFilter) (analytics.SalesAnalytics, error) {
	return analytics.SalesAnalytics{}, s.record(ScopeSales)
}

func (s *recordingService) GetEmployeePerformance(ctx context.Context) ([]analytics.EmployeePerformance, error) {
	return nil, s.record(ScopeEmployees)
}

func (s *recordingService) GetCustomerInsights(ctx context.Context) (analytics.CustomerInsights, error) {
	return analytics.CustomerInsights{}, s.record(ScopeCustomers)
}

func (s *recordingService) GetOperationalMetrics(ctx context.Context) (analytics.OperationalMetrics, error) {
	return analytics.OperationalMetrics{}, s.record(ScopeOperations)
}

func (s *recordingService) GetDashboard(ctx context.Context, filter analytics.SalesFilter) (analytics.Dashboard, error) {
	return analytics.Dashboard{}, s.record(ScopeDashboard)
}

type countingBumper struct {
	bumps int
}

func (b *countingBumper) Bump(ctx context.Context) (int64, error) {
	b.bumps++
	return int64(b.bumps + 1), nil
}

func newWarmupJob(service ReportService, cache CacheBumper) *AnalyticsWarmupJob {
	job := NewAnalyticsWarmupJob(service, cache, nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))
	job.clock = func() time.Time { return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC) }
	return job
}

func TestWarmupAllBumpsAndWarmsEveryReport(t *testing.T) {
	service := &recordingService{}
	bumper := &countingBumper{}
	job := newWarmupJob(service, bumper)

	task, err := NewAnalyticsWarmupTask(ScopeAll)
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	assert.Equal(t, 1, bumper.bumps)
	assert.Equal(t, []string{ScopeSales, ScopeEmployees, ScopeCustomers, ScopeOperations, ScopeDashboard}, service.calls)
}

func TestWarmupSingleScopeKeepsCacheVersion(t *testing.T) {
	service := &recordingService{}
	bumper := &countingBumper{}
	job := newWarmupJob(service, bumper)

	task, err := NewAnalyticsWarmupTask(ScopeCustomers)
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	assert.Zero(t, bumper.bumps)
	assert.Equal(t, []string{ScopeCustomers}, service.calls)
}

func TestWarmupStopsOnFirstFailure(t *testing.T) {
	upstream := &decalapi.APIError{Method: "GET", Path: "/customers", StatusCode: 500}
	service := &recordingService{failOn: ScopeCustomers, failErr: upstream}
	job := newWarmupJob(service, nil)

	task, err := NewAnalyticsWarmupTask("")
	require.NoError(t, err)
	err = job.Handle(context.Background(), task)

	require.Error(t, err)
	assert.ErrorIs(t, err, upstream)
	assert.False(t, errors.Is(err, asynq.SkipRetry))
	assert.Equal(t, []string{ScopeSales, ScopeEmployees, ScopeCustomers}, service.calls)
}

func TestWarmupRejectsBadPayload(t *testing.T) {
	job := newWarmupJob(&recordingService{}, nil)

	err := job.Handle(context.Background(), asynq.NewTask(TaskAnalyticsWarmup, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	err = job.Handle(context.Background(), asynq.NewTask(TaskAnalyticsWarmup, []byte(`{"scope":"inventory"}`)))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestNewAnalyticsWarmupTask(t *testing.T) {
	task, err := NewAnalyticsWarmupTask("")
	require.NoError(t, err)
	assert.Equal(t, TaskAnalyticsWarmup, task.Type())
	assert.JSONEq(t, `{"scope":"all"}`, string(task.Payload()))

	_, err = NewAnalyticsWarmupTask("payroll")
	assert.Error(t, err)
}
