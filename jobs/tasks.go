package jobs

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskAnalyticsWarmup recomputes cached analytics reports.
	TaskAnalyticsWarmup = "analytics:warmup"
)

// Warmup scopes accepted by TaskAnalyticsWarmup.
const (
	ScopeAll        = "all"
	ScopeSales      = "sales"
	ScopeEmployees  = "employees"
	ScopeCustomers  = "customers"
	ScopeOperations = "operations"
	ScopeDashboard  = "dashboard"
)

// WarmupPayload selects which reports a warmup run recomputes.
type WarmupPayload struct {
	Scope string `json:"scope"`
}

func validScope(scope string) bool {
	switch scope {
	case ScopeAll, ScopeSales, ScopeEmployees, ScopeCustomers, ScopeOperations, ScopeDashboard:
		return true
	}
	return false
}

// NewAnalyticsWarmupTask constructs a warmup task. An empty scope means all.
func NewAnalyticsWarmupTask(scope string) (*asynq.Task, error) {
	if scope == "" {
		scope = ScopeAll
	}
	if !validScope(scope) {
		return nil, fmt.Errorf("jobs: unknown warmup scope %q", scope)
	}
	data, err := json.Marshal(WarmupPayload{Scope: scope})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAnalyticsWarmup, data, asynq.MaxRetry(3), asynq.Queue(QueueDefault)), nil
}
