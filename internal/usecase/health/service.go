package health

import (
	"context"
	"time"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates every component failed.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// DefaultTimeout bounds a single component check.
const DefaultTimeout = 2 * time.Second

// Component is a named dependency to check.
type Component struct {
	Name   string
	Pinger Pinger
}

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	components []Component
	timeout    time.Duration
}

// New creates a Service over components.
func New(components ...Component) *Service {
	return &Service{components: components, timeout: DefaultTimeout}
}

// Check pings every component and aggregates the outcome.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, len(s.components))
	failed := 0

	for _, c := range s.components {
		cctx, cancel := context.WithTimeout(ctx, s.timeout)
		err := c.Pinger.Ping(cctx)
		cancel()
		if err != nil {
			checks[c.Name] = CheckError
			failed++
			continue
		}
		checks[c.Name] = CheckOK
	}

	status := Healthy
	switch {
	case failed == 0:
	case failed == len(s.components):
		status = Unhealthy
	default:
		status = Degraded
	}

	return Report{Status: status, Checks: checks}
}
