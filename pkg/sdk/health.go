package strindex

import (
	"context"
	"fmt"
	"sort"
	"strings"

	healthuc "github.com/kailas-cloud/strindex/internal/usecase/health"
)

// HealthStatus is the outcome of pinging the storage backend.
type HealthStatus struct {
	Status string            // "ok", "degraded" or "error"
	Checks map[string]string // component name to "ok" or "error"
}

// OK reports whether every component answered.
func (h HealthStatus) OK() bool { return h.Status == string(healthuc.Healthy) }

// Failing lists the components that did not answer, sorted by name.
func (h HealthStatus) Failing() []string {
	var out []string
	for name, res := range h.Checks {
		if res != string(healthuc.CheckOK) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Health pings the backend components.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)
	h := HealthStatus{Status: string(report.Status), Checks: make(map[string]string, len(report.Checks))}
	for name, res := range report.Checks {
		h.Checks[name] = string(res)
	}
	return h
}

// Ready returns nil when Health is OK and an error naming the failing components otherwise.
func (c *Client) Ready(ctx context.Context) error {
	h := c.Health(ctx)
	if h.OK() {
		return nil
	}
	return fmt.Errorf("strindex: backend %s: %s", h.Status, strings.Join(h.Failing(), ", "))
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}
