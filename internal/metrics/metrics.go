// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"errors"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every collector name.
const Namespace = "strindex"

var registerOnce sync.Once

// Register registers all collectors on reg. Must be called once from main;
// later calls are no-ops.
func Register(reg prometheus.Registerer) error {
	var err error
	registerOnce.Do(func() {
		for _, c := range collectors() {
			if rerr := reg.Register(c); rerr != nil {
				var already prometheus.AlreadyRegisteredError
				if !errors.As(rerr, &already) {
					err = rerr
					return
				}
			}
		}
	})
	return err
}

func collectors() []prometheus.Collector {
	return []prometheus.Collector{
		httpRequestDuration,
		httpRequestsTotal,
		TranslationsTotal,
		RuleMatchesTotal,
		StoreOperationDuration,
		StoreErrorsTotal,
	}
}
