package config

import (
	"github.com/filedepot/filedepot/pkg/metrics"
)

// InitializeMetrics sets up metric collection based on configuration and
// returns the Metrics instance shared by the HTTP layer, the files
// service and the thumbnail worker.
//
// If metrics are disabled the returned instance is a no-op and the
// /metrics endpoint is not registered.
func InitializeMetrics(cfg *Config) metrics.Metrics {
	if !cfg.Server.Metrics.Enabled {
		return metrics.NewMetrics() // no-op while the registry is uninitialized
	}

	metrics.InitRegistry()
	return metrics.NewMetrics()
}
