package metricskey

import "github.com/effective-security/metrics"

// Perf
var (
	// PerfJWTOperation is perf metric
	PerfJWTOperation = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_jwt",
		Help:         "perf_jwt provides the sample metrics of JWT encode and decode operations",
		RequiredTags: []string{"alg", "action"},
	}
)

// Metrics returns slice of metrics from this repo
var Metrics = []*metrics.Describe{
	&PerfJWTOperation,
}
