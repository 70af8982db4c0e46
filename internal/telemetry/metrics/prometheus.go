package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func SetupPrometheus(cs ...prometheus.Collector) *prometheus.Registry {
	promRegistry := prometheus.NewRegistry()

	// go runtime and process collectors, plus whatever the caller brings
	promRegistry.MustRegister(
		collectors.NewBuildInfoCollector(),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	promRegistry.MustRegister(cs...)

	return promRegistry
}
