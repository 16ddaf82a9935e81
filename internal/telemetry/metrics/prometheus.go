package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// ServiceInfo describes how this instance stores and presents weights. It is
// exported as a constant <namespace>_service_info gauge.
type ServiceInfo struct {
	Namespace    string
	StoreBackend string
	StoreCodec   string
	Language     string
}

// SetupPrometheus creates a registry with the service info gauge, runtime and
// process collectors plus any extra collectors (e.g. the pgx pool stats).
func SetupPrometheus(info ServiceInfo, extra ...prometheus.Collector) *prometheus.Registry {
	promRegistry := prometheus.NewRegistry()

	serviceInfo := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: info.Namespace,
		Name:      "service_info",
		Help:      "Store backend, codec and language of the running weightstats instance.",
	}, []string{"store_backend", "store_codec", "language"})
	serviceInfo.WithLabelValues(info.StoreBackend, info.StoreCodec, info.Language).Set(1)

	promRegistry.MustRegister(
		serviceInfo,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: info.Namespace}),
	)
	promRegistry.MustRegister(extra...)

	return promRegistry
}
