package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var rpcErrorsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "nobelidx",
		Name:      "rpc_errors_total",
		Help:      "RPC calls answered with an error, by method and error code",
	},
	[]string{"method", "code"},
)

var rpcOnce sync.Once

// RegisterRPCMetrics registers RPC metrics. Safe to call more than once.
func RegisterRPCMetrics() {
	rpcOnce.Do(func() {
		prometheus.MustRegister(rpcErrorsTotal)
	})
}

// RecordRPCError counts one failed RPC.
func RecordRPCError(method, code string) {
	rpcErrorsTotal.WithLabelValues(method, code).Inc()
}

// Register registers every metric family the service exports.
func Register() {
	RegisterHTTPMetrics()
	RegisterEmbeddingMetrics()
	RegisterIngestMetrics()
	RegisterRPCMetrics()
}
