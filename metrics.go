package main

import (
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	metricCases = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "symchmod_cases_total",
			Help: "Number of test cases compared against chmod.",
		},
	)
	metricMismatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "symchmod_mismatches_total",
			Help: "Number of test cases where our result differs from chmod, by kind: file, dir or both.",
		},
		[]string{"kind"},
	)
	metricErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "symchmod_errors_total",
			Help: "Number of test cases rejected as invalid, by side: chmod or symbolicmode.",
		},
		[]string{"side"},
	)
	metricHarnessErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "symchmod_harness_errors_total",
			Help: "Number of test cases that could not be compared, e.g. due to failure to create scratch files or run chmod.",
		},
	)
	metricOracleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "symchmod_oracle_duration_seconds",
			Help:    "Duration of a single chmod invocation.",
			Buckets: []float64{0.001, 0.002, 0.005, 0.01, 0.02, 0.05, 0.1, 0.5, 1},
		},
	)
	metricOracleVersion = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "symchmod_oracle_version",
			Help: "Version of chmod that results are compared against.",
		},
		[]string{"version"},
	)
)

// serveMetrics starts a webserver for /metrics in the background if addr is
// non-empty.
func serveMetrics(addr string) {
	if addr == "" {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/metrics", http.StatusFound)
	})

	conn, err := net.Listen("tcp", addr)
	xcheckf(err, "listening for metrics webserver")

	go func() {
		err := http.Serve(conn, mux)
		xcheckf(err, "serving metrics webserver")
	}()
}
