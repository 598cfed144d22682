// Package metrics collects client-side request metrics on a private
// Prometheus registry. The REPL's "stats" command reads them back.
package metrics

import (
	"fmt"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Outcome labels.
const (
	OutcomeOK              = "ok"
	OutcomeAPIError        = "api_error"
	OutcomeFetchError      = "fetch_error"
	OutcomeNetworkError    = "network_error"
	OutcomeUnauthenticated = "unauthenticated"
)

const (
	requestsTotalName   = "briefly_client_requests_total"
	requestDurationName = "briefly_client_request_duration_seconds"
)

// Metrics holds the collectors for outbound API calls.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	InFlight        prometheus.Gauge
}

// New creates and registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,

		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: requestsTotalName,
			Help: "Total number of API calls issued by the client.",
		}, []string{"method", "route", "outcome"}),

		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    requestDurationName,
			Help:    "Latency of API calls that reached the network.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),

		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "briefly_client_requests_in_flight",
			Help: "API calls currently waiting for a response.",
		}),
	}

	reg.MustRegister(m.RequestsTotal, m.RequestDuration, m.InFlight)

	return m
}

// Registry exposes the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RequestStarted/RequestFinished bracket a network round trip.
func (m *Metrics) RequestStarted() {
	m.InFlight.Inc()
}

func (m *Metrics) RequestFinished() {
	m.InFlight.Dec()
}

// ObserveRequest records one call. A zero duration (the call never left
// the process) only counts the outcome.
func (m *Metrics) ObserveRequest(method, route, outcome string, d time.Duration) {
	m.RequestsTotal.WithLabelValues(method, route, outcome).Inc()
	if d > 0 {
		m.RequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
	}
}

// RouteStat is one row of Snapshot.
type RouteStat struct {
	Method  string
	Route   string
	Outcome string
	Count   uint64
}

func (s RouteStat) String() string {
	return fmt.Sprintf("%-6s %-34s %-16s %d", s.Method, s.Route, s.Outcome, s.Count)
}

// Snapshot gathers the request counters, sorted by route, method, outcome.
func (m *Metrics) Snapshot() ([]RouteStat, error) {
	families, err := m.registry.Gather()
	if err != nil {
		return nil, fmt.Errorf("gather metrics: %w", err)
	}

	var stats []RouteStat
	for _, mf := range families {
		if mf.GetName() != requestsTotalName {
			continue
		}
		for _, metric := range mf.GetMetric() {
			labels := labelMap(metric.GetLabel())
			stats = append(stats, RouteStat{
				Method:  labels["method"],
				Route:   labels["route"],
				Outcome: labels["outcome"],
				Count:   uint64(metric.GetCounter().GetValue()),
			})
		}
	}

	sort.Slice(stats, func(i, j int) bool {
		a, b := stats[i], stats[j]
		if a.Route != b.Route {
			return a.Route < b.Route
		}
		if a.Method != b.Method {
			return a.Method < b.Method
		}
		return a.Outcome < b.Outcome
	})

	return stats, nil
}

func labelMap(pairs []*dto.LabelPair) map[string]string {
	out := make(map[string]string, len(pairs))
	for _, lp := range pairs {
		out[lp.GetName()] = lp.GetValue()
	}
	return out
}
