package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveRequest_CountsByOutcome(t *testing.T) {
	m := New()

	m.ObserveRequest("GET", "/summaries/{userId}", OutcomeOK, 20*time.Millisecond)
	m.ObserveRequest("GET", "/summaries/{userId}", OutcomeOK, 30*time.Millisecond)
	m.ObserveRequest("GET", "/summaries/{userId}", OutcomeNetworkError, 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/summaries/{userId}", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/summaries/{userId}", OutcomeNetworkError)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.RequestDuration))
}

func TestSnapshot_SortedRows(t *testing.T) {
	m := New()

	m.ObserveRequest("POST", "/user/verify", OutcomeAPIError, time.Millisecond)
	m.ObserveRequest("DELETE", "/summary/{id}", OutcomeOK, time.Millisecond)
	m.ObserveRequest("GET", "/summary/{id}", OutcomeOK, time.Millisecond)
	m.ObserveRequest("GET", "/summary/{id}", OutcomeOK, time.Millisecond)

	stats, err := m.Snapshot()
	require.NoError(t, err)

	want := []RouteStat{
		{Method: "DELETE", Route: "/summary/{id}", Outcome: OutcomeOK, Count: 1},
		{Method: "GET", Route: "/summary/{id}", Outcome: OutcomeOK, Count: 2},
		{Method: "POST", Route: "/user/verify", Outcome: OutcomeAPIError, Count: 1},
	}
	assert.Equal(t, want, stats)
}

func TestSnapshot_Empty(t *testing.T) {
	stats, err := New().Snapshot()
	require.NoError(t, err)
	assert.Empty(t, stats)
}

func TestInFlightGauge(t *testing.T) {
	m := New()
	m.RequestStarted()
	m.RequestStarted()
	m.RequestFinished()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.InFlight))
}

func TestRouteStat_String(t *testing.T) {
	s := RouteStat{Method: "GET", Route: "/x", Outcome: OutcomeOK, Count: 3}
	assert.Contains(t, s.String(), "GET")
	assert.Contains(t, s.String(), "/x")
	assert.Contains(t, s.String(), "3")
}
