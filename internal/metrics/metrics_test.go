package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveRefresh("success")
	m.ObserveRefresh("success")
	m.ObserveRefresh("failed")
	m.ObserveLogin("state_mismatch")
	m.IncrementLogout()
	m.ObserveBackend("GET", "2xx", time.Now())

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RefreshesTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RefreshesTotal.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LoginsTotal.WithLabelValues("state_mismatch")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LogoutsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BackendRequests.WithLabelValues("GET", "2xx")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveRefresh("success")
		m.ObserveLogin("success")
		m.IncrementLogout()
		m.ObserveBackend("GET", "2xx", time.Now())
		m.ObserveHTTP("GET", "/", "200", time.Now())
	})
}
