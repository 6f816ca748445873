package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	promcl "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManager_RegistersOnGivenRegistry(t *testing.T) {
	m, reg := NewTestManagerAndRegistry()
	require.NotNil(t, m)

	m.CounterRateLimitedRequests.Inc()
	m.CounterLogins.WithLabelValues("success").Inc()
	m.CounterLogins.WithLabelValues("failure").Add(2)
	m.CounterTokenReuseDetected.Inc()

	assert.Equal(t, float64(1), testutil.ToFloat64(m.CounterRateLimitedRequests))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.CounterLogins.WithLabelValues("failure")))

	count, err := testutil.GatherAndCount(reg,
		"backend_test_server_rate_limited_requests",
		"backend_test_server_refresh_token_reuse_detected",
	)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// a second manager on its own registry does not collide
	assert.NotPanics(t, func() {
		NewManager("backend", "test_server", prometheus.NewRegistry())
	})
}

func TestSetupPrometheus(t *testing.T) {
	extra := prometheus.NewCounter(prometheus.CounterOpts{Name: "extra_total", Help: "extra"})
	reg := SetupPrometheus(extra, nil)
	extra.Inc()

	families, err := reg.Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["extra_total"])
	assert.True(t, names["go_goroutines"])
}

func TestManager_PurgeDurationHistogram(t *testing.T) {
	m := NewTestManager()
	m.HistPurgeDuration.Observe(0.005)
	m.HistPurgeDuration.Observe(2)

	metric := &promcl.Metric{}
	require.NoError(t, m.HistPurgeDuration.Write(metric))

	hist := metric.GetHistogram()
	require.NotNil(t, hist)
	assert.Equal(t, uint64(2), hist.GetSampleCount())
	assert.InDelta(t, 2.005, hist.GetSampleSum(), 0.0001)
}
