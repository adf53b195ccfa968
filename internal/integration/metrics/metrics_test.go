package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	m, err := NewPrometheusMetrics(registry)
	require.NoError(t, err)

	m.ObserveRun(150*time.Millisecond, 3)
	m.AddGenerated(5)
	m.AddGenerated(0)
	m.IncDefinitionFailure("conflict")
	m.IncGroupMutation("update", "remaining")
	m.IncGroupMutation("update", "remaining")

	pm := m.(*prometheusMetrics)
	assert.Equal(t, float64(3), testutil.ToFloat64(pm.runDefinitions))
	assert.Equal(t, float64(5), testutil.ToFloat64(pm.generated))
	assert.Equal(t, float64(1), testutil.ToFloat64(pm.definitionFailures.WithLabelValues("conflict")))
	assert.Equal(t, float64(2), testutil.ToFloat64(pm.groupMutations.WithLabelValues("update", "remaining")))

	_, err = NewPrometheusMetrics(registry)
	assert.Error(t, err, "registering twice must fail")
}
