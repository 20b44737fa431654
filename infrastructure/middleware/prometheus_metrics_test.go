package middleware

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusMetrics_RecordsAgainstRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPrometheusMetrics(reg)

	labels := map[string]string{"criterion": "information", "query_type": "weak"}
	m.RecordLatency("acquisition", 250*time.Millisecond, labels)
	m.RecordCounter("queries_selected", 1, labels)
	m.RecordCounter("queries_selected", 1, labels)
	m.RecordGauge("best_score", 0.42, labels)

	families, err := reg.Gather()
	require.NoError(t, err)

	byName := make(map[string]bool)
	for _, f := range families {
		byName[f.GetName()] = true

		switch f.GetName() {
		case "elicit_events_total":
			require.Len(t, f.GetMetric(), 1)
			assert.Equal(t, 2.0, f.GetMetric()[0].GetCounter().GetValue())
		case "elicit_values":
			require.Len(t, f.GetMetric(), 1)
			assert.Equal(t, 0.42, f.GetMetric()[0].GetGauge().GetValue())
		case "elicit_operation_duration_seconds":
			require.Len(t, f.GetMetric(), 1)
			assert.Equal(t, uint64(1), f.GetMetric()[0].GetHistogram().GetSampleCount())
		}
	}

	assert.True(t, byName["elicit_operation_duration_seconds"])
	assert.True(t, byName["elicit_events_total"])
	assert.True(t, byName["elicit_values"])
}

func TestPrometheusMetrics_SeparatesLabelCombinations(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPrometheusMetrics(reg)

	m.RecordCounter("queries_selected", 1, map[string]string{"criterion": "volume", "query_type": "strict"})
	m.RecordCounter("queries_selected", 3, map[string]string{"criterion": "random", "query_type": "strict"})

	families, err := reg.Gather()
	require.NoError(t, err)

	for _, f := range families {
		if f.GetName() == "elicit_events_total" {
			assert.Len(t, f.GetMetric(), 2)
		}
	}
}
