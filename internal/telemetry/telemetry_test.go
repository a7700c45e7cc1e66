package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestConfig_Sampler(t *testing.T) {
	tests := []struct {
		name     string
		ratio    float64
		contains string
	}{
		{name: "always", ratio: 1, contains: "AlwaysOnSampler"},
		{name: "never", ratio: 0, contains: "AlwaysOffSampler"},
		{name: "ratio", ratio: 0.25, contains: "TraceIDRatioBased{0.25}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc := Config{SampleRatio: tt.ratio}.Sampler().Description()
			require.Contains(t, desc, tt.contains)
		})
	}
}

func TestConfig_MetricInterval(t *testing.T) {
	require.Equal(t, 10*time.Second, Config{}.metricInterval())
	require.Equal(t, time.Minute, Config{MetricInterval: time.Minute}.metricInterval())
}

func TestGetMetrics(t *testing.T) {
	m := GetMetrics()
	require.NotNil(t, m.PageRendersTotal)
	require.NotNil(t, m.JournalGeneratedTotal)
	require.Same(t, m, GetMetrics())
}
