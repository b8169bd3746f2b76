package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"batch-release/internal/version"
)

func TestRegisterBuildInfo(t *testing.T) {
	info := version.Info{Version: "1.4.0", GitCommit: "abc123", BuildTime: "2026-01-01"}

	require.NoError(t, RegisterBuildInfo(info))
	require.NoError(t, RegisterBuildInfo(info), "second registration is tolerated")

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	var found bool
	for _, mf := range families {
		if mf.GetName() != Namespace+"_build_info" {
			continue
		}
		found = true
		labels := map[string]string{}
		for _, lp := range mf.GetMetric()[0].GetLabel() {
			labels[lp.GetName()] = lp.GetValue()
		}
		assert.Equal(t, "1.4.0", labels["version"])
		assert.Equal(t, "abc123", labels["revision"])
	}
	assert.True(t, found)
}
