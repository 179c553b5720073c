package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	r := New()
	r.BundlesDiscovered.Set(3)
	r.PlanSteps.WithLabelValues("copy").Set(3)
	r.BundleErrors.WithLabelValues("inconsistency").Inc()
	r.BundleErrors.WithLabelValues("inconsistency").Inc()
	r.ObservePhase("plan", time.Now())

	assert.Equal(t, 3.0, promtest.ToFloat64(r.BundlesDiscovered))
	assert.Equal(t, 2.0, promtest.ToFloat64(r.BundleErrors.WithLabelValues("inconsistency")))
	assert.Equal(t, 1, promtest.CollectAndCount(r.PhaseDuration))
}

func TestRecordersAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.PlanVersion.Set(5)
	assert.Equal(t, 0.0, promtest.ToFloat64(b.PlanVersion))
}

func TestWriteTextfile(t *testing.T) {
	r := New()
	r.PlanVersion.Set(7)
	path := filepath.Join(t.TempDir(), "assetgrid.prom")

	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "assetgrid_plan_version 7")

	assert.Error(t, r.WriteTextfile(filepath.Join(t.TempDir(), "missing", "dir", "x.prom")))
}
