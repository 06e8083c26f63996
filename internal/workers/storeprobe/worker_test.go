package storeprobe

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"savewise/internal/metrics"
	"savewise/pkg/errors"
	"savewise/pkg/logger"
)

type fakeStore struct {
	name string
	err  error
}

func (f *fakeStore) Name() string { return f.name }

func (f *fakeStore) Ping(ctx context.Context) error { return f.err }

func gauge(t *testing.T, backend string) float64 {
	t.Helper()
	var m dto.Metric
	var g prometheus.Gauge = metrics.RemoteStoreUp.WithLabelValues(backend)
	require.NoError(t, g.Write(&m))
	return m.GetGauge().GetValue()
}

func TestRunReportsAvailability(t *testing.T) {
	store := &fakeStore{name: "probe_test_store"}
	w := New(store, time.Minute, time.Second, true, logger.NewNop())

	require.NoError(t, w.Run(context.Background()))
	assert.Equal(t, 1.0, gauge(t, "probe_test_store"))

	store.err = errors.ErrUnavailable
	err := w.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnavailable))
	assert.Equal(t, 0.0, gauge(t, "probe_test_store"))

	store.err = nil
	require.NoError(t, w.Run(context.Background()))
	assert.Equal(t, 1.0, gauge(t, "probe_test_store"))
}

func TestDefaults(t *testing.T) {
	w := New(&fakeStore{name: "x"}, 30*time.Second, 0, false, logger.NewNop())
	assert.Equal(t, "store_probe", w.Name())
	assert.Equal(t, 30*time.Second, w.Interval())
	assert.Equal(t, 5*time.Second, w.timeout)
	assert.False(t, w.Enabled())
}
