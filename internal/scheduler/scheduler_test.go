package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/agro-climate/internal/climate"
	"github.com/i474232898/agro-climate/internal/metrics"
	"github.com/i474232898/agro-climate/internal/store"
)

type fakeChecker struct {
	err    error
	calls  atomic.Int32
	target atomic.Value
}

func (f *fakeChecker) CheckProvider(_ context.Context, coords climate.Coordinates) error {
	f.calls.Add(1)
	f.target.Store(coords)
	return f.err
}

func providerUp(t *testing.T, m *metrics.Metrics, provider string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "agroclimate_provider_up" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "provider" && label.GetValue() == provider {
					return metric.GetGauge().GetValue()
				}
			}
		}
	}
	t.Fatalf("provider_up{provider=%q} not found", provider)
	return 0
}

func TestProbe_RecordsResult(t *testing.T) {
	checker := &fakeChecker{}
	st := store.NewMemoryStore(0, 0)
	m := metrics.New()
	target := climate.Coordinates{Latitude: 23.81, Longitude: 90.41}
	s := New(Config{Provider: "nasa-power", Target: target}, checker, st, m, zerolog.Nop())

	result := s.probe(context.Background())
	assert.True(t, result.Healthy)
	assert.Equal(t, target, checker.target.Load())

	latest, err := st.Latest("nasa-power")
	require.NoError(t, err)
	assert.Equal(t, result, latest)
	assert.Equal(t, 1.0, providerUp(t, m, "nasa-power"))

	checker.err = errors.New("upstream provider error: nasa-power: status 503")
	result = s.probe(context.Background())
	assert.False(t, result.Healthy)
	assert.Contains(t, result.Error, "503")
	assert.Equal(t, 0.0, providerUp(t, m, "nasa-power"))

	history, err := st.History("nasa-power")
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestStart_DisabledWithZeroInterval(t *testing.T) {
	checker := &fakeChecker{}
	s := New(Config{Provider: "p"}, checker, store.NewMemoryStore(0, 0), nil, zerolog.Nop())

	require.NoError(t, s.Start())
	defer s.Stop()

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, checker.calls.Load())
}

func TestStart_RunsImmediately(t *testing.T) {
	checker := &fakeChecker{}
	st := store.NewMemoryStore(0, 0)
	s := New(Config{Provider: "p", Interval: time.Hour, Timeout: time.Second}, checker, st, nil, zerolog.Nop())

	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool {
		_, err := st.Latest("p")
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(1), checker.calls.Load())
}
