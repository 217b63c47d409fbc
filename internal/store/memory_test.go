package store

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

func probeAt(provider string, minutes int) ProbeResult {
	return ProbeResult{Provider: provider, CheckedAt: base.Add(time.Duration(minutes) * time.Minute), Healthy: true}
}

func TestMemoryStore_LatestAndHistory(t *testing.T) {
	s := NewMemoryStore(0, 0)

	_, err := s.Latest("nasa-power")
	assert.ErrorIs(t, err, ErrNotFound)

	s.Save(probeAt("nasa-power", 0))
	s.Save(ProbeResult{Provider: "nasa-power", CheckedAt: base.Add(15 * time.Minute), Error: "timeout"})
	s.Save(probeAt("other", 5))

	latest, err := s.Latest("nasa-power")
	require.NoError(t, err)
	assert.False(t, latest.Healthy)
	assert.Equal(t, "timeout", latest.Error)

	history, err := s.History("nasa-power")
	require.NoError(t, err)
	assert.Len(t, history, 2)

	history[0].Provider = "mutated"
	again, _ := s.History("nasa-power")
	assert.Equal(t, "nasa-power", again[0].Provider)
}

func TestMemoryStore_MaxHistory(t *testing.T) {
	s := NewMemoryStore(3, 0)
	for i := range 5 {
		s.Save(probeAt("p", i))
	}

	history, err := s.History("p")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, base.Add(2*time.Minute), history[0].CheckedAt)
}

func TestMemoryStore_MaxAge(t *testing.T) {
	s := NewMemoryStore(0, time.Hour)
	s.now = func() time.Time { return base.Add(2 * time.Hour) }

	s.Save(probeAt("p", 0))
	_, err := s.Latest("p")
	assert.ErrorIs(t, err, ErrNotFound, "expired on arrival")

	s.Save(probeAt("p", 90))
	s.Save(probeAt("p", 110))
	history, err := s.History("p")
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestMemoryStore_Concurrent(t *testing.T) {
	s := NewMemoryStore(10, 0)
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Save(probeAt("p", i))
			_, _ = s.Latest("p")
		}()
	}
	wg.Wait()

	history, err := s.History("p")
	require.NoError(t, err)
	assert.Len(t, history, 10)
}
