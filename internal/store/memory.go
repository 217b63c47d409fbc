package store

import (
	"errors"
	"slices"
	"sync"
	"time"
)

var (
	// ErrNotFound is returned when no probe has been recorded for a provider.
	ErrNotFound = errors.New("no probe results for provider")
)

// ProbeResult is the outcome of one scheduled provider health check.
type ProbeResult struct {
	Provider  string        `json:"provider"`
	CheckedAt time.Time     `json:"checked_at"`
	Healthy   bool          `json:"healthy"`
	Latency   time.Duration `json:"latency_ns"`
	Error     string        `json:"error,omitempty"`
}

// MemoryStore keeps a bounded, time-ordered probe history per provider.
// It is safe for concurrent use.
type MemoryStore struct {
	mu sync.RWMutex

	// key: provider name
	data map[string][]ProbeResult

	maxHistory int           // max results per provider
	maxAge     time.Duration // max age of a result
	now        func() time.Time
}

// NewMemoryStore creates a MemoryStore. Non-positive limits are unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string][]ProbeResult),
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// Save appends a result and enforces retention.
func (s *MemoryStore) Save(r ProbeResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := append(s.data[r.Provider], r)

	if s.maxHistory > 0 && len(history) > s.maxHistory {
		history = history[len(history)-s.maxHistory:]
	}

	if s.maxAge > 0 {
		cutoff := s.now().Add(-s.maxAge)
		i := 0
		for i < len(history) && history[i].CheckedAt.Before(cutoff) {
			i++
		}
		history = history[i:]
	}

	s.data[r.Provider] = history
}

// Latest returns the most recent result for provider.
func (s *MemoryStore) Latest(provider string) (ProbeResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.data[provider]
	if len(history) == 0 {
		return ProbeResult{}, ErrNotFound
	}
	return history[len(history)-1], nil
}

// History returns a copy of provider's results, oldest first.
func (s *MemoryStore) History(provider string) ([]ProbeResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.data[provider]
	if len(history) == 0 {
		return nil, ErrNotFound
	}
	return slices.Clone(history), nil
}
