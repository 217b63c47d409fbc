package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"

	"github.com/i474232898/agro-climate/internal/climate"
	"github.com/i474232898/agro-climate/internal/metrics"
	"github.com/i474232898/agro-climate/internal/store"
)

// Checker performs a cheap request against the climate provider.
type Checker interface {
	CheckProvider(ctx context.Context, coords climate.Coordinates) error
}

type Config struct {
	// Provider labels the results and the provider_up gauge.
	Provider string
	Target   climate.Coordinates
	// Interval between probes. Zero disables probing.
	Interval time.Duration
	// Timeout bounds a single probe.
	Timeout time.Duration
}

// Scheduler periodically probes the climate provider. Results are kept for
// the health endpoint and are never served as climate data.
type Scheduler struct {
	scheduler *gocron.Scheduler
	checker   Checker
	store     *store.MemoryStore
	metrics   *metrics.Metrics
	log       zerolog.Logger
	cfg       Config
	now       func() time.Time
}

// New creates a new Scheduler.
func New(cfg Config, checker Checker, st *store.MemoryStore, m *metrics.Metrics, log zerolog.Logger) *Scheduler {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		checker:   checker,
		store:     st,
		metrics:   m,
		log:       log.With().Str("component", "scheduler").Logger(),
		cfg:       cfg,
		now:       time.Now,
	}
}

// Start schedules the probe job and starts the underlying scheduler. The
// first probe runs immediately.
func (s *Scheduler) Start() error {
	if s.cfg.Interval <= 0 {
		s.log.Info().Msg("provider probe disabled")
		return nil
	}

	_, err := s.scheduler.Every(s.cfg.Interval).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Timeout)
		defer cancel()
		s.probe(ctx)
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.log.Info().Dur("interval", s.cfg.Interval).Str("provider", s.cfg.Provider).Msg("provider probe scheduled")
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

func (s *Scheduler) probe(ctx context.Context) store.ProbeResult {
	start := s.now()
	err := s.checker.CheckProvider(ctx, s.cfg.Target)

	result := store.ProbeResult{
		Provider:  s.cfg.Provider,
		CheckedAt: start.UTC(),
		Healthy:   err == nil,
		Latency:   s.now().Sub(start),
	}
	if err != nil {
		result.Error = err.Error()
		s.log.Warn().Err(err).Str("provider", s.cfg.Provider).Msg("provider probe failed")
	} else {
		s.log.Debug().Str("provider", s.cfg.Provider).Dur("latency", result.Latency).Msg("provider probe ok")
	}

	s.store.Save(result)
	s.metrics.SetProviderUp(s.cfg.Provider, result.Healthy)
	return result
}
