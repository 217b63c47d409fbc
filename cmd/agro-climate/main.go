package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/i474232898/agro-climate/internal/advisor"
	httpapi "github.com/i474232898/agro-climate/internal/api/http"
	"github.com/i474232898/agro-climate/internal/climate"
	"github.com/i474232898/agro-climate/internal/climate/providers"
	"github.com/i474232898/agro-climate/internal/config"
	"github.com/i474232898/agro-climate/internal/logging"
	"github.com/i474232898/agro-climate/internal/metrics"
	"github.com/i474232898/agro-climate/internal/scheduler"
	"github.com/i474232898/agro-climate/internal/store"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to load config")
	}

	log := logging.New(cfg.LogLevel, cfg.LogFormat, httpapi.ServiceName)
	m := metrics.New()

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}
	provOpts := []providers.Option{providers.WithMetrics(m), providers.WithLogger(log)}

	resolver := newResolver(cfg, httpClient, provOpts, log)
	fetcher := providers.NewPowerFetcher(httpClient, cfg.NASAPowerURL, provOpts...)
	climateSvc := climate.NewService(resolver, fetcher, climate.WithLogger(log))

	// The advisor reports a configuration error per request when no key is set.
	var generator advisor.Generator
	if cfg.GeminiAPIKey != "" {
		gemini, err := advisor.NewGeminiGenerator(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel, cfg.HTTPTimeout, m)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create gemini client")
		}
		defer gemini.Close()
		generator = gemini
	} else {
		log.Warn().Msg("GEMINI_API_KEY not set; crop and insight routes are disabled")
	}
	advisorSvc := advisor.NewService(climateSvc, generator, log)

	// Provider probe history for /health.
	probes := store.NewMemoryStore(cfg.ProbeHistory, cfg.ProbeMaxAge)
	sched := scheduler.New(scheduler.Config{
		Provider: fetcher.Name(),
		Target:   climate.Coordinates{Latitude: cfg.ProbeLatitude, Longitude: cfg.ProbeLongitude},
		Interval: cfg.ProbeInterval,
		Timeout:  cfg.HTTPTimeout,
	}, climateSvc, probes, m, log)
	if err := sched.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start scheduler")
	}
	defer sched.Stop()

	app := httpapi.New(httpapi.Deps{
		Climate:  climateSvc,
		Advisor:  advisorSvc,
		Probes:   probes,
		Metrics:  m,
		Provider: fetcher.Name(),
		Log:      log,
	}, httpapi.Options{
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	// Start server with graceful shutdown
	go func() {
		log.Info().Str("port", cfg.Port).Msg("starting agro-climate API")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error().Err(err).Msg("fiber server stopped")
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
}

func newResolver(cfg *config.AppConfig, client *http.Client, opts []providers.Option, log zerolog.Logger) climate.Resolver {
	switch cfg.GeocoderProvider {
	case config.GeocoderGoogle:
		if cfg.GoogleGeocodingKey == "" {
			log.Warn().Msg("GOOGLE_GEOCODING_KEY not set; place lookups will fail")
		}
		return providers.NewGoogleResolver(cfg.GoogleGeocodingKey, cfg.HTTPTimeout, opts...)
	default:
		if cfg.LocationIQKey == "" {
			log.Warn().Msg("LOCATIONIQ_KEY not set; place lookups will fail")
		}
		return providers.NewLocationIQResolver(client, cfg.LocationIQKey, cfg.LocationIQURL, opts...)
	}
}
