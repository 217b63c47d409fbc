package climate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var (
	hourlyVariables  = []Variable{Temperature, Precipitation, SolarRadiation}
	dailyVariables   = []Variable{Temperature, Precipitation, Humidity, SolarRadiation}
	monthlyVariables = []Variable{
		Temperature, TemperatureMax, TemperatureMin, Precipitation,
		SolarRadiation, WindSpeed, Humidity,
	}
)

// Service runs the resolve, fetch, cleanse, aggregate and assemble chain.
// It holds no per-request state and is safe for concurrent use.
type Service struct {
	resolver Resolver
	fetcher  Fetcher
	now      func() time.Time
	log      zerolog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source used for relative windows.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the service logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Service) { s.log = log }
}

// NewService creates a new Service.
func NewService(resolver Resolver, fetcher Fetcher, opts ...Option) *Service {
	s := &Service{
		resolver: resolver,
		fetcher:  fetcher,
		now:      time.Now,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the service clock's current time.
func (s *Service) Now() time.Time {
	return s.now()
}

// HourlySnapshot fetches hourly data for coords and rolls it up into the
// snapshot envelope.
func (s *Service) HourlySnapshot(ctx context.Context, coords Coordinates, window DateWindow) (ClimateSnapshot, error) {
	req := FetchRequest{
		Coordinates: coords,
		Window:      window,
		Variables:   hourlyVariables,
		Resolution:  Hourly,
	}
	raw, err := s.fetch(ctx, req)
	if err != nil {
		return ClimateSnapshot{}, err
	}

	obs := Cleanse(raw, Native)
	rollup := HourlyRollup(obs)
	s.log.Debug().
		Int("timestamps", len(obs)).
		Int("retained", len(rollup.Points)).
		Msg("hourly rollup computed")

	return NewClimateSnapshot(req, raw, rollup), nil
}

// PastWeather returns a per-day breakdown for the days ending yesterday.
// days is clamped to [MinTrailingDays, MaxTrailingDays].
func (s *Service) PastWeather(ctx context.Context, place string, days int) (Breakdown, error) {
	coords, err := s.resolve(ctx, place)
	if err != nil {
		return Breakdown{}, err
	}

	raw, err := s.fetch(ctx, FetchRequest{
		Coordinates: coords,
		Window:      TrailingDays(s.now(), days),
		Variables:   dailyVariables,
		Resolution:  Daily,
	})
	if err != nil {
		return Breakdown{}, err
	}

	return NewBreakdown(coords, raw, DailyBreakdown(Cleanse(raw, Rounded))), nil
}

// CropClimate summarises the previous calendar month at place.
func (s *Service) CropClimate(ctx context.Context, place string) (CropClimate, error) {
	coords, err := s.resolve(ctx, place)
	if err != nil {
		return CropClimate{}, err
	}

	window := PreviousMonth(s.now())
	raw, err := s.fetch(ctx, FetchRequest{
		Coordinates: coords,
		Window:      window,
		Variables:   monthlyVariables,
		Resolution:  Daily,
	})
	if err != nil {
		return CropClimate{}, err
	}

	return NewCropClimate(window, SummarizePeriod(Cleanse(raw, Native))), nil
}

// CheckProvider performs a one-day temperature query ending yesterday to
// verify the climate provider is serving data.
func (s *Service) CheckProvider(ctx context.Context, coords Coordinates) error {
	_, err := s.fetch(ctx, FetchRequest{
		Coordinates: coords,
		Window:      TrailingDays(s.now(), 1),
		Variables:   []Variable{Temperature},
		Resolution:  Daily,
	})
	return err
}

func (s *Service) resolve(ctx context.Context, place string) (Coordinates, error) {
	place = strings.TrimSpace(place)
	if place == "" {
		return Coordinates{}, fmt.Errorf("%w: place is required", ErrValidation)
	}

	coords, err := s.resolver.Resolve(ctx, place)
	if err != nil {
		s.log.Warn().Err(err).Str("place", place).Msg("coordinate resolution failed")
		return Coordinates{}, fmt.Errorf("resolve %q: %w", place, err)
	}
	return coords, nil
}

func (s *Service) fetch(ctx context.Context, req FetchRequest) (RawSeries, error) {
	start, end := req.Window.Compact()
	s.log.Debug().
		Float64("lat", req.Coordinates.Latitude).
		Float64("lon", req.Coordinates.Longitude).
		Str("start", start).
		Str("end", end).
		Str("resolution", string(req.Resolution)).
		Msg("fetching climate series")

	raw, err := s.fetcher.Fetch(ctx, req)
	if err != nil {
		s.log.Warn().Err(err).Str("start", start).Str("end", end).Msg("climate fetch failed")
		return RawSeries{}, fmt.Errorf("fetch %s: %w", req.Window, err)
	}
	if _, ok := raw.Series(Temperature); !ok {
		return RawSeries{}, ErrMissingData
	}
	return raw, nil
}
