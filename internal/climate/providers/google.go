package providers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/agro-climate/internal/climate"
	"github.com/i474232898/agro-climate/internal/common"
)

// GoogleResolver implements climate.Resolver with the Google Geocoding API.
//
// The geocoder library keeps its key in a package variable, so a process
// should construct at most one GoogleResolver.
type GoogleResolver struct {
	upstream
	apiKey  string
	timeout time.Duration
	geocode func(geocoder.Address) (geocoder.Location, error)
}

// NewGoogleResolver creates a resolver whose lookups give up after timeout.
// The geocoder library uses its own client without a timeout, so the bound
// is enforced here.
func NewGoogleResolver(apiKey string, timeout time.Duration, opts ...Option) *GoogleResolver {
	if apiKey != "" {
		geocoder.ApiKey = apiKey
	}
	return &GoogleResolver{
		upstream: newUpstream("google-geocoding", nil, opts),
		apiKey:   apiKey,
		timeout:  timeout,
		geocode:  geocoder.Geocoding,
	}
}

func (r *GoogleResolver) Name() string {
	return r.name
}

// Resolve returns the best match for place. The geocoder library does not
// take a context, so cancellation abandons the call without stopping it.
func (r *GoogleResolver) Resolve(ctx context.Context, place string) (climate.Coordinates, error) {
	if r.apiKey == "" {
		return climate.Coordinates{}, fmt.Errorf("%w: GOOGLE_GEOCODING_KEY not configured", climate.ErrConfiguration)
	}
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	type result struct {
		loc geocoder.Location
		err error
	}

	var coords climate.Coordinates
	err := r.call(func() error {
		done := make(chan result, 1)
		go func() {
			loc, err := r.geocode(geocoder.Address{City: place})
			done <- result{loc: loc, err: err}
		}()

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %s: %w", climate.ErrUpstream, r.name, ctx.Err())
		case res := <-done:
			if res.err != nil {
				if isZeroResults(res.err) {
					return climate.ErrPlaceNotFound
				}
				return fmt.Errorf("%w: %s: %w", climate.ErrUpstream, r.name, res.err)
			}
			coords = climate.Coordinates{Latitude: res.loc.Latitude, Longitude: res.loc.Longitude}
			return nil
		}
	})
	if err != nil {
		return climate.Coordinates{}, err
	}
	return coords, nil
}

func isZeroResults(err error) bool {
	return common.HasAny(strings.ToLower(err.Error()), "no results", "zero_results")
}
