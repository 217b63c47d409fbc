package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/i474232898/agro-climate/internal/climate"
)

// DefaultLocationIQURL is the LocationIQ forward geocoding endpoint.
const DefaultLocationIQURL = "https://us1.locationiq.com/v1/search.php"

// LocationIQResolver implements climate.Resolver using LocationIQ search.
type LocationIQResolver struct {
	upstream
	apiKey  string
	baseURL string
}

func NewLocationIQResolver(client *http.Client, apiKey, baseURL string, opts ...Option) *LocationIQResolver {
	if baseURL == "" {
		baseURL = DefaultLocationIQURL
	}
	return &LocationIQResolver{
		upstream: newUpstream("locationiq", client, opts),
		apiKey:   apiKey,
		baseURL:  baseURL,
	}
}

func (r *LocationIQResolver) Name() string {
	return r.name
}

// Resolve returns the best match for place.
func (r *LocationIQResolver) Resolve(ctx context.Context, place string) (climate.Coordinates, error) {
	if r.apiKey == "" {
		return climate.Coordinates{}, fmt.Errorf("%w: LOCATIONIQ_KEY not configured", climate.ErrConfiguration)
	}

	values := url.Values{}
	values.Set("key", r.apiKey)
	values.Set("q", place)
	values.Set("format", "json")
	values.Set("limit", "1")

	// LocationIQ encodes coordinates as strings.
	var results []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}

	if err := r.getJSON(ctx, r.baseURL, values, &results); err != nil {
		// An unknown place is reported as 404 "Unable to geocode".
		var se *statusError
		if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
			return climate.Coordinates{}, climate.ErrPlaceNotFound
		}
		return climate.Coordinates{}, err
	}
	if len(results) == 0 {
		return climate.Coordinates{}, climate.ErrPlaceNotFound
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return climate.Coordinates{}, fmt.Errorf("%w: locationiq: invalid latitude %q", climate.ErrUpstream, results[0].Lat)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return climate.Coordinates{}, fmt.Errorf("%w: locationiq: invalid longitude %q", climate.ErrUpstream, results[0].Lon)
	}

	return climate.Coordinates{Latitude: lat, Longitude: lon}, nil
}
