package climate

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is returned for missing or malformed caller input.
	ErrValidation = errors.New("validation failed")

	// ErrConfiguration is returned when a required credential is absent.
	ErrConfiguration = errors.New("configuration error")

	// ErrNotFound is returned when a place cannot be resolved.
	ErrNotFound = errors.New("not found")

	// ErrPlaceNotFound is returned by resolvers when the geocoder has no match.
	ErrPlaceNotFound = fmt.Errorf("%w: place not found", ErrNotFound)

	// ErrMissingData is returned when the provider has no temperature
	// series for the location and period.
	ErrMissingData = fmt.Errorf("%w: no weather data found for this location and date range", ErrNotFound)

	// ErrUpstream is returned on network, timeout or non-2xx failures of
	// an external collaborator.
	ErrUpstream = errors.New("upstream error")

	// ErrUnparsableAIResponse is returned when generative model output is
	// not the expected JSON document.
	ErrUnparsableAIResponse = errors.New("unparsable ai response")
)
