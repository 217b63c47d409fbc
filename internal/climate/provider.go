package climate

import (
	"context"
)

// Resolver turns a free-text place name into coordinates.
type Resolver interface {
	Resolve(ctx context.Context, place string) (Coordinates, error)
}

// FetchRequest describes one point query against the climate provider.
type FetchRequest struct {
	Coordinates Coordinates
	Window      DateWindow
	Variables   []Variable
	Resolution  Resolution
}

// RawSeries is the uncleansed provider response.
type RawSeries struct {
	Variables map[Variable]Series

	// Geometry as reported by the provider; nil when absent.
	Latitude  *float64
	Longitude *float64
	Elevation *float64

	// ActualStart and ActualEnd are the range the provider serviced, in its
	// native format. They may differ from the requested window.
	ActualStart string
	ActualEnd   string
}

// Series returns the series for v and whether the provider returned it.
func (r RawSeries) Series(v Variable) (Series, bool) {
	s, ok := r.Variables[v]
	return s, ok
}

// Fetcher retrieves raw observations from the climate provider.
type Fetcher interface {
	Fetch(ctx context.Context, req FetchRequest) (RawSeries, error)
}
