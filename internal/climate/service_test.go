package climate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver struct {
	coords Coordinates
	err    error
	calls  []string
}

func (f *fakeResolver) Resolve(_ context.Context, place string) (Coordinates, error) {
	f.calls = append(f.calls, place)
	return f.coords, f.err
}

type fakeFetcher struct {
	raw   RawSeries
	err   error
	calls []FetchRequest
}

func (f *fakeFetcher) Fetch(_ context.Context, req FetchRequest) (RawSeries, error) {
	f.calls = append(f.calls, req)
	return f.raw, f.err
}

var fixedNow = time.Date(2024, time.January, 4, 10, 0, 0, 0, time.UTC)

func newTestService(r Resolver, f Fetcher) *Service {
	return NewService(r, f, WithClock(func() time.Time { return fixedNow }))
}

func TestPastWeather(t *testing.T) {
	resolver := &fakeResolver{coords: Coordinates{Latitude: 23.81, Longitude: 90.41}}
	raw := dailyRaw()
	raw.Elevation = ptr(8.9)
	fetcher := &fakeFetcher{raw: raw}

	b, err := newTestService(resolver, fetcher).PastWeather(context.Background(), " Dhaka ", 3)
	require.NoError(t, err)

	assert.Equal(t, []string{"Dhaka"}, resolver.calls)
	require.Len(t, fetcher.calls, 1)
	req := fetcher.calls[0]
	assert.Equal(t, Daily, req.Resolution)
	assert.Equal(t, "20240101 to 20240103", req.Window.String())
	assert.Equal(t, resolver.coords, req.Coordinates)
	assert.ElementsMatch(t, []Variable{Temperature, Precipitation, Humidity, SolarRadiation}, req.Variables)

	assert.Equal(t, 23.81, b.Location.Lat)
	assert.Equal(t, 8.9, *b.Location.ElevationM)
	require.Len(t, b.Days, 3)
	assert.Equal(t, "2024-01-01", b.Days[0].Date)
}

func TestPastWeather_ClampsDays(t *testing.T) {
	fetcher := &fakeFetcher{raw: dailyRaw()}
	svc := newTestService(&fakeResolver{}, fetcher)

	_, err := svc.PastWeather(context.Background(), "Dhaka", 90)
	require.NoError(t, err)
	_, err = svc.PastWeather(context.Background(), "Dhaka", 0)
	require.NoError(t, err)

	require.Len(t, fetcher.calls, 2)
	assert.Equal(t, MaxTrailingDays, fetcher.calls[0].Window.Days())
	assert.Equal(t, MinTrailingDays, fetcher.calls[1].Window.Days())
}

func TestPastWeather_PlaceNotFoundSkipsFetch(t *testing.T) {
	resolver := &fakeResolver{err: ErrPlaceNotFound}
	fetcher := &fakeFetcher{}

	_, err := newTestService(resolver, fetcher).PastWeather(context.Background(), "Atlantis", 14)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPlaceNotFound)
	assert.Empty(t, fetcher.calls, "climate provider must not be called")
}

func TestPastWeather_MissingTemperature(t *testing.T) {
	fetcher := &fakeFetcher{raw: RawSeries{Variables: map[Variable]Series{
		Precipitation: newSeries([]string{"20240101"}, []float64{1}),
	}}}

	_, err := newTestService(&fakeResolver{}, fetcher).PastWeather(context.Background(), "Dhaka", 14)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingData)
}

func TestPastWeather_EmptyPlace(t *testing.T) {
	resolver := &fakeResolver{}
	_, err := newTestService(resolver, &fakeFetcher{}).PastWeather(context.Background(), "  ", 14)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, resolver.calls)
}

func TestPastWeather_UpstreamErrorPropagates(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.Join(ErrUpstream, errors.New("connection reset"))}

	_, err := newTestService(&fakeResolver{}, fetcher).PastWeather(context.Background(), "Dhaka", 14)
	assert.ErrorIs(t, err, ErrUpstream)
	assert.Len(t, fetcher.calls, 1, "no retries")
}

func TestCropClimate(t *testing.T) {
	fetcher := &fakeFetcher{raw: dailyRaw()}

	c, err := newTestService(&fakeResolver{}, fetcher).CropClimate(context.Background(), "Dhaka")
	require.NoError(t, err)

	require.Len(t, fetcher.calls, 1)
	assert.Equal(t, "20231201 to 20231231", fetcher.calls[0].Window.String())
	assert.Len(t, fetcher.calls[0].Variables, 7)

	assert.Equal(t, 22.0, *c.TemperatureAvg)
	assert.Equal(t, PrecipitationModerate, *c.PrecipitationLevel)
}

func TestHourlySnapshot(t *testing.T) {
	fetcher := &fakeFetcher{raw: hourlyRaw()}
	window, err := ExplicitWindow("", "")
	require.NoError(t, err)

	snap, err := newTestService(nil, fetcher).HourlySnapshot(context.Background(), Coordinates{Latitude: 1, Longitude: 2}, window)
	require.NoError(t, err)

	require.Len(t, fetcher.calls, 1)
	assert.Equal(t, Hourly, fetcher.calls[0].Resolution)
	assert.Equal(t, "20230101 to 20230103", snap.Period.Requested)
	assert.Equal(t, 1.75, snap.Summary.Rainfall.Total)
	assert.Equal(t, 14.5, *snap.Summary.Temperature.DailyAverage)
}

func TestCheckProvider(t *testing.T) {
	fetcher := &fakeFetcher{raw: dailyRaw()}
	svc := newTestService(nil, fetcher)

	require.NoError(t, svc.CheckProvider(context.Background(), Coordinates{}))
	require.Len(t, fetcher.calls, 1)
	assert.Equal(t, "20240103 to 20240103", fetcher.calls[0].Window.String())

	fetcher.err = ErrUpstream
	assert.ErrorIs(t, svc.CheckProvider(context.Background(), Coordinates{}), ErrUpstream)
}
