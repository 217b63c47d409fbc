package providers

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/i474232898/agro-climate/internal/climate"
)

// DefaultPowerURL is the NASA POWER temporal API root.
const DefaultPowerURL = "https://power.larc.nasa.gov/api/temporal"

// PowerName identifies the NASA POWER provider in logs and metrics.
const PowerName = "nasa-power"

// PowerFetcher implements climate.Fetcher against the NASA POWER point API.
type PowerFetcher struct {
	upstream
	baseURL string
}

func NewPowerFetcher(client *http.Client, baseURL string, opts ...Option) *PowerFetcher {
	if baseURL == "" {
		baseURL = DefaultPowerURL
	}
	return &PowerFetcher{
		upstream: newUpstream(PowerName, client, opts),
		baseURL:  strings.TrimRight(baseURL, "/"),
	}
}

func (p *PowerFetcher) Name() string {
	return p.name
}

type powerPayload struct {
	Geometry struct {
		// [longitude, latitude, elevation]
		Coordinates []float64 `json:"coordinates"`
	} `json:"geometry"`
	Header struct {
		Start string `json:"start"`
		End   string `json:"end"`
	} `json:"header"`
	Properties struct {
		Parameter map[climate.Variable]climate.Series `json:"parameter"`
	} `json:"properties"`
}

func (p *PowerFetcher) Fetch(ctx context.Context, req climate.FetchRequest) (climate.RawSeries, error) {
	resolution := req.Resolution
	if resolution == "" {
		resolution = climate.Daily
	}

	params := make([]string, len(req.Variables))
	for i, v := range req.Variables {
		params[i] = string(v)
	}
	start, end := req.Window.Compact()

	values := url.Values{}
	values.Set("parameters", strings.Join(params, ","))
	values.Set("community", "AG")
	values.Set("latitude", strconv.FormatFloat(req.Coordinates.Latitude, 'f', -1, 64))
	values.Set("longitude", strconv.FormatFloat(req.Coordinates.Longitude, 'f', -1, 64))
	values.Set("start", start)
	values.Set("end", end)
	values.Set("format", "JSON")

	var payload powerPayload
	endpoint := p.baseURL + "/" + string(resolution) + "/point"
	if err := p.getJSON(ctx, endpoint, values, &payload); err != nil {
		return climate.RawSeries{}, err
	}

	if _, ok := payload.Properties.Parameter[climate.Temperature]; !ok {
		return climate.RawSeries{}, climate.ErrMissingData
	}

	raw := climate.RawSeries{
		Variables:   payload.Properties.Parameter,
		ActualStart: payload.Header.Start,
		ActualEnd:   payload.Header.End,
	}
	coords := payload.Geometry.Coordinates
	if len(coords) > 1 {
		raw.Longitude = &coords[0]
		raw.Latitude = &coords[1]
	}
	if len(coords) > 2 {
		raw.Elevation = &coords[2]
	}
	return raw, nil
}
