package advisor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/agro-climate/internal/climate"
)

type fakeGenerator struct {
	text    string
	err     error
	prompts []string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.text, f.err
}

type fakeClimate struct {
	crop      climate.CropClimate
	breakdown climate.Breakdown
	err       error
	days      []int
}

func (f *fakeClimate) CropClimate(context.Context, string) (climate.CropClimate, error) {
	return f.crop, f.err
}

func (f *fakeClimate) PastWeather(_ context.Context, _ string, days int) (climate.Breakdown, error) {
	f.days = append(f.days, days)
	return f.breakdown, f.err
}

func (f *fakeClimate) Now() time.Time {
	return time.Date(2024, time.May, 2, 12, 0, 0, 0, time.UTC)
}

func float(v float64) *float64 { return &v }

func sampleCropClimate() climate.CropClimate {
	level := climate.PrecipitationModerate
	return climate.CropClimate{
		Period:             "2024-04-01 to 2024-04-30",
		TemperatureAvg:     float(28.456),
		TemperatureMax:     float(33),
		TemperatureMin:     float(24),
		Precipitation:      float(4),
		PrecipitationLevel: &level,
	}
}

func TestPredictCrops(t *testing.T) {
	gen := &fakeGenerator{text: "```json\n" + `[
		{"name": "Jute", "suitability": 88, "reason": "Warm and humid", "ideal_season": "Kharif"},
		{"name": "Rice", "suitability": 84, "reason": "Ample rain"}
	]` + "\n```"}
	svc := NewService(&fakeClimate{crop: sampleCropClimate()}, gen, zerolog.Nop())

	report, err := svc.PredictCrops(context.Background(), "Dhaka")
	require.NoError(t, err)

	assert.Equal(t, "Dhaka", report.Place)
	assert.Equal(t, "2024-05-02", report.Date)
	require.Len(t, report.Crops, 2)
	assert.Equal(t, "Jute", report.Crops[0].Name)
	assert.Equal(t, 88.0, report.Crops[0].Suitability)

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "Climate data for Dhaka (2024-04-01 to 2024-04-30)")
	assert.Contains(t, gen.prompts[0], "Average Temperature: 28.46 °C")
	assert.Contains(t, gen.prompts[0], "Precipitation: 4.00 mm (Moderate)")
	assert.Contains(t, gen.prompts[0], "Wind Speed: unavailable m/s")
}

func TestPredictCrops_FallbackOnUnparsableOutput(t *testing.T) {
	for _, text := range []string{
		"Sure! Here are some crops: rice, wheat.",
		"[]",
		`[{"name": "", "suitability": 50}]`,
		`[{"name": "Rice", "suitability": 180}]`,
		`{"name": "Rice"}`,
	} {
		svc := NewService(&fakeClimate{crop: sampleCropClimate()}, &fakeGenerator{text: text}, zerolog.Nop())

		report, err := svc.PredictCrops(context.Background(), "Dhaka")
		require.NoError(t, err, text)
		assert.Equal(t, FallbackCrops, report.Crops, text)
	}
}

func TestPredictCrops_Errors(t *testing.T) {
	svc := NewService(&fakeClimate{}, nil, zerolog.Nop())
	_, err := svc.PredictCrops(context.Background(), "Dhaka")
	assert.ErrorIs(t, err, climate.ErrConfiguration)

	svc = NewService(&fakeClimate{err: climate.ErrPlaceNotFound}, &fakeGenerator{}, zerolog.Nop())
	_, err = svc.PredictCrops(context.Background(), "Atlantis")
	assert.ErrorIs(t, err, climate.ErrNotFound)

	gen := &fakeGenerator{err: errors.Join(climate.ErrUpstream, errors.New("quota"))}
	svc = NewService(&fakeClimate{crop: sampleCropClimate()}, gen, zerolog.Nop())
	_, err = svc.PredictCrops(context.Background(), "Dhaka")
	assert.ErrorIs(t, err, climate.ErrUpstream)
}

const insightJSON = `{
  "location": {"lat": 23.81, "long": 90.41, "elevation_m": 8.9},
  "factor_summary": {
    "task": "analyzed climate data for the past 14 days and used historical data for precise prediction",
    "temperature": "Stable 24-28°C.",
    "rainfall": "Low rainfall.",
    "humidity": "High humidity.",
    "solar_radiation": "Strong sunlight."
  },
  "bloom_outlook": {"probability": "Likely (~65-75%)", "confidence_score": 72, "reason": "Warm and sunny."},
  "recommendation": "Irrigate twice a week."
}`

func TestInsights(t *testing.T) {
	source := &fakeClimate{breakdown: climate.Breakdown{
		Location: climate.BreakdownLocation{Lat: 23.81, Long: 90.41},
		Days:     []climate.DailyRecord{{Date: "2024-05-01", TemperatureC: float(29.1)}},
	}}
	gen := &fakeGenerator{text: "```json" + insightJSON + "```"}
	svc := NewService(source, gen, zerolog.Nop())

	insight, err := svc.Insights(context.Background(), "Dhaka")
	require.NoError(t, err)

	assert.Equal(t, []int{insightDays}, source.days)
	assert.Equal(t, "Irrigate twice a week.", insight.Recommendation)
	assert.Equal(t, 72.0, insight.BloomOutlook.ConfidenceScore)
	assert.Equal(t, 8.9, *insight.Location.ElevationM)

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], `"Day_01":{"date":"2024-05-01","temperature_c":29.1`)
	assert.Contains(t, gen.prompts[0], "Very likely (~75–85%)")
	assert.NotContains(t, gen.prompts[0], "%!")
}

func TestInsights_Unparsable(t *testing.T) {
	for _, text := range []string{
		"I cannot help with that.",
		`{"location": {"lat": 1}}`,
		`{"recommendation": "Water", "bloom_outlook": {"confidence_score": 140}}`,
	} {
		svc := NewService(&fakeClimate{}, &fakeGenerator{text: text}, zerolog.Nop())

		_, err := svc.Insights(context.Background(), "Dhaka")
		require.Error(t, err, text)
		assert.ErrorIs(t, err, climate.ErrUnparsableAIResponse, text)
	}
}

func TestInsights_NotConfigured(t *testing.T) {
	source := &fakeClimate{}
	_, err := NewService(source, nil, zerolog.Nop()).Insights(context.Background(), "Dhaka")
	assert.ErrorIs(t, err, climate.ErrConfiguration)
	assert.Empty(t, source.days, "no climate fetch without a model")
}
