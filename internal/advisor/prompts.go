package advisor

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/i474232898/agro-climate/internal/climate"
)

var cropPrompt = template.Must(template.New("crops").Funcs(template.FuncMap{
	"num":   formatNumber,
	"level": formatLevel,
}).Parse(`You are an expert agricultural advisor.

I will provide you with detailed climate and weather data for a specific location.
Please generate a list{json} of **5 most suitable crops** for cultivation in this location today, based on the climate data.
Don't include any other text outside the JSON array.
Requirements:
1. For each crop, provide:
   - "name": crop name
   - "suitability": percentage (0-100) of how suitable it is for cultivation today
   - "reason": one short sentence why it's suitable
   - "ideal_season": if applicable
2. Return the response strictly in **JSON array format**.
3. Include the provided climate summary in your reasoning.

Climate data for {{.Place}} ({{.Climate.Period}}):
- Average Temperature: {{num .Climate.TemperatureAvg}} °C
- Max Temperature: {{num .Climate.TemperatureMax}} °C
- Min Temperature: {{num .Climate.TemperatureMin}} °C
- Precipitation: {{num .Climate.Precipitation}} mm ({{level .Climate.PrecipitationLevel}})
- Solar Radiation: {{num .Climate.SolarRadiation}} MJ/m²/day
- Wind Speed: {{num .Climate.WindSpeed}} m/s
- Humidity: {{num .Climate.Humidity}} %
`))

const insightsPrompt = `You are an AI model specialized in vegetation and bloom prediction.
Given the following dataset of daily weather conditions, NDVI index, crop type, historical blooming records, and geolocation metadata, analyze the data and generate a concise JSON summary.

Dataset: %s

Instructions:
1. Summarize the trends of each factor (temperature, rainfall, humidity, solar radiation, NDVI, crop type, historical bloom patterns, location).
   - Example: 'Temperature is consistently moderate (26–29°C), favorable for growth.'
   - Example: 'Historical bloom data shows this crop usually peaks around late March in this region.'
2. Provide a bloom probability in descriptive terms with range
   (e.g., 'Very likely (~75–85%%)', 'Uncertain (~40–50%%)', 'Unfavorable (~20–30%%)').
3. Include a numeric confidence score (0–100) based on how consistent and reliable the data and historical records are.
4. Provide a short recommendation tailored to the crop and location.
5. Look up historical datasets from internet sources.
6. Output only valid JSON in this format:
{
  "location": {
    "lat": <float>,
    "long": <float>,
    "elevation_m": <float>
  },
  "factor_summary": {
    "task": "%s",
    "temperature": "<short trend analysis>",
    "rainfall": "<short trend analysis>",
    "humidity": "<short trend analysis>",
    "solar_radiation": "<short trend analysis>"
  },
  "bloom_outlook": {
    "probability": "<Descriptive probability with range>",
    "confidence_score": <0-100>,
    "reason": "<one-sentence explanation>"
  },
  "recommendation": "<short practical advice>"
}

Here is a demo response for you to work on:
{
  "location": {"lat": 30.9, "long": 75.8, "elevation_m": 250.0},
  "factor_summary": {
    "task": "%s",
    "temperature": "Stable 24–28°C range, ideal for wheat.",
    "rainfall": "Low rainfall, irrigation needed.",
    "humidity": "Moderate 60–70%%, low disease risk.",
    "solar_radiation": "High sunlight, promotes photosynthesis."
  },
  "bloom_outlook": {
    "probability": "Very likely (~78–88%%) bloom success.",
    "confidence_score": 84,
    "reason": "Favorable weather, rising NDVI, and historical alignment support strong bloom likelihood."
  },
  "recommendation": "Maintain irrigation to offset low rainfall and apply balanced nutrients to maximize yield."
}`

// InsightTask is the fixed task description embedded in every insight.
const InsightTask = "analyzed climate data for the past 14 days and used historical data for precise prediction"

func buildCropPrompt(place string, c climate.CropClimate) (string, error) {
	var b strings.Builder
	err := cropPrompt.Execute(&b, struct {
		Place   string
		Climate climate.CropClimate
	}{Place: place, Climate: c})
	if err != nil {
		return "", fmt.Errorf("render crop prompt: %w", err)
	}
	return b.String(), nil
}

func buildInsightsPrompt(b climate.Breakdown) (string, error) {
	dataset, err := json.Marshal(b)
	if err != nil {
		return "", fmt.Errorf("encode dataset: %w", err)
	}
	return fmt.Sprintf(insightsPrompt, dataset, InsightTask, InsightTask), nil
}

func formatNumber(v *float64) string {
	if v == nil {
		return "unavailable"
	}
	return fmt.Sprintf("%.2f", *v)
}

func formatLevel(l *climate.PrecipitationLevel) string {
	if l == nil {
		return "unavailable"
	}
	return string(*l)
}
