package climate

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// previewSize bounds the raw hourly samples embedded in a snapshot.
const previewSize = 24

// Units reported in the hourly snapshot.
const (
	UnitCelsius     = "°C"
	UnitMillimetres = "mm"
	UnitSolarHourly = "MJ/hr"
)

// ClimateSnapshot is the hourly rollup envelope served by the general
// weather query.
type ClimateSnapshot struct {
	Location       SnapshotLocation  `json:"location"`
	Period         Period            `json:"period"`
	Summary        SnapshotSummary   `json:"summary"`
	Temperature    TemperatureDetail `json:"temperature"`
	Rainfall       RainfallDetail    `json:"rainfall"`
	SolarRadiation SolarDetail       `json:"solar_radiation"`
}

type SnapshotLocation struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Elevation *float64 `json:"elevation"`
}

// Period contrasts the requested window with what the provider serviced.
type Period struct {
	Requested   string  `json:"requested"`
	Actual      string  `json:"actual"`
	DaysCovered float64 `json:"days_covered"`
}

type TemperatureStats struct {
	DailyAverage *float64 `json:"daily_average"`
	DailyMin     *float64 `json:"daily_min"`
	DailyMax     *float64 `json:"daily_max"`
}

type SolarStats struct {
	DailyAverage *float64 `json:"daily_average"`
}

type RainfallSummary struct {
	Total     float64 `json:"total"`
	RainyDays int     `json:"rainy_days"`
}

type SnapshotSummary struct {
	Temperature    TemperatureStats `json:"temperature"`
	Rainfall       RainfallSummary  `json:"rainfall"`
	SolarRadiation SolarStats       `json:"solar_radiation"`
}

// TimedValue is one raw sample of the bounded preview.
type TimedValue struct {
	Timestamp string   `json:"timestamp"`
	Value     *float64 `json:"value"`
}

type TemperatureDetail struct {
	Unit string `json:"unit"`
	TemperatureStats
	HourlyData []TimedValue `json:"hourly_data"`
}

type RainfallDetail struct {
	Unit      string        `json:"unit"`
	Total     float64       `json:"total"`
	DailyData []DailyAmount `json:"daily_data"`
}

type SolarDetail struct {
	Unit string `json:"unit"`
	SolarStats
	HourlyData []TimedValue `json:"hourly_data"`
}

// NewClimateSnapshot reshapes an hourly rollup into the snapshot envelope.
func NewClimateSnapshot(req FetchRequest, raw RawSeries, r Rollup) ClimateSnapshot {
	loc := SnapshotLocation{
		Latitude:  req.Coordinates.Latitude,
		Longitude: req.Coordinates.Longitude,
		Elevation: raw.Elevation,
	}
	if raw.Latitude != nil {
		loc.Latitude = *raw.Latitude
	}
	if raw.Longitude != nil {
		loc.Longitude = *raw.Longitude
	}

	temp := TemperatureStats{
		DailyAverage: r.Temperature.Average,
		DailyMin:     r.Temperature.Min,
		DailyMax:     r.Temperature.Max,
	}
	solar := SolarStats{DailyAverage: r.SolarAverage}

	tempPreview := make([]TimedValue, 0, min(len(r.Points), previewSize))
	solarPreview := make([]TimedValue, 0, min(len(r.Points), previewSize))
	for _, p := range r.Points[:min(len(r.Points), previewSize)] {
		tempPreview = append(tempPreview, TimedValue{Timestamp: p.Timestamp, Value: ptr(p.Temperature)})
		solarPreview = append(solarPreview, TimedValue{Timestamp: p.Timestamp, Value: p.SolarRadiation})
	}

	daily := r.DailyRainfall
	if daily == nil {
		daily = []DailyAmount{}
	}

	return ClimateSnapshot{
		Location: loc,
		Period: Period{
			Requested:   req.Window.String(),
			Actual:      raw.ActualStart + " to " + raw.ActualEnd,
			DaysCovered: float64(len(r.Points)) / 24,
		},
		Summary: SnapshotSummary{
			Temperature:    temp,
			Rainfall:       RainfallSummary{Total: r.TotalRainfall, RainyDays: r.RainyDays()},
			SolarRadiation: solar,
		},
		Temperature: TemperatureDetail{
			Unit:             UnitCelsius,
			TemperatureStats: temp,
			HourlyData:       tempPreview,
		},
		Rainfall: RainfallDetail{
			Unit:      UnitMillimetres,
			Total:     r.TotalRainfall,
			DailyData: daily,
		},
		SolarRadiation: SolarDetail{
			Unit:       UnitSolarHourly,
			SolarStats: solar,
			HourlyData: solarPreview,
		},
	}
}

type BreakdownLocation struct {
	Lat        float64  `json:"lat"`
	Long       float64  `json:"long"`
	ElevationM *float64 `json:"elevation_m"`
}

// Breakdown is the multi-day view: a location followed by Day_01..Day_N.
type Breakdown struct {
	Location BreakdownLocation
	Days     []DailyRecord
}

// NewBreakdown attaches the resolved location to the daily records.
func NewBreakdown(coords Coordinates, raw RawSeries, days []DailyRecord) Breakdown {
	return Breakdown{
		Location: BreakdownLocation{
			Lat:        coords.Latitude,
			Long:       coords.Longitude,
			ElevationM: raw.Elevation,
		},
		Days: days,
	}
}

// DayKey returns the object key of the i-th (zero based) day.
func DayKey(i int) string {
	return fmt.Sprintf("Day_%02d", i+1)
}

// MarshalJSON writes "location" first and the day keys in order.
func (b Breakdown) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"location":`)
	loc, err := json.Marshal(b.Location)
	if err != nil {
		return nil, err
	}
	buf.Write(loc)

	for i, day := range b.Days {
		rec, err := json.Marshal(day)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(&buf, `,%q:`, DayKey(i))
		buf.Write(rec)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// CropClimate is the single summary feeding crop prediction. Temperature
// extremes are the period averages of the daily max and min series.
type CropClimate struct {
	Period             string              `json:"period"`
	TemperatureAvg     *float64            `json:"temperature_avg"`
	TemperatureMax     *float64            `json:"temperature_max"`
	TemperatureMin     *float64            `json:"temperature_min"`
	Precipitation      *float64            `json:"precipitation"`
	PrecipitationLevel *PrecipitationLevel `json:"precipitationLevel"`
	PrecipitationTotal *float64            `json:"precipitation_total"`
	RainyDays          int                 `json:"rainy_days"`
	SolarRadiation     *float64            `json:"solar_radiation"`
	WindSpeed          *float64            `json:"wind_speed"`
	Humidity           *float64            `json:"humidity"`
}

// NewCropClimate reshapes a period summary of daily observations.
func NewCropClimate(window DateWindow, s PeriodSummary) CropClimate {
	start, end := window.ISO()
	return CropClimate{
		Period:             start + " to " + end,
		TemperatureAvg:     s.Stat(Temperature).Average,
		TemperatureMax:     s.Stat(TemperatureMax).Average,
		TemperatureMin:     s.Stat(TemperatureMin).Average,
		Precipitation:      s.Stat(Precipitation).Average,
		PrecipitationLevel: s.Level,
		PrecipitationTotal: s.TotalRainfall,
		RainyDays:          s.RainyDays,
		SolarRadiation:     s.Stat(SolarRadiation).Average,
		WindSpeed:          s.Stat(WindSpeed).Average,
		Humidity:           s.Stat(Humidity).Average,
	}
}
