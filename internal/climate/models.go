package climate

// Variable is a climate provider parameter key.
type Variable string

const (
	Temperature    Variable = "T2M"
	TemperatureMax Variable = "T2M_MAX"
	TemperatureMin Variable = "T2M_MIN"
	Precipitation  Variable = "PRECTOTCORR"
	SolarRadiation Variable = "ALLSKY_SFC_SW_DWN"
	WindSpeed      Variable = "WS2M"
	Humidity       Variable = "RH2M"
)

// Resolution is the temporal resolution of a provider query.
type Resolution string

const (
	Hourly Resolution = "hourly"
	Daily  Resolution = "daily"
)

// PrecipitationLevel buckets an averaged precipitation value.
type PrecipitationLevel string

const (
	PrecipitationLow      PrecipitationLevel = "Low"
	PrecipitationModerate PrecipitationLevel = "Moderate"
	PrecipitationHigh     PrecipitationLevel = "High"
)

// Coordinates is the result of resolving a place name.
type Coordinates struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// Location is a resolved point enriched with the elevation reported by the
// climate provider. Elevation is nil when the provider omits it.
type Location struct {
	Latitude  float64
	Longitude float64
	Elevation *float64
}

// Observation is one cleansed time point. A nil value means the reading
// was missing and must never be treated as zero.
type Observation struct {
	Timestamp string
	Values    map[Variable]*float64
}

// Value returns the reading for v, nil when missing.
func (o Observation) Value(v Variable) *float64 {
	return o.Values[v]
}

// DailyRecord is one calendar day of the multi-day breakdown.
type DailyRecord struct {
	Date           string   `json:"date"`
	TemperatureC   *float64 `json:"temperature_c"`
	RainfallMM     *float64 `json:"rainfall_mm"`
	Humidity       *float64 `json:"humidity"`
	SolarRadiation *float64 `json:"solar_radiation"`
	// NDVI is not supplied by the provider and is always null.
	NDVI *float64 `json:"ndvi"`
}

// Stats holds period statistics for one variable. Nil fields mean no
// retained readings were available.
type Stats struct {
	Average *float64
	Min     *float64
	Max     *float64
}

// PeriodSummary reduces a daily series to period-level statistics.
type PeriodSummary struct {
	Variables     map[Variable]Stats
	TotalRainfall *float64
	RainyDays     int
	Level         *PrecipitationLevel
}

// Stat returns the statistics for v, all nil when v was not summarised.
func (p PeriodSummary) Stat(v Variable) Stats {
	return p.Variables[v]
}

// HourlyPoint is an hour retained by the rollup: its temperature is
// always present, rainfall and solar readings may still be missing.
type HourlyPoint struct {
	Timestamp      string
	Date           string
	Temperature    float64
	Rainfall       *float64
	SolarRadiation *float64
}

// DailyAmount is a per-day accumulated total.
type DailyAmount struct {
	Date     string  `json:"date"`
	Rainfall float64 `json:"rainfall"`
}

// Rollup is the hourly-to-period aggregation result.
type Rollup struct {
	Points        []HourlyPoint
	DailyRainfall []DailyAmount
	Temperature   Stats
	SolarAverage  *float64
	TotalRainfall float64
}

// RainyDays is the number of days with strictly positive accumulated rain.
func (r Rollup) RainyDays() int {
	return len(r.DailyRainfall)
}
