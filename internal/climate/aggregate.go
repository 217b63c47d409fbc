package climate

import (
	"math"
	"strconv"
)

// DailyBreakdown builds one record per observation, keeping provider order.
// Observations are expected to be cleansed with Rounded precision.
func DailyBreakdown(obs []Observation) []DailyRecord {
	records := make([]DailyRecord, 0, len(obs))
	for _, o := range obs {
		records = append(records, DailyRecord{
			Date:           formatDayKey(o.Timestamp),
			TemperatureC:   o.Value(Temperature),
			RainfallMM:     o.Value(Precipitation),
			Humidity:       o.Value(Humidity),
			SolarRadiation: o.Value(SolarRadiation),
			NDVI:           nil,
		})
	}
	return records
}

// HourlyRollup reduces hourly observations to period statistics.
//
// Hours with a missing temperature are dropped entirely. Daily rainfall only
// accumulates strictly positive readings; zero-rain hours still count as
// retained hours for the temperature and solar statistics.
func HourlyRollup(obs []Observation) Rollup {
	var (
		points   []HourlyPoint
		temps    []float64
		solar    []float64
		days     []string
		rainfall = make(map[string]float64)
	)

	for _, o := range obs {
		if !isHourKey(o.Timestamp) {
			continue
		}
		t := o.Value(Temperature)
		if t == nil {
			continue
		}

		date := formatDayKey(o.Timestamp[:8])
		rain := o.Value(Precipitation)
		sol := o.Value(SolarRadiation)

		points = append(points, HourlyPoint{
			Timestamp:      formatHourKey(o.Timestamp),
			Date:           date,
			Temperature:    *t,
			Rainfall:       rain,
			SolarRadiation: sol,
		})
		temps = append(temps, *t)
		if sol != nil {
			solar = append(solar, *sol)
		}

		if rain != nil && *rain > 0 {
			if _, seen := rainfall[date]; !seen {
				days = append(days, date)
			}
			rainfall[date] += *rain
		}
	}

	r := Rollup{
		Points:      points,
		Temperature: computeStats(temps),
	}
	if avg, ok := mean(solar); ok {
		r.SolarAverage = ptr(Round2(avg))
	}

	var total float64
	for _, d := range days {
		amount := Round2(rainfall[d])
		r.DailyRainfall = append(r.DailyRainfall, DailyAmount{Date: d, Rainfall: amount})
		total += amount
	}
	r.TotalRainfall = Round2(total)
	return r
}

// SummarizePeriod computes average/min/max for every variable present in the
// observations, ignoring missing readings, plus the rainfall aggregates.
func SummarizePeriod(obs []Observation) PeriodSummary {
	values := make(map[Variable][]float64)
	for _, o := range obs {
		for variable, v := range o.Values {
			if _, ok := values[variable]; !ok {
				values[variable] = nil
			}
			if v != nil {
				values[variable] = append(values[variable], *v)
			}
		}
	}

	summary := PeriodSummary{Variables: make(map[Variable]Stats, len(values))}
	for variable, vs := range values {
		summary.Variables[variable] = computeStats(vs)
	}

	precip := values[Precipitation]
	if avg, ok := mean(precip); ok {
		var total float64
		for _, p := range precip {
			total += p
			if p > 0 {
				summary.RainyDays++
			}
		}
		summary.TotalRainfall = ptr(Round2(total))
		summary.Level = ptr(ClassifyPrecipitation(avg))
	}
	return summary
}

// ClassifyPrecipitation buckets an averaged precipitation value.
func ClassifyPrecipitation(avg float64) PrecipitationLevel {
	switch {
	case avg == 0:
		return PrecipitationLow
	case avg < 5:
		return PrecipitationModerate
	default:
		return PrecipitationHigh
	}
}

func computeStats(values []float64) Stats {
	avg, ok := mean(values)
	if !ok {
		return Stats{}
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return Stats{
		Average: ptr(Round2(avg)),
		Min:     ptr(Round2(lo)),
		Max:     ptr(Round2(hi)),
	}
}

func mean(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), true
}

// isHourKey reports whether key is a 10-digit YYYYMMDDHH timestamp.
func isHourKey(key string) bool {
	if len(key) != 10 {
		return false
	}
	_, err := strconv.ParseUint(key, 10, 64)
	return err == nil
}

// formatDayKey turns YYYYMMDD into YYYY-MM-DD; other keys pass through.
func formatDayKey(key string) string {
	if len(key) != 8 {
		return key
	}
	return key[:4] + "-" + key[4:6] + "-" + key[6:8]
}

// formatHourKey turns YYYYMMDDHH into "YYYY-MM-DD HH:00".
func formatHourKey(key string) string {
	return formatDayKey(key[:8]) + " " + key[8:10] + ":00"
}
