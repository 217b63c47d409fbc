package climate

import "math"

// Precision selects how cleansed values are rounded.
type Precision int

const (
	// Native keeps the provider's precision.
	Native Precision = iota
	// Rounded rounds to two decimal places.
	Rounded
)

// CleanseValue maps the sentinel to nil and applies p to any other reading.
func CleanseValue(v *float64, p Precision) *float64 {
	if v == nil || *v == Sentinel {
		return nil
	}
	out := *v
	if p == Rounded {
		out = Round2(out)
	}
	return &out
}

// Cleanse turns raw provider series into observations, one per timestamp of
// the temperature series, in provider order. Variables without a reading
// for a timestamp are missing.
func Cleanse(raw RawSeries, p Precision) []Observation {
	temps, ok := raw.Series(Temperature)
	if !ok {
		return nil
	}

	out := make([]Observation, 0, temps.Len())
	for _, ts := range temps.Keys() {
		obs := Observation{
			Timestamp: ts,
			Values:    make(map[Variable]*float64, len(raw.Variables)),
		}
		for variable, series := range raw.Variables {
			if v, ok := series.Raw(ts); ok {
				obs.Values[variable] = CleanseValue(&v, p)
			} else {
				obs.Values[variable] = nil
			}
		}
		out = append(out, obs)
	}
	return out
}

// Round2 rounds half away from zero to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func ptr[T any](v T) *T {
	return &v
}
