package climate

// newSeries builds a Series from parallel keys and values. Keys without a
// matching value get the Sentinel.
func newSeries(keys []string, values []float64) Series {
	s := Series{values: make(map[string]float64, len(keys))}
	for i, k := range keys {
		v := Sentinel
		if i < len(values) {
			v = values[i]
		}
		s.set(k, v)
	}
	return s
}
