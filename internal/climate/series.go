package climate

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Sentinel is the provider's "no reading available" value.
const Sentinel = -999.0

// Series maps provider timestamp keys to raw readings, keeping the order in
// which the provider listed them.
type Series struct {
	keys   []string
	values map[string]float64
}

// Keys returns timestamp keys in provider order.
func (s Series) Keys() []string {
	return s.keys
}

// Len returns the number of readings.
func (s Series) Len() int {
	return len(s.keys)
}

// Raw returns the raw reading for key and whether it exists.
func (s Series) Raw(key string) (float64, bool) {
	v, ok := s.values[key]
	return v, ok
}

func (s *Series) set(key string, v float64) {
	if s.values == nil {
		s.values = make(map[string]float64)
	}
	if _, dup := s.values[key]; !dup {
		s.keys = append(s.keys, key)
	}
	s.values[key] = v
}

// UnmarshalJSON decodes a JSON object of numbers without losing key order.
// Null readings decode to Sentinel.
func (s *Series) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*s = Series{}
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("series: expected object, got %v", tok)
	}

	out := Series{values: make(map[string]float64)}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("series: expected string key, got %v", keyTok)
		}

		valTok, err := dec.Token()
		if err != nil {
			return err
		}
		switch v := valTok.(type) {
		case nil:
			out.set(key, Sentinel)
		case json.Number:
			f, err := v.Float64()
			if err != nil {
				return fmt.Errorf("series: key %s: %w", key, err)
			}
			out.set(key, f)
		default:
			return fmt.Errorf("series: key %s: expected number, got %v", key, valTok)
		}
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*s = out
	return nil
}
