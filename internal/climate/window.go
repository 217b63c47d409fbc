package climate

import (
	"fmt"
	"strings"
	"time"
)

const (
	compactLayout = "20060102"
	isoLayout     = "2006-01-02"

	// MinTrailingDays and MaxTrailingDays bound the trailing window.
	MinTrailingDays = 1
	MaxTrailingDays = 30

	defaultSampleStart = "20230101"
	defaultSampleEnd   = "20230103"
)

// DateWindow is an inclusive range of UTC calendar days.
type DateWindow struct {
	Start time.Time
	End   time.Time
}

// Compact returns start and end in the provider's YYYYMMDD form.
func (w DateWindow) Compact() (string, string) {
	return w.Start.Format(compactLayout), w.End.Format(compactLayout)
}

// ISO returns start and end as YYYY-MM-DD.
func (w DateWindow) ISO() (string, string) {
	return w.Start.Format(isoLayout), w.End.Format(isoLayout)
}

// Days returns the inclusive number of days in the window.
func (w DateWindow) Days() int {
	return int(w.End.Sub(w.Start).Hours()/24) + 1
}

func (w DateWindow) String() string {
	start, end := w.Compact()
	return start + " to " + end
}

// ExplicitWindow parses a caller supplied range. Dates may be YYYY-MM-DD or
// YYYYMMDD; an empty bound falls back to the sample window.
func ExplicitWindow(start, end string) (DateWindow, error) {
	if start == "" {
		start = defaultSampleStart
	}
	if end == "" {
		end = defaultSampleEnd
	}

	s, err := parseDay(start)
	if err != nil {
		return DateWindow{}, err
	}
	e, err := parseDay(end)
	if err != nil {
		return DateWindow{}, err
	}
	if s.After(e) {
		return DateWindow{}, fmt.Errorf("%w: start date %s is after end date %s", ErrValidation, start, end)
	}
	return DateWindow{Start: s, End: e}, nil
}

// PreviousMonth returns the first and last day of the month before the one
// containing now.
func PreviousMonth(now time.Time) DateWindow {
	today := truncateDay(now)
	firstOfMonth := today.AddDate(0, 0, 1-today.Day())
	return DateWindow{
		Start: firstOfMonth.AddDate(0, -1, 0),
		End:   firstOfMonth.AddDate(0, 0, -1),
	}
}

// TrailingDays returns a window of ClampDays(n) days ending yesterday.
func TrailingDays(now time.Time, n int) DateWindow {
	end := truncateDay(now).AddDate(0, 0, -1)
	return DateWindow{
		Start: end.AddDate(0, 0, -(ClampDays(n) - 1)),
		End:   end,
	}
}

// ClampDays limits a requested day count to [MinTrailingDays, MaxTrailingDays].
func ClampDays(n int) int {
	return max(MinTrailingDays, min(n, MaxTrailingDays))
}

func parseDay(s string) (time.Time, error) {
	compact := strings.ReplaceAll(s, "-", "")
	t, err := time.ParseInLocation(compactLayout, compact, time.UTC)
	if err != nil || len(compact) != len(compactLayout) {
		return time.Time{}, fmt.Errorf("%w: invalid date %q, use YYYY-MM-DD or YYYYMMDD", ErrValidation, s)
	}
	return t, nil
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
