package domain

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-day format used in reports and exports.
const DateLayout = "2006-01-02"

// DefaultWindowDays is how far the production window reaches on each side of "now".
const DefaultWindowDays = 365 * 5

// Span is an inclusive interval of UTC calendar days.
type Span struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewSpan truncates both ends to UTC midnight.
func NewSpan(start, end time.Time) Span {
	return Span{Start: day(start), End: day(end)}
}

// Window returns the span from daysBack days before now to daysForward days after it.
// "Today" is the calendar date in now's own location, stored as a UTC midnight.
func Window(now time.Time, daysBack, daysForward int) Span {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return Span{
		Start: today.AddDate(0, 0, -daysBack),
		End:   today.AddDate(0, 0, daysForward),
	}
}

// Days is the number of calendar days in the span, counting both endpoints.
// It is zero when End precedes Start.
func (s Span) Days() int {
	start, end := day(s.Start), day(s.End)
	if end.Before(start) {
		return 0
	}
	// Hours/24 is exact because both ends are UTC midnights.
	return int(end.Sub(start).Hours()/24) + 1
}

// Dates returns one timestamp per day in the span, in order.
func (s Span) Dates() []time.Time {
	n := s.Days()
	start := day(s.Start)
	out := make([]time.Time, n)
	for i := range n {
		out[i] = start.AddDate(0, 0, i)
	}
	return out
}

// Validate returns ErrInvalidSpan when the span holds no days.
func (s Span) Validate() error {
	if s.Start.IsZero() || s.End.IsZero() {
		return fmt.Errorf("%w: start and end are required", ErrInvalidSpan)
	}
	if s.Days() == 0 {
		return fmt.Errorf("%w: end %s is before start %s", ErrInvalidSpan,
			s.End.Format(DateLayout), s.Start.Format(DateLayout))
	}
	return nil
}

// String renders the span as "YYYY-MM-DD to YYYY-MM-DD".
func (s Span) String() string {
	return day(s.Start).Format(DateLayout) + " to " + day(s.End).Format(DateLayout)
}

func day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
