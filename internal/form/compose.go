package form

import (
	"strings"
	"time"
)

// Layouts of the date and time fields.
const (
	DateLayout        = "2006-01-02"
	TimeLayout        = "15:04"
	timeLayoutSeconds = "15:04:05"
)

// Compose joins a calendar date and a clock time into the due timestamp in loc.
//
// A missing time means the start of the day and a missing date means today,
// so two blank fields give the start of today. Present but malformed values
// return a *CompositionError. The result is truncated to the minute.
func Compose(date, clock string, now time.Time, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	date = strings.TrimSpace(date)
	clock = strings.TrimSpace(clock)

	year, month, day := now.In(loc).Date()
	if date != "" {
		d, err := time.ParseInLocation(DateLayout, date, loc)
		if err != nil {
			return time.Time{}, &CompositionError{Field: FieldDate, Value: date, Err: err}
		}
		year, month, day = d.Date()
	}

	hour, minute := 0, 0
	if clock != "" {
		c, err := parseClock(clock)
		if err != nil {
			return time.Time{}, &CompositionError{Field: FieldTime, Value: clock, Err: err}
		}
		hour, minute = c.Hour(), c.Minute()
	}

	return time.Date(year, month, day, hour, minute, 0, 0, loc), nil
}

func parseClock(clock string) (time.Time, error) {
	t, err := time.Parse(TimeLayout, clock)
	if err == nil {
		return t, nil
	}
	if t, errSeconds := time.Parse(timeLayoutSeconds, clock); errSeconds == nil {
		return t, nil
	}
	return time.Time{}, err
}

// Decompose splits a due timestamp into the date and time field values in loc.
func Decompose(t time.Time, loc *time.Location) (date, clock string) {
	if t.IsZero() {
		return "", ""
	}
	if loc == nil {
		loc = time.Local
	}
	t = t.In(loc)
	return t.Format(DateLayout), t.Format(TimeLayout)
}
