package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar-day format used across the scheduling API.
const DateLayout = "2006-01-02"

// Days of week as stored on availability slots and waitlist preferences.
const (
	DaySunday    = "SUN"
	DayMonday    = "MON"
	DayTuesday   = "TUE"
	DayWednesday = "WED"
	DayThursday  = "THU"
	DayFriday    = "FRI"
	DaySaturday  = "SAT"
)

var weekDays = map[string]struct{}{
	DaySunday: {}, DayMonday: {}, DayTuesday: {}, DayWednesday: {},
	DayThursday: {}, DayFriday: {}, DaySaturday: {},
}

// ValidDayOfWeek reports whether s is one of the SUN..SAT codes.
func ValidDayOfWeek(s string) bool {
	_, ok := weekDays[strings.ToUpper(s)]
	return ok
}

// DayOfWeekFor maps a calendar date to its SUN..SAT code.
func DayOfWeekFor(date time.Time) string {
	switch date.Weekday() {
	case time.Sunday:
		return DaySunday
	case time.Monday:
		return DayMonday
	case time.Tuesday:
		return DayTuesday
	case time.Wednesday:
		return DayWednesday
	case time.Thursday:
		return DayThursday
	case time.Friday:
		return DayFriday
	default:
		return DaySaturday
	}
}

// ParseDate parses a YYYY-MM-DD calendar day.
func ParseDate(raw string) (time.Time, error) {
	return time.Parse(DateLayout, raw)
}

// MinutesOfDay converts an "HH:MM" clock string to minutes since midnight.
func MinutesOfDay(clock string) (int, error) {
	parts := strings.Split(clock, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock value %q", clock)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return 0, fmt.Errorf("invalid clock value %q", clock)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("invalid clock value %q", clock)
	}
	return hours*60 + minutes, nil
}

// ValidClock reports whether raw parses as an "HH:MM" clock string.
func ValidClock(raw string) bool {
	_, err := MinutesOfDay(raw)
	return err == nil
}

// TimeRange is a half-open [Start, End) interval in minutes since midnight.
type TimeRange struct {
	Start int
	End   int
}

// NewTimeRange builds a TimeRange from "HH:MM" boundaries. End must be
// strictly after Start; sessions are same-day only.
func NewTimeRange(start, end string) (TimeRange, error) {
	s, err := MinutesOfDay(start)
	if err != nil {
		return TimeRange{}, err
	}
	e, err := MinutesOfDay(end)
	if err != nil {
		return TimeRange{}, err
	}
	if s >= e {
		return TimeRange{}, fmt.Errorf("start time %s must be before end time %s", start, end)
	}
	return TimeRange{Start: s, End: e}, nil
}

// Overlaps applies the standard half-open interval test.
func (r TimeRange) Overlaps(other TimeRange) bool {
	return r.Start < other.End && r.End > other.Start
}

// Within reports whether r lies entirely inside other.
func (r TimeRange) Within(other TimeRange) bool {
	return r.Start >= other.Start && r.End <= other.End
}

// WidenEnd extends the interval end by the given number of minutes.
func (r TimeRange) WidenEnd(minutes int) TimeRange {
	if minutes <= 0 {
		return r
	}
	return TimeRange{Start: r.Start, End: r.End + minutes}
}
