package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinutesOfDay(t *testing.T) {
	minutes, err := MinutesOfDay("09:30")
	require.NoError(t, err)
	assert.Equal(t, 570, minutes)

	for _, raw := range []string{"", "9", "24:00", "12:60", "ab:cd", "09:30:00"} {
		_, err := MinutesOfDay(raw)
		assert.Error(t, err, raw)
	}
}

func TestNewTimeRangeRejectsInvertedBounds(t *testing.T) {
	_, err := NewTimeRange("10:00", "09:00")
	require.Error(t, err)

	_, err = NewTimeRange("10:00", "10:00")
	require.Error(t, err)
}

func TestTimeRangeOverlaps(t *testing.T) {
	base, err := NewTimeRange("09:00", "10:00")
	require.NoError(t, err)

	cases := []struct {
		name    string
		start   string
		end     string
		overlap bool
	}{
		{"identical", "09:00", "10:00", true},
		{"contained", "09:15", "09:45", true},
		{"partial front", "08:30", "09:30", true},
		{"partial back", "09:30", "10:30", true},
		{"back to back after", "10:00", "11:00", false},
		{"back to back before", "08:00", "09:00", false},
		{"disjoint", "11:00", "12:00", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			other, err := NewTimeRange(tc.start, tc.end)
			require.NoError(t, err)
			assert.Equal(t, tc.overlap, base.Overlaps(other))
			assert.Equal(t, tc.overlap, other.Overlaps(base))
		})
	}
}

func TestTimeRangeWidenEnd(t *testing.T) {
	base, err := NewTimeRange("09:00", "10:00")
	require.NoError(t, err)

	next, err := NewTimeRange("10:10", "11:00")
	require.NoError(t, err)

	assert.False(t, base.Overlaps(next))
	assert.True(t, base.WidenEnd(15).Overlaps(next))
	assert.Equal(t, base, base.WidenEnd(0))
	assert.Equal(t, base, base.WidenEnd(-5))
}

func TestTimeRangeWithin(t *testing.T) {
	window, err := NewTimeRange("08:00", "16:00")
	require.NoError(t, err)

	inside, err := NewTimeRange("09:00", "10:00")
	require.NoError(t, err)
	assert.True(t, inside.Within(window))

	spilling, err := NewTimeRange("15:30", "16:30")
	require.NoError(t, err)
	assert.False(t, spilling.Within(window))
}

func TestDayOfWeekFor(t *testing.T) {
	date, err := ParseDate("2025-03-03")
	require.NoError(t, err)
	assert.Equal(t, time.Monday, date.Weekday())
	assert.Equal(t, DayMonday, DayOfWeekFor(date))

	sunday, err := ParseDate("2025-03-02")
	require.NoError(t, err)
	assert.Equal(t, DaySunday, DayOfWeekFor(sunday))
}

func TestValidDayOfWeek(t *testing.T) {
	assert.True(t, ValidDayOfWeek("MON"))
	assert.True(t, ValidDayOfWeek("sun"))
	assert.False(t, ValidDayOfWeek("MONDAY"))
	assert.False(t, ValidDayOfWeek(""))
}

func TestSessionStatusSets(t *testing.T) {
	assert.True(t, SessionScheduled.Occupying())
	assert.True(t, SessionCompleted.Occupying())
	assert.False(t, SessionCancelledByPatient.Occupying())
	assert.False(t, SessionNoShow.Occupying())

	assert.True(t, SessionCompleted.Terminal())
	assert.True(t, SessionCancelledByCenter.Terminal())
	assert.False(t, SessionConfirmed.Terminal())

	assert.True(t, SessionCancelledByPatient.Cancelled())
	assert.False(t, SessionNoShow.Cancelled())

	assert.False(t, SessionStatus("UNKNOWN").Valid())
}
