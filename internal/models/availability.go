package models

import "time"

// AvailabilitySlot is one working window inside a therapist's recurring
// weekly schedule. Multiple slots per day are allowed (split shifts).
type AvailabilitySlot struct {
	DayOfWeek     string  `json:"day_of_week"`
	StartTime     string  `json:"start_time"`
	EndTime       string  `json:"end_time"`
	BreakStart    *string `json:"break_start,omitempty"`
	BreakEnd      *string `json:"break_end,omitempty"`
	PreferredRoom *string `json:"preferred_room,omitempty"`
	IsActive      bool    `json:"is_active"`
}

// AvailabilityException overrides the recurring schedule for one calendar
// date. IsAvailable=false blanks the day; otherwise Slots replaces that
// day's recurring slots.
type AvailabilityException struct {
	Date        string             `json:"date"`
	Reason      string             `json:"reason"`
	IsAvailable bool               `json:"is_available"`
	Slots       []AvailabilitySlot `json:"slots,omitempty"`
}

// AvailabilityPreferences stores capacity and pacing rules for a therapist.
type AvailabilityPreferences struct {
	MaxSessionsPerDay        int      `json:"max_sessions_per_day"`
	MinBreakBetweenSessions  int      `json:"min_break_between_sessions"`
	PreferredSessionDuration int      `json:"preferred_session_duration"`
	Specializations          []string `json:"specializations,omitempty"`
	Languages                []string `json:"languages,omitempty"`
	MaxClientsSimultaneously int      `json:"max_clients_simultaneously"`
}

// AvailabilityMetrics holds rolling counters recomputed from session
// aggregates. Informational only; never consulted by booking rules.
type AvailabilityMetrics struct {
	TotalSessionsCompleted int     `json:"total_sessions_completed"`
	AverageSessionRating   float64 `json:"average_session_rating"`
	CancellationRate       float64 `json:"cancellation_rate"`
	NoShowRate             float64 `json:"no_show_rate"`
	Utilization            float64 `json:"utilization"`
}

// TherapistAvailability is the aggregate describing when a therapist works.
// One record per therapist; soft states only (slots toggle IsActive).
type TherapistAvailability struct {
	ID                string                  `json:"id"`
	TherapistID       string                  `json:"therapist_id"`
	RecurringSchedule []AvailabilitySlot      `json:"recurring_schedule"`
	Exceptions        []AvailabilityException `json:"exceptions"`
	Preferences       AvailabilityPreferences `json:"preferences"`
	Metrics           AvailabilityMetrics     `json:"metrics"`
	CreatedAt         time.Time               `json:"created_at"`
	UpdatedAt         time.Time               `json:"updated_at"`
}

// ExceptionFor returns the exception entry covering the given date, if any.
func (a *TherapistAvailability) ExceptionFor(date string) *AvailabilityException {
	for i := range a.Exceptions {
		if a.Exceptions[i].Date == date {
			return &a.Exceptions[i]
		}
	}
	return nil
}

// AvailabilityDecision is the outcome of an availability check. Reason is
// set only when Available is false and names the rule that fired.
type AvailabilityDecision struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}
