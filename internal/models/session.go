package models

import "time"

// SessionStatus is the closed set of therapy session states.
type SessionStatus string

const (
	SessionScheduled          SessionStatus = "SCHEDULED"
	SessionConfirmed          SessionStatus = "CONFIRMED"
	SessionCompleted          SessionStatus = "COMPLETED"
	SessionCancelledByPatient SessionStatus = "CANCELLED_BY_PATIENT"
	SessionCancelledByCenter  SessionStatus = "CANCELLED_BY_CENTER"
	SessionNoShow             SessionStatus = "NO_SHOW"
)

// Valid reports whether s is one of the defined statuses.
func (s SessionStatus) Valid() bool {
	switch s {
	case SessionScheduled, SessionConfirmed, SessionCompleted,
		SessionCancelledByPatient, SessionCancelledByCenter, SessionNoShow:
		return true
	default:
		return false
	}
}

// Occupying reports whether the status counts as holding its time slot.
func (s SessionStatus) Occupying() bool {
	switch s {
	case SessionScheduled, SessionConfirmed, SessionCompleted:
		return true
	default:
		return false
	}
}

// Terminal reports whether the session can no longer be rescheduled.
func (s SessionStatus) Terminal() bool {
	switch s {
	case SessionCompleted, SessionCancelledByPatient, SessionCancelledByCenter:
		return true
	default:
		return false
	}
}

// Cancelled reports whether the status frees the slot through a cancellation.
func (s SessionStatus) Cancelled() bool {
	return s == SessionCancelledByPatient || s == SessionCancelledByCenter
}

// OccupyingStatuses lists the statuses that hold a slot, for SQL IN clauses.
func OccupyingStatuses() []string {
	return []string{string(SessionScheduled), string(SessionConfirmed), string(SessionCompleted)}
}

// TherapySession is one booked appointment between a therapist and a
// beneficiary. Identity fields only change through an explicit reschedule.
type TherapySession struct {
	ID            string        `db:"id" json:"id"`
	TherapistID   string        `db:"therapist_id" json:"therapist_id"`
	BeneficiaryID string        `db:"beneficiary_id" json:"beneficiary_id"`
	PlanID        *string       `db:"plan_id" json:"plan_id,omitempty"`
	Date          string        `db:"date" json:"date"`
	StartTime     string        `db:"start_time" json:"start_time"`
	EndTime       string        `db:"end_time" json:"end_time"`
	Status        SessionStatus `db:"status" json:"status"`
	Attendance    *string       `db:"attendance" json:"attendance,omitempty"`
	Rating        *int          `db:"rating" json:"rating,omitempty"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`
}

// SessionFilter describes query params for listing sessions.
type SessionFilter struct {
	TherapistID   string
	BeneficiaryID string
	Status        string
	DateFrom      string
	DateTo        string
	Page          int
	PageSize      int
	SortBy        string
	SortOrder     string
}

// SessionNote stores clinical SOAP documentation for a completed session.
type SessionNote struct {
	ID         string    `db:"id" json:"id"`
	SessionID  string    `db:"session_id" json:"session_id"`
	Subjective string    `db:"subjective" json:"subjective"`
	Objective  string    `db:"objective" json:"objective"`
	Assessment string    `db:"assessment" json:"assessment"`
	Plan       string    `db:"plan" json:"plan"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// SessionConflict describes an existing session blocking a requested slot.
type SessionConflict struct {
	SessionID   string        `json:"session_id"`
	TherapistID string        `json:"therapist_id"`
	Date        string        `json:"date"`
	StartTime   string        `json:"start_time"`
	EndTime     string        `json:"end_time"`
	Status      SessionStatus `json:"status"`
}

// SessionConflictError is returned when a booking collides with an existing session.
type SessionConflictError struct {
	Message  string          `json:"message"`
	Conflict SessionConflict `json:"conflict"`
}

// Error implements the error interface for conflict errors.
func (e *SessionConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}
