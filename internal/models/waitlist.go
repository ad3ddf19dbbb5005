package models

import "time"

// WaitlistPriority orders competing waitlist entries.
type WaitlistPriority string

const (
	WaitlistPriorityHigh   WaitlistPriority = "HIGH"
	WaitlistPriorityNormal WaitlistPriority = "NORMAL"
	WaitlistPriorityLow    WaitlistPriority = "LOW"
)

// Valid reports whether p is a defined priority.
func (p WaitlistPriority) Valid() bool {
	switch p {
	case WaitlistPriorityHigh, WaitlistPriorityNormal, WaitlistPriorityLow:
		return true
	default:
		return false
	}
}

// Rank returns a sortable weight; lower ranks sort first.
func (p WaitlistPriority) Rank() int {
	switch p {
	case WaitlistPriorityHigh:
		return 0
	case WaitlistPriorityNormal:
		return 1
	default:
		return 2
	}
}

// WaitlistStatus is the closed set of waitlist entry states.
type WaitlistStatus string

const (
	WaitlistWaiting WaitlistStatus = "WAITING"
	WaitlistOffered WaitlistStatus = "OFFERED"
	WaitlistBooked  WaitlistStatus = "BOOKED"
	WaitlistExpired WaitlistStatus = "EXPIRED"
)

// Valid reports whether s is a defined waitlist status.
func (s WaitlistStatus) Valid() bool {
	switch s {
	case WaitlistWaiting, WaitlistOffered, WaitlistBooked, WaitlistExpired:
		return true
	default:
		return false
	}
}

// WaitlistEntry is a beneficiary's standing request for an earlier or
// alternate slot in a department.
type WaitlistEntry struct {
	ID                   string           `db:"id" json:"id"`
	BeneficiaryID        string           `db:"beneficiary_id" json:"beneficiary_id"`
	Department           string           `db:"department" json:"department"`
	PreferredTherapistID *string          `db:"preferred_therapist_id" json:"preferred_therapist_id,omitempty"`
	PreferredDays        []string         `json:"preferred_days"`
	PreferredStart       string           `db:"preferred_start" json:"preferred_start"`
	PreferredEnd         string           `db:"preferred_end" json:"preferred_end"`
	Priority             WaitlistPriority `db:"priority" json:"priority"`
	Status               WaitlistStatus   `db:"status" json:"status"`
	OfferedAt            *time.Time       `db:"offered_at" json:"offered_at,omitempty"`
	CreatedAt            time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time        `db:"updated_at" json:"updated_at"`
}

// PrefersDay reports whether the entry's preferred days include the given day code.
func (w *WaitlistEntry) PrefersDay(day string) bool {
	for _, d := range w.PreferredDays {
		if d == day {
			return true
		}
	}
	return false
}

// WaitlistFilter describes query params for listing waitlist entries.
type WaitlistFilter struct {
	Department    string
	BeneficiaryID string
	Status        string
	Page          int
	PageSize      int
}

// SlotOffer is the outcome of the gap-fill engine for one freed slot.
type SlotOffer struct {
	Offered bool           `json:"offered"`
	Entry   *WaitlistEntry `json:"entry,omitempty"`
}
