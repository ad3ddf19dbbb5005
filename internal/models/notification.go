package models

import "time"

// Notification severities.
const (
	NotificationSeverityInfo    = "INFO"
	NotificationSeverityWarning = "WARNING"
	NotificationSeverityUrgent  = "URGENT"
)

// Notification is a persisted message for a staff member or beneficiary.
type Notification struct {
	ID          string     `db:"id" json:"id"`
	RecipientID string     `db:"recipient_id" json:"recipient_id"`
	Title       string     `db:"title" json:"title"`
	Message     string     `db:"message" json:"message"`
	Severity    string     `db:"severity" json:"severity"`
	Link        *string    `db:"link" json:"link,omitempty"`
	ReadAt      *time.Time `db:"read_at" json:"read_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}
