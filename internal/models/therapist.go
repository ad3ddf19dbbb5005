package models

import (
	"time"

	"github.com/lib/pq"
)

// Therapist represents a clinical staff member who delivers therapy sessions.
type Therapist struct {
	ID              string         `db:"id" json:"id"`
	Email           string         `db:"email" json:"email"`
	FullName        string         `db:"full_name" json:"full_name"`
	Phone           *string        `db:"phone" json:"phone,omitempty"`
	Department      string         `db:"department" json:"department"`
	Specializations pq.StringArray `db:"specializations" json:"specializations"`
	Languages       pq.StringArray `db:"languages" json:"languages"`
	Active          bool           `db:"active" json:"active"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}

// TherapistFilter captures filtering options for listing therapists.
type TherapistFilter struct {
	Search         string
	Department     string
	Specialization string
	Active         *bool
	Page           int
	PageSize       int
	SortBy         string
	SortOrder      string
}

// HasSpecialization reports whether the therapist carries the given specialization.
func (t *Therapist) HasSpecialization(specialization string) bool {
	for _, s := range t.Specializations {
		if s == specialization {
			return true
		}
	}
	return false
}
