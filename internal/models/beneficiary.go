package models

import "time"

// Beneficiary represents a person receiving rehabilitation services.
type Beneficiary struct {
	ID         string    `db:"id" json:"id"`
	FullName   string    `db:"full_name" json:"full_name"`
	Email      *string   `db:"email" json:"email,omitempty"`
	Phone      *string   `db:"phone" json:"phone,omitempty"`
	Department string    `db:"department" json:"department"`
	Active     bool      `db:"active" json:"active"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// BeneficiaryFilter captures filtering options for listing beneficiaries.
type BeneficiaryFilter struct {
	Search     string
	Department string
	Active     *bool
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}
