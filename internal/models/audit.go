package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// AuditLog records an actor performing a state-changing operation.
type AuditLog struct {
	ID         string         `db:"id" json:"id"`
	ActorID    *string        `db:"actor_id" json:"actor_id,omitempty"`
	Action     string         `db:"action" json:"action"`
	Resource   string         `db:"resource" json:"resource"`
	ResourceID *string        `db:"resource_id" json:"resource_id,omitempty"`
	Detail     types.JSONText `db:"detail" json:"detail,omitempty"`
	IPAddress  string         `db:"ip_address" json:"ip_address"`
	UserAgent  string         `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
}
