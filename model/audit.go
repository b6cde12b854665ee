package model

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog records a single log-worthy action. The core only writes these,
// it never reads them back.
type AuditLog struct {
	ID        uuid.UUID `json:"id"`
	Action    string    `json:"action"`
	User      string    `json:"user,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Details   string    `json:"details,omitempty"`
}
