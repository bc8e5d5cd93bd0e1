package domain

import "time"

// AuditAction identifies the mutation recorded by an audit event.
type AuditAction string

const (
	AuditCreated AuditAction = "created"
	AuditUpdated AuditAction = "updated"
	AuditDeleted AuditAction = "deleted"
)

// AuditEvent is one append-only record of a user mutation.
type AuditEvent struct {
	ID        int64       `json:"id"`
	UserID    int         `json:"userId"`
	Action    AuditAction `json:"action"`
	Actor     string      `json:"actor,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
}
