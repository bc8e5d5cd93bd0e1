package ports

import (
	"context"

	"github.com/backoffice/users-api/internal/core/domain"
)

// AuditRecorder accepts audit events for asynchronous persistence. Record is
// best-effort and must never block a user operation.
type AuditRecorder interface {
	Record(event domain.AuditEvent)
}

// AuditRepository persists and reads the user audit trail.
type AuditRepository interface {
	Insert(ctx context.Context, event *domain.AuditEvent) error
	FindByUserID(ctx context.Context, userID int) ([]domain.AuditEvent, error)
}

// LoginLimiter bounds failed authentication attempts per account.
type LoginLimiter interface {
	// Allow reports whether another attempt is permitted for the given
	// normalized email, counting this attempt.
	Allow(ctx context.Context, email string) (bool, error)
	// Reset clears the attempt counter after a successful login.
	Reset(ctx context.Context, email string) error
}
