package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/backoffice/users-api/internal/core/domain"
)

// AuditRepository persists the append-only user audit trail.
type AuditRepository struct {
	pool *pgxpool.Pool
}

func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

func (r *AuditRepository) Insert(ctx context.Context, event *domain.AuditEvent) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO user_audit_events (user_id, action, actor) VALUES ($1, $2, $3)`,
		event.UserID, string(event.Action), event.Actor)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func (r *AuditRepository) FindByUserID(ctx context.Context, userID int) ([]domain.AuditEvent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, action, actor, created_at
		 FROM user_audit_events
		 WHERE user_id = $1
		 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	events := make([]domain.AuditEvent, 0)
	for rows.Next() {
		var e domain.AuditEvent
		var action string
		if err := rows.Scan(&e.ID, &e.UserID, &action, &e.Actor, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Action = domain.AuditAction(action)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
