package postgres

import (
	"context"
	"database/sql"
	"fmt"

	id "civicfund/pkg/domain"
	audit "civicfund/pkg/platform/audit"
	txcontext "civicfund/pkg/platform/tx"

	"github.com/google/uuid"
)

// Store implements audit.Store on the audit_events table.
type Store struct {
	db *sql.DB
}

// New creates a PostgreSQL audit store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// Append inserts an event. Duplicate IDs are ignored so redelivered events are harmless.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	eventID := uuid.New()
	if parsed, err := uuid.Parse(event.ID); err == nil {
		eventID = parsed
	}

	var userID *uuid.UUID
	if !event.UserID.IsNil() {
		uid := uuid.UUID(event.UserID)
		userID = &uid
	}

	query := `
		INSERT INTO audit_events (
			id, category, occurred_at, action, subject, user_id,
			actor_id, reason, request_id, ip
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		eventID,
		string(audit.AuditEvent(event.Action).Category()),
		event.Timestamp,
		event.Action,
		event.Subject,
		userID,
		event.ActorID,
		event.Reason,
		event.RequestID,
		event.IP,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListRecent returns up to limit events, most recent first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT id, category, occurred_at, action, subject, user_id,
		       actor_id, reason, request_id, ip
		FROM audit_events
		ORDER BY occurred_at DESC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var (
			event    audit.Event
			eventID  uuid.UUID
			category string
			userID   uuid.NullUUID
		)
		if err := rows.Scan(&eventID, &category, &event.Timestamp, &event.Action, &event.Subject,
			&userID, &event.ActorID, &event.Reason, &event.RequestID, &event.IP); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.ID = eventID.String()
		event.Category = audit.EventCategory(category)
		if userID.Valid {
			event.UserID = id.UserID(userID.UUID)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
