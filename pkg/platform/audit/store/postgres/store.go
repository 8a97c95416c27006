package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	audit "instructorhub/pkg/platform/audit"
	txcontext "instructorhub/pkg/platform/tx"
)

// Store appends audit events to the audit_events table. When a transaction is
// open on ctx the event joins it.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	query := `
		INSERT INTO audit_events (
			id, category, action, subject_id, email, subject,
			decision, reason, request_id, actor_id, client_ip,
			user_agent, browser, os, device, occurred_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err := txcontext.Conn(ctx, s.db).ExecContext(ctx, query,
		uuid.New(),
		string(event.Category),
		event.Action,
		event.SubjectID,
		event.Email,
		event.Subject,
		event.Decision,
		event.Reason,
		event.RequestID,
		event.ActorID,
		event.ClientIP,
		event.UserAgent,
		event.Browser,
		event.OS,
		event.Device,
		event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListBySubject returns a subject's events in chronological order.
func (s *Store) ListBySubject(ctx context.Context, subjectID string) ([]audit.Event, error) {
	query := `
		SELECT category, action, subject_id, email, subject, decision,
			   reason, request_id, actor_id, client_ip,
			   user_agent, browser, os, device, occurred_at
		FROM audit_events
		WHERE subject_id = $1
		ORDER BY occurred_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query, subjectID)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var e audit.Event
		var category string
		if err := rows.Scan(&category, &e.Action, &e.SubjectID, &e.Email, &e.Subject, &e.Decision,
			&e.Reason, &e.RequestID, &e.ActorID, &e.ClientIP,
			&e.UserAgent, &e.Browser, &e.OS, &e.Device, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Category = audit.EventCategory(category)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
