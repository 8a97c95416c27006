package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"instructorhub/internal/applications/models"
	"instructorhub/internal/platform/postgres"
	"instructorhub/pkg/platform/sentinel"
	txcontext "instructorhub/pkg/platform/tx"
)

const uniqueViolation = "23505"

type PostgresStore struct {
	db      *sql.DB
	timeout time.Duration
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, timeout: 5 * time.Second}
}

const applicationColumns = `id, full_name, email, phone, expertise, experience, qualifications, bio,
	portfolio, linkedin, availability, teaching_format, status, decision_reason, submitted_at, decided_at`

// Create inserts the application and its feed entry in one transaction.
func (s *PostgresStore) Create(ctx context.Context, app *models.Application, notice models.AdminNotification) error {
	return postgres.RunInTx(ctx, s.db, s.timeout, func(tx *sql.Tx) error {
		ctx := txcontext.WithTx(ctx, tx)
		_, err := txcontext.Conn(ctx, s.db).ExecContext(ctx, `
			INSERT INTO instructor_applications (`+applicationColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
			app.ID,
			app.FullName,
			app.Email,
			app.Phone,
			app.Expertise,
			app.Experience,
			app.Qualifications,
			app.Bio,
			app.Portfolio,
			app.LinkedIn,
			app.Availability,
			app.TeachingFormat,
			app.Status,
			app.DecisionReason,
			app.SubmittedAt,
			app.DecidedAt,
		)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
				return fmt.Errorf("application %s exists: %w", app.ID, sentinel.ErrConflict)
			}
			return fmt.Errorf("insert application: %w", err)
		}
		_, err = txcontext.Conn(ctx, s.db).ExecContext(ctx, `
			INSERT INTO admin_notifications (id, type, title, message, priority, read, application_id, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			notice.ID,
			notice.Type,
			notice.Title,
			notice.Message,
			notice.Priority,
			notice.Read,
			notice.ApplicationID,
			notice.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert admin notification: %w", err)
		}
		return nil
	})
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (*models.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM instructor_applications WHERE id = $1`
	rows, err := txcontext.Conn(ctx, s.db).QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("find application: %w", err)
	}
	defer rows.Close()
	apps, err := scanApplications(rows)
	if err != nil {
		return nil, err
	}
	if len(apps) == 0 {
		return nil, fmt.Errorf("application not found: %w", sentinel.ErrNotFound)
	}
	return &apps[0], nil
}

func (s *PostgresStore) List(ctx context.Context, status models.Status) ([]models.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM instructor_applications
		WHERE ($1 = '' OR status = $1)
		ORDER BY submitted_at DESC, id`
	rows, err := txcontext.Conn(ctx, s.db).QueryContext(ctx, query, string(status))
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()
	return scanApplications(rows)
}

// Decide only updates pending rows, so two admins deciding at once cannot
// both win.
func (s *PostgresStore) Decide(ctx context.Context, id string, status models.Status, reason string, at time.Time) (*models.Application, error) {
	query := `UPDATE instructor_applications
		SET status = $2, decision_reason = $3, decided_at = $4
		WHERE id = $1 AND status = $5
		RETURNING ` + applicationColumns
	rows, err := txcontext.Conn(ctx, s.db).QueryContext(ctx, query, id, status, reason, at, models.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("decide application: %w", err)
	}
	defer rows.Close()
	apps, err := scanApplications(rows)
	if err != nil {
		return nil, err
	}
	if len(apps) == 1 {
		return &apps[0], nil
	}
	existing, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("application already %s: %w", existing.Status, sentinel.ErrConflict)
}

func (s *PostgresStore) ListNotifications(ctx context.Context) ([]models.AdminNotification, error) {
	rows, err := txcontext.Conn(ctx, s.db).QueryContext(ctx, `
		SELECT id, type, title, message, priority, read, application_id, created_at
		FROM admin_notifications ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list admin notifications: %w", err)
	}
	defer rows.Close()
	var out []models.AdminNotification
	for rows.Next() {
		var n models.AdminNotification
		if err := rows.Scan(&n.ID, &n.Type, &n.Title, &n.Message, &n.Priority, &n.Read, &n.ApplicationID, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan admin notification: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate admin notifications: %w", err)
	}
	return out, nil
}

func scanApplications(rows *sql.Rows) ([]models.Application, error) {
	var out []models.Application
	for rows.Next() {
		var a models.Application
		var decidedAt sql.NullTime
		if err := rows.Scan(
			&a.ID,
			&a.FullName,
			&a.Email,
			&a.Phone,
			&a.Expertise,
			&a.Experience,
			&a.Qualifications,
			&a.Bio,
			&a.Portfolio,
			&a.LinkedIn,
			&a.Availability,
			&a.TeachingFormat,
			&a.Status,
			&a.DecisionReason,
			&a.SubmittedAt,
			&decidedAt,
		); err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		if decidedAt.Valid {
			t := decidedAt.Time
			a.DecidedAt = &t
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applications: %w", err)
	}
	return out, nil
}
