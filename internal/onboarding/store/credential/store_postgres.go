package credential

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"instructorhub/internal/onboarding/models"
	"instructorhub/pkg/platform/sentinel"
	txcontext "instructorhub/pkg/platform/tx"
)

const uniqueViolation = "23505"

// PostgresStore persists credentials in setup_credentials. Every method joins
// a transaction opened on ctx.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const credentialColumns = `token, subject_id, email, display_name, purpose, created_at, expires_at, used, used_at, superseded_at`

func (s *PostgresStore) Create(ctx context.Context, cred *models.SetupCredential) error {
	query := `
		INSERT INTO setup_credentials (` + credentialColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := txcontext.Conn(ctx, s.db).ExecContext(ctx, query,
		cred.Token,
		cred.SubjectID,
		cred.Email,
		cred.DisplayName,
		string(cred.Purpose),
		cred.CreatedAt,
		cred.ExpiresAt,
		cred.Used,
		cred.UsedAt,
		cred.SupersededAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("setup credential already exists: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("insert setup credential: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByToken(ctx context.Context, token string) (*models.SetupCredential, error) {
	query := `SELECT ` + credentialColumns + ` FROM setup_credentials WHERE token = $1`
	cred, err := scanCredential(txcontext.Conn(ctx, s.db).QueryRowContext(ctx, query, token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("setup credential not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find setup credential: %w", err)
	}
	return cred, nil
}

// MarkUsed is a conditional write: it only succeeds while used is false, so
// concurrent consumers serialize on the row and exactly one wins.
func (s *PostgresStore) MarkUsed(ctx context.Context, token string, now time.Time) error {
	conn := txcontext.Conn(ctx, s.db)
	res, err := conn.ExecContext(ctx, `
		UPDATE setup_credentials
		SET used = TRUE, used_at = $2
		WHERE token = $1 AND used = FALSE AND superseded_at IS NULL
	`, token, now)
	if err != nil {
		return fmt.Errorf("consume setup credential: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("consume setup credential: %w", err)
	}
	if rows == 1 {
		return nil
	}

	var used, superseded bool
	err = conn.QueryRowContext(ctx,
		`SELECT used, superseded_at IS NOT NULL FROM setup_credentials WHERE token = $1`, token,
	).Scan(&used, &superseded)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("setup credential not found: %w", sentinel.ErrNotFound)
	case err != nil:
		return fmt.Errorf("inspect setup credential: %w", err)
	case used:
		return fmt.Errorf("setup credential consumed: %w", sentinel.ErrAlreadyUsed)
	case superseded:
		return fmt.Errorf("setup credential replaced: %w", sentinel.ErrSuperseded)
	default:
		return fmt.Errorf("setup credential changed concurrently: %w", sentinel.ErrConflict)
	}
}

func (s *PostgresStore) SupersedeLive(ctx context.Context, email, keep string, now time.Time) (int, error) {
	res, err := txcontext.Conn(ctx, s.db).ExecContext(ctx, `
		UPDATE setup_credentials
		SET superseded_at = $3
		WHERE email = $1 AND token <> $2 AND used = FALSE AND superseded_at IS NULL
	`, email, keep, now)
	if err != nil {
		return 0, fmt.Errorf("supersede setup credentials: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("supersede setup credentials: %w", err)
	}
	return int(rows), nil
}

func (s *PostgresStore) FindLatestLive(ctx context.Context, email string, now time.Time) (*models.SetupCredential, error) {
	query := `
		SELECT ` + credentialColumns + `
		FROM setup_credentials
		WHERE email = $1 AND used = FALSE AND superseded_at IS NULL AND expires_at >= $2
		ORDER BY created_at DESC
		LIMIT 1
	`
	cred, err := scanCredential(txcontext.Conn(ctx, s.db).QueryRowContext(ctx, query, email, now))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("no live setup credential: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find live setup credential: %w", err)
	}
	return cred, nil
}

func scanCredential(row *sql.Row) (*models.SetupCredential, error) {
	var cred models.SetupCredential
	var purpose string
	var usedAt, supersededAt sql.NullTime
	if err := row.Scan(
		&cred.Token,
		&cred.SubjectID,
		&cred.Email,
		&cred.DisplayName,
		&purpose,
		&cred.CreatedAt,
		&cred.ExpiresAt,
		&cred.Used,
		&usedAt,
		&supersededAt,
	); err != nil {
		return nil, err
	}
	cred.Purpose = models.Purpose(purpose)
	if usedAt.Valid {
		t := usedAt.Time
		cred.UsedAt = &t
	}
	if supersededAt.Valid {
		t := supersededAt.Time
		cred.SupersededAt = &t
	}
	return &cred, nil
}
