package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"instructorhub/pkg/platform/sentinel"
	txcontext "instructorhub/pkg/platform/tx"
)

// PostgresDirectory stores accounts and their claims in identity_accounts.
type PostgresDirectory struct {
	db *sql.DB
}

func NewPostgresDirectory(db *sql.DB) *PostgresDirectory {
	return &PostgresDirectory{db: db}
}

const accountColumns = `subject_id, email, display_name, role, instructor_approved, bank_details_added,
	subaccount_code, created_at, updated_at`

// EnsureAccount inserts on first sight of email; the conflict branch is a
// no-op update so RETURNING yields the existing row.
func (d *PostgresDirectory) EnsureAccount(ctx context.Context, email, displayName string, now time.Time) (*Account, error) {
	query := `
		INSERT INTO identity_accounts (subject_id, email, display_name, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (email) DO UPDATE SET email = EXCLUDED.email
		RETURNING ` + accountColumns
	row := txcontext.Conn(ctx, d.db).QueryRowContext(ctx, query, uuid.NewString(), email, displayName, RoleUser, now)
	acct, err := scanAccount(row)
	if err != nil {
		return nil, fmt.Errorf("ensure account: %w", err)
	}
	return acct, nil
}

func (d *PostgresDirectory) FindBySubject(ctx context.Context, subjectID string) (*Account, error) {
	query := `SELECT ` + accountColumns + ` FROM identity_accounts WHERE subject_id = $1`
	acct, err := scanAccount(txcontext.Conn(ctx, d.db).QueryRowContext(ctx, query, subjectID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("account not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return acct, nil
}

func (d *PostgresDirectory) FindByEmail(ctx context.Context, email string) (*Account, error) {
	query := `SELECT ` + accountColumns + ` FROM identity_accounts WHERE email = $1`
	acct, err := scanAccount(txcontext.Conn(ctx, d.db).QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("account not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find account by email: %w", err)
	}
	return acct, nil
}

func (d *PostgresDirectory) SetClaims(ctx context.Context, subjectID string, claims Claims, now time.Time) error {
	res, err := txcontext.Conn(ctx, d.db).ExecContext(ctx, `
		UPDATE identity_accounts
		SET role = $2, instructor_approved = $3, bank_details_added = $4, subaccount_code = $5, updated_at = $6
		WHERE subject_id = $1
	`, subjectID, claims.Role, claims.InstructorApproved, claims.BankDetailsAdded, claims.SubaccountCode, now)
	if err != nil {
		return fmt.Errorf("set claims: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set claims: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("account not found: %w", sentinel.ErrNotFound)
	}
	return nil
}

func (d *PostgresDirectory) ListWithBankDetails(ctx context.Context) ([]Account, error) {
	query := `SELECT ` + accountColumns + ` FROM identity_accounts WHERE bank_details_added = TRUE ORDER BY subject_id`
	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var out []Account
	for rows.Next() {
		acct, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		out = append(out, *acct)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*Account, error) {
	var a Account
	if err := row.Scan(
		&a.SubjectID,
		&a.Email,
		&a.DisplayName,
		&a.Claims.Role,
		&a.Claims.InstructorApproved,
		&a.Claims.BankDetailsAdded,
		&a.Claims.SubaccountCode,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &a, nil
}
