package payout

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"instructorhub/internal/onboarding/models"
	"instructorhub/pkg/platform/sentinel"
	txcontext "instructorhub/pkg/platform/tx"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const destinationColumns = `owner_id, subaccount_code, subaccount_id, bank_code, account_number, account_name,
	business_name, revenue_share_percent, status, created_at, updated_at`

// Upsert keys on owner_id so retries never create a second destination.
func (s *PostgresStore) Upsert(ctx context.Context, dest models.PayoutDestination) error {
	query := `
		INSERT INTO payout_destinations (` + destinationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (owner_id) DO UPDATE SET
			subaccount_code = EXCLUDED.subaccount_code,
			subaccount_id = EXCLUDED.subaccount_id,
			bank_code = EXCLUDED.bank_code,
			account_number = EXCLUDED.account_number,
			account_name = EXCLUDED.account_name,
			business_name = EXCLUDED.business_name,
			revenue_share_percent = EXCLUDED.revenue_share_percent,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at
	`
	_, err := txcontext.Conn(ctx, s.db).ExecContext(ctx, query,
		dest.OwnerID,
		dest.SubaccountCode,
		dest.SubaccountID,
		dest.BankCode,
		dest.AccountNumber,
		dest.AccountName,
		dest.BusinessName,
		dest.RevenueSharePercent,
		dest.Status,
		dest.CreatedAt,
		dest.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert payout destination: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByOwner(ctx context.Context, ownerID string) (*models.PayoutDestination, error) {
	query := `SELECT ` + destinationColumns + ` FROM payout_destinations WHERE owner_id = $1`
	rows, err := txcontext.Conn(ctx, s.db).QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("find payout destination: %w", err)
	}
	defer rows.Close()
	dests, err := scanDestinations(rows)
	if err != nil {
		return nil, err
	}
	if len(dests) == 0 {
		return nil, fmt.Errorf("payout destination not found: %w", sentinel.ErrNotFound)
	}
	return &dests[0], nil
}

func (s *PostgresStore) List(ctx context.Context) ([]models.PayoutDestination, error) {
	query := `SELECT ` + destinationColumns + ` FROM payout_destinations ORDER BY owner_id`
	rows, err := txcontext.Conn(ctx, s.db).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list payout destinations: %w", err)
	}
	defer rows.Close()
	return scanDestinations(rows)
}

func scanDestinations(rows *sql.Rows) ([]models.PayoutDestination, error) {
	var out []models.PayoutDestination
	for rows.Next() {
		var d models.PayoutDestination
		if err := rows.Scan(
			&d.OwnerID,
			&d.SubaccountCode,
			&d.SubaccountID,
			&d.BankCode,
			&d.AccountNumber,
			&d.AccountName,
			&d.BusinessName,
			&d.RevenueSharePercent,
			&d.Status,
			&d.CreatedAt,
			&d.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan payout destination: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("iterate payout destinations: %w", err)
	}
	return out, nil
}
