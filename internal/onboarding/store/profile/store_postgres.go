package profile

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

func (s *PostgresStore) Upsert(ctx context.Context, p models.InstructorProfile) error {
	_, err := txcontext.Conn(ctx, s.db).ExecContext(ctx, `
		INSERT INTO instructor_profiles (subject_id, email, display_name, role, profile_status, subaccount_code, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (subject_id) DO UPDATE SET
			email = EXCLUDED.email,
			display_name = EXCLUDED.display_name,
			role = EXCLUDED.role,
			profile_status = EXCLUDED.profile_status,
			subaccount_code = EXCLUDED.subaccount_code,
			updated_at = EXCLUDED.updated_at
	`, p.SubjectID, p.Email, p.DisplayName, string(p.Role), string(p.ProfileStatus), p.SubaccountCode, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert instructor profile: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindBySubject(ctx context.Context, subjectID string) (*models.InstructorProfile, error) {
	var p models.InstructorProfile
	var role, status string
	err := txcontext.Conn(ctx, s.db).QueryRowContext(ctx, `
		SELECT subject_id, email, display_name, role, profile_status, subaccount_code, updated_at
		FROM instructor_profiles WHERE subject_id = $1
	`, subjectID).Scan(&p.SubjectID, &p.Email, &p.DisplayName, &role, &status, &p.SubaccountCode, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("instructor profile not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find instructor profile: %w", err)
	}
	p.Role = models.Role(role)
	p.ProfileStatus = models.ProfileStatus(status)
	return &p, nil
}
