package service

import (
	"context"
	"errors"
	"strings"

	"instructorhub/internal/onboarding/models"
	dErrors "instructorhub/pkg/domain-errors"
	"instructorhub/pkg/platform/sentinel"
	"instructorhub/pkg/requestcontext"
)

// Validate reports whether token is currently redeemable. It never mutates
// the credential; a negative answer is a result, not an error.
func (s *Service) Validate(ctx context.Context, token string) (*models.ValidationResult, error) {
	ctx, span := tracer.Start(ctx, "onboarding.validate")
	defer span.End()

	token = strings.TrimSpace(token)
	if token == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "Token is required")
	}

	cred, err := s.stores.Credentials.FindByToken(ctx, token)
	if errors.Is(err, sentinel.ErrNotFound) {
		s.metrics.ObserveValidation("not_found")
		return &models.ValidationResult{Valid: false, Reason: models.ReasonNotFound}, nil
	}
	if err != nil {
		span.RecordError(err)
		return nil, storeError(err, "failed to load setup credential")
	}

	if reason := cred.RejectionReason(requestcontext.Now(ctx)); reason != "" {
		s.metrics.ObserveValidation(outcomeLabel(reason))
		return &models.ValidationResult{Valid: false, Reason: reason}, nil
	}
	s.metrics.ObserveValidation("valid")
	return &models.ValidationResult{
		Valid:       true,
		Email:       cred.Email,
		DisplayName: cred.DisplayName,
		Token:       cred.Token,
	}, nil
}

func outcomeLabel(reason string) string {
	switch reason {
	case models.ReasonUsed:
		return "used"
	case models.ReasonExpired:
		return "expired"
	case models.ReasonSuperseded:
		return "superseded"
	default:
		return "not_found"
	}
}
