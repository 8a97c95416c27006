package service

import (
	"context"
	"errors"

	"instructorhub/internal/onboarding/models"
	dErrors "instructorhub/pkg/domain-errors"
	"instructorhub/pkg/email"
	audit "instructorhub/pkg/platform/audit"
	"instructorhub/pkg/platform/sentinel"
	"instructorhub/pkg/requestcontext"
)

// maxTokenAttempts bounds retries when a generated token collides.
const maxTokenAttempts = 3

// Issue mints a single-use setup credential and supersedes any older live
// credential for the same email. An error means nothing was persisted and no
// email may reference the token.
func (s *Service) Issue(ctx context.Context, req models.IssueRequest) (*models.IssuedCredential, error) {
	ctx, span := tracer.Start(ctx, "onboarding.issue")
	defer span.End()

	address, ok := email.Normalize(req.Email)
	if !ok {
		return nil, dErrors.New(dErrors.CodeValidation, "A valid applicant email is required")
	}
	now := requestcontext.Now(ctx)
	cred := &models.SetupCredential{
		SubjectID:   req.SubjectID,
		Email:       address,
		DisplayName: email.DisplayName(req.DisplayName, address),
		Purpose:     models.PurposeInstructorSetup,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.cfg.CredentialTTL),
	}

	var err error
	for attempt := 0; attempt < maxTokenAttempts; attempt++ {
		if cred.Token, err = s.newToken(); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate setup token")
		}
		err = s.stores.Credentials.Create(ctx, cred)
		if !errors.Is(err, sentinel.ErrConflict) {
			break
		}
		s.logger.WarnContext(ctx, "setup token collision, regenerating", "attempt", attempt+1)
	}
	if err != nil {
		span.RecordError(err)
		return nil, storeError(err, "failed to persist setup credential")
	}

	superseded, err := s.stores.Credentials.SupersedeLive(ctx, address, cred.Token, now)
	if err != nil {
		// The new credential is persisted and newest; older live ones are
		// caught again on the next issuance.
		s.logger.WarnContext(ctx, "failed to supersede older setup credentials", "email", address, "error", err)
	} else if superseded > 0 {
		s.emit(ctx, audit.Event{
			Action:    string(audit.EventCredentialSuperseded),
			SubjectID: req.SubjectID,
			Email:     address,
			Subject:   maskToken(cred.Token),
		})
	}

	s.metrics.IncCredentialsIssued()
	s.logger.InfoContext(ctx, "setup credential issued",
		"email", address,
		"token", maskToken(cred.Token),
		"expires_at", cred.ExpiresAt,
		"superseded", superseded,
	)
	s.emit(ctx, audit.Event{
		Action:    string(audit.EventCredentialIssued),
		SubjectID: req.SubjectID,
		Email:     address,
		Subject:   maskToken(cred.Token),
	})

	return &models.IssuedCredential{
		Token:         cred.Token,
		RedemptionURL: s.redemptionURL(cred.Token),
		ExpiresAt:     cred.ExpiresAt,
	}, nil
}

// ResendSetupLink returns the applicant's most recent live credential, or
// issues a fresh one when none is live. The bool reports reuse.
func (s *Service) ResendSetupLink(ctx context.Context, req models.IssueRequest) (*models.IssuedCredential, bool, error) {
	ctx, span := tracer.Start(ctx, "onboarding.resend_setup_link")
	defer span.End()

	address, ok := email.Normalize(req.Email)
	if !ok {
		return nil, false, dErrors.New(dErrors.CodeValidation, "A valid applicant email is required")
	}
	now := requestcontext.Now(ctx)
	cred, err := s.stores.Credentials.FindLatestLive(ctx, address, now)
	switch {
	case err == nil:
		s.emit(ctx, audit.Event{
			Action:    string(audit.EventCredentialResent),
			SubjectID: cred.SubjectID,
			Email:     address,
			Subject:   maskToken(cred.Token),
		})
		return &models.IssuedCredential{
			Token:         cred.Token,
			RedemptionURL: s.redemptionURL(cred.Token),
			ExpiresAt:     cred.ExpiresAt,
		}, true, nil
	case errors.Is(err, sentinel.ErrNotFound):
		issued, err := s.Issue(ctx, req)
		return issued, false, err
	default:
		return nil, false, storeError(err, "failed to load setup credentials")
	}
}
