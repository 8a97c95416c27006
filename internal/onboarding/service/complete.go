package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"

	"instructorhub/internal/gateway/paystack"
	"instructorhub/internal/identity"
	"instructorhub/internal/onboarding/models"
	"instructorhub/internal/onboarding/store"
	dErrors "instructorhub/pkg/domain-errors"
	audit "instructorhub/pkg/platform/audit"
	"instructorhub/pkg/platform/sentinel"
	"instructorhub/pkg/requestcontext"
)

// applicant is the resolved identity a completion acts for.
type applicant struct {
	subjectID   string
	email       string
	displayName string
	// token is set in token mode only.
	token string
	// accountEmail keys the per-account lock. It is the directory's email
	// when an account exists, otherwise the credential's.
	accountEmail string
}

// CompleteOnboarding redeems a setup token or verified session, provisions
// the payout subaccount and promotes the account to active instructor.
//
// Token mode holds a short per-token lock for the whole call and consumes the
// token only after the gateway succeeds, in the same unit of work that writes
// the payout destination and profile. A gateway failure leaves the token
// redeemable and the account untouched. Both modes also hold a per-account
// lock around provisioning so one instructor never gets two subaccounts.
func (s *Service) CompleteOnboarding(ctx context.Context, req models.CompletionRequest) (*models.CompletionResult, error) {
	ctx, span := tracer.Start(ctx, "onboarding.complete")
	defer span.End()
	span.SetAttributes(attribute.String("onboarding.mode", req.Mode()))

	result, err := s.complete(ctx, req)
	s.metrics.ObserveOnboarding(req.Mode(), completionOutcome(err))
	if err != nil {
		span.RecordError(err)
	}
	return result, err
}

func (s *Service) complete(ctx context.Context, req models.CompletionRequest) (*models.CompletionResult, error) {
	req.Token = strings.TrimSpace(req.Token)
	req.Bearer = strings.TrimSpace(req.Bearer)
	if req.Token == "" && req.Bearer == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "Authorization required")
	}
	if err := s.validateDetails(req.Details); err != nil {
		return nil, err
	}

	if req.Token != "" {
		release, err := s.acquire(ctx, lockKey(req.Token),
			dErrors.New(dErrors.CodeInvalidCredential, "Token redemption already in progress"))
		if err != nil {
			return nil, err
		}
		defer release()
	}

	who, err := s.resolveApplicant(ctx, req)
	if err != nil {
		return nil, err
	}

	release, err := s.acquire(ctx, accountLockKey(who.accountEmail),
		dErrors.New(dErrors.CodeConflict, "Onboarding already in progress for this account"))
	if err != nil {
		return nil, err
	}
	defer release()

	sub, err := s.provision(ctx, who, req.Details)
	if err != nil {
		s.logger.WarnContext(ctx, "payout provisioning failed", "subject_id", who.subjectID, "error", err)
		s.emit(ctx, audit.Event{
			Action:    string(audit.EventOnboardingFailed),
			SubjectID: who.subjectID,
			Email:     who.email,
			Reason:    dErrors.MessageOf(err),
		})
		return nil, err
	}

	if err := s.promote(ctx, &who, sub, req.Details); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "onboarding completed",
		"subject_id", who.subjectID,
		"subaccount_code", sub.Code,
		"mode", req.Mode(),
	)
	s.emit(ctx, audit.Event{
		Action:    string(audit.EventOnboardingCompleted),
		SubjectID: who.subjectID,
		Email:     who.email,
		Subject:   sub.Code,
		Decision:  req.Mode(),
	})
	s.sendWelcome(ctx, who)

	return &models.CompletionResult{SubjectID: who.subjectID, SubaccountCode: sub.Code}, nil
}

func (s *Service) validateDetails(d models.PayoutDetails) error {
	err := s.validate.Struct(d)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		field := payoutFieldName(verrs[0].StructField())
		if verrs[0].Tag() == "required" {
			return dErrors.New(dErrors.CodeValidation, field+" is required")
		}
		return dErrors.New(dErrors.CodeValidation, field+" is invalid")
	}
	return dErrors.Wrap(err, dErrors.CodeValidation, "invalid payout details")
}

func payoutFieldName(structField string) string {
	switch structField {
	case "BankCode":
		return "bank_code"
	case "AccountNumber":
		return "account_number"
	case "AccountName":
		return "account_name"
	case "BusinessName":
		return "business_name"
	default:
		return structField
	}
}

// resolveApplicant authenticates the request and loads the account it acts for.
func (s *Service) resolveApplicant(ctx context.Context, req models.CompletionRequest) (applicant, error) {
	ctx, span := tracer.Start(ctx, "onboarding.resolve_applicant")
	defer span.End()

	now := requestcontext.Now(ctx)
	if req.Token != "" {
		cred, err := s.stores.Credentials.FindByToken(ctx, req.Token)
		if errors.Is(err, sentinel.ErrNotFound) {
			s.rejectCredential(ctx, req.Token, "", models.ReasonNotFound)
			return applicant{}, dErrors.New(dErrors.CodeInvalidCredential, "Invalid or expired token")
		}
		if err != nil {
			return applicant{}, storeError(err, "failed to load setup credential")
		}
		if reason := cred.RejectionReason(now); reason != "" {
			s.rejectCredential(ctx, req.Token, cred.Email, reason)
			return applicant{}, dErrors.New(dErrors.CodeInvalidCredential, reason)
		}

		who := applicant{
			email:        cred.Email,
			displayName:  cred.DisplayName,
			token:        cred.Token,
			accountEmail: cred.Email,
		}
		acct, err := s.accountFor(ctx, cred)
		if err != nil {
			return applicant{}, err
		}
		if acct != nil {
			who.subjectID = acct.SubjectID
			who.accountEmail = acct.Email
		}
		return who, nil
	}

	session, err := s.sessions.Verify(ctx, req.Bearer)
	if err != nil {
		s.emit(ctx, audit.Event{
			Action: string(audit.EventSessionRejected),
			Reason: err.Error(),
		})
		return applicant{}, dErrors.Wrap(err, dErrors.CodeUnauthorized, "Invalid or expired session")
	}
	acct, err := s.directory.FindBySubject(ctx, session.SubjectID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return applicant{}, dErrors.New(dErrors.CodeUnauthorized, "Account not found")
	}
	if err != nil {
		return applicant{}, storeError(err, "failed to load account")
	}
	return applicant{
		subjectID:    acct.SubjectID,
		email:        acct.Email,
		displayName:  acct.DisplayName,
		accountEmail: acct.Email,
	}, nil
}

// accountFor looks up the credential's account without creating one. A nil
// account means promote creates it by email after the gateway succeeds.
func (s *Service) accountFor(ctx context.Context, cred *models.SetupCredential) (*identity.Account, error) {
	if cred.SubjectID != "" {
		acct, err := s.directory.FindBySubject(ctx, cred.SubjectID)
		if err == nil {
			return acct, nil
		}
		if !errors.Is(err, sentinel.ErrNotFound) {
			return nil, storeError(err, "failed to load account")
		}
	}
	acct, err := s.directory.FindByEmail(ctx, cred.Email)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storeError(err, "failed to resolve account")
	}
	return acct, nil
}

// acquire takes a redemption lock, answering busy when another request holds
// it. The returned release never fails the caller.
func (s *Service) acquire(ctx context.Context, key string, busy error) (func(), error) {
	unlock, err := s.locker.TryLock(ctx, key, s.cfg.LockTTL)
	if errors.Is(err, sentinel.ErrLocked) {
		return nil, busy
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to acquire redemption lock")
	}
	return func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			s.logger.WarnContext(ctx, "failed to release redemption lock", "error", err)
		}
	}, nil
}

func (s *Service) rejectCredential(ctx context.Context, token, email, reason string) {
	s.logger.InfoContext(ctx, "setup credential rejected", "token", maskToken(token), "reason", reason)
	s.emit(ctx, audit.Event{
		Action:  string(audit.EventCredentialRejected),
		Email:   email,
		Subject: maskToken(token),
		Reason:  reason,
	})
}

// provision creates the subaccount, or updates it when the account already
// has one. Nothing is written locally here.
func (s *Service) provision(ctx context.Context, who applicant, d models.PayoutDetails) (paystack.Subaccount, error) {
	ctx, span := tracer.Start(ctx, "onboarding.provision")
	defer span.End()

	if s.cfg.VerifyAccountOnSubmit {
		if _, err := s.gateway.ResolveAccount(ctx, d.AccountNumber, d.BankCode); err != nil {
			return paystack.Subaccount{}, gatewayError(err, "Could not verify bank account")
		}
	}

	req := paystack.SubaccountRequest{
		BusinessName:     d.BusinessName,
		SettlementBank:   d.BankCode,
		AccountNumber:    d.AccountNumber,
		PercentageCharge: models.RevenueSharePercent,
		Description:      "Instructor payout account for " + d.AccountName,
		PrimaryEmail:     who.email,
		PrimaryName:      d.AccountName,
	}

	existing, err := s.existingSubaccountCode(ctx, who.subjectID)
	if err != nil {
		return paystack.Subaccount{}, err
	}
	if existing != "" {
		span.SetAttributes(attribute.Bool("onboarding.reprovision", true))
		sub, err := s.gateway.UpdateSubaccount(ctx, existing, req)
		if err == nil {
			if sub.Code == "" {
				sub.Code = existing
			}
			return sub, nil
		}
		var apiErr *paystack.APIError
		if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusNotFound {
			return paystack.Subaccount{}, gatewayError(err, "Failed to update payout account")
		}
		s.logger.WarnContext(ctx, "known subaccount missing at gateway, creating a new one",
			"subject_id", who.subjectID, "subaccount_code", existing)
	}

	sub, err := s.gateway.CreateSubaccount(ctx, req)
	if err != nil {
		return paystack.Subaccount{}, gatewayError(err, "Failed to create payout account")
	}
	return sub, nil
}

// existingSubaccountCode prefers the stored destination, pending or active,
// then the claims. An applicant without an account has neither.
func (s *Service) existingSubaccountCode(ctx context.Context, subjectID string) (string, error) {
	if subjectID == "" {
		return "", nil
	}
	dest, err := s.stores.Payouts.FindByOwner(ctx, subjectID)
	if err == nil && dest.SubaccountCode != "" {
		return dest.SubaccountCode, nil
	}
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return "", storeError(err, "failed to load payout destination")
	}
	acct, err := s.directory.FindBySubject(ctx, subjectID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", nil
		}
		return "", storeError(err, "failed to load account")
	}
	return acct.Claims.SubaccountCode, nil
}

// promote creates the account when needed and records the subaccount as a
// pending destination before writing claims, so a retry or Repair always
// finds it. It then consumes the token and writes the active documents in one
// unit of work. Failures here carry the subaccount code.
func (s *Service) promote(ctx context.Context, who *applicant, sub paystack.Subaccount, d models.PayoutDetails) error {
	ctx, span := tracer.Start(ctx, "onboarding.promote")
	defer span.End()

	now := requestcontext.Now(ctx)
	if who.subjectID == "" {
		acct, err := s.directory.EnsureAccount(ctx, who.email, who.displayName, now)
		if err != nil {
			return s.partial(ctx, *who, sub.Code, models.StageRecord, err)
		}
		who.subjectID = acct.SubjectID
	}

	pending := destinationFrom(who.subjectID, sub, d, now)
	pending.Status = models.DestinationStatusPending
	if err := s.stores.Payouts.Upsert(ctx, pending); err != nil {
		return s.partial(ctx, *who, sub.Code, models.StageRecord, err)
	}

	if err := s.directory.SetClaims(ctx, who.subjectID, instructorClaims(sub.Code), now); err != nil {
		return s.partial(ctx, *who, sub.Code, models.StageClaims, err)
	}

	err := s.tx.RunInTx(ctx, func(ctx context.Context, stores store.Stores) error {
		if who.token != "" {
			if err := stores.Credentials.MarkUsed(ctx, who.token, now); err != nil {
				return err
			}
		}
		if err := stores.Payouts.Upsert(ctx, destinationFrom(who.subjectID, sub, d, now)); err != nil {
			return err
		}
		return stores.Profiles.Upsert(ctx, activeProfile(who.subjectID, who.email, who.displayName, sub.Code, now))
	})
	if errors.Is(err, sentinel.ErrAlreadyUsed) || errors.Is(err, sentinel.ErrSuperseded) {
		// Another redemption won after our lock lapsed. Our claims now point
		// at an orphan subaccount, which Reconcile reports as a mismatch.
		s.logger.ErrorContext(ctx, "setup token consumed concurrently after provisioning",
			"subject_id", who.subjectID, "subaccount_code", sub.Code)
		s.emit(ctx, audit.Event{
			Action:    string(audit.EventOnboardingPartial),
			SubjectID: who.subjectID,
			Subject:   sub.Code,
			Reason:    "token consumed concurrently",
		})
		return dErrors.New(dErrors.CodeInvalidCredential, models.ReasonUsed)
	}
	if err != nil {
		return s.partial(ctx, *who, sub.Code, models.StageDocuments, err)
	}
	return nil
}

func (s *Service) partial(ctx context.Context, who applicant, code, stage string, cause error) error {
	s.logger.ErrorContext(ctx, "onboarding left partially applied",
		"subject_id", who.subjectID,
		"subaccount_code", code,
		"stage", stage,
		"error", cause,
	)
	s.emit(ctx, audit.Event{
		Action:    string(audit.EventOnboardingPartial),
		SubjectID: who.subjectID,
		Email:     who.email,
		Subject:   code,
		Reason:    stage,
	})
	partial := &models.PartialOnboardingError{
		SubjectID:      who.subjectID,
		SubaccountCode: code,
		Stage:          stage,
		Err:            cause,
	}
	if dErrors.HasCode(cause, dErrors.CodeTimeout) || errors.Is(cause, context.DeadlineExceeded) {
		return dErrors.Wrap(partial, dErrors.CodeTimeout, "Payout account created but account update timed out")
	}
	return dErrors.Wrap(partial, dErrors.CodeInternal, "Payout account created but account update failed")
}

// sendWelcome dispatches the welcome email off the response path. It outlives
// the request but not its own timeout.
func (s *Service) sendWelcome(ctx context.Context, who applicant) {
	if s.welcome == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.WelcomeTimeout)
	s.welcomes.Add(1)
	go func() {
		defer s.welcomes.Done()
		defer cancel()
		if err := s.welcome.SendWelcome(ctx, who.subjectID, who.email, who.displayName); err != nil {
			s.logger.WarnContext(ctx, "welcome email not delivered", "subject_id", who.subjectID, "error", err)
		}
	}()
}

func instructorClaims(code string) identity.Claims {
	return identity.Claims{
		Role:               identity.RoleInstructor,
		InstructorApproved: true,
		BankDetailsAdded:   true,
		SubaccountCode:     code,
	}
}

func destinationFrom(ownerID string, sub paystack.Subaccount, d models.PayoutDetails, now time.Time) models.PayoutDestination {
	return models.PayoutDestination{
		OwnerID:             ownerID,
		SubaccountCode:      sub.Code,
		SubaccountID:        sub.ID,
		BankCode:            d.BankCode,
		AccountNumber:       d.AccountNumber,
		AccountName:         d.AccountName,
		BusinessName:        d.BusinessName,
		RevenueSharePercent: models.RevenueSharePercent,
		Status:              models.DestinationStatusActive,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

func activeProfile(subjectID, email, name, code string, now time.Time) models.InstructorProfile {
	return models.InstructorProfile{
		SubjectID:      subjectID,
		Email:          email,
		DisplayName:    name,
		Role:           models.RoleInstructor,
		ProfileStatus:  models.ProfileStatusActive,
		SubaccountCode: code,
		UpdatedAt:      now,
	}
}

// gatewayError maps a gateway failure. Timeouts keep their own code; every
// other failure is a provisioning failure carrying the gateway's message.
func gatewayError(err error, fallback string) error {
	var apiErr *paystack.APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return dErrors.Wrap(err, dErrors.CodePayoutProvisioning, apiErr.Message)
	case dErrors.HasCode(err, dErrors.CodeTimeout):
		return dErrors.Wrap(err, dErrors.CodeTimeout, "Payment gateway timed out")
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodePayoutProvisioning, "Payment gateway unavailable, please try again")
	default:
		return dErrors.Wrap(err, dErrors.CodePayoutProvisioning, fallback)
	}
}

// lockKey hashes the token so raw tokens never reach the lock backend.
func lockKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// accountLockKey is the per-account key, hashed like token keys.
func accountLockKey(email string) string {
	return "account:" + lockKey(strings.ToLower(email))
}

func completionOutcome(err error) string {
	if err == nil {
		return "success"
	}
	var partial *models.PartialOnboardingError
	if errors.As(err, &partial) {
		return "partial"
	}
	return string(dErrors.CodeOf(err))
}
