package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"instructorhub/internal/identity"
	"instructorhub/internal/onboarding/models"
	"instructorhub/internal/onboarding/store"
	dErrors "instructorhub/pkg/domain-errors"
	audit "instructorhub/pkg/platform/audit"
	"instructorhub/pkg/platform/sentinel"
	"instructorhub/pkg/requestcontext"
)

// Reconcile lists subjects whose claims and stored documents disagree.
// bankDetailsAdded must imply an active payout destination and an active
// profile carrying the same subaccount code, and the reverse.
func (s *Service) Reconcile(ctx context.Context) ([]models.Inconsistency, error) {
	ctx, span := tracer.Start(ctx, "onboarding.reconcile")
	defer span.End()

	accounts, err := s.directory.ListWithBankDetails(ctx)
	if err != nil {
		return nil, storeError(err, "failed to list accounts")
	}
	destinations, err := s.stores.Payouts.List(ctx)
	if err != nil {
		return nil, storeError(err, "failed to list payout destinations")
	}

	byOwner := make(map[string]models.PayoutDestination, len(destinations))
	for _, d := range destinations {
		byOwner[d.OwnerID] = d
	}
	claimed := make(map[string]bool, len(accounts))

	var found []models.Inconsistency
	for _, acct := range accounts {
		claimed[acct.SubjectID] = true
		dest, hasDest := byOwner[acct.SubjectID]
		if !hasDest {
			found = append(found, models.Inconsistency{
				SubjectID:  acct.SubjectID,
				Email:      acct.Email,
				Kind:       models.KindMissingDocuments,
				ClaimsCode: acct.Claims.SubaccountCode,
			})
			continue
		}
		if dest.SubaccountCode != acct.Claims.SubaccountCode {
			found = append(found, models.Inconsistency{
				SubjectID:       acct.SubjectID,
				Email:           acct.Email,
				Kind:            models.KindCodeMismatch,
				ClaimsCode:      acct.Claims.SubaccountCode,
				DestinationCode: dest.SubaccountCode,
			})
			continue
		}
		ok, err := s.profileMatches(ctx, acct.SubjectID, dest.SubaccountCode)
		if err != nil {
			return nil, err
		}
		if !ok || dest.Status == models.DestinationStatusPending {
			found = append(found, models.Inconsistency{
				SubjectID:       acct.SubjectID,
				Email:           acct.Email,
				Kind:            models.KindMissingDocuments,
				ClaimsCode:      acct.Claims.SubaccountCode,
				DestinationCode: dest.SubaccountCode,
			})
		}
	}

	for _, dest := range destinations {
		if claimed[dest.OwnerID] {
			continue
		}
		inc := models.Inconsistency{
			SubjectID:       dest.OwnerID,
			Kind:            models.KindMissingClaims,
			DestinationCode: dest.SubaccountCode,
		}
		if acct, err := s.directory.FindBySubject(ctx, dest.OwnerID); err == nil {
			inc.Email = acct.Email
		}
		found = append(found, inc)
	}

	sort.Slice(found, func(i, j int) bool { return found[i].SubjectID < found[j].SubjectID })
	return found, nil
}

func (s *Service) profileMatches(ctx context.Context, subjectID, code string) (bool, error) {
	p, err := s.stores.Profiles.FindBySubject(ctx, subjectID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, storeError(err, "failed to load instructor profile")
	}
	return p.ProfileStatus == models.ProfileStatusActive && p.SubaccountCode == code, nil
}

// Repair re-applies only the missing half of a completed onboarding. A stored
// destination is authoritative over claims and a pending one is activated.
// When only claims exist the destination is rebuilt from the gateway's
// record. When neither exists the caller may name the subaccount, which must
// exist at the gateway and belong to no other owner. Running it on a
// consistent subject changes nothing.
func (s *Service) Repair(ctx context.Context, req models.RepairRequest) (*models.RepairResult, error) {
	ctx, span := tracer.Start(ctx, "onboarding.repair")
	defer span.End()

	subjectID := strings.TrimSpace(req.SubjectID)
	hint := strings.TrimSpace(req.SubaccountCode)
	if subjectID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "subject_id is required")
	}
	acct, err := s.directory.FindBySubject(ctx, subjectID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "account not found")
	}
	if err != nil {
		return nil, storeError(err, "failed to load account")
	}

	dest, err := s.stores.Payouts.FindByOwner(ctx, subjectID)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, storeError(err, "failed to load payout destination")
	}
	if err != nil {
		dest = nil
	}

	claimsCode := ""
	if acct.Claims.BankDetailsAdded {
		claimsCode = acct.Claims.SubaccountCode
	}

	now := requestcontext.Now(ctx)
	result := &models.RepairResult{SubjectID: subjectID, Applied: []string{}}
	writeDest := false

	switch {
	case dest != nil:
		if hint != "" && hint != dest.SubaccountCode {
			return nil, dErrors.New(dErrors.CodeConflict, "subaccount_code does not match the recorded payout destination")
		}
		result.SubaccountCode = dest.SubaccountCode
		if dest.Status != models.DestinationStatusActive {
			activated := *dest
			activated.Status = models.DestinationStatusActive
			activated.UpdatedAt = now
			dest = &activated
			writeDest = true
			result.Applied = append(result.Applied, models.RepairDestination)
		}
	case claimsCode != "" || hint != "":
		code := claimsCode
		if code == "" {
			code = hint
		} else if hint != "" && hint != code {
			return nil, dErrors.New(dErrors.CodeConflict, "subaccount_code does not match the account claims")
		}
		if code == hint {
			if err := s.ensureUnowned(ctx, subjectID, code); err != nil {
				return nil, err
			}
		}
		sub, err := s.gateway.FetchSubaccount(ctx, code)
		if err != nil {
			return nil, gatewayError(err, "Failed to fetch payout account")
		}
		if sub.Code == "" {
			sub.Code = code
		}
		rebuilt := models.PayoutDestination{
			OwnerID:             subjectID,
			SubaccountCode:      sub.Code,
			SubaccountID:        sub.ID,
			BankCode:            sub.SettlementBank,
			AccountNumber:       sub.AccountNumber,
			AccountName:         sub.AccountName,
			BusinessName:        sub.BusinessName,
			RevenueSharePercent: models.RevenueSharePercent,
			Status:              models.DestinationStatusActive,
			CreatedAt:           now,
			UpdatedAt:           now,
		}
		dest = &rebuilt
		writeDest = true
		result.SubaccountCode = sub.Code
		result.Applied = append(result.Applied, models.RepairDestination)
	default:
		return nil, dErrors.New(dErrors.CodeBadRequest, "no subaccount is known for this account, supply subaccount_code")
	}

	code := result.SubaccountCode
	if !acct.Claims.BankDetailsAdded || acct.Claims.SubaccountCode != code ||
		acct.Claims.Role != identity.RoleInstructor || !acct.Claims.InstructorApproved {
		if err := s.directory.SetClaims(ctx, subjectID, instructorClaims(code), now); err != nil {
			return nil, storeError(err, "failed to update claims")
		}
		result.Applied = append(result.Applied, models.RepairClaims)
	}

	profileOK, err := s.profileMatches(ctx, subjectID, code)
	if err != nil {
		return nil, err
	}
	if writeDest || !profileOK {
		err := s.tx.RunInTx(ctx, func(ctx context.Context, stores store.Stores) error {
			if writeDest {
				if err := stores.Payouts.Upsert(ctx, *dest); err != nil {
					return err
				}
			}
			if profileOK {
				return nil
			}
			return stores.Profiles.Upsert(ctx, activeProfile(subjectID, acct.Email, acct.DisplayName, code, now))
		})
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to write onboarding documents")
		}
		if !profileOK {
			result.Applied = append(result.Applied, models.RepairProfile)
		}
	}

	if len(result.Applied) > 0 {
		s.logger.InfoContext(ctx, "onboarding repaired",
			"subject_id", subjectID, "subaccount_code", code, "applied", result.Applied)
		s.emit(ctx, audit.Event{
			Action:    string(audit.EventOnboardingRepaired),
			SubjectID: subjectID,
			Email:     acct.Email,
			Subject:   code,
			Reason:    strings.Join(result.Applied, ","),
		})
	}
	return result, nil
}

// ensureUnowned rejects a caller-supplied subaccount already recorded for
// another owner.
func (s *Service) ensureUnowned(ctx context.Context, subjectID, code string) error {
	dests, err := s.stores.Payouts.List(ctx)
	if err != nil {
		return storeError(err, "failed to list payout destinations")
	}
	for _, d := range dests {
		if d.SubaccountCode == code && d.OwnerID != subjectID {
			return dErrors.New(dErrors.CodeConflict, "subaccount_code belongs to another account")
		}
	}
	return nil
}
