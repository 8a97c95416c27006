package handler

import (
	"strings"
	"time"

	"instructorhub/internal/onboarding/models"
)

type issueRequest struct {
	ApplicantEmail string `json:"applicantEmail"`
	ApplicantName  string `json:"applicantName"`
	SubjectID      string `json:"subjectId,omitempty"`
}

func (r *issueRequest) toModel() models.IssueRequest {
	return models.IssueRequest{
		SubjectID:   strings.TrimSpace(r.SubjectID),
		Email:       r.ApplicantEmail,
		DisplayName: strings.TrimSpace(r.ApplicantName),
	}
}

type issueResponse struct {
	Success    bool      `json:"success"`
	SetupToken string    `json:"setupToken"`
	SetupURL   string    `json:"setupUrl"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

type validateRequest struct {
	Token string `json:"token"`
}

// validateResponse is the validator's answer. Identity fields are set only
// when Valid is true, Reason only when it is false.
type validateResponse struct {
	Valid     bool   `json:"valid"`
	UserEmail string `json:"userEmail,omitempty"`
	UserName  string `json:"userName,omitempty"`
	Token     string `json:"token,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

type completeRequest struct {
	Token         string `json:"token,omitempty"`
	BankCode      string `json:"bank_code"`
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
	BusinessName  string `json:"business_name"`
}

func (r *completeRequest) toModel(bearer string) models.CompletionRequest {
	return models.CompletionRequest{
		Token:  strings.TrimSpace(r.Token),
		Bearer: bearer,
		Details: models.PayoutDetails{
			BankCode:      strings.TrimSpace(r.BankCode),
			AccountNumber: strings.TrimSpace(r.AccountNumber),
			AccountName:   strings.TrimSpace(r.AccountName),
			BusinessName:  strings.TrimSpace(r.BusinessName),
		},
	}
}

type completeResponse struct {
	Success        bool   `json:"success"`
	SubaccountCode string `json:"subaccount_code"`
}

// repairRequest names the subject to repair. SubaccountCode is optional and
// only used when nothing local records a subaccount.
type repairRequest struct {
	SubjectID      string `json:"subject_id"`
	SubaccountCode string `json:"subaccount_code,omitempty"`
}

func (r *repairRequest) toModel() models.RepairRequest {
	return models.RepairRequest{
		SubjectID:      strings.TrimSpace(r.SubjectID),
		SubaccountCode: strings.TrimSpace(r.SubaccountCode),
	}
}

type reconcileResponse struct {
	Count           int                    `json:"count"`
	Inconsistencies []models.Inconsistency `json:"inconsistencies"`
}
