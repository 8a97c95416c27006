package models

import (
	"time"
)

// Purpose distinguishes credential uses sharing the same collection.
type Purpose string

const PurposeInstructorSetup Purpose = "instructor_setup"

// Revenue split applied to every payout destination. The instructor share is
// sent to the gateway at creation and never changed by this workflow.
const (
	RevenueSharePercent  = 90
	PlatformSharePercent = 100 - RevenueSharePercent
)

// Validation reasons shown to applicants.
const (
	ReasonNotFound   = "Token not found"
	ReasonUsed       = "Token already used"
	ReasonExpired    = "Token expired"
	ReasonSuperseded = "Token superseded"
)

type Role string

const (
	RoleUser       Role = "user"
	RoleInstructor Role = "instructor"
	RoleAdmin      Role = "admin"
)

type ProfileStatus string

const (
	ProfileStatusPending ProfileStatus = "pending"
	ProfileStatusActive  ProfileStatus = "active"
)

// Payout destination statuses. A pending destination records a subaccount
// the gateway created before the account claims were written.
const (
	DestinationStatusPending = "pending"
	DestinationStatusActive  = "active"
)

// SetupCredential is a single-use permission to complete onboarding, keyed by
// its token.
type SetupCredential struct {
	Token        string
	SubjectID    string
	Email        string
	DisplayName  string
	Purpose      Purpose
	CreatedAt    time.Time
	ExpiresAt    time.Time
	Used         bool
	UsedAt       *time.Time
	SupersededAt *time.Time
}

// IsExpired reports whether now is past the validity window.
func (c *SetupCredential) IsExpired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// IsLive reports whether the credential can still be redeemed.
func (c *SetupCredential) IsLive(now time.Time) bool {
	return !c.Used && c.SupersededAt == nil && !c.IsExpired(now)
}

// RejectionReason returns the first failing check in validation order, or "".
func (c *SetupCredential) RejectionReason(now time.Time) string {
	switch {
	case c.Used:
		return ReasonUsed
	case c.IsExpired(now):
		return ReasonExpired
	case c.SupersededAt != nil:
		return ReasonSuperseded
	default:
		return ""
	}
}

// PayoutDestination is the gateway-side settlement account for an instructor.
type PayoutDestination struct {
	OwnerID             string
	SubaccountCode      string
	SubaccountID        int64
	BankCode            string
	AccountNumber       string
	AccountName         string
	BusinessName        string
	RevenueSharePercent int
	Status              string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// InstructorProfile is the document-side half of the account state.
type InstructorProfile struct {
	SubjectID      string
	Email          string
	DisplayName    string
	Role           Role
	ProfileStatus  ProfileStatus
	SubaccountCode string
	UpdatedAt      time.Time
}

// PayoutDetails is what the applicant submits to activate payouts.
type PayoutDetails struct {
	BankCode      string `json:"bank_code" validate:"required,max=16"`
	AccountNumber string `json:"account_number" validate:"required,numeric,min=6,max=20"`
	AccountName   string `json:"account_name" validate:"required,max=200"`
	BusinessName  string `json:"business_name" validate:"required,max=200"`
}

// IssueRequest identifies the applicant a credential is minted for.
type IssueRequest struct {
	SubjectID   string
	Email       string
	DisplayName string
}

// IssuedCredential is what the issuer hands back to the notifier.
type IssuedCredential struct {
	Token         string
	RedemptionURL string
	ExpiresAt     time.Time
}

// ValidationResult is the read-only view of a credential. A negative result is
// a normal answer, not an error.
type ValidationResult struct {
	Valid       bool
	Reason      string
	Email       string
	DisplayName string
	Token       string
}

// CompletionRequest carries exactly one of Token or Bearer.
type CompletionRequest struct {
	Token   string
	Bearer  string
	Details PayoutDetails
}

// Mode names the entry path, for metrics and logs.
func (r CompletionRequest) Mode() string {
	if r.Token != "" {
		return "token"
	}
	return "session"
}

type CompletionResult struct {
	SubjectID      string
	SubaccountCode string
}

// InconsistencyKind names which half of the account state is missing.
type InconsistencyKind string

const (
	// Claims say bank details were added but no destination or profile is stored.
	KindMissingDocuments InconsistencyKind = "missing_documents"
	// A destination is stored but the claims were never set.
	KindMissingClaims InconsistencyKind = "missing_claims"
	// Both exist but disagree on the subaccount code.
	KindCodeMismatch InconsistencyKind = "subaccount_mismatch"
)

type Inconsistency struct {
	SubjectID       string            `json:"subject_id"`
	Email           string            `json:"email,omitempty"`
	Kind            InconsistencyKind `json:"kind"`
	ClaimsCode      string            `json:"claims_subaccount_code,omitempty"`
	DestinationCode string            `json:"destination_subaccount_code,omitempty"`
}

// RepairRequest names the subject to repair. SubaccountCode is only consulted
// when nothing local records a subaccount; it is verified at the gateway.
type RepairRequest struct {
	SubjectID      string
	SubaccountCode string
}

type RepairResult struct {
	SubjectID      string   `json:"subject_id"`
	SubaccountCode string   `json:"subaccount_code,omitempty"`
	Applied        []string `json:"applied"`
}

// Repair steps reported in RepairResult.Applied.
const (
	RepairClaims      = "claims"
	RepairDestination = "payout_destination"
	RepairProfile     = "profile"
)
