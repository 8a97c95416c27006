package models

import "fmt"

// Onboarding stages after a successful gateway call.
const (
	StageRecord    = "record"
	StageClaims    = "claims"
	StageDocuments = "documents"
)

// PartialOnboardingError reports that the gateway provisioned a subaccount
// but a later write failed. It carries what a repair needs.
type PartialOnboardingError struct {
	SubjectID      string
	SubaccountCode string
	Stage          string
	Err            error
}

func (e *PartialOnboardingError) Error() string {
	return fmt.Sprintf("onboarding incomplete for subject %s (subaccount %s) at stage %s: %v",
		e.SubjectID, e.SubaccountCode, e.Stage, e.Err)
}

func (e *PartialOnboardingError) Unwrap() error {
	return e.Err
}
