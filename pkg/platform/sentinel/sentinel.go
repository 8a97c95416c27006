package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and collaborator clients return
// these (optionally wrapped) so services can translate them into domain errors.
//
//   - ErrNotFound: record does not exist in the store
//   - ErrExpired: credential validity window has passed
//   - ErrAlreadyUsed: credential already consumed (conditional write lost)
//   - ErrSuperseded: a newer credential was issued for the same applicant
//   - ErrLocked: another request holds the redemption lock
//   - ErrConflict: unique constraint or concurrent update
//   - ErrUnavailable: collaborator temporarily unavailable (breaker open, 5xx)
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrExpired     = errors.New("expired")
	ErrAlreadyUsed = errors.New("already used")
	ErrSuperseded  = errors.New("superseded")
	ErrLocked      = errors.New("locked")
	ErrUnavailable = errors.New("unavailable")
)
