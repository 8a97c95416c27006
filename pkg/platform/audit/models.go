package audit

import (
	"context"
	"time"
)

// EventCategory classifies audit events so sinks can route or retain them differently.
type EventCategory string

const (
	// CategoryCompliance covers account state changes and decisions.
	CategoryCompliance EventCategory = "compliance"
	// CategorySecurity covers rejected credentials and failed authentication.
	CategorySecurity EventCategory = "security"
	// CategoryOperations covers routine activity and delivery problems.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. It is
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory `json:"category"`
	Timestamp time.Time     `json:"timestamp"`
	Action    string        `json:"action"`
	SubjectID string        `json:"subject_id,omitempty"`
	Email     string        `json:"email,omitempty"`
	// Subject is the non-secret handle for the object acted on: a masked
	// token prefix, an application id or a subaccount code.
	Subject   string `json:"subject,omitempty"`
	Decision  string `json:"decision,omitempty"`
	Reason    string `json:"reason,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	ActorID   string `json:"actor_id,omitempty"`
	ClientIP  string `json:"client_ip,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
	Browser   string `json:"browser,omitempty"`
	OS        string `json:"os,omitempty"`
	Device    string `json:"device,omitempty"`
}

type AuditEvent string

const (
	// Credential lifecycle
	EventCredentialIssued     AuditEvent = "setup_credential_issued"
	EventCredentialSuperseded AuditEvent = "setup_credential_superseded"
	EventCredentialRejected   AuditEvent = "setup_credential_rejected"
	EventCredentialResent     AuditEvent = "setup_credential_resent"

	// Onboarding
	EventOnboardingCompleted AuditEvent = "onboarding_completed"
	EventOnboardingFailed    AuditEvent = "onboarding_failed"
	EventOnboardingPartial   AuditEvent = "onboarding_partial"
	EventOnboardingRepaired  AuditEvent = "onboarding_repaired"
	EventSessionRejected     AuditEvent = "session_rejected"

	// Notifications
	EventNotificationFailed AuditEvent = "notification_failed"

	// Applications
	EventApplicationSubmitted AuditEvent = "application_submitted"
	EventApplicationDecided   AuditEvent = "application_decided"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventCredentialIssued:     CategoryCompliance,
	EventOnboardingCompleted:  CategoryCompliance,
	EventOnboardingPartial:    CategoryCompliance,
	EventOnboardingRepaired:   CategoryCompliance,
	EventApplicationDecided:   CategoryCompliance,
	EventCredentialRejected:   CategorySecurity,
	EventSessionRejected:      CategorySecurity,
	EventCredentialSuperseded: CategoryOperations,
	EventCredentialResent:     CategoryOperations,
	EventOnboardingFailed:     CategoryOperations,
	EventNotificationFailed:   CategoryOperations,
	EventApplicationSubmitted: CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events. Implementations: memory, postgres, kafka.
type Store interface {
	Append(ctx context.Context, event Event) error
}
