// Package service implements the Decision Notifier: approval, rejection and
// welcome emails. Delivery failures are reported on their own and never undo
// the decision that triggered them.
package service

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"instructorhub/internal/notify/relay"
	"instructorhub/internal/onboarding/models"
	"instructorhub/internal/platform/metrics"
	dErrors "instructorhub/pkg/domain-errors"
	audit "instructorhub/pkg/platform/audit"
	pstrings "instructorhub/pkg/platform/strings"
)

var tracer = otel.Tracer("instructorhub/notify")

// Issuer mints setup credentials for approved applicants.
type Issuer interface {
	Issue(ctx context.Context, req models.IssueRequest) (*models.IssuedCredential, error)
	ResendSetupLink(ctx context.Context, req models.IssueRequest) (*models.IssuedCredential, bool, error)
}

// Relay delivers one templated email.
type Relay interface {
	Send(ctx context.Context, templateID string, params relay.TemplateParams) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Templates are the relay template ids per email kind.
type Templates struct {
	Approval  string
	Rejection string
	Welcome   string
}

// Branding fills platform-specific text in message bodies.
type Branding struct {
	PlatformName  string
	PlatformURL   string
	CredentialTTL time.Duration
}

type Decision string

const (
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
)

// Email kinds, used as metric labels.
const (
	KindApproval  = "approval"
	KindRejection = "rejection"
	KindWelcome   = "welcome"
)

type Applicant struct {
	SubjectID     string
	Email         string
	Name          string
	ApplicationID string
}

// Outcome is the result of a notification. Delivered is false when the relay
// failed; the error returned alongside it carries CodeDeliveryFailed.
type Outcome struct {
	Decision   Decision
	Credential *models.IssuedCredential
	Reused     bool
	Delivered  bool
}

type Service struct {
	issuer         Issuer
	relay          Relay
	templates      Templates
	branding       Branding
	logger         *slog.Logger
	metrics        *metrics.Metrics
	auditPublisher AuditPublisher
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithBranding(b Branding) Option {
	return func(s *Service) {
		s.branding = b
	}
}

func New(issuer Issuer, relay Relay, templates Templates, opts ...Option) (*Service, error) {
	if issuer == nil {
		return nil, errors.New("issuer is required")
	}
	if relay == nil {
		return nil, errors.New("relay is required")
	}
	s := &Service{
		issuer:    issuer,
		relay:     relay,
		templates: templates,
		branding: Branding{
			PlatformName:  "Instructor Hub",
			CredentialTTL: 7 * 24 * time.Hour,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// NotifyDecision dispatches on the decision.
func (s *Service) NotifyDecision(ctx context.Context, applicant Applicant, decision Decision, reason string) (*Outcome, error) {
	switch decision {
	case DecisionApproved:
		return s.NotifyApproval(ctx, applicant)
	case DecisionRejected:
		return s.NotifyRejection(ctx, applicant, reason)
	default:
		return nil, dErrors.New(dErrors.CodeValidation, "decision must be approved or rejected")
	}
}

// NotifyApproval mints a setup credential and emails its redemption URL. No
// email is sent when issuance fails.
func (s *Service) NotifyApproval(ctx context.Context, applicant Applicant) (*Outcome, error) {
	ctx, span := tracer.Start(ctx, "notify.approval")
	defer span.End()

	if err := validateApplicant(applicant); err != nil {
		return nil, err
	}
	cred, err := s.issuer.Issue(ctx, models.IssueRequest{
		SubjectID:   applicant.SubjectID,
		Email:       applicant.Email,
		DisplayName: applicant.Name,
	})
	if err != nil {
		return nil, err
	}
	return s.sendSetupLink(ctx, applicant, cred, false)
}

// ResendSetupLink re-sends the approval email with the applicant's current
// live credential, minting one only if none is live.
func (s *Service) ResendSetupLink(ctx context.Context, applicant Applicant) (*Outcome, error) {
	ctx, span := tracer.Start(ctx, "notify.resend_setup_link")
	defer span.End()

	if err := validateApplicant(applicant); err != nil {
		return nil, err
	}
	cred, reused, err := s.issuer.ResendSetupLink(ctx, models.IssueRequest{
		SubjectID:   applicant.SubjectID,
		Email:       applicant.Email,
		DisplayName: applicant.Name,
	})
	if err != nil {
		return nil, err
	}
	return s.sendSetupLink(ctx, applicant, cred, reused)
}

func (s *Service) sendSetupLink(ctx context.Context, applicant Applicant, cred *models.IssuedCredential, reused bool) (*Outcome, error) {
	outcome := &Outcome{Decision: DecisionApproved, Credential: cred, Reused: reused}
	name := pstrings.FirstNonEmpty(applicant.Name, "there")
	message, err := render(approvalTemplate, messageData{
		Name:            name,
		PlatformName:    s.branding.PlatformName,
		PlatformURL:     s.branding.PlatformURL,
		SetupURL:        cred.RedemptionURL,
		ValidDays:       validDays(s.branding.CredentialTTL),
		InstructorShare: models.RevenueSharePercent,
		PlatformShare:   models.PlatformSharePercent,
	})
	if err != nil {
		return outcome, dErrors.Wrap(err, dErrors.CodeInternal, "failed to render approval email")
	}
	err = s.deliver(ctx, KindApproval, s.templates.Approval, applicant, relay.TemplateParams{
		ToEmail:        applicant.Email,
		ToName:         applicant.Name,
		Subject:        "Welcome to " + s.branding.PlatformName + " - Instructor Approved!",
		Message:        message,
		InstructorName: name,
		SetupURL:       cred.RedemptionURL,
	})
	outcome.Delivered = err == nil
	return outcome, err
}

// NotifyRejection emails the decision with the optional reason.
func (s *Service) NotifyRejection(ctx context.Context, applicant Applicant, reason string) (*Outcome, error) {
	ctx, span := tracer.Start(ctx, "notify.rejection")
	defer span.End()

	if err := validateApplicant(applicant); err != nil {
		return nil, err
	}
	outcome := &Outcome{Decision: DecisionRejected}
	name := pstrings.FirstNonEmpty(applicant.Name, "there")
	message, err := render(rejectionTemplate, messageData{
		Name:          name,
		PlatformName:  s.branding.PlatformName,
		Reason:        reason,
		ApplicationID: applicant.ApplicationID,
	})
	if err != nil {
		return outcome, dErrors.Wrap(err, dErrors.CodeInternal, "failed to render rejection email")
	}
	err = s.deliver(ctx, KindRejection, s.templates.Rejection, applicant, relay.TemplateParams{
		ToEmail:         applicant.Email,
		ToName:          applicant.Name,
		Subject:         s.branding.PlatformName + " - Application Update",
		Message:         message,
		InstructorName:  name,
		RejectionReason: pstrings.FirstNonEmpty(reason, "Not specified"),
	})
	outcome.Delivered = err == nil
	return outcome, err
}

// SendWelcome confirms a completed onboarding.
func (s *Service) SendWelcome(ctx context.Context, subjectID, email, name string) error {
	ctx, span := tracer.Start(ctx, "notify.welcome")
	defer span.End()

	applicant := Applicant{SubjectID: subjectID, Email: email, Name: name}
	if err := validateApplicant(applicant); err != nil {
		return err
	}
	name = pstrings.FirstNonEmpty(name, "there")
	message, err := render(welcomeTemplate, messageData{
		Name:            name,
		PlatformName:    s.branding.PlatformName,
		PlatformURL:     s.branding.PlatformURL,
		InstructorShare: models.RevenueSharePercent,
	})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to render welcome email")
	}
	return s.deliver(ctx, KindWelcome, s.templates.Welcome, applicant, relay.TemplateParams{
		ToEmail:        email,
		ToName:         name,
		Subject:        "Welcome to " + s.branding.PlatformName + " - You're Now an Instructor!",
		Message:        message,
		InstructorName: name,
	})
}

func (s *Service) deliver(ctx context.Context, kind, templateID string, applicant Applicant, params relay.TemplateParams) error {
	_, span := tracer.Start(ctx, "notify.relay_send")
	span.SetAttributes(attribute.String("notify.kind", kind))
	defer span.End()

	err := s.relay.Send(ctx, templateID, params)
	s.metrics.ObserveNotification(kind, err == nil)
	if err == nil {
		s.logger.InfoContext(ctx, "notification delivered",
			"kind", kind,
			"subject_id", applicant.SubjectID,
			"application_id", applicant.ApplicationID,
		)
		return nil
	}
	span.RecordError(err)
	s.logger.ErrorContext(ctx, "notification delivery failed",
		"kind", kind,
		"subject_id", applicant.SubjectID,
		"application_id", applicant.ApplicationID,
		"error", err,
	)
	s.emit(ctx, audit.Event{
		Action:    string(audit.EventNotificationFailed),
		SubjectID: applicant.SubjectID,
		Email:     applicant.Email,
		Subject:   applicant.ApplicationID,
		Decision:  kind,
		Reason:    err.Error(),
	})
	if dErrors.HasCode(err, dErrors.CodeTimeout) {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "email relay timed out")
	}
	return dErrors.Wrap(err, dErrors.CodeDeliveryFailed, "Failed to send "+kind+" email")
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "action", event.Action, "error", err)
	}
}

func validateApplicant(a Applicant) error {
	if a.Email == "" {
		return dErrors.New(dErrors.CodeValidation, "email is required")
	}
	return nil
}

func validDays(ttl time.Duration) int {
	return int(math.Ceil(ttl.Hours() / 24))
}
