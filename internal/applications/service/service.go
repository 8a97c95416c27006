// Package service records instructor applications and admin decisions. A
// decision is stored before the applicant is notified, and a failed
// notification never reverts it.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"instructorhub/internal/applications/models"
	notifyservice "instructorhub/internal/notify/service"
	"instructorhub/internal/platform/metrics"
	dErrors "instructorhub/pkg/domain-errors"
	"instructorhub/pkg/email"
	audit "instructorhub/pkg/platform/audit"
	"instructorhub/pkg/platform/sentinel"
	"instructorhub/pkg/requestcontext"
)

var tracer = otel.Tracer("instructorhub/applications")

const defaultStoreTimeout = 5 * time.Second

type Store interface {
	Create(ctx context.Context, app *models.Application, notice models.AdminNotification) error
	FindByID(ctx context.Context, id string) (*models.Application, error)
	List(ctx context.Context, status models.Status) ([]models.Application, error)
	Decide(ctx context.Context, id string, status models.Status, reason string, at time.Time) (*models.Application, error)
	ListNotifications(ctx context.Context) ([]models.AdminNotification, error)
}

// Notifier emails the applicant once a decision is stored.
type Notifier interface {
	NotifyDecision(ctx context.Context, applicant notifyservice.Applicant, decision notifyservice.Decision, reason string) (*notifyservice.Outcome, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// DecisionResult reports the stored decision and whether the applicant was
// told about it. NotificationError is the caller-safe reason when not.
type DecisionResult struct {
	Application       *models.Application
	Notified          bool
	NotificationError string
	SetupURL          string
}

type Service struct {
	store          Store
	notifier       Notifier
	logger         *slog.Logger
	metrics        *metrics.Metrics
	auditPublisher AuditPublisher
	newID          func() string
	storeTimeout   time.Duration
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

// WithIDGenerator overrides uuid-based application ids.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithStoreTimeout bounds each store call.
func WithStoreTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.storeTimeout = d
	}
}

func New(store Store, notifier Notifier, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("application store is required")
	}
	if notifier == nil {
		return nil, errors.New("notifier is required")
	}
	s := &Service{
		store:        store,
		notifier:     notifier,
		logger:       slog.Default(),
		newID:        uuid.NewString,
		storeTimeout: defaultStoreTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.store = boundedStore{next: store, timeout: s.storeTimeout}
	return s, nil
}

// Submit maps raw intake fields onto a pending application and adds the
// matching admin feed entry.
func (s *Service) Submit(ctx context.Context, fields map[string]string) (*models.Application, error) {
	ctx, span := tracer.Start(ctx, "applications.submit")
	defer span.End()

	app := models.FromFields(fields)
	if !app.HasRequired() {
		return nil, dErrors.New(dErrors.CodeValidation, models.MissingFieldsMessage)
	}
	normalized, ok := email.Normalize(app.Email)
	if !ok {
		return nil, dErrors.New(dErrors.CodeValidation, "A valid email address is required")
	}
	app.Email = normalized
	app.ID = s.newID()
	app.Status = models.StatusPending
	app.SubmittedAt = requestcontext.Now(ctx)

	notice := models.NewApplicationNotice(s.newID(), &app)
	if err := s.store.Create(ctx, &app, notice); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.Wrap(err, dErrors.CodeConflict, "application already exists")
		}
		return nil, storeError(err, "failed to store application")
	}
	span.SetAttributes(attribute.String("application.id", app.ID))

	s.metrics.IncApplicationsReceived()
	s.emit(ctx, audit.Event{
		Action:  string(audit.EventApplicationSubmitted),
		Email:   app.Email,
		Subject: app.ID,
	})
	s.logger.InfoContext(ctx, "instructor application received",
		"application_id", app.ID,
		"expertise", app.Expertise,
	)
	return &app, nil
}

// List returns applications newest first. An empty status lists all.
func (s *Service) List(ctx context.Context, status string) ([]models.Application, error) {
	parsed, ok := models.ParseStatus(status)
	if !ok {
		return nil, dErrors.New(dErrors.CodeValidation, "status must be pending, approved or rejected")
	}
	apps, err := s.store.List(ctx, parsed)
	if err != nil {
		return nil, storeError(err, "failed to list applications")
	}
	return apps, nil
}

// Notifications returns the admin feed newest first.
func (s *Service) Notifications(ctx context.Context) ([]models.AdminNotification, error) {
	feed, err := s.store.ListNotifications(ctx)
	if err != nil {
		return nil, storeError(err, "failed to list notifications")
	}
	return feed, nil
}

// Decide records an admin decision and then notifies the applicant. The
// returned error covers the decision only; notification problems are
// reported on the result.
func (s *Service) Decide(ctx context.Context, id, decision, reason string) (*DecisionResult, error) {
	ctx, span := tracer.Start(ctx, "applications.decide")
	defer span.End()
	span.SetAttributes(attribute.String("application.id", id))

	if id == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "application id is required")
	}
	var status models.Status
	switch notifyservice.Decision(decision) {
	case notifyservice.DecisionApproved:
		status = models.StatusApproved
	case notifyservice.DecisionRejected:
		status = models.StatusRejected
	default:
		return nil, dErrors.New(dErrors.CodeValidation, "decision must be approved or rejected")
	}

	app, err := s.store.Decide(ctx, id, status, reason, requestcontext.Now(ctx))
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "application not found")
		case errors.Is(err, sentinel.ErrConflict):
			return nil, dErrors.Wrap(err, dErrors.CodeConflict, "application has already been decided")
		default:
			return nil, storeError(err, "failed to record decision")
		}
	}
	s.emit(ctx, audit.Event{
		Action:   string(audit.EventApplicationDecided),
		Email:    app.Email,
		Subject:  app.ID,
		Decision: string(app.Status),
		Reason:   reason,
		ActorID:  "admin",
	})

	result := &DecisionResult{Application: app}
	outcome, err := s.notifier.NotifyDecision(ctx, notifyservice.Applicant{
		Email:         app.Email,
		Name:          app.FullName,
		ApplicationID: app.ID,
	}, notifyservice.Decision(decision), reason)
	if outcome != nil && outcome.Credential != nil {
		result.SetupURL = outcome.Credential.RedemptionURL
	}
	if err != nil {
		result.NotificationError = notificationMessage(err)
		s.logger.WarnContext(ctx, "decision recorded but applicant not notified",
			"application_id", app.ID,
			"decision", decision,
			"error", err,
		)
		return result, nil
	}
	result.Notified = outcome != nil && outcome.Delivered
	return result, nil
}

func notificationMessage(err error) string {
	if msg := dErrors.MessageOf(err); msg != "" {
		return msg
	}
	return "Notification failed"
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "action", event.Action, "error", err)
	}
}
