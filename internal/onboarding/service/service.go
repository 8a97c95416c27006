// Package service implements the setup credential lifecycle and the
// onboarding orchestration that turns an approved applicant into an active
// instructor with a payout destination.
package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"

	"instructorhub/internal/gateway/paystack"
	"instructorhub/internal/identity"
	"instructorhub/internal/onboarding/lock"
	"instructorhub/internal/onboarding/store"
	"instructorhub/internal/platform/metrics"
	audit "instructorhub/pkg/platform/audit"
	pstrings "instructorhub/pkg/platform/strings"
)

var tracer = otel.Tracer("instructorhub/onboarding")

// Gateway is the payment gateway surface the orchestrator needs.
type Gateway interface {
	CreateSubaccount(ctx context.Context, req paystack.SubaccountRequest) (paystack.Subaccount, error)
	UpdateSubaccount(ctx context.Context, code string, req paystack.SubaccountRequest) (paystack.Subaccount, error)
	FetchSubaccount(ctx context.Context, code string) (paystack.Subaccount, error)
	ResolveAccount(ctx context.Context, accountNumber, bankCode string) (paystack.ResolvedAccount, error)
}

// Directory holds accounts and their authorization claims.
type Directory interface {
	EnsureAccount(ctx context.Context, email, displayName string, now time.Time) (*identity.Account, error)
	FindBySubject(ctx context.Context, subjectID string) (*identity.Account, error)
	FindByEmail(ctx context.Context, email string) (*identity.Account, error)
	SetClaims(ctx context.Context, subjectID string, claims identity.Claims, now time.Time) error
	ListWithBankDetails(ctx context.Context) ([]identity.Account, error)
}

type SessionVerifier interface {
	Verify(ctx context.Context, raw string) (identity.Session, error)
}

type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (lock.Unlock, error)
}

// Tx runs fn against stores bound to one unit of work.
type Tx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, stores store.Stores) error) error
}

type WelcomeSender interface {
	SendWelcome(ctx context.Context, subjectID, email, name string) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Config tunes the credential lifecycle.
type Config struct {
	SetupURLBase          string
	CredentialTTL         time.Duration
	LockTTL               time.Duration
	VerifyAccountOnSubmit bool
	// StoreTimeout bounds each store call made outside a transaction.
	StoreTimeout time.Duration
	// WelcomeTimeout bounds the background welcome email.
	WelcomeTimeout time.Duration
}

const (
	defaultStoreTimeout   = 5 * time.Second
	defaultWelcomeTimeout = 10 * time.Second
)

// Service is the Token Issuer, Token Validator and Onboarding Orchestrator.
type Service struct {
	stores    store.Stores
	tx        Tx
	directory Directory
	sessions  SessionVerifier
	gateway   Gateway
	locker    Locker
	cfg       Config
	setupURL  *url.URL
	validate  *validator.Validate
	newToken  func() (string, error)

	logger         *slog.Logger
	metrics        *metrics.Metrics
	auditPublisher AuditPublisher
	welcome        WelcomeSender
	welcomes       sync.WaitGroup
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

// WithWelcomeSender enables the best-effort welcome email after onboarding.
func WithWelcomeSender(w WelcomeSender) Option {
	return func(s *Service) {
		s.welcome = w
	}
}

// WithTokenSource replaces the random token generator.
func WithTokenSource(fn func() (string, error)) Option {
	return func(s *Service) {
		s.newToken = fn
	}
}

// New wires the service. Every collaborator is required.
func New(stores store.Stores, tx Tx, directory Directory, sessions SessionVerifier, gateway Gateway, locker Locker, cfg Config, opts ...Option) (*Service, error) {
	switch {
	case stores.Credentials == nil || stores.Payouts == nil || stores.Profiles == nil:
		return nil, errors.New("credential, payout and profile stores are required")
	case tx == nil:
		return nil, errors.New("tx is required")
	case directory == nil:
		return nil, errors.New("directory is required")
	case sessions == nil:
		return nil, errors.New("session verifier is required")
	case gateway == nil:
		return nil, errors.New("gateway is required")
	case locker == nil:
		return nil, errors.New("locker is required")
	}
	if cfg.CredentialTTL <= 0 {
		return nil, errors.New("credential TTL must be positive")
	}
	if cfg.LockTTL <= 0 {
		return nil, errors.New("lock TTL must be positive")
	}
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = defaultStoreTimeout
	}
	if cfg.WelcomeTimeout <= 0 {
		cfg.WelcomeTimeout = defaultWelcomeTimeout
	}
	setupURL, err := url.Parse(cfg.SetupURLBase)
	if err != nil || setupURL.Scheme == "" || setupURL.Host == "" {
		return nil, fmt.Errorf("setup URL base must be an absolute URL, got %q", cfg.SetupURLBase)
	}

	s := &Service{
		stores:    boundStores(stores, cfg.StoreTimeout),
		tx:        tx,
		directory: boundedDirectory{next: directory, timeout: cfg.StoreTimeout},
		sessions:  sessions,
		gateway:   gateway,
		locker:    locker,
		cfg:       cfg,
		setupURL:  setupURL,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		newToken:  randomToken,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Wait blocks until background welcome emails have finished.
func (s *Service) Wait() {
	s.welcomes.Wait()
}

// randomToken returns 256 bits from crypto/rand, hex encoded.
func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate setup token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func (s *Service) redemptionURL(token string) string {
	u := *s.setupURL
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "action", event.Action, "error", err)
	}
}

// maskToken keeps tokens out of logs and audit records.
func maskToken(token string) string {
	return pstrings.MaskSecret(token, 8)
}
