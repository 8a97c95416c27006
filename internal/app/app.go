// Package app builds the process from configuration: backends, collaborator
// clients, services and the HTTP router.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/twmb/franz-go/pkg/kgo"
	"golang.org/x/sync/errgroup"

	applicationshandler "instructorhub/internal/applications/handler"
	applicationsservice "instructorhub/internal/applications/service"
	applicationsstore "instructorhub/internal/applications/store"
	bankinghandler "instructorhub/internal/banking/handler"
	bankingservice "instructorhub/internal/banking/service"
	"instructorhub/internal/gateway/paystack"
	"instructorhub/internal/identity"
	notifyhandler "instructorhub/internal/notify/handler"
	"instructorhub/internal/notify/relay"
	notifyservice "instructorhub/internal/notify/service"
	onboardinghandler "instructorhub/internal/onboarding/handler"
	"instructorhub/internal/onboarding/lock"
	onboardingservice "instructorhub/internal/onboarding/service"
	"instructorhub/internal/onboarding/store"
	"instructorhub/internal/platform/config"
	"instructorhub/internal/platform/httpserver"
	"instructorhub/internal/platform/kafka"
	"instructorhub/internal/platform/metrics"
	"instructorhub/internal/platform/postgres"
	"instructorhub/internal/platform/redis"
	"instructorhub/internal/ratelimit"
	httptransport "instructorhub/internal/transport/http"
	audit "instructorhub/pkg/platform/audit"
	"instructorhub/pkg/platform/audit/publisher"
	auditkafka "instructorhub/pkg/platform/audit/store/kafka"
	auditmemory "instructorhub/pkg/platform/audit/store/memory"
	auditpostgres "instructorhub/pkg/platform/audit/store/postgres"
)

const (
	auditBufferSize  = 1024
	shutdownTimeout  = 15 * time.Second
	auditPartitions  = 3
	auditReplication = 1
	rateLimitSweep   = time.Minute
)

// App owns every long-lived resource of the process.
type App struct {
	Handler http.Handler

	cfg        *config.Config
	logger     *slog.Logger
	db         *sql.DB
	redis      *redis.Client
	kafka      *kgo.Client
	audit      *publisher.Publisher
	banking    *bankingservice.Service
	onboarding *onboardingservice.Service
	// limits is set only for the process-local limiter, which needs sweeping.
	limits *ratelimit.InMemoryStore
}

// welcomeFunc adapts the notifier to the onboarding service, which is built
// first because the notifier issues credentials through it.
type welcomeFunc func(ctx context.Context, subjectID, email, name string) error

func (f welcomeFunc) SendWelcome(ctx context.Context, subjectID, email, name string) error {
	return f(ctx, subjectID, email, name)
}

// New connects optional backends and wires services. Backends left
// unconfigured fall back to in-process implementations.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *App, err error) {
	a := &App{cfg: cfg, logger: logger}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	if a.db, err = postgres.Open(ctx, cfg.Database); err != nil {
		return nil, err
	}
	if a.db != nil {
		if err = postgres.RunMigrations(ctx, a.db); err != nil {
			return nil, err
		}
	}
	if a.redis, err = redis.New(ctx, cfg.Redis); err != nil {
		return nil, err
	}
	if a.kafka, err = kafka.New(ctx, cfg.Kafka); err != nil {
		return nil, err
	}

	auditStore, err := a.auditStore(ctx)
	if err != nil {
		return nil, err
	}
	a.audit = publisher.NewPublisher(auditStore,
		publisher.WithAsyncBuffer(auditBufferSize),
		publisher.WithLogger(logger),
	)

	var (
		stores       store.Stores
		tx           onboardingservice.Tx
		directory    onboardingservice.Directory
		applications applicationsservice.Store
		locker       onboardingservice.Locker
	)
	if a.db != nil {
		stores = store.NewPostgresStores(a.db)
		tx = store.NewPostgresTx(a.db, stores, cfg.Onboarding.StoreTimeout)
		directory = identity.NewPostgresDirectory(a.db)
		applications = applicationsstore.NewPostgres(a.db)
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory stores")
		stores = store.NewInMemoryStores()
		tx = store.NewMemoryTx(stores)
		directory = identity.NewInMemoryDirectory()
		applications = applicationsstore.NewInMemory()
	}
	if a.redis != nil {
		locker = lock.NewRedis(a.redis.Client)
	} else {
		locker = lock.NewInMemory()
	}

	gateway := paystack.New(cfg.Gateway.BaseURL, cfg.Gateway.SecretKey, cfg.Gateway.Timeout,
		paystack.WithMetrics(m),
		paystack.WithLogger(logger),
	)
	relayClient := relay.New(cfg.Relay.BaseURL, cfg.Relay.ServiceID, cfg.Relay.PublicKey, cfg.Relay.Timeout,
		relay.WithLogger(logger),
	)

	var notifier *notifyservice.Service
	onboarding, err := onboardingservice.New(stores, tx, directory,
		identity.NewSessionVerifier(cfg.Identity.SigningKey, cfg.Identity.Issuer, cfg.Identity.Audience),
		gateway, locker,
		onboardingservice.Config{
			SetupURLBase:          cfg.SetupURLBase,
			CredentialTTL:         cfg.Onboarding.CredentialTTL,
			LockTTL:               cfg.Onboarding.LockTTL,
			VerifyAccountOnSubmit: cfg.Onboarding.VerifyAccountOnSubmit,
			StoreTimeout:          cfg.Onboarding.StoreTimeout,
			WelcomeTimeout:        cfg.Relay.Timeout,
		},
		onboardingservice.WithLogger(logger),
		onboardingservice.WithMetrics(m),
		onboardingservice.WithAuditPublisher(a.audit),
		onboardingservice.WithWelcomeSender(welcomeFunc(func(ctx context.Context, subjectID, email, name string) error {
			return notifier.SendWelcome(ctx, subjectID, email, name)
		})),
	)
	if err != nil {
		return nil, fmt.Errorf("onboarding service: %w", err)
	}
	a.onboarding = onboarding

	notifier, err = notifyservice.New(onboarding, relayClient,
		notifyservice.Templates{
			Approval:  cfg.Relay.ApprovalTemplateID,
			Rejection: cfg.Relay.RejectionTemplateID,
			Welcome:   cfg.Relay.WelcomeTemplateID,
		},
		notifyservice.WithLogger(logger),
		notifyservice.WithMetrics(m),
		notifyservice.WithAuditPublisher(a.audit),
		notifyservice.WithBranding(notifyservice.Branding{
			PlatformName:  cfg.PlatformName,
			PlatformURL:   cfg.PlatformURL,
			CredentialTTL: cfg.Onboarding.CredentialTTL,
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("notify service: %w", err)
	}

	intake, err := applicationsservice.New(applications, notifier,
		applicationsservice.WithLogger(logger),
		applicationsservice.WithMetrics(m),
		applicationsservice.WithAuditPublisher(a.audit),
		applicationsservice.WithStoreTimeout(cfg.Onboarding.StoreTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("applications service: %w", err)
	}

	if a.banking, err = bankingservice.New(gateway, cfg.Onboarding.BankCacheTTL, bankingservice.WithLogger(logger)); err != nil {
		return nil, fmt.Errorf("banking service: %w", err)
	}

	a.Handler = httptransport.NewRouter(httptransport.Config{
		AdminToken: cfg.AdminToken,
		Logger:     logger,
		Observer:   m,
		Gatherer:   registry,
		Health:     a.healthChecks(),
		RateLimit:  a.rateLimiter(m),
	},
		onboardinghandler.New(onboarding, logger),
		notifyhandler.New(notifier, logger),
		applicationshandler.New(intake, logger),
		bankinghandler.New(a.banking, logger),
	)
	return a, nil
}

// auditStore picks Kafka, then postgres, then memory.
func (a *App) auditStore(ctx context.Context) (audit.Store, error) {
	switch {
	case a.kafka != nil:
		if err := kafka.EnsureTopic(ctx, a.kafka, a.cfg.Kafka.AuditTopic, auditPartitions, auditReplication); err != nil {
			return nil, err
		}
		return auditkafka.New(a.kafka, a.cfg.Kafka.AuditTopic), nil
	case a.db != nil:
		return auditpostgres.New(a.db), nil
	default:
		return auditmemory.NewInMemoryStore(), nil
	}
}

func (a *App) rateLimiter(m *metrics.Metrics) func(http.Handler) http.Handler {
	rl := a.cfg.RateLimit
	if !rl.Enabled {
		return nil
	}
	var limits ratelimit.Store
	if a.redis != nil {
		limits = ratelimit.NewRedis(a.redis.Client)
	} else {
		a.limits = ratelimit.NewInMemory()
		limits = a.limits
	}
	return ratelimit.NewMiddleware(limits, rl.Public, rl.Window,
		ratelimit.WithLogger(a.logger),
		ratelimit.WithRecorder(m),
	).Handler
}

func (a *App) healthChecks() []httptransport.HealthCheck {
	var checks []httptransport.HealthCheck
	if a.db != nil {
		checks = append(checks, httptransport.HealthCheck{Name: "postgres", Check: a.db.PingContext})
	}
	if a.redis != nil {
		checks = append(checks, httptransport.HealthCheck{Name: "redis", Check: a.redis.Health})
	}
	if a.kafka != nil {
		checks = append(checks, httptransport.HealthCheck{Name: "kafka", Check: a.kafka.Ping})
	}
	return checks
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (a *App) Run(ctx context.Context) error {
	srv := httpserver.New(a.cfg.Addr, a.Handler)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("listening", "addr", a.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	if a.limits != nil {
		g.Go(func() error {
			ticker := time.NewTicker(rateLimitSweep)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					a.limits.Sweep(a.cfg.RateLimit.Window)
				}
			}
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		a.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Close flushes buffered audit events, then releases backends.
func (a *App) Close() {
	if a.onboarding != nil {
		a.onboarding.Wait()
	}
	if a.audit != nil {
		a.audit.Close()
	}
	if a.banking != nil {
		a.banking.Close()
	}
	if a.kafka != nil {
		a.kafka.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}
