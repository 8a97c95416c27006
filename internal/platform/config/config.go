package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"

	pstrings "instructorhub/pkg/platform/strings"
)

// Config is the full process configuration. Collaborator credentials are
// required; storage backends fall back to in-process implementations when unset.
type Config struct {
	Addr         string `env:"ADDR" envDefault:":8080"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat    string `env:"LOG_FORMAT" envDefault:"json"`
	// AdminToken is the operator secret or its bcrypt hash.
	AdminToken   string `env:"ADMIN_TOKEN,required,notEmpty"`
	SetupURLBase string `env:"SETUP_URL_BASE" envDefault:"http://localhost:8080/instructor-setup.html"`
	PlatformURL  string `env:"PLATFORM_URL" envDefault:"http://localhost:8080"`
	PlatformName string `env:"PLATFORM_NAME" envDefault:"Instructor Hub"`

	Identity   IdentityConfig
	Gateway    GatewayConfig
	Relay      RelayConfig
	Onboarding OnboardingConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Kafka      KafkaConfig
	RateLimit  RateLimitConfig
}

// IdentityConfig holds the identity-service credentials used to verify sessions.
type IdentityConfig struct {
	SigningKey string `env:"IDENTITY_SIGNING_KEY,required,notEmpty"`
	Issuer     string `env:"IDENTITY_ISSUER"`
	Audience   string `env:"IDENTITY_AUDIENCE"`
}

// GatewayConfig holds the payment gateway secret and transport settings.
type GatewayConfig struct {
	SecretKey string        `env:"PAYSTACK_SECRET_KEY,required,notEmpty"`
	BaseURL   string        `env:"PAYSTACK_BASE_URL" envDefault:"https://api.paystack.co"`
	Timeout   time.Duration `env:"GATEWAY_TIMEOUT" envDefault:"10s"`
}

// RelayConfig holds the email relay identifiers.
type RelayConfig struct {
	ServiceID           string        `env:"EMAILJS_SERVICE_ID,required,notEmpty"`
	PublicKey           string        `env:"EMAILJS_PUBLIC_KEY,required,notEmpty"`
	ApprovalTemplateID  string        `env:"EMAILJS_TEMPLATE_ID,required,notEmpty"`
	RejectionTemplateID string        `env:"EMAILJS_REJECTION_TEMPLATE_ID,required,notEmpty"`
	WelcomeTemplateID   string        `env:"EMAILJS_WELCOME_TEMPLATE_ID,required,notEmpty"`
	BaseURL             string        `env:"EMAILJS_BASE_URL" envDefault:"https://api.emailjs.com"`
	Timeout             time.Duration `env:"RELAY_TIMEOUT" envDefault:"10s"`
}

// OnboardingConfig tunes the credential lifecycle.
type OnboardingConfig struct {
	CredentialTTL         time.Duration `env:"CREDENTIAL_TTL" envDefault:"168h"`
	LockTTL               time.Duration `env:"REDEMPTION_LOCK_TTL" envDefault:"60s"`
	StoreTimeout          time.Duration `env:"STORE_TIMEOUT" envDefault:"5s"`
	VerifyAccountOnSubmit bool          `env:"VERIFY_ACCOUNT_ON_SUBMIT" envDefault:"true"`
	BankCacheTTL          time.Duration `env:"BANK_CACHE_TTL" envDefault:"1h"`
}

// DatabaseConfig selects postgres persistence when URL is set.
type DatabaseConfig struct {
	URL          string `env:"DATABASE_URL"`
	MaxOpenConns int    `env:"DATABASE_MAX_OPEN_CONNS" envDefault:"10"`
}

// RedisConfig selects the distributed redemption lock when URL is set.
type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// KafkaConfig selects the Kafka audit sink when Brokers is non-empty.
type KafkaConfig struct {
	Brokers    []string `env:"KAFKA_BROKERS" envSeparator:","`
	AuditTopic string   `env:"KAFKA_AUDIT_TOPIC" envDefault:"instructor-onboarding-audit"`
}

// RateLimitConfig bounds public requests per client address. The budget is
// shared across replicas when Redis is configured.
type RateLimitConfig struct {
	Enabled bool          `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	Public  int           `env:"RATE_LIMIT_PUBLIC" envDefault:"30"`
	Window  time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`
}

// Load parses the environment and validates the result. Every missing
// required variable is reported in one error so operators can fix them together.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	cfg.Kafka.Brokers = pstrings.DedupeAndTrim(cfg.Kafka.Brokers)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks cross-field constraints env tags cannot express.
func (c *Config) Validate() error {
	var errs []error
	if u, err := url.Parse(c.SetupURLBase); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("SETUP_URL_BASE must be an absolute URL, got %q", c.SetupURLBase))
	}
	if c.Onboarding.CredentialTTL <= 0 {
		errs = append(errs, errors.New("CREDENTIAL_TTL must be positive"))
	}
	if c.Onboarding.LockTTL <= 0 {
		errs = append(errs, errors.New("REDEMPTION_LOCK_TTL must be positive"))
	} else if budget := c.lockedPathBudget(); c.Onboarding.LockTTL <= budget {
		errs = append(errs, fmt.Errorf("REDEMPTION_LOCK_TTL must exceed %s (3 x GATEWAY_TIMEOUT + STORE_TIMEOUT), got %s",
			budget, c.Onboarding.LockTTL))
	}
	if c.Onboarding.StoreTimeout <= 0 {
		errs = append(errs, errors.New("STORE_TIMEOUT must be positive"))
	}
	if c.Gateway.Timeout <= 0 {
		errs = append(errs, errors.New("GATEWAY_TIMEOUT must be positive"))
	}
	if c.Relay.Timeout <= 0 {
		errs = append(errs, errors.New("RELAY_TIMEOUT must be positive"))
	}
	if c.RateLimit.Enabled && (c.RateLimit.Public <= 0 || c.RateLimit.Window <= 0) {
		errs = append(errs, errors.New("RATE_LIMIT_PUBLIC and RATE_LIMIT_WINDOW must be positive when rate limiting is enabled"))
	}
	return errors.Join(errs...)
}

// lockedPathBudget is the slowest redemption under lock: account
// verification, a subaccount update that misses and the create that follows.
func (c *Config) lockedPathBudget() time.Duration {
	return 3*c.Gateway.Timeout + c.Onboarding.StoreTimeout
}
