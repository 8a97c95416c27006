// Package service answers the bank lookups the setup page needs and verifies
// split payments. The bank list is cached in process because it changes
// rarely and every setup page load asks for it.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"golang.org/x/sync/singleflight"

	"instructorhub/internal/gateway/paystack"
	dErrors "instructorhub/pkg/domain-errors"
)

const banksKey = "banks"

// Gateway is the subset of the payment gateway used for lookups.
type Gateway interface {
	ListBanks(ctx context.Context) ([]paystack.Bank, error)
	ResolveAccount(ctx context.Context, accountNumber, bankCode string) (paystack.ResolvedAccount, error)
	VerifyTransaction(ctx context.Context, reference string) (paystack.Transaction, error)
}

// Payment is a verified successful charge.
type Payment struct {
	Amount         float64
	Currency       string
	CustomerEmail  string
	Reference      string
	SubaccountCode string
	PaidAt         time.Time
}

type Service struct {
	gateway Gateway
	cache   *ristretto.Cache[string, []paystack.Bank]
	group   singleflight.Group
	ttl     time.Duration
	logger  *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// New builds the service. A non-positive ttl disables caching.
func New(gateway Gateway, ttl time.Duration, opts ...Option) (*Service, error) {
	if gateway == nil {
		return nil, errors.New("gateway is required")
	}
	cache, err := ristretto.NewCache(&ristretto.Config[string, []paystack.Bank]{
		NumCounters:        100,
		MaxCost:            10,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, err
	}
	s := &Service{
		gateway: gateway,
		cache:   cache,
		ttl:     ttl,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close releases the cache's background goroutines.
func (s *Service) Close() {
	s.cache.Close()
}

// Banks returns the active bank list. Concurrent misses share one gateway
// call.
func (s *Service) Banks(ctx context.Context) ([]paystack.Bank, error) {
	if banks, ok := s.cache.Get(banksKey); ok {
		return banks, nil
	}
	v, err, _ := s.group.Do(banksKey, func() (any, error) {
		// Shared by every waiting caller, so one caller's cancellation must
		// not fail the others.
		banks, err := s.gateway.ListBanks(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		active := make([]paystack.Bank, 0, len(banks))
		for _, b := range banks {
			if b.Active {
				active = append(active, b)
			}
		}
		if s.ttl > 0 {
			s.cache.SetWithTTL(banksKey, active, 1, s.ttl)
			s.cache.Wait()
		}
		return active, nil
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "bank list lookup failed", "error", err)
		return nil, gatewayError(err, "Failed to load banks")
	}
	return v.([]paystack.Bank), nil
}

// VerifyAccount resolves the holder name for an account number.
func (s *Service) VerifyAccount(ctx context.Context, accountNumber, bankCode string) (*paystack.ResolvedAccount, error) {
	resolved, err := s.gateway.ResolveAccount(ctx, accountNumber, bankCode)
	if err != nil {
		return nil, gatewayError(err, "Could not resolve account")
	}
	return &resolved, nil
}

// VerifyPayment confirms a charge succeeded. Any other gateway status is a
// BadRequest so the caller does not grant access for it.
func (s *Service) VerifyPayment(ctx context.Context, reference string) (*Payment, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "reference is required")
	}
	txn, err := s.gateway.VerifyTransaction(ctx, reference)
	if err != nil {
		var apiErr *paystack.APIError
		if errors.As(err, &apiErr) {
			return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "Payment verification failed")
		}
		return nil, gatewayError(err, "Verification failed")
	}
	if txn.Status != paystack.TransactionSuccess {
		s.logger.WarnContext(ctx, "payment not successful", "reference", reference, "status", txn.Status)
		return nil, dErrors.New(dErrors.CodeBadRequest, "Payment verification failed")
	}
	return &Payment{
		Amount:         txn.MajorAmount(),
		Currency:       txn.Currency,
		CustomerEmail:  txn.Customer.Email,
		Reference:      txn.Reference,
		SubaccountCode: txn.SubaccountCode(),
		PaidAt:         txn.PaidAt,
	}, nil
}

func gatewayError(err error, fallback string) error {
	var apiErr *paystack.APIError
	switch {
	case errors.As(err, &apiErr):
		return dErrors.Wrap(err, dErrors.CodeBadRequest, apiErr.Message)
	case dErrors.HasCode(err, dErrors.CodeTimeout):
		return dErrors.Wrap(err, dErrors.CodeTimeout, "Payment gateway timed out")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, fallback)
	}
}
