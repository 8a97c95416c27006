// Package paystack is a thin client for the payment gateway endpoints the
// onboarding workflow needs.
package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"instructorhub/internal/platform/metrics"
	dErrors "instructorhub/pkg/domain-errors"
	"instructorhub/pkg/platform/circuit"
	"instructorhub/pkg/platform/sentinel"
)

const maxResponseBytes = 4 << 20

type Client struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
	breaker    *circuit.Breaker
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(c *Client) {
		c.breaker = b
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New builds a client. timeout bounds every call.
func New(baseURL, secretKey string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		secretKey:  secretKey,
		httpClient: &http.Client{Timeout: timeout},
		breaker:    circuit.New("paystack"),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) CreateSubaccount(ctx context.Context, req SubaccountRequest) (Subaccount, error) {
	var out Subaccount
	err := c.do(ctx, "create_subaccount", http.MethodPost, "/subaccount", req, &out)
	if err == nil && out.Code == "" {
		err = &APIError{StatusCode: http.StatusOK, Message: "Gateway returned no subaccount code"}
	}
	return out, err
}

func (c *Client) UpdateSubaccount(ctx context.Context, code string, req SubaccountRequest) (Subaccount, error) {
	var out Subaccount
	err := c.do(ctx, "update_subaccount", http.MethodPut, "/subaccount/"+url.PathEscape(code), req, &out)
	if err == nil && out.Code == "" {
		out.Code = code
	}
	return out, err
}

func (c *Client) FetchSubaccount(ctx context.Context, code string) (Subaccount, error) {
	var out Subaccount
	err := c.do(ctx, "fetch_subaccount", http.MethodGet, "/subaccount/"+url.PathEscape(code), nil, &out)
	return out, err
}

func (c *Client) ResolveAccount(ctx context.Context, accountNumber, bankCode string) (ResolvedAccount, error) {
	q := url.Values{}
	q.Set("account_number", accountNumber)
	q.Set("bank_code", bankCode)
	var out ResolvedAccount
	err := c.do(ctx, "resolve_account", http.MethodGet, "/bank/resolve?"+q.Encode(), nil, &out)
	return out, err
}

func (c *Client) ListBanks(ctx context.Context) ([]Bank, error) {
	var out []Bank
	err := c.do(ctx, "list_banks", http.MethodGet, "/bank", nil, &out)
	return out, err
}

func (c *Client) VerifyTransaction(ctx context.Context, reference string) (Transaction, error) {
	var out Transaction
	err := c.do(ctx, "verify_transaction", http.MethodGet, "/transaction/verify/"+url.PathEscape(reference), nil, &out)
	return out, err
}

// do performs one call. Errors:
//   - *APIError for 4xx or status=false
//   - dErrors CodeTimeout when the deadline passes
//   - sentinel.ErrUnavailable for 5xx, transport failures and an open breaker
func (c *Client) do(ctx context.Context, op, method, path string, body, out any) (err error) {
	start := time.Now()
	defer func() { c.metrics.ObserveGateway(op, start, err) }()

	if !c.breaker.Allow() {
		return fmt.Errorf("paystack %s: circuit open: %w", op, sentinel.ErrUnavailable)
	}

	var reader io.Reader
	if body != nil {
		payload, mErr := json.Marshal(body)
		if mErr != nil {
			return fmt.Errorf("encode paystack %s: %w", op, mErr)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build paystack %s: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.recordFailure(ctx, op)
		if isTimeout(ctx, err) {
			return dErrors.Wrap(err, dErrors.CodeTimeout, "payment gateway timed out")
		}
		return fmt.Errorf("paystack %s: %v: %w", op, err, sentinel.ErrUnavailable)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		c.recordFailure(ctx, op)
		return fmt.Errorf("read paystack %s: %v: %w", op, err, sentinel.ErrUnavailable)
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		c.recordFailure(ctx, op)
		return fmt.Errorf("paystack %s returned %d: %w", op, resp.StatusCode, sentinel.ErrUnavailable)
	}
	c.breaker.RecordSuccess()

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return fmt.Errorf("decode paystack %s: %w", op, err)
	}
	if resp.StatusCode >= http.StatusBadRequest || !env.Status {
		msg := env.Message
		if msg == "" {
			msg = "Payment gateway rejected the request"
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode paystack %s data: %w", op, err)
		}
	}
	return nil
}

func (c *Client) recordFailure(ctx context.Context, op string) {
	if _, change := c.breaker.RecordFailure(); change.Opened {
		c.logger.WarnContext(ctx, "circuit breaker opened",
			"breaker", c.breaker.Name(),
			"operation", op,
		)
	}
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
