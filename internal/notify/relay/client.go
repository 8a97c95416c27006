// Package relay sends templated emails through the EmailJS REST API.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	dErrors "instructorhub/pkg/domain-errors"
	"instructorhub/pkg/platform/circuit"
	"instructorhub/pkg/platform/sentinel"
)

const sendPath = "/api/v1.0/email/send"

// TemplateParams are the variables every template may reference.
type TemplateParams struct {
	ToEmail         string `json:"to_email"`
	ToName          string `json:"to_name"`
	Subject         string `json:"subject"`
	Message         string `json:"message"`
	InstructorName  string `json:"instructor_name,omitempty"`
	SetupURL        string `json:"setup_url,omitempty"`
	RejectionReason string `json:"rejection_reason,omitempty"`
}

type sendRequest struct {
	ServiceID      string         `json:"service_id"`
	TemplateID     string         `json:"template_id"`
	UserID         string         `json:"user_id"`
	TemplateParams TemplateParams `json:"template_params"`
}

// RejectedError is a non-2xx answer from the relay.
type RejectedError struct {
	StatusCode int
	Body       string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("email relay returned %d: %s", e.StatusCode, e.Body)
}

type Client struct {
	baseURL    string
	serviceID  string
	publicKey  string
	httpClient *http.Client
	breaker    *circuit.Breaker
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

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func New(baseURL, serviceID, publicKey string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceID:  serviceID,
		publicKey:  publicKey,
		httpClient: &http.Client{Timeout: timeout},
		breaker:    circuit.New("emailjs"),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Send delivers one templated email. A nil error means the relay accepted it.
func (c *Client) Send(ctx context.Context, templateID string, params TemplateParams) error {
	if !c.breaker.Allow() {
		return fmt.Errorf("email relay circuit open: %w", sentinel.ErrUnavailable)
	}
	payload, err := json.Marshal(sendRequest{
		ServiceID:      c.serviceID,
		TemplateID:     templateID,
		UserID:         c.publicKey,
		TemplateParams: params,
	})
	if err != nil {
		return fmt.Errorf("encode email: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+sendPath, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.recordFailure(ctx)
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return dErrors.Wrap(err, dErrors.CodeTimeout, "email relay timed out")
		}
		return fmt.Errorf("email relay: %v: %w", err, sentinel.ErrUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		c.recordFailure(ctx)
	} else {
		c.breaker.RecordSuccess()
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &RejectedError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) recordFailure(ctx context.Context) {
	if _, change := c.breaker.RecordFailure(); change.Opened {
		c.logger.WarnContext(ctx, "circuit breaker opened", "breaker", c.breaker.Name())
	}
}
