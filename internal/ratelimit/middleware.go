package ratelimit

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"instructorhub/pkg/platform/httputil"
	"instructorhub/pkg/platform/middleware/metadata"
	request "instructorhub/pkg/platform/middleware/request"
	"instructorhub/pkg/requestcontext"
)

// Recorder counts rejected requests; *metrics.Metrics satisfies it.
type Recorder interface {
	IncRateLimited(scope string)
}

type Middleware struct {
	store    Store
	limit    int
	window   time.Duration
	scope    string
	logger   *slog.Logger
	recorder Recorder
}

type Option func(*Middleware)

func WithLogger(logger *slog.Logger) Option {
	return func(m *Middleware) {
		if logger != nil {
			m.logger = logger
		}
	}
}

func WithRecorder(r Recorder) Option {
	return func(m *Middleware) {
		m.recorder = r
	}
}

// WithScope names the budget; it prefixes store keys and labels metrics.
func WithScope(scope string) Option {
	return func(m *Middleware) {
		if scope != "" {
			m.scope = scope
		}
	}
}

func NewMiddleware(store Store, limit int, window time.Duration, opts ...Option) *Middleware {
	m := &Middleware{
		store:  store,
		limit:  limit,
		window: window,
		scope:  "public",
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Handler rejects callers that exceed the budget with 429. Store failures
// let the request through.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ip := requestcontext.ClientIP(ctx)
		if ip == "" {
			ip = metadata.ClientIPFromRequest(r)
		}

		result, err := m.store.Allow(ctx, m.scope+":"+ip, m.limit, m.window)
		if err != nil {
			m.logger.ErrorContext(ctx, "rate limit check failed",
				"error", err,
				"request_id", request.GetRequestID(ctx),
			)
			next.ServeHTTP(w, r)
			return
		}

		addRateLimitHeaders(w, result)
		if !result.Allowed {
			m.logger.WarnContext(ctx, "rate limit exceeded",
				"client_ip", ip,
				"path", r.URL.Path,
				"request_id", request.GetRequestID(ctx),
			)
			if m.recorder != nil {
				m.recorder.IncRateLimited(m.scope)
			}
			writeRateLimitExceeded(w, result)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func addRateLimitHeaders(w http.ResponseWriter, result *Result) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

type exceededResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	RetryAfter       int    `json:"retry_after"`
}

func writeRateLimitExceeded(w http.ResponseWriter, result *Result) {
	retry := retryAfterSeconds(result.RetryAfter)
	w.Header().Set("Retry-After", strconv.Itoa(retry))
	httputil.WriteJSON(w, http.StatusTooManyRequests, exceededResponse{
		Error:            "rate_limited",
		ErrorDescription: "Too many requests from this address. Please try again later.",
		RetryAfter:       retry,
	})
}
