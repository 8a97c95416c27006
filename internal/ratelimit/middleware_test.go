package ratelimit_test

//go:generate mockgen -source=ratelimit.go -destination=mocks/mocks.go -package=mocks Store

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"instructorhub/internal/platform/logger"
	"instructorhub/internal/ratelimit"
	"instructorhub/internal/ratelimit/mocks"
	"instructorhub/pkg/requestcontext"
)

type countingRecorder struct{ scopes []string }

func (c *countingRecorder) IncRateLimited(scope string) { c.scopes = append(c.scopes, scope) }

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
}

func TestMiddlewareRejectsOverBudget(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	store := ratelimit.NewInMemory().WithClock(func() time.Time { return now })
	rec := &countingRecorder{}
	mw := ratelimit.NewMiddleware(store, 2, time.Minute,
		ratelimit.WithLogger(logger.Discard()),
		ratelimit.WithRecorder(rec),
	)
	h := mw.Handler(okHandler())

	call := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/banks", nil)
		req = req.WithContext(requestcontext.WithClientIP(req.Context(), ip))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr
	}

	first := call("10.0.0.1")
	assert.Equal(t, http.StatusNoContent, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "1780315260", first.Header().Get("X-RateLimit-Reset"))

	assert.Equal(t, http.StatusNoContent, call("10.0.0.1").Code)

	rejected := call("10.0.0.1")
	require.Equal(t, http.StatusTooManyRequests, rejected.Code)
	assert.Equal(t, "60", rejected.Header().Get("Retry-After"))
	var body map[string]any
	require.NoError(t, json.Unmarshal(rejected.Body.Bytes(), &body))
	assert.Equal(t, "rate_limited", body["error"])
	assert.EqualValues(t, 60, body["retry_after"])
	assert.Equal(t, []string{"public"}, rec.scopes)

	assert.Equal(t, http.StatusNoContent, call("10.0.0.2").Code, "budgets are per address")
}

func TestMiddlewareFallsBackToRemoteAddr(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	store.EXPECT().Allow(gomock.Any(), "apply:192.0.2.7", 5, time.Minute).
		Return(&ratelimit.Result{Allowed: true, Limit: 5, Remaining: 4, ResetAt: time.Now().Add(time.Minute)}, nil)

	mw := ratelimit.NewMiddleware(store, 5, time.Minute,
		ratelimit.WithLogger(logger.Discard()),
		ratelimit.WithScope("apply"),
	)
	req := httptest.NewRequest(http.MethodPost, "/applications", nil)
	req.RemoteAddr = "192.0.2.7:5123"
	rr := httptest.NewRecorder()
	mw.Handler(okHandler()).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "4", rr.Header().Get("X-RateLimit-Remaining"))
}

func TestMiddlewareFailsOpen(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	store.EXPECT().Allow(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("redis down"))

	mw := ratelimit.NewMiddleware(store, 1, time.Minute, ratelimit.WithLogger(logger.Discard()))
	req := httptest.NewRequest(http.MethodGet, "/banks", nil)
	rr := httptest.NewRecorder()
	mw.Handler(okHandler()).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Header().Get("X-RateLimit-Limit"))
}
