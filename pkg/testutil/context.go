package testutil

import (
	"net/http"
	"time"

	authmw "instructorhub/pkg/platform/middleware/auth"
	"instructorhub/pkg/requestcontext"
)

// WithBearer attaches a bearer credential the way auth.CaptureBearer would.
func WithBearer(req *http.Request, token string) *http.Request {
	return req.WithContext(authmw.WithBearer(req.Context(), token))
}

// WithRequestTime pins the request-scoped clock.
func WithRequestTime(req *http.Request, now time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), now))
}

// WithRequestID sets the correlation id the request middleware would mint.
func WithRequestID(req *http.Request, id string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), id))
}
