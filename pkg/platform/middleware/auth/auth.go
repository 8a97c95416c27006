package auth

import (
	"context"
	"net/http"
	"strings"
)

type contextKeyBearer struct{}

// ContextKeyBearer holds the raw bearer credential. Verification is left to
// the service that needs it, since some routes accept either a bearer session
// or a body token.
var ContextKeyBearer = contextKeyBearer{}

// BearerFromRequest extracts the credential from an "Authorization: Bearer" header.
func BearerFromRequest(r *http.Request) (string, bool) {
	after, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return "", false
	}
	token := strings.TrimSpace(after)
	return token, token != ""
}

// CaptureBearer stores any bearer credential on the context without rejecting
// requests that lack one.
func CaptureBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token, ok := BearerFromRequest(r); ok {
			r = r.WithContext(WithBearer(r.Context(), token))
		}
		next.ServeHTTP(w, r)
	})
}

// GetBearer retrieves the raw bearer credential from the context.
func GetBearer(ctx context.Context) string {
	token, _ := ctx.Value(ContextKeyBearer).(string)
	return token
}

// WithBearer injects a bearer credential; used by tests that skip the middleware chain.
func WithBearer(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, ContextKeyBearer, token)
}
