package admin

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	request "instructorhub/pkg/platform/middleware/request"
)

const HeaderAdminToken = "X-Admin-Token"

// RequireAdminToken guards operator endpoints with a shared secret header.
// The configured secret may be the token itself or its bcrypt hash.
func RequireAdminToken(expectedToken string, logger *slog.Logger) func(http.Handler) http.Handler {
	matches := tokenMatcher(expectedToken)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !matches(r.Header.Get(HeaderAdminToken)) {
				ctx := r.Context()
				logger.WarnContext(ctx, "admin token mismatch",
					"path", r.URL.Path,
					"request_id", request.GetRequestID(ctx),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"admin token required"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func tokenMatcher(expected string) func(token string) bool {
	if expected == "" {
		return func(string) bool { return false }
	}
	if _, err := bcrypt.Cost([]byte(expected)); err == nil {
		hash := []byte(expected)
		return func(token string) bool {
			return token != "" && bcrypt.CompareHashAndPassword(hash, []byte(token)) == nil
		}
	}
	return func(token string) bool {
		return subtle.ConstantTimeCompare([]byte(token), []byte(expected)) == 1
	}
}
