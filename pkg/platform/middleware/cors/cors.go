// Package cors answers browser preflight requests for the public endpoints.
package cors

import "net/http"

const (
	allowHeaders = "Content-Type, Authorization, X-Admin-Token, X-Request-ID"
	allowMethods = "GET, POST, OPTIONS"
)

// AllowAll sets permissive CORS headers on every response and short-circuits
// OPTIONS with 200 and an empty body.
func AllowAll(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Headers", allowHeaders)
		h.Set("Access-Control-Allow-Methods", allowMethods)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
