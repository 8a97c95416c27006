package admin

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"instructorhub/internal/platform/logger"
)

func TestRequireAdminToken(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })

	tests := []struct {
		name     string
		expected string
		header   string
		status   int
	}{
		{"matching token", "s3cret", "s3cret", http.StatusNoContent},
		{"wrong token", "s3cret", "nope", http.StatusUnauthorized},
		{"missing header", "s3cret", "", http.StatusUnauthorized},
		{"unconfigured secret never matches", "", "", http.StatusUnauthorized},
		{"hashed secret accepts the token", string(hashed), "s3cret", http.StatusNoContent},
		{"hashed secret rejects a wrong token", string(hashed), "nope", http.StatusUnauthorized},
		{"hashed secret is not itself a token", string(hashed), string(hashed), http.StatusUnauthorized},
		{"hashed secret rejects a missing header", string(hashed), "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/applications", nil)
			if tt.header != "" {
				req.Header.Set(HeaderAdminToken, tt.header)
			}
			rr := httptest.NewRecorder()
			RequireAdminToken(tt.expected, logger.Discard())(ok).ServeHTTP(rr, req)
			assert.Equal(t, tt.status, rr.Code)
		})
	}
}
