// Package httputil holds the JSON response helpers shared by every handler.
package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	dErrors "instructorhub/pkg/domain-errors"
)

// MaxBodyBytes caps request bodies read by DecodeJSON.
const MaxBodyBytes = 1 << 20

// StatusFor maps a domain code to its HTTP status.
func StatusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeValidation, dErrors.CodeBadRequest, dErrors.CodeInvalidCredential,
		dErrors.CodePayoutProvisioning, dErrors.CodeInvariantViolation:
		return http.StatusBadRequest
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden:
		return http.StatusForbidden
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeConflict:
		return http.StatusConflict
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the message safe to show a caller. Server-side
// failures collapse to a generic sentence so causes and identifiers stay in logs.
func PublicMessage(err error) string {
	code := dErrors.CodeOf(err)
	switch code {
	case dErrors.CodeInternal:
		return "Internal server error"
	case dErrors.CodeTimeout:
		return "Upstream service timed out"
	case dErrors.CodeDeliveryFailed:
		return "Notification delivery failed"
	}
	if msg := dErrors.MessageOf(err); msg != "" {
		return msg
	}
	return "Request failed"
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes the admin-style error envelope {error, error_description}.
// The description is omitted for server-side failures.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status := StatusFor(code)
	body := map[string]string{"error": string(code)}
	if status < http.StatusInternalServerError {
		body["error_description"] = PublicMessage(err)
	}
	WriteJSON(w, status, body)
}

// WriteFailure writes the public envelope {success:false, message}.
func WriteFailure(w http.ResponseWriter, err error) {
	WriteJSON(w, StatusFor(dErrors.CodeOf(err)), map[string]any{
		"success": false,
		"message": PublicMessage(err),
	})
}

// DecodeJSON reads a single JSON object from the request body into dst.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return dErrors.New(dErrors.CodeBadRequest, "request body is required")
		}
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid request body")
	}
	return nil
}
