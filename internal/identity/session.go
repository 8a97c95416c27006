package identity

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dErrors "instructorhub/pkg/domain-errors"
)

// SessionClaims is the JWT payload issued by the identity service.
type SessionClaims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// SessionVerifier validates HS256 session tokens issued by the identity service.
type SessionVerifier struct {
	signingKey []byte
	issuer     string
	audience   string
}

func NewSessionVerifier(signingKey, issuer, audience string) *SessionVerifier {
	return &SessionVerifier{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
	}
}

// Sign mints a session token. Used by dev tooling and tests.
func (v *SessionVerifier) Sign(subjectID, email, name string, expiresIn time.Duration) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		Email: email,
		Name:  name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    v.issuer,
			ID:        uuid.NewString(),
		},
	}
	if v.audience != "" {
		claims.Audience = []string{v.audience}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.signingKey)
}

// Verify checks signature, expiry, issuer and audience and returns the session.
// Every failure is CodeUnauthorized.
func (v *SessionVerifier) Verify(_ context.Context, raw string) (Session, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	parsed, err := jwt.ParseWithClaims(raw, &SessionClaims{}, func(*jwt.Token) (any, error) {
		return v.signingKey, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Session{}, dErrors.New(dErrors.CodeUnauthorized, "session has expired")
		}
		return Session{}, dErrors.New(dErrors.CodeUnauthorized, "invalid session")
	}

	claims, ok := parsed.Claims.(*SessionClaims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return Session{}, dErrors.New(dErrors.CodeUnauthorized, "invalid session claims")
	}

	session := Session{
		SubjectID:   claims.Subject,
		Email:       claims.Email,
		DisplayName: claims.Name,
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}
	return session, nil
}
