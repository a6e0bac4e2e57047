// Package token issues and verifies the signed, time-limited identity
// tokens used by both the HTTP API and the websocket handshake. Tokens are
// stateless: there is no server-side record and no revocation list; a token
// is invalidated only by its expiry.
package token

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"threadtalk/backend/internal/models"
)

const issuer = "threadtalk-service"

// Verification failures. Callers treat any of them uniformly as
// "no identity"; the distinction exists for logging.
var (
	ErrMalformed        = errors.New("token malformed")
	ErrSignatureInvalid = errors.New("token signature invalid")
	ErrExpired          = errors.New("token expired")
)

// Claims binds a subject identity to an expiry window.
type Claims struct {
	DisplayName string `json:"name"`
	jwt.RegisteredClaims
}

// Service signs and verifies tokens with a server-held secret (HS256).
type Service struct {
	secret []byte
	ttl    time.Duration
}

// NewService creates a token service. ttl is how long issued tokens live.
func NewService(secret []byte, ttl time.Duration) *Service {
	return &Service{secret: secret, ttl: ttl}
}

// Issue signs a token for the given user, valid for the service TTL.
func (s *Service) Issue(user *models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		DisplayName: user.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify checks signature, expiry and issuer, and returns the identity the
// token was issued for. Failures are reported as one of the sentinel
// errors above; Verify never panics on hostile input.
func (s *Service) Verify(raw string) (models.Identity, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithIssuer(issuer))

	switch {
	case err == nil && parsed.Valid:
		// fall through to subject checks below
	case errors.Is(err, jwt.ErrTokenExpired):
		return models.Identity{}, ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return models.Identity{}, ErrSignatureInvalid
	default:
		return models.Identity{}, ErrMalformed
	}

	if claims.Subject == "" {
		return models.Identity{}, ErrMalformed
	}
	return models.Identity{ID: claims.Subject, DisplayName: claims.DisplayName}, nil
}
