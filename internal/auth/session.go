package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/erazemk/sitestock/internal/apperr"
	"github.com/erazemk/sitestock/internal/model"
)

// Session is the identity a client carries between requests. It is never
// stored server-side.
type Session struct {
	Role     string `json:"role"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Site     string `json:"site"`
}

// IsAdmin reports whether the session belongs to an administrator.
func (s *Session) IsAdmin() bool { return s != nil && s.Role == model.RoleAdmin }

// claims is the signed form of a Session.
type claims struct {
	Session
	jwt.RegisteredClaims
}

// SessionTTL is the fixed lifetime of a session from issuance. There is no
// revocation: a token stays valid until it expires.
const SessionTTL = 24 * time.Hour

// CreateSession signs the session fields into an opaque token.
func CreateSession(secret string, s Session) (string, error) {
	now := time.Now()
	c := claims{
		Session: s,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.Username,
			ExpiresAt: jwt.NewNumericDate(now.Add(SessionTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("signing session: %w", err)
	}
	return signed, nil
}

// ReadSession returns the session carried by token, or nil when the token
// is empty, malformed, tampered with, expired, or lacks role, username or
// site. It never fails in any other way.
func ReadSession(secret, token string) *Session {
	if token == "" {
		return nil
	}

	parsed, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		return nil
	}

	c, ok := parsed.Claims.(*claims)
	if !ok {
		return nil
	}
	if !model.ValidRole(c.Role) || c.Username == "" || c.Site == "" {
		return nil
	}

	s := c.Session
	return &s
}

// RequireRole checks that a session exists and holds one of roles.
func RequireRole(s *Session, roles ...string) (*Session, error) {
	if s == nil {
		return nil, apperr.New(apperr.Unauthorized, "not authenticated")
	}
	for _, r := range roles {
		if s.Role == r {
			return s, nil
		}
	}
	return nil, apperr.New(apperr.Forbidden, "insufficient permissions")
}
