// Package session owns the signed-in state derived from the bearer token.
package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session is the decoded view of a bearer token.
type Session struct {
	Token string

	// Subject is the sub claim, the account's email.
	Subject string

	// ExpiresAt is the exp claim. Zero means the token never expires.
	ExpiresAt time.Time

	Roles []string
}

// Expired reports whether the session is past its exp claim at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

type claims struct {
	jwt.RegisteredClaims
	Roles []string `json:"roles,omitempty"`
}

// Decode reads the claims of token without verifying its signature. The
// client never holds the signing secret; the server verifies every request.
func Decode(token string) (Session, error) {
	var c claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &c); err != nil {
		return Session{}, fmt.Errorf("decoding token: %w", err)
	}

	s := Session{Token: token, Subject: c.Subject, Roles: c.Roles}
	if c.ExpiresAt != nil {
		s.ExpiresAt = c.ExpiresAt.Time
	}
	return s, nil
}

// Valid reports whether token decodes and is not expired at now.
func Valid(token string, now time.Time) (Session, bool) {
	if token == "" {
		return Session{}, false
	}
	s, err := Decode(token)
	if err != nil || s.Expired(now) {
		return Session{}, false
	}
	return s, true
}
