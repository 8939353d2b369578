package session

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/quickkart/marketplace/internal/domain/principal"
)

var (
	ErrNotFound = errors.New("session not found")
	ErrRevoked  = errors.New("session revoked")
	ErrExpired  = errors.New("session expired")
)

// Session records one successful login. It replaces the old
// browser-global "current email" slot: it expires and can be revoked.
type Session struct {
	ID          string         `json:"id"`
	PrincipalID string         `json:"principalId"`
	Email       string         `json:"email"`
	Role        principal.Role `json:"role"`
	IssuedAt    time.Time      `json:"issuedAt"`
	ExpiresAt   time.Time      `json:"expiresAt"`
	RevokedAt   *time.Time     `json:"revokedAt,omitempty"`
	UserAgent   string         `json:"-"`
}

func New(p principal.Principal, ttl time.Duration, userAgent string) Session {
	now := time.Now().UTC()

	return Session{
		ID:          uuid.NewString(),
		PrincipalID: p.ID,
		Email:       p.Email,
		Role:        p.Role,
		IssuedAt:    now,
		ExpiresAt:   now.Add(ttl),
		UserAgent:   userAgent,
	}
}

// Check reports why a session can no longer be used, if it cannot.
func (s Session) Check(now time.Time) error {
	if s.RevokedAt != nil {
		return ErrRevoked
	}
	if !now.Before(s.ExpiresAt) {
		return ErrExpired
	}
	return nil
}
