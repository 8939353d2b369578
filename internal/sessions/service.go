// Package sessions issues, verifies and revokes login sessions.
//
// The sessions table is the authority. An optional cache in front of it
// keeps the per-request verification off the database.
package sessions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/quickkart/marketplace/internal/auth"
	"github.com/quickkart/marketplace/internal/domain/principal"
	"github.com/quickkart/marketplace/internal/domain/session"
)

type Store interface {
	Create(ctx context.Context, s session.Session) error
	Get(ctx context.Context, id string) (session.Session, error)
	Revoke(ctx context.Context, id string) error
	RevokeAllForPrincipal(ctx context.Context, principalID string) ([]string, error)
}

type Cache interface {
	Get(ctx context.Context, id string) (session.Session, bool, error)
	Put(ctx context.Context, s session.Session) error
	Evict(ctx context.Context, ids ...string) error
}

type Service struct {
	store  Store
	cache  Cache
	tokens *auth.Manager
	ttl    time.Duration
	now    func() time.Time
}

// NewService builds the service. cache may be nil.
func NewService(store Store, cache Cache, tokens *auth.Manager, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &Service{
		store:  store,
		cache:  cache,
		tokens: tokens,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue records a new session for p and returns the bearer token that names it.
func (s *Service) Issue(ctx context.Context, p principal.Principal, userAgent string) (string, session.Session, error) {
	sess := session.New(p, s.ttl, userAgent)

	if err := s.store.Create(ctx, sess); err != nil {
		return "", session.Session{}, fmt.Errorf("create session: %w", err)
	}

	token, err := s.tokens.IssueToken(sess)
	if err != nil {
		return "", session.Session{}, fmt.Errorf("sign session token: %w", err)
	}

	s.cachePut(ctx, sess)

	return token, sess, nil
}

// Verify resolves a bearer token to a live session.
func (s *Service) Verify(ctx context.Context, token string) (session.Session, error) {
	claims, err := s.tokens.ParseAndValidate(token)
	if err != nil {
		return session.Session{}, err
	}

	sess, err := s.lookup(ctx, claims.SessionID)
	if err != nil {
		return session.Session{}, err
	}

	if sess.PrincipalID != claims.PrincipalID {
		return session.Session{}, auth.ErrInvalidToken
	}

	if err := sess.Check(s.now()); err != nil {
		return session.Session{}, err
	}

	return sess, nil
}

func (s *Service) lookup(ctx context.Context, id string) (session.Session, error) {
	if s.cache != nil {
		sess, ok, err := s.cache.Get(ctx, id)
		if err != nil {
			slog.WarnContext(ctx, "session_cache_get_failed", "session_id", id, "err", err)
		}
		if ok {
			return sess, nil
		}
	}

	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return session.Session{}, err
	}

	if sess.Check(s.now()) == nil {
		s.cachePut(ctx, sess)
	}

	return sess, nil
}

// Revoke ends one session. Revoking an unknown or already revoked session is not an error.
func (s *Service) Revoke(ctx context.Context, id string) error {
	err := s.store.Revoke(ctx, id)
	if err != nil && !errors.Is(err, session.ErrNotFound) {
		return err
	}

	s.cacheEvict(ctx, id)
	return nil
}

// RevokeAll ends every live session of one principal.
func (s *Service) RevokeAll(ctx context.Context, principalID string) (int, error) {
	ids, err := s.store.RevokeAllForPrincipal(ctx, principalID)
	if err != nil {
		return 0, err
	}

	s.cacheEvict(ctx, ids...)
	return len(ids), nil
}

func (s *Service) cachePut(ctx context.Context, sess session.Session) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Put(ctx, sess); err != nil {
		slog.WarnContext(ctx, "session_cache_put_failed", "session_id", sess.ID, "err", err)
	}
}

func (s *Service) cacheEvict(ctx context.Context, ids ...string) {
	if s.cache == nil || len(ids) == 0 {
		return
	}
	if err := s.cache.Evict(ctx, ids...); err != nil {
		slog.WarnContext(ctx, "session_cache_evict_failed", "count", len(ids), "err", err)
	}
}
