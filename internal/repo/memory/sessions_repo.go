package memory

import (
	"context"
	"sync"
	"time"

	"github.com/quickkart/marketplace/internal/domain/session"
)

type SessionsRepo struct {
	mu    sync.RWMutex
	items map[string]session.Session
}

func NewSessionsRepo() *SessionsRepo {
	return &SessionsRepo{
		items: make(map[string]session.Session),
	}
}

func (r *SessionsRepo) Create(_ context.Context, s session.Session) error {
	r.mu.Lock()
	r.items[s.ID] = s
	r.mu.Unlock()
	return nil
}

func (r *SessionsRepo) Get(_ context.Context, id string) (session.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.items[id]
	if !ok {
		return session.Session{}, session.ErrNotFound
	}
	return s, nil
}

func (r *SessionsRepo) Revoke(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.items[id]
	if !ok || s.RevokedAt != nil {
		return session.ErrNotFound
	}

	now := time.Now().UTC()
	s.RevokedAt = &now
	r.items[id] = s
	return nil
}

func (r *SessionsRepo) RevokeAllForPrincipal(_ context.Context, principalID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	ids := make([]string, 0)

	for id, s := range r.items {
		if s.PrincipalID == principalID && s.RevokedAt == nil {
			s.RevokedAt = &now
			r.items[id] = s
			ids = append(ids, id)
		}
	}
	return ids, nil
}
