package memory

import (
	"context"
	"sync"

	"github.com/quickkart/marketplace/internal/domain/principal"
)

type PrincipalsRepo struct {
	mu       sync.RWMutex
	items    map[string]principal.Principal // id -> principal
	byEmail  map[string]string              // normalized email -> id
	profiles map[string]principal.CustomerProfile
}

func NewPrincipalsRepo() *PrincipalsRepo {
	return &PrincipalsRepo{
		items:    make(map[string]principal.Principal),
		byEmail:  make(map[string]string),
		profiles: make(map[string]principal.CustomerProfile),
	}
}

// Register stores the principal and, for customers, the profile under one lock.
func (r *PrincipalsRepo) Register(_ context.Context, p principal.Principal) (principal.Principal, error) {
	email := principal.NormalizeEmail(p.Email)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[email]; taken {
		return principal.Principal{}, principal.ErrDuplicateEmail
	}

	r.items[p.ID] = p
	r.byEmail[email] = p.ID

	if p.Role == principal.RoleCustomer {
		r.profiles[p.ID] = principal.ProfileFor(p)
	}

	return p, nil
}

func (r *PrincipalsRepo) GetByEmail(_ context.Context, email string) (principal.Principal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[principal.NormalizeEmail(email)]
	if !ok {
		return principal.Principal{}, principal.ErrNotFound
	}

	return r.items[id], nil
}

func (r *PrincipalsRepo) GetByID(_ context.Context, id string) (principal.Principal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[id]
	if !ok {
		return principal.Principal{}, principal.ErrNotFound
	}

	return p, nil
}

func (r *PrincipalsRepo) GetProfile(_ context.Context, principalID string) (principal.CustomerProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cp, ok := r.profiles[principalID]
	if !ok {
		return principal.CustomerProfile{}, principal.ErrProfileNotFound
	}

	return cp, nil
}
