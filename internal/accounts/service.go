// Package accounts registers principals and checks their credentials.
package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/quickkart/marketplace/internal/domain/principal"
	"github.com/quickkart/marketplace/internal/observability"
	"github.com/quickkart/marketplace/internal/security"
)

type Store interface {
	Register(ctx context.Context, p principal.Principal) (principal.Principal, error)
	GetByEmail(ctx context.Context, email string) (principal.Principal, error)
	GetByID(ctx context.Context, id string) (principal.Principal, error)
	GetProfile(ctx context.Context, principalID string) (principal.CustomerProfile, error)
}

type Service struct {
	store Store
	prom  *observability.Prom

	hash  func(plain string) (string, error)
	check func(hash, plain string) error
}

func NewService(store Store, prom *observability.Prom) *Service {
	return &Service{
		store: store,
		prom:  prom,
		hash:  security.HashPassword,
		check: security.CheckPassword,
	}
}

// Register creates a principal (and a customer profile for customers) in one unit.
func (s *Service) Register(ctx context.Context, req principal.SignUpRequest) (principal.Principal, error) {
	if err := req.Validate(); err != nil {
		s.prom.IncSignup(string(req.Role), "invalid")
		return principal.Principal{}, err
	}

	hash, err := s.hash(req.Password)
	if err != nil {
		s.prom.IncSignup(string(req.Role), "error")
		return principal.Principal{}, fmt.Errorf("hash password: %w", err)
	}

	p, err := s.store.Register(ctx, principal.New(req, hash))
	if err != nil {
		result := "error"
		if errors.Is(err, principal.ErrDuplicateEmail) {
			result = "duplicate"
		}
		s.prom.IncSignup(string(req.Role), result)
		return principal.Principal{}, err
	}

	s.prom.IncSignup(string(p.Role), "ok")
	return p, nil
}

// Authenticate returns principal.ErrNotFound for an unknown email and
// principal.ErrInvalidCredential for a wrong password.
func (s *Service) Authenticate(ctx context.Context, email, password string) (principal.Principal, error) {
	p, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, principal.ErrNotFound) {
			s.prom.IncLogin("unknown_email")
		} else {
			s.prom.IncLogin("error")
		}
		return principal.Principal{}, err
	}

	if err := s.check(p.PasswordHash, password); err != nil {
		s.prom.IncLogin("bad_password")
		return principal.Principal{}, err
	}

	s.prom.IncLogin("ok")
	return p, nil
}

func (s *Service) Get(ctx context.Context, id string) (principal.Principal, error) {
	return s.store.GetByID(ctx, id)
}

// Profile returns the customer profile used for billing on receipts.
func (s *Service) Profile(ctx context.Context, principalID string) (principal.CustomerProfile, error) {
	return s.store.GetProfile(ctx, principalID)
}
