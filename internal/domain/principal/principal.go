package principal

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleSeller   Role = "seller"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleCustomer, RoleSeller:
		return true
	default:
		return false
	}
}

var (
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrNotFound           = errors.New("principal not found")
	ErrInvalidCredential  = errors.New("invalid credential")
	ErrProfileNotFound    = errors.New("customer profile not found")
	ErrStoreNameRequired  = errors.New("store name is required for sellers")
	ErrStoreNameForbidden = errors.New("store name is only allowed for sellers")
)

// Principal is one registered identity. Email is unique across roles.
type Principal struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	Address      string    `json:"address"`
	Role         Role      `json:"role"`
	StoreName    *string   `json:"storeName,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// CustomerProfile holds the shipping details used on receipts.
type CustomerProfile struct {
	PrincipalID string    `json:"principalId"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Phone       string    `json:"phone"`
	Address     string    `json:"address"`
	CreatedAt   time.Time `json:"createdAt"`
}

type SignUpRequest struct {
	Email     string `json:"email" binding:"required,email,max=254"`
	Password  string `json:"password" binding:"required,min=8,max=72"`
	Name      string `json:"name" binding:"required,max=120"`
	Phone     string `json:"phone" binding:"required,max=32"`
	Address   string `json:"address" binding:"required,max=500"`
	Role      Role   `json:"role" binding:"required,oneof=customer seller"`
	StoreName string `json:"storeName" binding:"omitempty,max=120"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Validate checks the cross-field rules binding tags cannot express.
func (r SignUpRequest) Validate() error {
	store := strings.TrimSpace(r.StoreName)

	if r.Role == RoleSeller && store == "" {
		return ErrStoreNameRequired
	}

	if r.Role == RoleCustomer && store != "" {
		return ErrStoreNameForbidden
	}

	return nil
}

// New builds a principal from a signup request and an already computed hash.
func New(req SignUpRequest, passwordHash string) Principal {
	now := time.Now().UTC()

	p := Principal{
		ID:           uuid.NewString(),
		Email:        NormalizeEmail(req.Email),
		PasswordHash: passwordHash,
		Name:         strings.TrimSpace(req.Name),
		Phone:        strings.TrimSpace(req.Phone),
		Address:      strings.TrimSpace(req.Address),
		Role:         req.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if req.Role == RoleSeller {
		store := strings.TrimSpace(req.StoreName)
		p.StoreName = &store
	}

	return p
}

// ProfileFor derives the customer profile row written alongside a customer principal.
func ProfileFor(p Principal) CustomerProfile {
	return CustomerProfile{
		PrincipalID: p.ID,
		Email:       p.Email,
		Name:        p.Name,
		Phone:       p.Phone,
		Address:     p.Address,
		CreatedAt:   p.CreatedAt,
	}
}
