package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/quickkart/marketplace/internal/domain/principal"
	"github.com/quickkart/marketplace/internal/domain/session"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims carry the session id as jti; the session row stays the authority.
type Claims struct {
	PrincipalID string         `json:"sub"`
	Email       string         `json:"email"`
	Role        principal.Role `json:"role"`
	SessionID   string         `json:"jti"`
	jwt.RegisteredClaims
}

type Manager struct {
	secret []byte
	issuer string
}

func NewManager(secret string) *Manager {
	return &Manager{
		secret: []byte(secret),
		issuer: "quickkart",
	}
}

// IssueToken signs a token whose lifetime matches the session.
func (m *Manager) IssueToken(s session.Session) (string, error) {
	claims := Claims{
		PrincipalID: s.PrincipalID,
		Email:       s.Email,
		Role:        s.Role,
		SessionID:   s.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   s.PrincipalID,
			ID:        s.ID,
			IssuedAt:  jwt.NewNumericDate(s.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *Manager) ParseAndValidate(tokenStr string) (claims *Claims, err error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		// Enforce HS256

		_, ok := t.Method.(*jwt.SigningMethodHMAC)

		if !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	}, jwt.WithIssuer(m.issuer), jwt.WithExpirationRequired())

	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*Claims)

	if !ok || !token.Valid || claims.SessionID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
