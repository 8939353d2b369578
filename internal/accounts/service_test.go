package accounts

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/quickkart/marketplace/internal/domain/principal"
	"github.com/quickkart/marketplace/internal/observability"
	"github.com/quickkart/marketplace/internal/repo/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestService(t *testing.T) (*Service, *observability.Prom) {
	t.Helper()

	prom := observability.NewProm(prometheus.NewRegistry())
	svc := NewService(memory.NewPrincipalsRepo(), prom)

	// keep bcrypt fast in tests; production cost is covered in internal/security
	svc.hash = func(plain string) (string, error) {
		b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
		return string(b), err
	}

	return svc, prom
}

func customerSignup(email string) principal.SignUpRequest {
	return principal.SignUpRequest{
		Email:    email,
		Password: "supersecret",
		Name:     "Asha",
		Phone:    "9999999999",
		Address:  "12 Market Road",
		Role:     principal.RoleCustomer,
	}
}

func TestRegisterCustomerCreatesProfile(t *testing.T) {
	svc, prom := newTestService(t)
	ctx := context.Background()

	p, err := svc.Register(ctx, customerSignup("Asha@Example.com"))
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", p.Email)
	assert.NotEqual(t, "supersecret", p.PasswordHash)

	profile, err := svc.Profile(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "12 Market Road", profile.Address)

	assert.Equal(t, 1.0, testutil.ToFloat64(prom.Signups.WithLabelValues("customer", "ok")))
}

func TestRegisterDuplicateEmailAcrossRoles(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, customerSignup("dup@example.com"))
	require.NoError(t, err)

	seller := customerSignup("DUP@example.com")
	seller.Role = principal.RoleSeller
	seller.StoreName = "Dup Store"

	_, err = svc.Register(ctx, seller)
	assert.ErrorIs(t, err, principal.ErrDuplicateEmail)
}

func TestRegisterSellerRules(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	seller := customerSignup("s@example.com")
	seller.Role = principal.RoleSeller

	_, err := svc.Register(ctx, seller)
	assert.ErrorIs(t, err, principal.ErrStoreNameRequired)

	seller.StoreName = "Spice Co"
	p, err := svc.Register(ctx, seller)
	require.NoError(t, err)
	require.NotNil(t, p.StoreName)
	assert.Equal(t, "Spice Co", *p.StoreName)

	_, err = svc.Profile(ctx, p.ID)
	assert.ErrorIs(t, err, principal.ErrProfileNotFound)
}

func TestAuthenticate(t *testing.T) {
	svc, prom := newTestService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, customerSignup("a@example.com"))
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{name: "ok", email: "a@example.com", password: "supersecret"},
		{name: "case insensitive email", email: " A@EXAMPLE.COM", password: "supersecret"},
		{name: "wrong password", email: "a@example.com", password: "nope-nope", wantErr: principal.ErrInvalidCredential},
		{name: "unknown email", email: "b@example.com", password: "supersecret", wantErr: principal.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := svc.Authenticate(ctx, tt.email, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, registered.ID, p.ID)
		})
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(prom.Logins.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(prom.Logins.WithLabelValues("bad_password")))
}
