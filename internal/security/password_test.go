package security

import (
	"testing"

	"github.com/quickkart/marketplace/internal/domain/principal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("password1")
	require.NoError(t, err)

	assert.NotEqual(t, "password1", hash)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, cost, bcrypt.DefaultCost)

	assert.NoError(t, CheckPassword(hash, "password1"))
}

func TestCheckPasswordBitFlip(t *testing.T) {
	hash, err := HashPassword("password1")
	require.NoError(t, err)

	plain := []byte("password1")
	for i := range plain {
		flipped := append([]byte(nil), plain...)
		flipped[i] ^= 0x01

		assert.ErrorIs(t, CheckPassword(hash, string(flipped)), principal.ErrInvalidCredential, "flip at %d", i)
	}
}

func TestHashesAreSalted(t *testing.T) {
	a, err := HashPassword("same-password")
	require.NoError(t, err)
	b, err := HashPassword("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}
