package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/aman-gurjar-dev/TechnoHack/internal/pkg/apperrors"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("pw1")
	require.NoError(t, err)

	assert.NotEqual(t, "pw1", hash)
	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, BcryptCost, cost)

	assert.True(t, CheckPassword(hash, "pw1"))
	assert.False(t, CheckPassword(hash, "pw2"))
}

func TestHashPassword_TooLong(t *testing.T) {
	// Arrange
	exact := strings.Repeat("a", MaxPasswordBytes)
	tooLong := strings.Repeat("a", MaxPasswordBytes+8)

	// Act
	_, okErr := HashPassword(exact)
	_, err := HashPassword(tooLong)

	// Assert
	require.NoError(t, okErr)
	assert.True(t, apperrors.Is(err, apperrors.ErrValidationFailed))
	fields := apperrors.Details(err)["fields"].(map[string]string)
	assert.Contains(t, fields, "password")
}

func TestBurnPasswordCheck_DoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() { BurnPasswordCheck("anything") })
}
