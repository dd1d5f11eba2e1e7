package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndComparePassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("Secret123", bcrypt.MinCost)
	require.NoError(t, err)
	require.NotEqual(t, "Secret123", hash)

	assert.NoError(t, ComparePassword(hash, "Secret123"))
	assert.Error(t, ComparePassword(hash, "wrongpassword"))
}
