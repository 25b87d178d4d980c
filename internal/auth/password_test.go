package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPasswordNeverStoresPlaintext(t *testing.T) {
	hash, err := HashPassword("pw12345", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "pw12345", hash)
	assert.NotContains(t, hash, "pw12345")
}

func TestComparePassword(t *testing.T) {
	hash, err := HashPassword("pw12345", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NoError(t, ComparePassword(hash, "pw12345"))
	assert.Error(t, ComparePassword(hash, "wrong-password"))
}

func TestGeneratePassword(t *testing.T) {
	first, err := GeneratePassword(16)
	require.NoError(t, err)
	assert.Len(t, first, 16)

	second, err := GeneratePassword(16)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestRandomDigits(t *testing.T) {
	digits, err := RandomDigits(4)
	require.NoError(t, err)
	require.Len(t, digits, 4)
	for _, r := range digits {
		assert.True(t, r >= '0' && r <= '9')
	}
}
