package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", hash)

	assert.NoError(t, CheckPassword("secret123", hash))
	assert.ErrorIs(t, CheckPassword("wrong", hash), ErrPasswordMismatch)
}

func TestHashPasswordRejectsShort(t *testing.T) {
	_, err := HashPassword("abc")
	assert.Error(t, err)
}

func TestHashPasswordSalts(t *testing.T) {
	first, err := HashPassword("secret123")
	require.NoError(t, err)
	second, err := HashPassword("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}
