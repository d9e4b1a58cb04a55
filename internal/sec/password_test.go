package sec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("mypassword")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	// salted: hashing twice never yields the same output
	hash2, err := HashPassword("mypassword")
	require.NoError(t, err)
	assert.NotEqual(t, hash, hash2)
}

func TestComparePassword(t *testing.T) {
	t.Parallel()

	password := "correctpassword"
	hash, err := HashPassword(password)
	require.NoError(t, err)

	t.Run("correct password", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, ComparePassword(password, hash))
	})

	t.Run("incorrect password", func(t *testing.T) {
		t.Parallel()
		assert.Error(t, ComparePassword("wrongpassword", hash))
	})

	t.Run("plaintext never matches itself", func(t *testing.T) {
		t.Parallel()
		assert.Error(t, ComparePassword(password, []byte(password)))
	})
}
