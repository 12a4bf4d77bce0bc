package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBcryptHasher_HashAndCompare(t *testing.T) {
	h := NewBcryptHasher(bcryptTestCost)

	hash, err := h.Hash("my-secret-password")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.True(t, strings.HasPrefix(hash, "$2a$"), "expected a bcrypt hash, got %q", hash)

	require.NoError(t, h.Compare(hash, "my-secret-password"))
}

func TestBcryptHasher_Compare_wrongPassword(t *testing.T) {
	h := NewBcryptHasher(bcryptTestCost)
	hash, err := h.Hash("correct")
	require.NoError(t, err)

	assert.Error(t, h.Compare(hash, "wrong"))
}

func TestBcryptHasher_HashesDiffer(t *testing.T) {
	h := NewBcryptHasher(bcryptTestCost)
	a, err := h.Hash("password")
	require.NoError(t, err)
	b, err := h.Hash("password")
	require.NoError(t, err)

	assert.NotEqual(t, a, b, "bcrypt salts each hash")
}

// bcryptTestCost keeps the hashing in tests fast.
const bcryptTestCost = 4
