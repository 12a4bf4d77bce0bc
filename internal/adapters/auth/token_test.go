package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"munhuwese/internal/domain"
)

func TestJWTCodec_IssueAndVerify(t *testing.T) {
	codec := NewJWTCodec("test-secret")

	token, err := codec.Issue(domain.TokenClaims{UserID: 42, Email: "u@example.com", Role: domain.RoleAdmin}, 24*time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := codec.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "u@example.com", claims.Email)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
}

func TestJWTCodec_Verify_wrongSecret(t *testing.T) {
	token, err := NewJWTCodec("secret-a").Issue(domain.TokenClaims{UserID: 1, Email: "a@b.com", Role: domain.RoleUser}, time.Hour)
	require.NoError(t, err)

	_, err = NewJWTCodec("secret-b").Verify(token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestJWTCodec_Verify_malformed(t *testing.T) {
	codec := NewJWTCodec("test-secret")
	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := codec.Verify(token)
		assert.ErrorIs(t, err, domain.ErrInvalidToken, "token %q", token)
	}
}

func TestJWTCodec_Verify_expired(t *testing.T) {
	issued := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	codec := NewJWTCodec("test-secret").WithClock(func() time.Time { return issued })

	token, err := codec.Issue(domain.TokenClaims{UserID: 7, Email: "a@b.com", Role: domain.RoleUser}, time.Hour)
	require.NoError(t, err)

	// Still valid just before expiry.
	codec.WithClock(func() time.Time { return issued.Add(59 * time.Minute) })
	_, err = codec.Verify(token)
	require.NoError(t, err)

	// Expired afterwards, same single error kind as a forged token.
	codec.WithClock(func() time.Time { return issued.Add(61 * time.Minute) })
	_, err = codec.Verify(token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestJWTCodec_Verify_rejectsNoneAlgorithm(t *testing.T) {
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewJWTCodec("test-secret").Verify(token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestJWTCodec_ResetTokens(t *testing.T) {
	codec := NewJWTCodec("test-secret")

	reset, err := codec.IssueReset(9, time.Hour)
	require.NoError(t, err)

	userID, err := codec.VerifyReset(reset)
	require.NoError(t, err)
	assert.Equal(t, int64(9), userID)

	// A reset token must not pass as a session token.
	_, err = codec.Verify(reset)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	// And a session token must not pass as a reset token.
	session, err := codec.Issue(domain.TokenClaims{UserID: 9, Email: "a@b.com", Role: domain.RoleUser}, time.Hour)
	require.NoError(t, err)
	_, err = codec.VerifyReset(session)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestJWTCodec_ResetExpiry(t *testing.T) {
	issued := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	codec := NewJWTCodec("test-secret").WithClock(func() time.Time { return issued })

	token, err := codec.IssueReset(3, time.Hour)
	require.NoError(t, err)

	codec.WithClock(func() time.Time { return issued.Add(2 * time.Hour) })
	_, err = codec.VerifyReset(token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}
