package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"munhuwese/internal/domain"
)

const resetPurpose = "reset"

type jwtClaims struct {
	jwt.RegisteredClaims
	Email   string `json:"email,omitempty"`
	Role    string `json:"role,omitempty"`
	Purpose string `json:"purpose,omitempty"`
}

// JWTCodec issues and verifies HS256 JWTs with a shared secret. The zero
// Purpose claim marks a session token; reset tokens carry purpose "reset"
// and never pass session verification (or vice versa).
type JWTCodec struct {
	secret []byte
	now    func() time.Time
}

// NewJWTCodec returns a codec signing with the given secret. The clock
// defaults to time.Now and can be overridden in tests via WithClock.
func NewJWTCodec(secret string) *JWTCodec {
	return &JWTCodec{secret: []byte(secret), now: time.Now}
}

// WithClock overrides the codec's notion of "now". Intended for tests.
func (c *JWTCodec) WithClock(now func() time.Time) *JWTCodec {
	c.now = now
	return c
}

func (c *JWTCodec) Issue(claims domain.TokenClaims, ttl time.Duration) (string, error) {
	now := c.now()
	payload := jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(claims.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email: claims.Email,
		Role:  claims.Role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, payload)
	tokenString, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

func (c *JWTCodec) IssueReset(userID int64, ttl time.Duration) (string, error) {
	now := c.now()
	payload := jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Purpose: resetPurpose,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, payload)
	tokenString, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign reset token: %w", err)
	}
	return tokenString, nil
}

func (c *JWTCodec) Verify(token string) (domain.TokenClaims, error) {
	claims, err := c.parse(token)
	if err != nil {
		return domain.TokenClaims{}, err
	}
	if claims.Purpose != "" {
		// A reset token is not a session credential.
		return domain.TokenClaims{}, domain.ErrInvalidToken
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return domain.TokenClaims{}, domain.ErrInvalidToken
	}
	return domain.TokenClaims{
		UserID: userID,
		Email:  claims.Email,
		Role:   claims.Role,
	}, nil
}

func (c *JWTCodec) VerifyReset(token string) (int64, error) {
	claims, err := c.parse(token)
	if err != nil {
		return 0, err
	}
	if claims.Purpose != resetPurpose {
		return 0, domain.ErrInvalidToken
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, domain.ErrInvalidToken
	}
	return userID, nil
}

// parse collapses every failure mode (malformed, forged, expired) into
// domain.ErrInvalidToken so callers cannot tell them apart.
func (c *JWTCodec) parse(token string) (*jwtClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwtClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	}, jwt.WithTimeFunc(c.now))
	if err != nil || !parsed.Valid {
		return nil, domain.ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*jwtClaims)
	if !ok {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}
