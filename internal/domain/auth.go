package domain

import (
	"context"
	"time"
)

// TokenClaims is the identity payload embedded in a session token. The role
// is trusted for the token's lifetime: a role change on the user record does
// not take effect until the user logs in again (stateless sessions, no
// revocation list).
type TokenClaims struct {
	UserID int64  `json:"id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// TokenIssuer issues signed, time-boxed tokens for an authenticated user.
type TokenIssuer interface {
	// Issue returns a session token embedding the given claims, expiring
	// ttl from now.
	Issue(claims TokenClaims, ttl time.Duration) (string, error)
	// IssueReset returns a password-reset token for the user, expiring ttl
	// from now. Reset tokens are not valid as session tokens.
	IssueReset(userID int64, ttl time.Duration) (string, error)
}

// TokenVerifier verifies tokens. Malformed, forged, and expired tokens all
// fail with ErrInvalidToken; callers cannot distinguish the cases.
type TokenVerifier interface {
	Verify(token string) (TokenClaims, error)
	// VerifyReset verifies a password-reset token and returns the user ID
	// it was issued for. Session tokens fail with ErrInvalidToken.
	VerifyReset(token string) (int64, error)
}

// PasswordHasher handles password hashing and verification.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// RegisterInput carries the validated fields for AuthService.Register.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Mobile   string
}

// AuthResult is a freshly issued session token together with the user it
// belongs to.
type AuthResult struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// AuthService defines the business logic for registration, login, and
// password reset.
type AuthService interface {
	// Register creates the account and returns a session token so the user
	// is immediately authenticated. Fails with ErrDuplicateEmail when the
	// email is taken.
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	// Login fails with ErrInvalidCredentials for both an unknown email and
	// a wrong password; callers must not reveal which.
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	// RequestPasswordReset issues a reset token and emails the reset link
	// when the account exists. It returns nil for unknown emails too, so
	// the endpoint response never leaks account existence.
	RequestPasswordReset(ctx context.Context, email string) error
	// ResetPassword verifies the reset token and replaces the password.
	ResetPassword(ctx context.Context, token, password string) error
}
