package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for user operations.
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already in use")
)

// Application roles. Events are admin-only to create; everything else is
// open to any authenticated user.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a registered user
// swagger:model User
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Mobile       string    `json:"mobile,omitempty"`
	Role         string    `json:"role"`
	Bio          *string   `json:"bio,omitempty"`
	ProfileImage *string   `json:"profileImage,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// NewUser returns a new User with the given fields. ID is set by the
// repository on create.
func NewUser(email, passwordHash, name, mobile string, createdAt time.Time) *User {
	return &User{
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		Mobile:       mobile,
		Role:         RoleUser,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
}

// ProfileUpdate carries the optional profile fields for UserService.UpdateProfile.
// Nil pointers leave the current value untouched.
type ProfileUpdate struct {
	Name               *string
	Email              *string
	Bio                *string
	ProfileImage       *string
	RemoveProfileImage bool
}

// UserRepository defines the interface for user storage
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	Update(ctx context.Context, user *User) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	// Delete removes the user together with their posts, likes, comments,
	// and event registrations in a single transaction.
	Delete(ctx context.Context, id int64) error
}

// UserService defines the business logic for profile management.
type UserService interface {
	GetProfile(ctx context.Context, userID int64) (*User, error)
	UpdateProfile(ctx context.Context, userID int64, update ProfileUpdate) (*User, error)
	// DeleteAccount verifies the password before deleting the account and
	// everything it owns.
	DeleteAccount(ctx context.Context, userID int64, password string) error
	ListMyRegistrations(ctx context.Context, userID int64) ([]*RegistrationWithEvent, error)
}
