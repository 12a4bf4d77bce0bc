package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"munhuwese/internal/domain"
)

type userService struct {
	userRepo         domain.UserRepository
	registrationRepo domain.EventRegistrationRepository
	hasher           domain.PasswordHasher
}

// NewUserService creates a UserService with the given repositories.
func NewUserService(userRepo domain.UserRepository, registrationRepo domain.EventRegistrationRepository, hasher domain.PasswordHasher) domain.UserService {
	return &userService{
		userRepo:         userRepo,
		registrationRepo: registrationRepo,
		hasher:           hasher,
	}
}

func (s *userService) GetProfile(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID int64, update domain.ProfileUpdate) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if len(name) < 2 {
			return nil, fmt.Errorf("%w: name must be at least 2 characters", domain.ErrInvalidInput)
		}
		user.Name = name
	}
	if update.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*update.Email))
		if !emailRegexp.MatchString(email) {
			return nil, fmt.Errorf("%w: invalid email format", domain.ErrInvalidInput)
		}
		user.Email = email
	}
	if update.Bio != nil {
		user.Bio = update.Bio
	}
	if update.ProfileImage != nil {
		user.ProfileImage = update.ProfileImage
	}
	if update.RemoveProfileImage {
		user.ProfileImage = nil
	}

	user.UpdatedAt = time.Now()
	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) || errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

func (s *userService) DeleteAccount(ctx context.Context, userID int64, password string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("get user: %w", err)
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return domain.ErrInvalidCredentials
	}
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func (s *userService) ListMyRegistrations(ctx context.Context, userID int64) ([]*domain.RegistrationWithEvent, error) {
	items, err := s.registrationRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	return items, nil
}
