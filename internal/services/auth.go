package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"munhuwese/internal/domain"
)

const minPasswordLen = 8

var (
	emailRegexp  = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	mobileRegexp = regexp.MustCompile(`^[+\d\- ]{7,20}$`)
)

type authService struct {
	userRepo     domain.UserRepository
	hasher       domain.PasswordHasher
	issuer       domain.TokenIssuer
	verifier     domain.TokenVerifier
	sessionTTL   time.Duration
	resetTTL     time.Duration
	emailService domain.EmailService
	clientURL    string
	logger       *slog.Logger
}

// NewAuthService creates an AuthService with the given repository and auth ports.
func NewAuthService(
	userRepo domain.UserRepository,
	hasher domain.PasswordHasher,
	issuer domain.TokenIssuer,
	verifier domain.TokenVerifier,
	sessionTTL, resetTTL time.Duration,
	emailService domain.EmailService,
	clientURL string,
	logger *slog.Logger,
) domain.AuthService {
	return &authService{
		userRepo:     userRepo,
		hasher:       hasher,
		issuer:       issuer,
		verifier:     verifier,
		sessionTTL:   sessionTTL,
		resetTTL:     resetTTL,
		emailService: emailService,
		clientURL:    clientURL,
		logger:       logger,
	}
}

func (s *authService) Register(ctx context.Context, input domain.RegisterInput) (*domain.AuthResult, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if !emailRegexp.MatchString(email) {
		return nil, fmt.Errorf("%w: invalid email format", domain.ErrInvalidInput)
	}
	name := strings.TrimSpace(input.Name)
	if len(name) < 2 {
		return nil, fmt.Errorf("%w: name must be at least 2 characters", domain.ErrInvalidInput)
	}
	if len(input.Password) < minPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, minPasswordLen)
	}
	mobile := strings.TrimSpace(input.Mobile)
	if !mobileRegexp.MatchString(mobile) {
		return nil, fmt.Errorf("%w: mobile number not valid", domain.ErrInvalidInput)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := domain.NewUser(email, hash, name, mobile, time.Now())
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.issueSession(user)
	if err != nil {
		return nil, err
	}

	// Welcome email is best-effort; the account already exists.
	if s.emailService != nil {
		if err := s.emailService.SendWelcome(ctx, &domain.WelcomeEmailData{Email: user.Email, Name: user.Name}); err != nil {
			s.logger.WarnContext(ctx, "welcome email failed", "email", user.Email, "err", err)
		}
	}

	return &domain.AuthResult{Token: token, User: user}, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		// Unknown email and wrong password are indistinguishable to the caller.
		return nil, domain.ErrInvalidCredentials
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.issueSession(user)
	if err != nil {
		return nil, err
	}
	return &domain.AuthResult{Token: token, User: user}, nil
}

func (s *authService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// Pretend success so the endpoint never confirms account existence.
			return nil
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	token, err := s.issuer.IssueReset(user.ID, s.resetTTL)
	if err != nil {
		return fmt.Errorf("failed to sign reset token: %w", err)
	}

	if s.emailService != nil {
		data := &domain.PasswordResetEmailData{
			Email:          user.Email,
			Name:           user.Name,
			ResetLink:      fmt.Sprintf("%s/reset?token=%s", s.clientURL, token),
			ExpiresInHours: int(s.resetTTL.Hours()),
		}
		if err := s.emailService.SendPasswordReset(ctx, data); err != nil {
			s.logger.WarnContext(ctx, "password reset email failed", "email", user.Email, "err", err)
		}
	}
	return nil
}

func (s *authService) ResetPassword(ctx context.Context, token, password string) error {
	userID, err := s.verifier.VerifyReset(token)
	if err != nil {
		return domain.ErrInvalidToken
	}
	if len(password) < minPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, minPasswordLen)
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

func (s *authService) issueSession(user *domain.User) (string, error) {
	token, err := s.issuer.Issue(domain.TokenClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	}, s.sessionTTL)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}
