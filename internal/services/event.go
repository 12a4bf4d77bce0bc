package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"munhuwese/internal/domain"
)

const (
	minTitleLen       = 3
	minDescriptionLen = 10
)

type eventService struct {
	eventRepo        domain.EventRepository
	registrationRepo domain.EventRegistrationRepository
	userRepo         domain.UserRepository
	emailService     domain.EmailService
	retention        time.Duration
	clientURL        string
	logger           *slog.Logger
	now              func() time.Time
}

// NewEventService creates an EventService. retention controls how long ended
// events stay visible in listings (matches the sweep's retention window).
func NewEventService(
	eventRepo domain.EventRepository,
	registrationRepo domain.EventRegistrationRepository,
	userRepo domain.UserRepository,
	emailService domain.EmailService,
	retention time.Duration,
	clientURL string,
	logger *slog.Logger,
) domain.EventService {
	return &eventService{
		eventRepo:        eventRepo,
		registrationRepo: registrationRepo,
		userRepo:         userRepo,
		emailService:     emailService,
		retention:        retention,
		clientURL:        clientURL,
		logger:           logger,
		now:              time.Now,
	}
}

func (s *eventService) List(ctx context.Context, callerID int64) ([]*domain.EventWithMeta, error) {
	events, err := s.eventRepo.ListEndingAfter(ctx, s.now().Add(-s.retention))
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if callerID == 0 {
		return events, nil
	}
	// Mark the caller's registrations so the client can render "registered".
	regs, err := s.registrationRepo.ListByUserID(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	registered := make(map[int64]struct{}, len(regs))
	for _, r := range regs {
		registered[r.Registration.EventID] = struct{}{}
	}
	for _, ev := range events {
		_, ev.Registered = registered[ev.ID]
	}
	return events, nil
}

func (s *eventService) Create(ctx context.Context, event *domain.Event) (*domain.Event, error) {
	event.Title = strings.TrimSpace(event.Title)
	event.Description = strings.TrimSpace(event.Description)
	event.Location = strings.TrimSpace(event.Location)

	if event.Title == "" || event.Description == "" || event.Location == "" || event.StartAt.IsZero() || event.EndAt.IsZero() {
		return nil, fmt.Errorf("%w: missing event fields", domain.ErrInvalidInput)
	}
	if len(event.Title) < minTitleLen || len(event.Description) < minDescriptionLen {
		return nil, fmt.Errorf("%w: title or description too short", domain.ErrInvalidInput)
	}

	now := s.now()
	event.CreatedAt = now
	event.UpdatedAt = now
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

func (s *eventService) Update(ctx context.Context, eventID int64, update domain.EventUpdate) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	if update.Title != nil {
		event.Title = strings.TrimSpace(*update.Title)
	}
	if update.Description != nil {
		event.Description = strings.TrimSpace(*update.Description)
	}
	if update.Location != nil {
		event.Location = strings.TrimSpace(*update.Location)
	}
	if update.StartAt != nil {
		event.StartAt = *update.StartAt
	}
	if update.EndAt != nil {
		event.EndAt = *update.EndAt
	}
	if update.ImageURL != nil {
		event.ImageURL = update.ImageURL
	}
	if len(event.Title) < minTitleLen || len(event.Description) < minDescriptionLen {
		return nil, fmt.Errorf("%w: title or description too short", domain.ErrInvalidInput)
	}

	event.UpdatedAt = s.now()
	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return event, nil
}

func (s *eventService) Delete(ctx context.Context, eventID int64) error {
	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

func (s *eventService) Register(ctx context.Context, eventID, userID int64) (*domain.EventRegistration, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	if _, err := s.registrationRepo.GetByEventAndUser(ctx, eventID, userID); err == nil {
		return nil, domain.ErrDuplicateRegistration
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get registration: %w", err)
	}

	reg := &domain.EventRegistration{EventID: eventID, UserID: userID, CreatedAt: s.now()}
	if err := s.registrationRepo.Create(ctx, reg); err != nil {
		// A concurrent registration can still hit the unique constraint.
		if errors.Is(err, domain.ErrDuplicateRegistration) {
			return nil, domain.ErrDuplicateRegistration
		}
		return nil, fmt.Errorf("create registration: %w", err)
	}

	// Registration is the durable side effect; the confirmation email is
	// best-effort and never fails the request.
	if s.emailService != nil {
		if user, err := s.userRepo.GetByID(ctx, userID); err == nil {
			data := &domain.RegistrationConfirmationEmailData{
				Email:         user.Email,
				Name:          user.Name,
				EventTitle:    event.Title,
				EventLocation: event.Location,
				EventStartAt:  event.StartAt.Format("Mon, Jan 2 2006 15:04"),
				EventEndAt:    event.EndAt.Format("Mon, Jan 2 2006 15:04"),
				DashboardLink: s.clientURL + "/dashboard",
			}
			if err := s.emailService.SendRegistrationConfirmation(ctx, data); err != nil {
				s.logger.WarnContext(ctx, "registration email failed", "event_id", eventID, "user_id", userID, "err", err)
			}
		} else {
			s.logger.WarnContext(ctx, "registration email skipped, user lookup failed", "user_id", userID, "err", err)
		}
	}

	return reg, nil
}

func (s *eventService) ListRegistrations(ctx context.Context, eventID int64) ([]*domain.RegistrationWithUser, error) {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	items, err := s.registrationRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	return items, nil
}
