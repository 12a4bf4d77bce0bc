package domain

import (
	"context"
	"time"
)

// Event represents a community event
// swagger:model Event
type Event struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartAt     time.Time `json:"startAt"`
	EndAt       time.Time `json:"endAt"`
	ImageURL    *string   `json:"imageUrl,omitempty"`
	CreatorID   *int64    `json:"creatorId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewEvent returns a new Event with the given fields. ID is set by the
// repository on create.
func NewEvent(title, description, location string, startAt, endAt time.Time, creatorID int64, createdAt time.Time) *Event {
	return &Event{
		Title:       title,
		Description: description,
		Location:    location,
		StartAt:     startAt,
		EndAt:       endAt,
		CreatorID:   &creatorID,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
}

// UserRef is the creator/author summary embedded in listings.
type UserRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// EventWithMeta is an event enriched with its creator and attendee count for
// listings. Registered is only meaningful when the caller is authenticated.
type EventWithMeta struct {
	Event
	Creator       *UserRef `json:"creator,omitempty"`
	AttendeeCount int      `json:"attendeeCount"`
	Registered    bool     `json:"registered"`
}

// EventUpdate carries the fields for EventService.Update. Nil pointers leave
// the current value untouched.
type EventUpdate struct {
	Title       *string
	Description *string
	Location    *string
	StartAt     *time.Time
	EndAt       *time.Time
	ImageURL    *string
}

// EventRegistration ties a user to an event. Unique per (user, event).
// swagger:model EventRegistration
type EventRegistration struct {
	ID        int64     `json:"id"`
	EventID   int64     `json:"eventId"`
	UserID    int64     `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// RegistrationWithUser is a registration enriched with the attendee summary,
// for the admin attendee list.
type RegistrationWithUser struct {
	Registration *EventRegistration `json:"registration"`
	User         *UserRef           `json:"user"`
	Email        string             `json:"email"`
}

// RegistrationWithEvent is a registration enriched with its event, for the
// caller's "my events" listing.
type RegistrationWithEvent struct {
	Registration *EventRegistration `json:"registration"`
	Event        *EventWithMeta     `json:"event"`
}

// EventRepository defines the interface for event storage
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id int64) (*Event, error)
	// ListEndingAfter returns events whose end_at is at or after cutoff,
	// newest start first, with creator and attendee count attached.
	ListEndingAfter(ctx context.Context, cutoff time.Time) ([]*EventWithMeta, error)
	// ListStartingAfter returns events whose start_at is at or after cutoff,
	// newest start first, with creator attached.
	ListStartingAfter(ctx context.Context, cutoff time.Time) ([]*EventWithMeta, error)
	// ListEndedBefore returns bare events whose end_at is strictly before
	// cutoff. Used by the expiry sweep.
	ListEndedBefore(ctx context.Context, cutoff time.Time) ([]*Event, error)
	Update(ctx context.Context, event *Event) error
	// Delete removes the event and its registrations in one transaction.
	Delete(ctx context.Context, id int64) error
}

// EventRegistrationRepository defines the interface for registration storage
type EventRegistrationRepository interface {
	Create(ctx context.Context, reg *EventRegistration) error
	GetByEventAndUser(ctx context.Context, eventID, userID int64) (*EventRegistration, error)
	ListByEventID(ctx context.Context, eventID int64) ([]*RegistrationWithUser, error)
	ListByUserID(ctx context.Context, userID int64) ([]*RegistrationWithEvent, error)
}

// EventService defines the business logic for events and registrations.
type EventService interface {
	List(ctx context.Context, callerID int64) ([]*EventWithMeta, error)
	Create(ctx context.Context, event *Event) (*Event, error)
	Update(ctx context.Context, eventID int64, update EventUpdate) (*Event, error)
	Delete(ctx context.Context, eventID int64) error
	// Register registers the user for the event and sends a confirmation
	// email best-effort. Fails with ErrNotFound for an unknown event and
	// ErrDuplicateRegistration for a repeat registration.
	Register(ctx context.Context, eventID, userID int64) (*EventRegistration, error)
	ListRegistrations(ctx context.Context, eventID int64) ([]*RegistrationWithUser, error)
}
