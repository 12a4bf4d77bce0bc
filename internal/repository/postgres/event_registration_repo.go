package postgres

import (
	"context"
	"database/sql"
	"errors"

	"munhuwese/internal/domain"
)

type eventRegistrationRepository struct {
	DB *sql.DB
}

func NewEventRegistrationRepository(db *sql.DB) domain.EventRegistrationRepository {
	return &eventRegistrationRepository{DB: db}
}

func (r *eventRegistrationRepository) Create(ctx context.Context, reg *domain.EventRegistration) error {
	query := `
		INSERT INTO event_registrations (event_id, user_id, created_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, reg.EventID, reg.UserID, reg.CreatedAt).Scan(&reg.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateRegistration
		}
		return err
	}
	return nil
}

func (r *eventRegistrationRepository) GetByEventAndUser(ctx context.Context, eventID, userID int64) (*domain.EventRegistration, error) {
	query := `
		SELECT id, event_id, user_id, created_at
		FROM event_registrations
		WHERE event_id = $1 AND user_id = $2
	`
	reg := &domain.EventRegistration{}
	err := r.DB.QueryRowContext(ctx, query, eventID, userID).
		Scan(&reg.ID, &reg.EventID, &reg.UserID, &reg.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return reg, nil
}

func (r *eventRegistrationRepository) ListByEventID(ctx context.Context, eventID int64) ([]*domain.RegistrationWithUser, error) {
	query := `
		SELECT reg.id, reg.event_id, reg.user_id, reg.created_at, u.id, u.name, u.email
		FROM event_registrations reg
		JOIN users u ON u.id = reg.user_id
		WHERE reg.event_id = $1
		ORDER BY reg.created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*domain.RegistrationWithUser
	for rows.Next() {
		reg := &domain.EventRegistration{}
		user := &domain.UserRef{}
		var email string
		if err := rows.Scan(&reg.ID, &reg.EventID, &reg.UserID, &reg.CreatedAt, &user.ID, &user.Name, &email); err != nil {
			return nil, err
		}
		items = append(items, &domain.RegistrationWithUser{Registration: reg, User: user, Email: email})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if items == nil {
		items = []*domain.RegistrationWithUser{}
	}
	return items, nil
}

func (r *eventRegistrationRepository) ListByUserID(ctx context.Context, userID int64) ([]*domain.RegistrationWithEvent, error) {
	query := `
		SELECT reg.id, reg.event_id, reg.user_id, reg.created_at,
		       e.id, e.title, e.description, e.location, e.start_at, e.end_at,
		       e.image_url, e.creator_id, e.created_at, e.updated_at,
		       cu.id, cu.name,
		       (SELECT COUNT(*) FROM event_registrations r2 WHERE r2.event_id = e.id) AS attendee_count
		FROM event_registrations reg
		JOIN events e ON e.id = reg.event_id
		LEFT JOIN users cu ON cu.id = e.creator_id
		WHERE reg.user_id = $1
		ORDER BY reg.created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*domain.RegistrationWithEvent
	for rows.Next() {
		reg := &domain.EventRegistration{}
		ev := &domain.EventWithMeta{}
		var creatorID sql.NullInt64
		var creatorName sql.NullString
		if err := rows.Scan(
			&reg.ID, &reg.EventID, &reg.UserID, &reg.CreatedAt,
			&ev.ID, &ev.Title, &ev.Description, &ev.Location, &ev.StartAt, &ev.EndAt,
			&ev.ImageURL, &ev.CreatorID, &ev.CreatedAt, &ev.UpdatedAt,
			&creatorID, &creatorName, &ev.AttendeeCount,
		); err != nil {
			return nil, err
		}
		if creatorID.Valid {
			ev.Creator = &domain.UserRef{ID: creatorID.Int64, Name: creatorName.String}
		}
		ev.Registered = true
		items = append(items, &domain.RegistrationWithEvent{Registration: reg, Event: ev})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if items == nil {
		items = []*domain.RegistrationWithEvent{}
	}
	return items, nil
}
