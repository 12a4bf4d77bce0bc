package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"munhuwese/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{DB: db}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (title, description, location, start_at, end_at, image_url, creator_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		e.Title, e.Description, e.Location, e.StartAt, e.EndAt, e.ImageURL, e.CreatorID, e.CreatedAt, e.UpdatedAt).
		Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	query := `
		SELECT id, title, description, location, start_at, end_at, image_url, creator_id, created_at, updated_at
		FROM events
		WHERE id = $1
	`
	e := &domain.Event{}
	err := r.DB.QueryRowContext(ctx, query, id).
		Scan(&e.ID, &e.Title, &e.Description, &e.Location, &e.StartAt, &e.EndAt, &e.ImageURL, &e.CreatorID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) ListEndingAfter(ctx context.Context, cutoff time.Time) ([]*domain.EventWithMeta, error) {
	return r.listWithMeta(ctx, "e.end_at >= $1", cutoff)
}

func (r *eventRepository) ListStartingAfter(ctx context.Context, cutoff time.Time) ([]*domain.EventWithMeta, error) {
	return r.listWithMeta(ctx, "e.start_at >= $1", cutoff)
}

func (r *eventRepository) listWithMeta(ctx context.Context, where string, arg any) ([]*domain.EventWithMeta, error) {
	query := `
		SELECT e.id, e.title, e.description, e.location, e.start_at, e.end_at,
		       e.image_url, e.creator_id, e.created_at, e.updated_at,
		       u.id, u.name,
		       (SELECT COUNT(*) FROM event_registrations reg WHERE reg.event_id = e.id) AS attendee_count
		FROM events e
		LEFT JOIN users u ON u.id = e.creator_id
		WHERE ` + where + `
		ORDER BY e.start_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*domain.EventWithMeta
	for rows.Next() {
		ev := &domain.EventWithMeta{}
		var creatorID sql.NullInt64
		var creatorName sql.NullString
		if err := rows.Scan(
			&ev.ID, &ev.Title, &ev.Description, &ev.Location, &ev.StartAt, &ev.EndAt,
			&ev.ImageURL, &ev.CreatorID, &ev.CreatedAt, &ev.UpdatedAt,
			&creatorID, &creatorName, &ev.AttendeeCount,
		); err != nil {
			return nil, err
		}
		if creatorID.Valid {
			ev.Creator = &domain.UserRef{ID: creatorID.Int64, Name: creatorName.String}
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if events == nil {
		events = []*domain.EventWithMeta{}
	}
	return events, nil
}

func (r *eventRepository) ListEndedBefore(ctx context.Context, cutoff time.Time) ([]*domain.Event, error) {
	query := `
		SELECT id, title, description, location, start_at, end_at, image_url, creator_id, created_at, updated_at
		FROM events
		WHERE end_at < $1
	`
	rows, err := r.DB.QueryContext(ctx, query, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*domain.Event
	for rows.Next() {
		e := &domain.Event{}
		if err := rows.Scan(&e.ID, &e.Title, &e.Description, &e.Location, &e.StartAt, &e.EndAt, &e.ImageURL, &e.CreatorID, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *eventRepository) Update(ctx context.Context, e *domain.Event) error {
	query := `
		UPDATE events
		SET title = $1, description = $2, location = $3, start_at = $4, end_at = $5, image_url = $6, updated_at = $7
		WHERE id = $8
	`
	res, err := r.DB.ExecContext(ctx, query, e.Title, e.Description, e.Location, e.StartAt, e.EndAt, e.ImageURL, e.UpdatedAt, e.ID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes the event and its registrations atomically. The sweep
// relies on this being a single transaction so a failure leaves the event
// intact for the next pass.
func (r *eventRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM event_registrations WHERE event_id = $1`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return tx.Commit()
}
