package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"munhuwese/internal/domain"
)

func TestEventRepository_ListEndedBefore(t *testing.T) {
	ctx := context.Background()
	cutoff := time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	started := cutoff.Add(-72 * time.Hour)
	ended := cutoff.Add(-24 * time.Hour)
	rows := sqlmock.NewRows([]string{"id", "title", "description", "location", "start_at", "end_at", "image_url", "creator_id", "created_at", "updated_at"}).
		AddRow(int64(1), "Old Fair", "desc", "Harare", started, ended, nil, int64(2), started, started)
	mock.ExpectQuery(`SELECT .+ FROM events\s+WHERE end_at < \$1`).
		WithArgs(cutoff).
		WillReturnRows(rows)

	events, err := NewEventRepository(db).ListEndedBefore(ctx, cutoff)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Old Fair", events[0].Title)
	assert.True(t, events[0].EndAt.Before(cutoff))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("registrations then event in one tx", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM event_registrations`).WithArgs(int64(4)).WillReturnResult(sqlmock.NewResult(0, 12))
		mock.ExpectExec(`DELETE FROM events`).WithArgs(int64(4)).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, NewEventRepository(db).Delete(ctx, 4))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing event rolls back", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM event_registrations`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`DELETE FROM events`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err = NewEventRepository(db).Delete(ctx, 404)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("registration delete failure aborts", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM event_registrations`).WillReturnError(sql.ErrConnDone)
		mock.ExpectRollback()

		err = NewEventRepository(db).Delete(ctx, 4)
		require.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEventRepository_ListEndingAfter(t *testing.T) {
	ctx := context.Background()
	cutoff := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	start := cutoff.Add(24 * time.Hour)
	rows := sqlmock.NewRows([]string{
		"id", "title", "description", "location", "start_at", "end_at",
		"image_url", "creator_id", "created_at", "updated_at",
		"u_id", "u_name", "attendee_count",
	}).
		AddRow(int64(1), "Clean-up Day", "desc", "Mbare", start, start.Add(4*time.Hour), nil, int64(2), cutoff, cutoff, int64(2), "Admin", 5).
		AddRow(int64(2), "Orphan Event", "desc", "Gweru", start, start.Add(2*time.Hour), nil, nil, cutoff, cutoff, nil, nil, 0)
	mock.ExpectQuery(`SELECT e\.id, .+ FROM events e`).
		WithArgs(cutoff).
		WillReturnRows(rows)

	events, err := NewEventRepository(db).ListEndingAfter(ctx, cutoff)
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.NotNil(t, events[0].Creator)
	assert.Equal(t, "Admin", events[0].Creator.Name)
	assert.Equal(t, 5, events[0].AttendeeCount)
	assert.Nil(t, events[1].Creator, "creator deleted leaves nil ref")
	assert.NoError(t, mock.ExpectationsWereMet())
}
