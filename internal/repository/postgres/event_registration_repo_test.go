package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"munhuwese/internal/domain"
)

func TestEventRegistrationRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`INSERT INTO event_registrations`).
			WithArgs(int64(1), int64(2), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(10)))

		reg := &domain.EventRegistration{EventID: 1, UserID: 2, CreatedAt: time.Now()}
		require.NoError(t, NewEventRegistrationRepository(db).Create(ctx, reg))
		assert.Equal(t, int64(10), reg.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate pair returns ErrDuplicateRegistration", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`INSERT INTO event_registrations`).
			WillReturnError(&pq.Error{Code: uniqueViolation})

		reg := &domain.EventRegistration{EventID: 1, UserID: 2, CreatedAt: time.Now()}
		err = NewEventRegistrationRepository(db).Create(ctx, reg)
		assert.ErrorIs(t, err, domain.ErrDuplicateRegistration)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEventRegistrationRepository_GetByEventAndUser(t *testing.T) {
	ctx := context.Background()

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT .+ FROM event_registrations`).
			WithArgs(int64(1), int64(2)).
			WillReturnError(sql.ErrNoRows)

		_, err = NewEventRegistrationRepository(db).GetByEventAndUser(ctx, 1, 2)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		created := time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)
		mock.ExpectQuery(`SELECT .+ FROM event_registrations`).
			WithArgs(int64(1), int64(2)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "event_id", "user_id", "created_at"}).
				AddRow(int64(9), int64(1), int64(2), created))

		reg, err := NewEventRegistrationRepository(db).GetByEventAndUser(ctx, 1, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(9), reg.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
