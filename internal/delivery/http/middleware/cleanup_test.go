package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"munhuwese/internal/domain"
	"munhuwese/internal/services"
)

// stubEventRepository counts sweep lookups; it never holds events.
type stubEventRepository struct {
	listCalls int
}

func (s *stubEventRepository) Create(ctx context.Context, e *domain.Event) error { return nil }
func (s *stubEventRepository) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	return nil, domain.ErrNotFound
}
func (s *stubEventRepository) ListEndingAfter(ctx context.Context, cutoff time.Time) ([]*domain.EventWithMeta, error) {
	return nil, nil
}
func (s *stubEventRepository) ListStartingAfter(ctx context.Context, cutoff time.Time) ([]*domain.EventWithMeta, error) {
	return nil, nil
}
func (s *stubEventRepository) ListEndedBefore(ctx context.Context, cutoff time.Time) ([]*domain.Event, error) {
	s.listCalls++
	return nil, nil
}
func (s *stubEventRepository) Update(ctx context.Context, e *domain.Event) error { return nil }
func (s *stubEventRepository) Delete(ctx context.Context, id int64) error        { return domain.ErrNotFound }

func TestSweepTrigger(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	repo := &stubEventRepository{}
	cleanup := services.NewCleanupService(repo, time.Hour, 48*time.Hour, logger)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := SweepTrigger(cleanup, next)

	// First request triggers the sweep, the second one is inside the interval.
	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/events", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Equal(t, 1, repo.listCalls)
}
