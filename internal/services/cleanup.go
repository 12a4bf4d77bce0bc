package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"munhuwese/internal/domain"
)

// CleanupService deletes events whose end time is further in the past than
// the retention window, together with their registrations. It is triggered
// opportunistically from the HTTP path (see middleware.SweepTrigger): there
// is no dedicated timer, so if no requests arrive, no sweep runs.
type CleanupService struct {
	eventRepo domain.EventRepository
	retention time.Duration
	interval  time.Duration
	logger    *slog.Logger
	now       func() time.Time

	// lastRun is the unix-nano timestamp of the last sweep start, zero at
	// startup so the first qualifying request always sweeps.
	lastRun atomic.Int64
}

// NewCleanupService returns a CleanupService. interval is the minimum time
// between two passes; retention is the grace window after an event's end
// during which it is never deleted.
func NewCleanupService(eventRepo domain.EventRepository, interval, retention time.Duration, logger *slog.Logger) *CleanupService {
	return &CleanupService{
		eventRepo: eventRepo,
		retention: retention,
		interval:  interval,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock overrides the service's notion of "now". Intended for tests.
func (s *CleanupService) WithClock(now func() time.Time) *CleanupService {
	s.now = now
	return s
}

// RunIfDue runs a sweep when at least the configured interval has elapsed
// since the last one. The last-run timestamp is advanced with a single
// compare-and-swap, so when two requests race on the threshold only one of
// them sweeps. Returns whether a sweep ran.
func (s *CleanupService) RunIfDue(ctx context.Context) bool {
	if s.interval <= 0 {
		return false
	}
	now := s.now().UnixNano()
	last := s.lastRun.Load()
	if now-last < int64(s.interval) {
		return false
	}
	if !s.lastRun.CompareAndSwap(last, now) {
		// Another request claimed this window.
		return false
	}
	s.logger.InfoContext(ctx, "running expired event cleanup")
	s.Sweep(ctx)
	return true
}

// Sweep deletes all events that ended more than the retention window ago.
// Each event is deleted in its own transaction (registrations first, then
// the event); a failure on one event is logged and does not stop the pass.
func (s *CleanupService) Sweep(ctx context.Context) {
	cutoff := s.now().Add(-s.retention)
	expired, err := s.eventRepo.ListEndedBefore(ctx, cutoff)
	if err != nil {
		s.logger.ErrorContext(ctx, "cleanup: list expired events failed", "err", err)
		return
	}
	for _, event := range expired {
		if err := s.deleteExpired(ctx, event); err != nil {
			s.logger.ErrorContext(ctx, "cleanup: delete event failed", "event_id", event.ID, "title", event.Title, "err", err)
			continue
		}
		s.logger.InfoContext(ctx, "cleanup: deleted expired event", "event_id", event.ID, "title", event.Title)
	}
}

func (s *CleanupService) deleteExpired(ctx context.Context, event *domain.Event) error {
	if err := s.eventRepo.Delete(ctx, event.ID); err != nil {
		// Already gone is fine: a concurrent sweep or an admin beat us to it.
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("delete event %d: %w", event.ID, err)
	}
	return nil
}
