package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"munhuwese/internal/domain"
)

type dashboardService struct {
	postRepo  domain.PostRepository
	eventRepo domain.EventRepository
	now       func() time.Time
}

// NewDashboardService creates a DashboardService over the post and event stores.
func NewDashboardService(postRepo domain.PostRepository, eventRepo domain.EventRepository) domain.DashboardService {
	return &dashboardService{
		postRepo:  postRepo,
		eventRepo: eventRepo,
		now:       time.Now,
	}
}

// Feed merges the caller's own posts with all upcoming events, newest first.
// Events sort by start time, posts by creation time.
func (s *dashboardService) Feed(ctx context.Context, userID int64) ([]*domain.DashboardItem, error) {
	posts, err := s.postRepo.ListByAuthorID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	events, err := s.eventRepo.ListStartingAfter(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	items := make([]*domain.DashboardItem, 0, len(posts)+len(events))
	for _, p := range posts {
		items = append(items, &domain.DashboardItem{Type: "post", Post: p})
	}
	for _, e := range events {
		items = append(items, &domain.DashboardItem{Type: "event", Event: e})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].SortKey().After(items[j].SortKey())
	})
	return items, nil
}
