package domain

import (
	"context"
	"time"
)

// DashboardItem is either a post authored by the caller or an upcoming
// event; exactly one of Post and Event is set.
type DashboardItem struct {
	Type  string         `json:"type"` // "post" or "event"
	Post  *PostWithMeta  `json:"post,omitempty"`
	Event *EventWithMeta `json:"event,omitempty"`
}

// SortKey returns the timestamp the dashboard orders by: an event's start
// time, a post's creation time.
func (d DashboardItem) SortKey() time.Time {
	if d.Event != nil {
		return d.Event.StartAt
	}
	if d.Post != nil {
		return d.Post.CreatedAt
	}
	return time.Time{}
}

// DashboardService assembles the logged-in user's dashboard feed.
type DashboardService interface {
	// Feed returns the caller's posts merged with all upcoming events,
	// newest first.
	Feed(ctx context.Context, userID int64) ([]*DashboardItem, error)
}
