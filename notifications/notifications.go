// Package notifications exposes the backend's notification feed and a
// polling store that keeps a local snapshot fresh while a session is active.
package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudopshq/cloudops-go/transport"
	"github.com/pkg/errors"
)

// Notification is one entry in the user's feed.
type Notification struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Link      string    `json:"link"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// Service is the typed client for the notification endpoints.
type Service struct {
	api *transport.Client
}

// NewService creates a notification Service.
func NewService(api *transport.Client) (*Service, error) {
	if api == nil {
		return nil, errors.New("[notifications.NewService] transport client is required")
	}
	return &Service{api: api}, nil
}

// List fetches the notification feed.
func (s *Service) List(ctx context.Context) ([]Notification, error) {
	var page transport.Page[Notification]
	if err := s.api.Get(ctx, "/notifications/", &page); err != nil {
		return nil, err
	}
	return page.Results, nil
}

// UnreadCount fetches the number of unread notifications.
func (s *Service) UnreadCount(ctx context.Context) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	if err := s.api.Get(ctx, "/notifications/unread_count/", &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

// MarkRead marks a single notification as read.
func (s *Service) MarkRead(ctx context.Context, id int64) error {
	return s.api.Post(ctx, fmt.Sprintf("/notifications/%d/mark_read/", id), nil, nil)
}

// MarkAllRead marks the whole feed as read.
func (s *Service) MarkAllRead(ctx context.Context) error {
	return s.api.Post(ctx, "/notifications/mark_all_read/", nil, nil)
}
