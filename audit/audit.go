// Package audit is the typed read-only client for the system audit trail.
// The backend restricts it to admin roles; audit semantics themselves are
// entirely server-side.
package audit

import (
	"context"
	"net/url"
	"time"

	"github.com/cloudopshq/cloudops-go/transport"
	"github.com/pkg/errors"
)

// Action is the recorded operation kind.
type Action string

const (
	ActionCreate Action = "CREATE"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
	ActionLogin  Action = "LOGIN"
	ActionLogout Action = "LOGOUT"
)

// Log is one audit trail entry.
type Log struct {
	ID           int64     `json:"id"`
	UserEmail    string    `json:"user_email"`
	UserFullName string    `json:"user_full_name"`
	Action       Action    `json:"action"`
	ModelName    string    `json:"model_name"`
	ObjectID     string    `json:"object_id"`
	Details      string    `json:"details"`
	IPAddress    string    `json:"ip_address"`
	Timestamp    time.Time `json:"timestamp"`
}

// Filter narrows a listing. Zero fields are omitted from the query.
type Filter struct {
	Search    string
	Action    Action
	ModelName string
}

// Service is the typed client for the audit endpoints.
type Service struct {
	api *transport.Client
}

// NewService creates an audit Service.
func NewService(api *transport.Client) (*Service, error) {
	if api == nil {
		return nil, errors.New("[audit.NewService] transport client is required")
	}
	return &Service{api: api}, nil
}

// List fetches audit entries, newest first.
func (s *Service) List(ctx context.Context, filter Filter) ([]Log, error) {
	path := "/audit/logs/"
	query := url.Values{}
	if filter.Search != "" {
		query.Set("search", filter.Search)
	}
	if filter.Action != "" {
		query.Set("action", string(filter.Action))
	}
	if filter.ModelName != "" {
		query.Set("model_name", filter.ModelName)
	}
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var page transport.Page[Log]
	if err := s.api.Get(ctx, path, &page); err != nil {
		return nil, err
	}
	return page.Results, nil
}
