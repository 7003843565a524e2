// Package leaves is the typed client for leave requests and the
// approve/reject actions available to privileged roles. The approval
// policy itself lives in the backend.
package leaves

import (
	"context"
	"fmt"

	"github.com/cloudopshq/cloudops-go/transport"
	"github.com/pkg/errors"
)

// Type is the leave category.
type Type string

const (
	TypeSick   Type = "SICK"
	TypeCasual Type = "CASUAL"
	TypeAnnual Type = "ANNUAL"
	TypeOther  Type = "OTHER"
)

// Status is the review state of a leave request.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// Leave is one leave request.
type Leave struct {
	ID              int64  `json:"id"`
	Employee        int64  `json:"employee"`
	LeaveType       Type   `json:"leave_type"`
	StartDate       string `json:"start_date"`
	EndDate         string `json:"end_date"`
	Reason          string `json:"reason"`
	Status          Status `json:"status"`
	Approver        *int64 `json:"approver"`
	RejectionReason string `json:"rejection_reason"`
}

// Request is the write shape for applying for leave.
type Request struct {
	LeaveType Type   `json:"leave_type"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Reason    string `json:"reason"`
}

// Service is the typed client for the leave endpoints.
type Service struct {
	api *transport.Client
}

// NewService creates a leave Service.
func NewService(api *transport.Client) (*Service, error) {
	if api == nil {
		return nil, errors.New("[leaves.NewService] transport client is required")
	}
	return &Service{api: api}, nil
}

// List fetches leave requests visible to the caller.
func (s *Service) List(ctx context.Context) ([]Leave, error) {
	var page transport.Page[Leave]
	if err := s.api.Get(ctx, "/leaves/", &page); err != nil {
		return nil, err
	}
	return page.Results, nil
}

// Apply submits a new leave request.
func (s *Service) Apply(ctx context.Context, request Request) (*Leave, error) {
	var leave Leave
	if err := s.api.Post(ctx, "/leaves/", request, &leave); err != nil {
		return nil, err
	}
	return &leave, nil
}

// Approve approves a pending request. Restricted to privileged roles
// server-side.
func (s *Service) Approve(ctx context.Context, id int64) (*Leave, error) {
	var leave Leave
	if err := s.api.Post(ctx, fmt.Sprintf("/leaves/%d/approve/", id), nil, &leave); err != nil {
		return nil, err
	}
	return &leave, nil
}

// Reject rejects a pending request with a reason.
func (s *Service) Reject(ctx context.Context, id int64, reason string) (*Leave, error) {
	body := struct {
		RejectionReason string `json:"rejection_reason"`
	}{RejectionReason: reason}

	var leave Leave
	if err := s.api.Post(ctx, fmt.Sprintf("/leaves/%d/reject/", id), body, &leave); err != nil {
		return nil, err
	}
	return &leave, nil
}
