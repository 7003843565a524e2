// Package tasks is the typed client for task assignment and tracking.
package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudopshq/cloudops-go/transport"
	"github.com/pkg/errors"
)

// Priority orders tasks by urgency.
type Priority string

const (
	PriorityLow      Priority = "LOW"
	PriorityMedium   Priority = "MEDIUM"
	PriorityHigh     Priority = "HIGH"
	PriorityCritical Priority = "CRITICAL"
)

// Status tracks a task through its lifecycle.
type Status string

const (
	StatusTodo       Status = "TODO"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusBlocked    Status = "BLOCKED"
)

// Task is one assigned work item.
type Task struct {
	ID          int64     `json:"id"`
	AssignedTo  int64     `json:"assigned_to"`
	AssignedBy  int64     `json:"assigned_by"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"due_date"`
	Priority    Priority  `json:"priority"`
	Status      Status    `json:"status"`
}

// Input is the write shape for creating a task.
type Input struct {
	AssignedTo  int64     `json:"assigned_to"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"due_date"`
	Priority    Priority  `json:"priority,omitempty"`
}

// Service is the typed client for the task endpoints.
type Service struct {
	api *transport.Client
}

// NewService creates a task Service.
func NewService(api *transport.Client) (*Service, error) {
	if api == nil {
		return nil, errors.New("[tasks.NewService] transport client is required")
	}
	return &Service{api: api}, nil
}

// List fetches tasks visible to the caller.
func (s *Service) List(ctx context.Context) ([]Task, error) {
	var page transport.Page[Task]
	if err := s.api.Get(ctx, "/tasks/", &page); err != nil {
		return nil, err
	}
	return page.Results, nil
}

// Create assigns a new task.
func (s *Service) Create(ctx context.Context, input Input) (*Task, error) {
	var task Task
	if err := s.api.Post(ctx, "/tasks/", input, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// SetStatus moves a task through its lifecycle.
func (s *Service) SetStatus(ctx context.Context, id int64, status Status) (*Task, error) {
	body := struct {
		Status Status `json:"status"`
	}{Status: status}

	var task Task
	if err := s.api.Patch(ctx, fmt.Sprintf("/tasks/%d/", id), body, &task); err != nil {
		return nil, err
	}
	return &task, nil
}
