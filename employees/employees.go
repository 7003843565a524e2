// Package employees is the typed client for the employee directory and
// department endpoints.
package employees

import (
	"context"
	"fmt"

	"github.com/cloudopshq/cloudops-go/session"
	"github.com/cloudopshq/cloudops-go/transport"
	"github.com/pkg/errors"
)

// Department groups employees.
type Department struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Employee is one directory record. User is the nested account profile;
// DepartmentDetails is populated on reads while Department carries the ID
// on writes.
type Employee struct {
	ID                int64           `json:"id"`
	User              session.Profile `json:"user"`
	Department        int64           `json:"department"`
	DepartmentDetails *Department     `json:"department_details"`
	Designation       string          `json:"designation"`
	PhoneNumber       string          `json:"phone_number"`
	Address           string          `json:"address"`
	JoiningDate       string          `json:"joining_date"`
	IsActive          bool            `json:"is_active"`
}

// EmployeeInput is the write shape for creating or updating a record.
type EmployeeInput struct {
	Department  int64  `json:"department"`
	Designation string `json:"designation"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Address     string `json:"address,omitempty"`
	JoiningDate string `json:"joining_date"`
	IsActive    *bool  `json:"is_active,omitempty"`
}

// Service is the typed client for the employee endpoints.
type Service struct {
	api *transport.Client
}

// NewService creates an employee Service.
func NewService(api *transport.Client) (*Service, error) {
	if api == nil {
		return nil, errors.New("[employees.NewService] transport client is required")
	}
	return &Service{api: api}, nil
}

// List fetches the employee directory.
func (s *Service) List(ctx context.Context) ([]Employee, error) {
	var page transport.Page[Employee]
	if err := s.api.Get(ctx, "/employees/", &page); err != nil {
		return nil, err
	}
	return page.Results, nil
}

// Get fetches a single employee by ID.
func (s *Service) Get(ctx context.Context, id int64) (*Employee, error) {
	var employee Employee
	if err := s.api.Get(ctx, fmt.Sprintf("/employees/%d/", id), &employee); err != nil {
		return nil, err
	}
	return &employee, nil
}

// Create adds a new employee record.
func (s *Service) Create(ctx context.Context, input EmployeeInput) (*Employee, error) {
	var employee Employee
	if err := s.api.Post(ctx, "/employees/", input, &employee); err != nil {
		return nil, err
	}
	return &employee, nil
}

// Update modifies an employee record.
func (s *Service) Update(ctx context.Context, id int64, input EmployeeInput) (*Employee, error) {
	var employee Employee
	if err := s.api.Patch(ctx, fmt.Sprintf("/employees/%d/", id), input, &employee); err != nil {
		return nil, err
	}
	return &employee, nil
}

// Delete removes an employee record.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.api.Delete(ctx, fmt.Sprintf("/employees/%d/", id))
}

// Departments fetches all departments.
func (s *Service) Departments(ctx context.Context) ([]Department, error) {
	var page transport.Page[Department]
	if err := s.api.Get(ctx, "/employees/departments/", &page); err != nil {
		return nil, err
	}
	return page.Results, nil
}

// CreateDepartment adds a department.
func (s *Service) CreateDepartment(ctx context.Context, name, description string) (*Department, error) {
	body := struct {
		Name        string `json:"name"`
		Description string `json:"description,omitempty"`
	}{Name: name, Description: description}

	var department Department
	if err := s.api.Post(ctx, "/employees/departments/", body, &department); err != nil {
		return nil, err
	}
	return &department, nil
}
