// Package attendance is the typed client for attendance tracking: daily
// records plus the clock-in/clock-out actions.
package attendance

import (
	"context"
	"time"

	"github.com/cloudopshq/cloudops-go/transport"
	"github.com/pkg/errors"
)

// Status is the attendance state recorded for a day.
type Status string

const (
	StatusPresent Status = "PRESENT"
	StatusAbsent  Status = "ABSENT"
	StatusLeave   Status = "LEAVE"
	StatusHalfDay Status = "HALF_DAY"
)

// Record is one day's attendance for an employee. The backend scopes the
// list to the caller's own records unless their role is privileged.
type Record struct {
	ID           int64      `json:"id"`
	Employee     int64      `json:"employee"`
	EmployeeName string     `json:"employee_name"`
	Date         string     `json:"date"`
	ClockIn      *time.Time `json:"clock_in"`
	ClockOut     *time.Time `json:"clock_out"`
	Status       Status     `json:"status"`
}

// Service is the typed client for the attendance endpoints.
type Service struct {
	api *transport.Client
}

// NewService creates an attendance Service.
func NewService(api *transport.Client) (*Service, error) {
	if api == nil {
		return nil, errors.New("[attendance.NewService] transport client is required")
	}
	return &Service{api: api}, nil
}

// List fetches attendance records visible to the caller.
func (s *Service) List(ctx context.Context) ([]Record, error) {
	var page transport.Page[Record]
	if err := s.api.Get(ctx, "/attendance/", &page); err != nil {
		return nil, err
	}
	return page.Results, nil
}

// ClockIn opens today's attendance record. The backend rejects a second
// clock-in on the same day.
func (s *Service) ClockIn(ctx context.Context) (*Record, error) {
	var record Record
	if err := s.api.Post(ctx, "/attendance/clock_in/", nil, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// ClockOut closes today's attendance record.
func (s *Service) ClockOut(ctx context.Context) (*Record, error) {
	var record Record
	if err := s.api.Post(ctx, "/attendance/clock_out/", nil, &record); err != nil {
		return nil, err
	}
	return &record, nil
}
