// Package finance is the typed client for payroll and expense endpoints.
// Payroll computation is owned by the backend; this package only reads the
// published figures and moves expense claims through their review states.
package finance

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudopshq/cloudops-go/employees"
	"github.com/cloudopshq/cloudops-go/transport"
	"github.com/pkg/errors"
)

// Monetary amounts arrive as decimal strings and are passed through
// unparsed; the client never does arithmetic on them.

// SalaryStructure is the standing pay breakdown for one employee.
type SalaryStructure struct {
	ID          int64     `json:"id"`
	Employee    int64     `json:"employee"`
	BasicSalary string    `json:"basic_salary"`
	HRA         string    `json:"hra"`
	Allowances  string    `json:"allowances"`
	Deductions  string    `json:"deductions"`
	NetSalary   string    `json:"net_salary"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SalaryInput is the write shape for setting an employee's structure.
type SalaryInput struct {
	Employee    int64  `json:"employee"`
	BasicSalary string `json:"basic_salary"`
	HRA         string `json:"hra"`
	Allowances  string `json:"allowances"`
	Deductions  string `json:"deductions"`
}

// PayslipStatus is the publication state of a payslip.
type PayslipStatus string

const (
	PayslipDraft     PayslipStatus = "DRAFT"
	PayslipPublished PayslipStatus = "PUBLISHED"
	PayslipPaid      PayslipStatus = "PAID"
)

// Payslip is one month's generated pay record.
type Payslip struct {
	ID              int64               `json:"id"`
	Employee        int64               `json:"employee"`
	EmployeeDetails *employees.Employee `json:"employee_details"`
	Month           string              `json:"month"`
	Year            int                 `json:"year"`
	TotalEarnings   string              `json:"total_earnings"`
	TotalDeductions string              `json:"total_deductions"`
	NetPay          string              `json:"net_pay"`
	Status          PayslipStatus       `json:"status"`
	GeneratedAt     time.Time           `json:"generated_at"`
}

// ExpenseCategory classifies a claim.
type ExpenseCategory string

const (
	ExpenseTravel    ExpenseCategory = "TRAVEL"
	ExpenseFood      ExpenseCategory = "FOOD"
	ExpenseEquipment ExpenseCategory = "EQUIPMENT"
	ExpenseOther     ExpenseCategory = "OTHER"
)

// ExpenseStatus is the review state of a claim.
type ExpenseStatus string

const (
	ExpensePending  ExpenseStatus = "PENDING"
	ExpenseApproved ExpenseStatus = "APPROVED"
	ExpenseRejected ExpenseStatus = "REJECTED"
	ExpensePaid     ExpenseStatus = "PAID"
)

// ExpenseClaim is one reimbursement request.
type ExpenseClaim struct {
	ID              int64           `json:"id"`
	Employee        int64           `json:"employee"`
	Title           string          `json:"title"`
	Amount          string          `json:"amount"`
	Category        ExpenseCategory `json:"category"`
	Receipt         string          `json:"receipt"`
	Status          ExpenseStatus   `json:"status"`
	ApprovedBy      *int64          `json:"approved_by"`
	ApprovedByName  string          `json:"approved_by_name"`
	RejectionReason string          `json:"rejection_reason"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ExpenseInput is the write shape for submitting a claim.
type ExpenseInput struct {
	Title    string          `json:"title"`
	Amount   string          `json:"amount"`
	Category ExpenseCategory `json:"category"`
}

// Service is the typed client for the finance endpoints.
type Service struct {
	api *transport.Client
}

// NewService creates a finance Service.
func NewService(api *transport.Client) (*Service, error) {
	if api == nil {
		return nil, errors.New("[finance.NewService] transport client is required")
	}
	return &Service{api: api}, nil
}

// SalaryStructures fetches the structures visible to the caller. Restricted
// to finance roles server-side.
func (s *Service) SalaryStructures(ctx context.Context) ([]SalaryStructure, error) {
	var page transport.Page[SalaryStructure]
	if err := s.api.Get(ctx, "/finance/salary-structures/", &page); err != nil {
		return nil, err
	}
	return page.Results, nil
}

// SetSalaryStructure creates the standing structure for an employee.
func (s *Service) SetSalaryStructure(ctx context.Context, input SalaryInput) (*SalaryStructure, error) {
	var structure SalaryStructure
	if err := s.api.Post(ctx, "/finance/salary-structures/", input, &structure); err != nil {
		return nil, err
	}
	return &structure, nil
}

// Payslips fetches the caller's payslips; finance roles see everyone's.
func (s *Service) Payslips(ctx context.Context) ([]Payslip, error) {
	var page transport.Page[Payslip]
	if err := s.api.Get(ctx, "/finance/payslips/", &page); err != nil {
		return nil, err
	}
	return page.Results, nil
}

// Expenses fetches expense claims visible to the caller.
func (s *Service) Expenses(ctx context.Context) ([]ExpenseClaim, error) {
	var page transport.Page[ExpenseClaim]
	if err := s.api.Get(ctx, "/finance/expenses/", &page); err != nil {
		return nil, err
	}
	return page.Results, nil
}

// SubmitExpense files a new claim for the calling employee.
func (s *Service) SubmitExpense(ctx context.Context, input ExpenseInput) (*ExpenseClaim, error) {
	var claim ExpenseClaim
	if err := s.api.Post(ctx, "/finance/expenses/", input, &claim); err != nil {
		return nil, err
	}
	return &claim, nil
}

// ApproveExpense approves a pending claim.
func (s *Service) ApproveExpense(ctx context.Context, id int64) error {
	return s.api.Post(ctx, fmt.Sprintf("/finance/expenses/%d/approve/", id), nil, nil)
}

// RejectExpense rejects a pending claim with a reason.
func (s *Service) RejectExpense(ctx context.Context, id int64, reason string) error {
	body := struct {
		Reason string `json:"reason"`
	}{Reason: reason}
	return s.api.Post(ctx, fmt.Sprintf("/finance/expenses/%d/reject/", id), body, nil)
}
