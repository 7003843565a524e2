package finance_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cloudopshq/cloudops-go/credentials/storefakes"
	"github.com/cloudopshq/cloudops-go/finance"
	apperrors "github.com/cloudopshq/cloudops-go/internal/errors"
	"github.com/cloudopshq/cloudops-go/transport"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T, handler http.Handler) *finance.Service {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	store := storefakes.NewFakeStore()
	require.NoError(t, store.Set("access", "refresh"))
	api, err := transport.New(server.URL, store)
	require.NoError(t, err)

	svc, err := finance.NewService(api)
	require.NoError(t, err)
	return svc
}

func TestPayslipsKeepDecimalStrings(t *testing.T) {
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/finance/payslips/", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"count": 1,
			"results": [
				{"id": 7, "employee": 3, "month": "2026-08-01", "year": 2026,
				 "total_earnings": "5200.00", "total_deductions": "940.50",
				 "net_pay": "4259.50", "status": "PUBLISHED"}
			]
		}`))
	}))

	slips, err := svc.Payslips(context.Background())
	require.NoError(t, err)
	require.Len(t, slips, 1)
	require.Equal(t, "4259.50", slips[0].NetPay)
	require.Equal(t, finance.PayslipPublished, slips[0].Status)
}

func TestSetSalaryStructureSendsWriteShape(t *testing.T) {
	var received map[string]any
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/finance/salary-structures/", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_, _ = w.Write([]byte(`{"id": 1, "employee": 3, "basic_salary": "4000.00", "net_salary": "4600.00"}`))
	}))

	structure, err := svc.SetSalaryStructure(context.Background(), finance.SalaryInput{
		Employee:    3,
		BasicSalary: "4000.00",
		HRA:         "500.00",
		Allowances:  "100.00",
		Deductions:  "0.00",
	})
	require.NoError(t, err)
	require.Equal(t, "4600.00", structure.NetSalary)
	require.EqualValues(t, 3, received["employee"])
	require.Equal(t, "500.00", received["hra"])
}

func TestExpenseReviewActions(t *testing.T) {
	var rejectBody map[string]any
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/finance/expenses/5/approve/":
			require.Equal(t, http.MethodPost, r.Method)
			_, _ = w.Write([]byte(`{"status":"approved"}`))
		case "/finance/expenses/6/reject/":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&rejectBody))
			_, _ = w.Write([]byte(`{"status":"rejected"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	require.NoError(t, svc.ApproveExpense(context.Background(), 5))
	require.NoError(t, svc.RejectExpense(context.Background(), 6, "no receipt"))
	require.Equal(t, "no receipt", rejectBody["reason"])
}

func TestSalaryStructuresForbiddenForNonFinanceRoles(t *testing.T) {
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"detail":"You do not have permission to perform this action."}`))
	}))

	_, err := svc.SalaryStructures(context.Background())
	require.Error(t, err)
	require.True(t, apperrors.Is(err, apperrors.ErrForbidden))
}
