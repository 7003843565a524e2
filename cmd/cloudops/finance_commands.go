package main

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/cloudopshq/cloudops-go/audit"
	"github.com/cloudopshq/cloudops-go/documents"
	"github.com/cloudopshq/cloudops-go/finance"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newFinanceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "finance",
		Short: "Payslips, salary structures and expense claims",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "payslips",
		Short: "List your payslips",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := currentApp()
			if err != nil {
				return err
			}
			if _, err := a.requireSession(cmd.Context()); err != nil {
				return err
			}
			svc, err := finance.NewService(a.api)
			if err != nil {
				return err
			}

			slips, err := svc.Payslips(cmd.Context())
			if err != nil {
				return err
			}
			for _, slip := range slips {
				cmd.Printf("%4d  %s %d  net %-12s %s\n", slip.ID, slip.Month, slip.Year, slip.NetPay, slip.Status)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "salaries",
		Short: "List salary structures (finance roles only)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := currentApp()
			if err != nil {
				return err
			}
			profile, err := a.requireSession(cmd.Context())
			if err != nil {
				return err
			}
			if !profile.Role.IsFinance() && !profile.Role.IsAdmin() {
				return errors.Errorf("role %s cannot view salary structures", profile.Role)
			}
			svc, err := finance.NewService(a.api)
			if err != nil {
				return err
			}

			structures, err := svc.SalaryStructures(cmd.Context())
			if err != nil {
				return err
			}
			for _, structure := range structures {
				cmd.Printf("%4d  employee %-4d basic %-12s net %s\n",
					structure.ID, structure.Employee, structure.BasicSalary, structure.NetSalary)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "expenses",
		Short: "List expense claims",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := currentApp()
			if err != nil {
				return err
			}
			if _, err := a.requireSession(cmd.Context()); err != nil {
				return err
			}
			svc, err := finance.NewService(a.api)
			if err != nil {
				return err
			}

			claims, err := svc.Expenses(cmd.Context())
			if err != nil {
				return err
			}
			for _, claim := range claims {
				cmd.Printf("%4d  %-10s %-9s %-12s %s\n", claim.ID, claim.Category, claim.Status, claim.Amount, claim.Title)
			}
			return nil
		},
	})

	var title, amount, category string
	claim := &cobra.Command{
		Use:   "claim",
		Short: "Submit an expense claim",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := currentApp()
			if err != nil {
				return err
			}
			if _, err := a.requireSession(cmd.Context()); err != nil {
				return err
			}
			svc, err := finance.NewService(a.api)
			if err != nil {
				return err
			}

			submitted, err := svc.SubmitExpense(cmd.Context(), finance.ExpenseInput{
				Title:    title,
				Amount:   amount,
				Category: finance.ExpenseCategory(category),
			})
			if err != nil {
				return err
			}
			cmd.Printf("Expense claim %d submitted (%s)\n", submitted.ID, submitted.Status)
			return nil
		},
	}
	claim.Flags().StringVar(&title, "title", "", "what the expense was for")
	claim.Flags().StringVar(&amount, "amount", "", "amount as a decimal string, e.g. 42.50")
	claim.Flags().StringVar(&category, "category", string(finance.ExpenseTravel), "TRAVEL, FOOD, EQUIPMENT or OTHER")
	_ = claim.MarkFlagRequired("title")
	_ = claim.MarkFlagRequired("amount")
	cmd.AddCommand(claim)

	cmd.AddCommand(&cobra.Command{
		Use:   "approve <id>",
		Short: "Approve a pending expense claim",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := currentApp()
			if err != nil {
				return err
			}
			profile, err := a.requireSession(cmd.Context())
			if err != nil {
				return err
			}
			if !profile.Role.IsFinance() && !profile.Role.IsManagement() && !profile.Role.IsAdmin() {
				return errors.Errorf("role %s cannot review expense claims", profile.Role)
			}
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return errors.Wrap(err, "invalid expense id")
			}
			svc, err := finance.NewService(a.api)
			if err != nil {
				return err
			}

			if err := svc.ApproveExpense(cmd.Context(), id); err != nil {
				return err
			}
			cmd.Printf("Expense %d approved\n", id)
			return nil
		},
	})

	var rejectReason string
	reject := &cobra.Command{
		Use:   "reject <id>",
		Short: "Reject a pending expense claim",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := currentApp()
			if err != nil {
				return err
			}
			if _, err := a.requireSession(cmd.Context()); err != nil {
				return err
			}
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return errors.Wrap(err, "invalid expense id")
			}
			svc, err := finance.NewService(a.api)
			if err != nil {
				return err
			}

			if err := svc.RejectExpense(cmd.Context(), id, rejectReason); err != nil {
				return err
			}
			cmd.Printf("Expense %d rejected\n", id)
			return nil
		},
	}
	reject.Flags().StringVar(&rejectReason, "reason", "", "why the claim is rejected")
	cmd.AddCommand(reject)

	return cmd
}

func newDocumentsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "documents",
		Short: "Browse and manage department documents",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List documents visible to you",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := currentApp()
			if err != nil {
				return err
			}
			if _, err := a.requireSession(cmd.Context()); err != nil {
				return err
			}
			svc, err := documents.NewService(a.api)
			if err != nil {
				return err
			}

			list, err := svc.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, doc := range list {
				cmd.Printf("%4d  %-30s %-16s %s\n", doc.ID, doc.Title, doc.DepartmentName, doc.UploadedBy.FullName())
			}
			return nil
		},
	})

	var title, description string
	upload := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a document to your department",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := currentApp()
			if err != nil {
				return err
			}
			if _, err := a.requireSession(cmd.Context()); err != nil {
				return err
			}
			svc, err := documents.NewService(a.api)
			if err != nil {
				return err
			}

			file, err := os.Open(args[0])
			if err != nil {
				return errors.Wrap(err, "opening document")
			}
			defer func() { _ = file.Close() }()

			if title == "" {
				title = filepath.Base(args[0])
			}
			doc, err := svc.Upload(cmd.Context(), title, description, filepath.Base(args[0]), file)
			if err != nil {
				return err
			}
			cmd.Printf("Uploaded document %d: %s\n", doc.ID, doc.Title)
			return nil
		},
	}
	upload.Flags().StringVar(&title, "title", "", "document title (defaults to the file name)")
	upload.Flags().StringVar(&description, "description", "", "optional description")
	cmd.AddCommand(upload)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := currentApp()
			if err != nil {
				return err
			}
			if _, err := a.requireSession(cmd.Context()); err != nil {
				return err
			}
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return errors.Wrap(err, "invalid document id")
			}
			svc, err := documents.NewService(a.api)
			if err != nil {
				return err
			}
			return svc.Delete(cmd.Context(), id)
		},
	})

	return cmd
}

func newAuditCommand() *cobra.Command {
	var search, action, model string
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Read the system audit trail (admins only)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := currentApp()
			if err != nil {
				return err
			}
			profile, err := a.requireSession(cmd.Context())
			if err != nil {
				return err
			}
			if !profile.Role.IsAdmin() {
				return errors.Errorf("role %s cannot view audit logs", profile.Role)
			}
			svc, err := audit.NewService(a.api)
			if err != nil {
				return err
			}

			logs, err := svc.List(cmd.Context(), audit.Filter{
				Search:    search,
				Action:    audit.Action(action),
				ModelName: model,
			})
			if err != nil {
				return err
			}
			for _, entry := range logs {
				cmd.Printf("%s  %-7s %-16s #%-6s %s (%s)\n",
					entry.Timestamp.Local().Format("2006-01-02 15:04:05"),
					entry.Action, entry.ModelName, entry.ObjectID, entry.UserEmail, entry.IPAddress)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "free-text search over details and user")
	cmd.Flags().StringVar(&action, "action", "", "CREATE, UPDATE, DELETE, LOGIN or LOGOUT")
	cmd.Flags().StringVar(&model, "model", "", "filter by model name")
	return cmd
}
