package main

import (
	"strconv"
	"time"

	"github.com/cloudopshq/cloudops-go/attendance"
	"github.com/cloudopshq/cloudops-go/employees"
	"github.com/cloudopshq/cloudops-go/leaves"
	"github.com/cloudopshq/cloudops-go/notifications"
	"github.com/cloudopshq/cloudops-go/tasks"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// formatClock renders an optional timestamp; the backend omits clock_in and
// clock_out until they happen.
func formatClock(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format(time.Kitchen)
}

func newEmployeesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "employees",
		Short: "Browse the employee directory",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List employees",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := currentApp()
			if err != nil {
				return err
			}
			if _, err := a.requireSession(cmd.Context()); err != nil {
				return err
			}
			svc, err := employees.NewService(a.api)
			if err != nil {
				return err
			}

			list, err := svc.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, employee := range list {
				department := ""
				if employee.DepartmentDetails != nil {
					department = employee.DepartmentDetails.Name
				}
				cmd.Printf("%4d  %-24s %-20s %s\n", employee.ID, employee.User.FullName(), employee.Designation, department)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "departments",
		Short: "List departments",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := currentApp()
			if err != nil {
				return err
			}
			if _, err := a.requireSession(cmd.Context()); err != nil {
				return err
			}
			svc, err := employees.NewService(a.api)
			if err != nil {
				return err
			}

			departments, err := svc.Departments(cmd.Context())
			if err != nil {
				return err
			}
			for _, department := range departments {
				cmd.Printf("%4d  %s\n", department.ID, department.Name)
			}
			return nil
		},
	})
	return cmd
}

func newAttendanceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attendance",
		Short: "View attendance and clock in or out",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List attendance records",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := currentApp()
			if err != nil {
				return err
			}
			if _, err := a.requireSession(cmd.Context()); err != nil {
				return err
			}
			svc, err := attendance.NewService(a.api)
			if err != nil {
				return err
			}

			records, err := svc.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, record := range records {
				cmd.Printf("%s  %-10s %s\n", record.Date, record.Status, record.EmployeeName)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clock-in",
		Short: "Open today's attendance record",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := currentApp()
			if err != nil {
				return err
			}
			if _, err := a.requireSession(cmd.Context()); err != nil {
				return err
			}
			svc, err := attendance.NewService(a.api)
			if err != nil {
				return err
			}

			record, err := svc.ClockIn(cmd.Context())
			if err != nil {
				return err
			}
			cmd.Printf("Clocked in at %s\n", formatClock(record.ClockIn))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clock-out",
		Short: "Close today's attendance record",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := currentApp()
			if err != nil {
				return err
			}
			if _, err := a.requireSession(cmd.Context()); err != nil {
				return err
			}
			svc, err := attendance.NewService(a.api)
			if err != nil {
				return err
			}

			record, err := svc.ClockOut(cmd.Context())
			if err != nil {
				return err
			}
			cmd.Printf("Clocked out at %s\n", formatClock(record.ClockOut))
			return nil
		},
	})
	return cmd
}

func newLeavesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leaves",
		Short: "View and manage leave requests",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List leave requests",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := currentApp()
			if err != nil {
				return err
			}
			if _, err := a.requireSession(cmd.Context()); err != nil {
				return err
			}
			svc, err := leaves.NewService(a.api)
			if err != nil {
				return err
			}

			list, err := svc.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, leave := range list {
				cmd.Printf("%4d  %-8s %s → %s  %-9s %s\n",
					leave.ID, leave.LeaveType, leave.StartDate, leave.EndDate, leave.Status, leave.Reason)
			}
			return nil
		},
	})

	var leaveType, start, end, reason string
	apply := &cobra.Command{
		Use:   "apply",
		Short: "Submit a leave request",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := currentApp()
			if err != nil {
				return err
			}
			if _, err := a.requireSession(cmd.Context()); err != nil {
				return err
			}
			svc, err := leaves.NewService(a.api)
			if err != nil {
				return err
			}

			leave, err := svc.Apply(cmd.Context(), leaves.Request{
				LeaveType: leaves.Type(leaveType),
				StartDate: start,
				EndDate:   end,
				Reason:    reason,
			})
			if err != nil {
				return err
			}
			cmd.Printf("Leave request %d submitted (%s)\n", leave.ID, leave.Status)
			return nil
		},
	}
	apply.Flags().StringVar(&leaveType, "type", string(leaves.TypeCasual), "SICK, CASUAL, ANNUAL or OTHER")
	apply.Flags().StringVar(&start, "from", "", "start date (YYYY-MM-DD)")
	apply.Flags().StringVar(&end, "to", "", "end date (YYYY-MM-DD)")
	apply.Flags().StringVar(&reason, "reason", "", "reason for the request")
	_ = apply.MarkFlagRequired("from")
	_ = apply.MarkFlagRequired("to")
	cmd.AddCommand(apply)

	cmd.AddCommand(&cobra.Command{
		Use:   "approve <id>",
		Short: "Approve a pending leave request",
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
			if !profile.Role.IsHR() && !profile.Role.IsManagement() && !profile.Role.IsAdmin() {
				return errors.Errorf("role %s cannot approve leave requests", profile.Role)
			}
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return errors.Wrap(err, "invalid leave id")
			}
			svc, err := leaves.NewService(a.api)
			if err != nil {
				return err
			}

			leave, err := svc.Approve(cmd.Context(), id)
			if err != nil {
				return err
			}
			cmd.Printf("Leave %d is now %s\n", leave.ID, leave.Status)
			return nil
		},
	})

	var rejectReason string
	reject := &cobra.Command{
		Use:   "reject <id>",
		Short: "Reject a pending leave request",
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
				return errors.Wrap(err, "invalid leave id")
			}
			svc, err := leaves.NewService(a.api)
			if err != nil {
				return err
			}

			leave, err := svc.Reject(cmd.Context(), id, rejectReason)
			if err != nil {
				return err
			}
			cmd.Printf("Leave %d is now %s\n", leave.ID, leave.Status)
			return nil
		},
	}
	reject.Flags().StringVar(&rejectReason, "reason", "", "why the request is rejected")
	cmd.AddCommand(reject)

	return cmd
}

func newTasksCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "View and update assigned tasks",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := currentApp()
			if err != nil {
				return err
			}
			if _, err := a.requireSession(cmd.Context()); err != nil {
				return err
			}
			svc, err := tasks.NewService(a.api)
			if err != nil {
				return err
			}

			list, err := svc.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, task := range list {
				cmd.Printf("%4d  %-10s %-12s %s (due %s)\n",
					task.ID, task.Priority, task.Status, task.Title, task.DueDate.Format("2006-01-02"))
			}
			return nil
		},
	})

	var status string
	setStatus := &cobra.Command{
		Use:   "set-status <id>",
		Short: "Move a task through its lifecycle",
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
				return errors.Wrap(err, "invalid task id")
			}
			svc, err := tasks.NewService(a.api)
			if err != nil {
				return err
			}

			task, err := svc.SetStatus(cmd.Context(), id, tasks.Status(status))
			if err != nil {
				return err
			}
			cmd.Printf("Task %d is now %s\n", task.ID, task.Status)
			return nil
		},
	}
	setStatus.Flags().StringVar(&status, "status", string(tasks.StatusCompleted), "TODO, IN_PROGRESS, COMPLETED or BLOCKED")
	cmd.AddCommand(setStatus)

	return cmd
}

func newNotificationsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "Read the notification feed",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List notifications",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := currentApp()
			if err != nil {
				return err
			}
			if _, err := a.requireSession(cmd.Context()); err != nil {
				return err
			}
			svc, err := notifications.NewService(a.api)
			if err != nil {
				return err
			}

			items, err := svc.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, item := range items {
				marker := " "
				if !item.IsRead {
					marker = "*"
				}
				cmd.Printf("%s %4d  %s: %s\n", marker, item.ID, item.Title, item.Message)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "read <id>",
		Short: "Mark a notification as read",
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
				return errors.Wrap(err, "invalid notification id")
			}
			svc, err := notifications.NewService(a.api)
			if err != nil {
				return err
			}
			return svc.MarkRead(cmd.Context(), id)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "read-all",
		Short: "Mark every notification as read",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := currentApp()
			if err != nil {
				return err
			}
			if _, err := a.requireSession(cmd.Context()); err != nil {
				return err
			}
			svc, err := notifications.NewService(a.api)
			if err != nil {
				return err
			}
			return svc.MarkAllRead(cmd.Context())
		},
	})

	return cmd
}
