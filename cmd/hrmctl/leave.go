package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"hrmportal/internal/domain/leave"
)

var (
	leaveEmployee string
	applyIn       leave.ApplyInput
	leaveComment  string
)

var leaveCmd = &cobra.Command{
	Use:   "leave",
	Short: "Leave requests and balance",
}

var leaveListCmd = &cobra.Command{
	Use:   "list",
	Short: "List leave requests",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			list []leave.Request
			err  error
		)
		if leaveEmployee != "" {
			list, err = app.EmployeeLeave(cmd.Context(), leaveEmployee)
		} else {
			list, err = app.LeaveRequests(cmd.Context())
		}
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(list))
		for _, r := range list {
			rows = append(rows, []string{r.ID, r.EmployeeName, r.Type, r.StartDate, r.EndDate, r.Status})
		}
		return printTable(cmd, list, []string{"ID", "EMPLOYEE", "TYPE", "FROM", "TO", "STATUS"}, rows)
	},
}

var leaveApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Request leave for yourself",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := app.ApplyLeave(cmd.Context(), applyIn)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "leave %s requested (%s to %s), status %s\n", req.ID, req.StartDate, req.EndDate, req.Status)
		return nil
	},
}

func leaveDecision(status string) *cobra.Command {
	return &cobra.Command{
		Use:   status[:len(status)-1] + " <request-id>",
		Short: "Mark a pending request " + status,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := app.SetLeaveStatus(cmd.Context(), args[0], leave.StatusInput{Status: status, Comment: leaveComment})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "leave %s for %s is %s\n", req.ID, req.EmployeeName, req.Status)
			return nil
		},
	}
}

var leaveCancelCmd = &cobra.Command{
	Use:   "cancel <request-id>",
	Short: "Withdraw one of your pending requests",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := app.CancelLeave(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "leave %s is %s\n", req.ID, req.Status)
		return nil
	},
}

var leaveBalanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show your remaining leave",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := app.LeaveBalance(cmd.Context())
		if err != nil {
			return err
		}
		if output == "json" {
			return printJSON(cmd, b)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "casual %.1f  sick %.1f  vacation %.1f  total %.1f\n", b.Casual, b.Sick, b.Vacation, b.Total)
		return nil
	},
}

func init() {
	leaveListCmd.Flags().StringVar(&leaveEmployee, "employee", "", "only this employee's requests")

	f := leaveApplyCmd.Flags()
	f.StringVar(&applyIn.Type, "type", leave.TypeCasual, "casual, sick, vacation or other")
	f.StringVar(&applyIn.StartDate, "from", "", "first day (YYYY-MM-DD)")
	f.StringVar(&applyIn.EndDate, "to", "", "last day (YYYY-MM-DD)")
	f.StringVar(&applyIn.Reason, "reason", "", "reason shown to the approver")

	approve, reject := leaveDecision(leave.StatusApproved), leaveDecision(leave.StatusRejected)
	for _, c := range []*cobra.Command{approve, reject} {
		c.Flags().StringVar(&leaveComment, "comment", "", "note for the employee")
	}
	leaveCmd.AddCommand(leaveListCmd, leaveApplyCmd, approve, reject, leaveCancelCmd, leaveBalanceCmd)
}
