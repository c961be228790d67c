package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"hrmportal/internal/domain/attendance"
)

var (
	attendanceDate     string
	attendanceEmployee string
	markIn             attendance.MarkInput
	markAll            bool
)

var attendanceCmd = &cobra.Command{
	Use:   "attendance",
	Short: "Daily attendance",
}

var attendanceListCmd = &cobra.Command{
	Use:   "list",
	Short: "Attendance for a date, or one employee's history",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			records []attendance.Record
			err     error
		)
		if attendanceEmployee != "" {
			records, err = app.EmployeeAttendance(cmd.Context(), attendanceEmployee)
		} else {
			records, err = app.AttendanceOn(cmd.Context(), attendanceDate)
		}
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(records))
		for _, r := range records {
			rows = append(rows, []string{r.ID, r.Date, r.EmployeeName, r.Status, r.CheckIn, r.CheckOut})
		}
		return printTable(cmd, records, []string{"ID", "DATE", "EMPLOYEE", "STATUS", "IN", "OUT"}, rows)
	},
}

var attendanceMarkCmd = &cobra.Command{
	Use:   "mark",
	Short: "Mark attendance for yourself, an employee, or everyone with --all",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if markAll {
			records, err := app.MarkBulkAttendance(cmd.Context(), attendance.BulkInput{
				Date: markIn.Date, Status: markIn.Status, CheckIn: markIn.CheckIn, CheckOut: markIn.CheckOut,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "marked %d employees %s on %s\n", len(records), markIn.Status, markIn.Date)
			return nil
		}
		rec, err := app.MarkAttendance(cmd.Context(), markIn)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "marked %s %s on %s\n", rec.EmployeeName, rec.Status, rec.Date)
		return nil
	},
}

var attendanceUpdateIn attendance.UpdateInput

var attendanceUpdateCmd = &cobra.Command{
	Use:   "update <record-id>",
	Short: "Correct a marked record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := app.UpdateAttendance(cmd.Context(), args[0], attendanceUpdateIn)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "updated %s: %s %s-%s\n", rec.ID, rec.Status, rec.CheckIn, rec.CheckOut)
		return nil
	},
}

func init() {
	attendanceListCmd.Flags().StringVar(&attendanceDate, "date", today(), "day to list (YYYY-MM-DD)")
	attendanceListCmd.Flags().StringVar(&attendanceEmployee, "employee", "", "list one employee's history instead")

	f := attendanceMarkCmd.Flags()
	f.StringVar(&markIn.EmployeeID, "employee", "", "employee id (defaults to yourself)")
	f.StringVar(&markIn.Date, "date", today(), "day (YYYY-MM-DD)")
	f.StringVar(&markIn.Status, "status", attendance.StatusPresent, "present, absent, half-day or late")
	f.StringVar(&markIn.CheckIn, "in", "", "check-in time (HH:MM)")
	f.StringVar(&markIn.CheckOut, "out", "", "check-out time (HH:MM)")
	f.BoolVar(&markAll, "all", false, "mark every active employee")

	u := attendanceUpdateCmd.Flags()
	u.StringVar(&attendanceUpdateIn.Status, "status", "", "new status")
	u.StringVar(&attendanceUpdateIn.CheckIn, "in", "", "check-in time (HH:MM)")
	u.StringVar(&attendanceUpdateIn.CheckOut, "out", "", "check-out time (HH:MM)")

	attendanceCmd.AddCommand(attendanceListCmd, attendanceMarkCmd, attendanceUpdateCmd)
}
