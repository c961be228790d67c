package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"hrmportal/internal/domain/payroll"
)

var (
	period          payroll.Period
	payrollEmployee string
	payslipDir      string
)

var payrollCmd = &cobra.Command{
	Use:   "payroll",
	Short: "Payroll runs and payslips",
}

var payrollListCmd = &cobra.Command{
	Use:   "list",
	Short: "List payroll records: all, one employee's, or one period's",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			recs []payroll.Record
			err  error
		)
		switch {
		case payrollEmployee != "":
			recs, err = app.EmployeePayroll(cmd.Context(), payrollEmployee)
		case cmd.Flags().Changed("month") || cmd.Flags().Changed("year"):
			recs, err = app.PayrollPeriod(cmd.Context(), period)
		default:
			recs, err = app.PayrollRecords(cmd.Context())
		}
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(recs))
		for _, r := range recs {
			rows = append(rows, []string{
				r.ID, r.EmployeeName, payroll.Period{Month: r.Month, Year: r.Year}.String(),
				money(r.NetSalary), r.Status,
			})
		}
		return printTable(cmd, recs, []string{"ID", "EMPLOYEE", "PERIOD", "NET", "STATUS"}, rows)
	},
}

var payrollProcessCmd = &cobra.Command{
	Use:   "process",
	Short: "Run payroll for a month",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := app.ProcessPayroll(cmd.Context(), period)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "processed %d records for %s\n", res.Processed, res.Period)
		return nil
	},
}

var payrollUploadCmd = &cobra.Command{
	Use:   "upload <employee-id> <payslip.pdf>",
	Short: "Attach a prepared payslip PDF to an employee's month",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, name, size, err := openUpload(args[1])
		if err != nil {
			return err
		}
		defer f.Close()
		rec, err := app.UploadPayslip(cmd.Context(), payroll.PayslipUpload{
			EmployeeID: args[0],
			Period:     period,
			Filename:   name,
			Size:       size,
			Content:    f,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "payslip attached to record %s\n", rec.ID)
		return nil
	},
}

var payrollDownloadCmd = &cobra.Command{
	Use:   "download <record-id>",
	Short: "Download a payslip",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := app.DownloadPayslip(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return saveFile(cmd, file, payslipDir)
	},
}

var payrollEmailCmd = &cobra.Command{
	Use:   "email <record-id>",
	Short: "Email a payslip to the employee and mark it paid",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := app.EmailPayslip(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "payslip sent to %s\n", res.Recipient)
		return nil
	},
}

func init() {
	now := time.Now()
	for _, c := range []*cobra.Command{payrollListCmd, payrollProcessCmd, payrollUploadCmd} {
		c.Flags().StringVar(&period.Month, "month", strconv.Itoa(int(now.Month())), "month 1-12")
		c.Flags().StringVar(&period.Year, "year", strconv.Itoa(now.Year()), "four digit year")
	}
	payrollListCmd.Flags().StringVar(&payrollEmployee, "employee", "", "only this employee's records")
	payrollDownloadCmd.Flags().StringVarP(&payslipDir, "dir", "d", ".", "directory to save into, - for stdout")

	payrollCmd.AddCommand(payrollListCmd, payrollProcessCmd, payrollUploadCmd, payrollDownloadCmd, payrollEmailCmd)
}
