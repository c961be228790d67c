package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"hrmportal/internal/domain/employees"
)

var employeeIn employees.Input
var employeeSalary float64

var employeesCmd = &cobra.Command{
	Use:     "employees",
	Aliases: []string{"emp"},
	Short:   "Manage employees",
}

var employeesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List employees",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := app.ListEmployees(cmd.Context())
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(list))
		for _, e := range list {
			rows = append(rows, []string{e.ID, e.Name, e.Email, e.Department, e.Role, e.Status})
		}
		return printTable(cmd, list, []string{"ID", "NAME", "EMAIL", "DEPARTMENT", "ROLE", "STATUS"}, rows)
	},
}

var employeesGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one employee",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		emp, err := app.Employee(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, emp)
	},
}

var employeesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Add an employee",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		in := employeeInput(cmd)
		emp, err := app.CreateEmployee(cmd.Context(), in)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created employee %s (%s)\n", emp.ID, emp.Name)
		return nil
	},
}

var employeesUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change an employee; only the flags given are sent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		emp, err := app.UpdateEmployee(cmd.Context(), args[0], employeeInput(cmd))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "updated employee %s\n", emp.ID)
		return nil
	},
}

var employeesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove an employee",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.DeleteEmployee(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted employee %s\n", args[0])
		return nil
	},
}

var employeesAvatarCmd = &cobra.Command{
	Use:   "avatar <id> <image>",
	Short: "Upload a profile picture",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, name, _, err := openUpload(args[1])
		if err != nil {
			return err
		}
		defer f.Close()
		emp, err := app.UploadAvatar(cmd.Context(), args[0], name, f)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "avatar set: %s\n", emp.Avatar)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{employeesCreateCmd, employeesUpdateCmd} {
		f := c.Flags()
		f.StringVar(&employeeIn.Name, "name", "", "full name")
		f.StringVar(&employeeIn.Email, "email", "", "work email")
		f.StringVar(&employeeIn.Phone, "phone", "", "phone number")
		f.StringVar(&employeeIn.Department, "department", "", "department")
		f.StringVar(&employeeIn.Role, "role", "", "job role")
		f.StringVar(&employeeIn.Designation, "designation", "", "designation")
		f.StringVar(&employeeIn.JoinDate, "join-date", "", "join date (YYYY-MM-DD)")
		f.StringVar(&employeeIn.Status, "status", "", "active or inactive")
		f.StringVar(&employeeIn.Address, "address", "", "postal address")
		f.Float64Var(&employeeSalary, "salary", 0, "monthly gross salary")
	}
	employeesCmd.AddCommand(employeesListCmd, employeesGetCmd, employeesCreateCmd, employeesUpdateCmd, employeesDeleteCmd, employeesAvatarCmd)
}

func employeeInput(cmd *cobra.Command) employees.Input {
	in := employeeIn
	if cmd.Flags().Changed("salary") {
		salary := employeeSalary
		in.Salary = &salary
	}
	return in
}
