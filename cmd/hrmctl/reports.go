package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"hrmportal/internal/domain/reports"
)

var (
	generateIn  reports.GenerateInput
	reportDir   string
	scheduleIn  reports.ScheduleInput
	scheduleDay int
	scheduleDOW int
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Generate, download and schedule reports",
}

var reportsGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a report",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rep, err := app.GenerateReport(cmd.Context(), generateIn)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "report %s ready (%s, %s)\n", rep.ID, rep.ReportType, rep.Format)
		return nil
	},
}

var reportsRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List recently generated reports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := app.RecentReports(cmd.Context())
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(list))
		for _, r := range list {
			rows = append(rows, []string{r.ID, r.ReportType, r.Format, r.CreatedAt})
		}
		return printTable(cmd, list, []string{"ID", "TYPE", "FORMAT", "CREATED"}, rows)
	},
}

var reportsDownloadCmd = &cobra.Command{
	Use:   "download <report-id>",
	Short: "Download a generated report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := app.DownloadReport(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return saveFile(cmd, file, reportDir)
	},
}

var reportsScheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Email a report on a recurring schedule",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		in := scheduleIn
		if cmd.Flags().Changed("day") {
			day := scheduleDay
			in.Day = &day
		}
		if cmd.Flags().Changed("weekday") {
			dow := scheduleDOW
			in.DayOfWeek = &dow
		}
		sched, err := app.ScheduleReport(cmd.Context(), in)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "schedule %s: %s %s to %s\n", sched.ID, sched.Frequency, sched.ReportType, sched.Recipients)
		return nil
	},
}

var reportsScheduledCmd = &cobra.Command{
	Use:   "scheduled",
	Short: "List report schedules",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := app.ReportSchedules(cmd.Context())
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(list))
		for _, s := range list {
			rows = append(rows, []string{s.ID, s.ReportType, s.Frequency, scheduleWhen(s), s.Recipients})
		}
		return printTable(cmd, list, []string{"ID", "TYPE", "FREQUENCY", "ON", "RECIPIENTS"}, rows)
	},
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Today's headcount summary",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		stats, err := app.DashboardStats(cmd.Context())
		if err != nil {
			return err
		}
		depts, err := app.Departments(cmd.Context())
		if err != nil {
			return err
		}
		if output == "json" {
			return printJSON(cmd, map[string]any{"stats": stats, "departments": depts})
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "employees %d (%d active)\npresent today %d, on leave %d\npending leave %d\npayroll processed this month %d\n",
			stats.TotalEmployees, stats.ActiveEmployees, stats.PresentToday, stats.OnLeaveToday, stats.PendingLeaves, stats.PayrollProcessed)
		rows := make([][]string, 0, len(depts))
		for _, d := range depts {
			rows = append(rows, []string{d.Department, strconv.Itoa(d.Count)})
		}
		return printTable(cmd, depts, []string{"DEPARTMENT", "HEADCOUNT"}, rows)
	},
}

func scheduleWhen(s reports.Schedule) string {
	switch {
	case s.DayOfWeek != nil:
		return "weekday " + strconv.Itoa(*s.DayOfWeek)
	case s.Day != nil:
		return "day " + strconv.Itoa(*s.Day)
	}
	return "-"
}

func init() {
	g := reportsGenerateCmd.Flags()
	g.StringVar(&generateIn.ReportType, "type", reports.TypeEmployee, "attendance, leave, payroll or employee")
	g.StringVar(&generateIn.Format, "format", reports.FormatPDF, "pdf, excel or csv")
	g.StringVar(&generateIn.Month, "month", "", "restrict to a month (1-12)")
	g.StringVar(&generateIn.Year, "year", "", "restrict to a year")
	g.StringVar(&generateIn.Department, "department", "", "restrict to a department")

	reportsDownloadCmd.Flags().StringVarP(&reportDir, "dir", "d", ".", "directory to save into, - for stdout")

	s := reportsScheduleCmd.Flags()
	s.StringVar(&scheduleIn.ReportType, "type", reports.TypeAttendance, "report type")
	s.StringVar(&scheduleIn.Frequency, "frequency", reports.FrequencyWeekly, "daily, weekly, biweekly, monthly or quarterly")
	s.IntVar(&scheduleDay, "day", 1, "day of month for monthly and quarterly schedules")
	s.IntVar(&scheduleDOW, "weekday", 1, "day of week (0 = Sunday) for weekly schedules")
	s.StringVar(&scheduleIn.Recipients, "to", "", "comma separated recipient emails")

	reportsCmd.AddCommand(reportsGenerateCmd, reportsRecentCmd, reportsDownloadCmd, reportsScheduleCmd, reportsScheduledCmd)
}
