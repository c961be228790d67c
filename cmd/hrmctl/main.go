// Command hrmctl drives the HR portal from a terminal. It keeps its session
// in a local SQLite file, so a login survives between invocations.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"hrmportal/internal/app/console"
	"hrmportal/internal/platform/config"
	"hrmportal/internal/platform/crypto"
	"hrmportal/internal/platform/localstore"
	"hrmportal/internal/platform/logging"
	"hrmportal/internal/session"
	apiclient "hrmportal/internal/transport/http/client"
)

var (
	cfgFile string
	output  string

	app   *console.App
	state *localstore.SQLite
)

var rootCmd = &cobra.Command{
	Use:   "hrmctl",
	Short: "HR portal command line client",
	Long: `hrmctl talks to the HR portal API: employees, attendance, leave,
payroll, reports and settings, gated by the signed-in user's role.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) { teardown() },
}

func main() {
	Execute()
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		teardown()
		fmt.Fprintln(os.Stderr, describe(err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, json or toml)")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "table", "output format: table or json")

	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd, canCmd)
	rootCmd.AddCommand(employeesCmd, attendanceCmd, leaveCmd, payrollCmd)
	rootCmd.AddCommand(reportsCmd, dashboardCmd, settingsCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadClientFile(cfgFile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := logging.New(cfg.Environment, cfg.LogLevel, os.Stderr)

	sealer, err := crypto.NewSealer(cfg.StateKey)
	if err != nil {
		return err
	}
	state, err = localstore.OpenSQLite(cfg.StatePath)
	if err != nil {
		return err
	}
	app, err = console.New(console.Options{
		APIURL:            cfg.APIURL,
		Storage:           localstore.NewSealed(state, sealer, session.TokenKey),
		StaleTime:         cfg.StaleTime,
		GCTime:            cfg.GCTime,
		RequestTimeout:    cfg.RequestTimeout,
		RateLimit:         cfg.RateLimit,
		RateBurst:         cfg.RateBurst,
		ValidateOnRestore: cfg.ValidateOnRestore,
		Logger:            logger,
	})
	if err != nil {
		return err
	}
	return app.Restore(cmd.Context())
}

func teardown() {
	if app != nil {
		app.Close()
		app = nil
	}
	if state != nil {
		_ = state.Close()
		state = nil
	}
}

// describe turns client errors into one line for the terminal.
func describe(err error) string {
	switch {
	case errors.Is(err, console.ErrNotAuthenticated):
		return "not signed in: run `hrmctl login` first"
	case errors.Is(err, console.ErrForbidden):
		return err.Error()
	case errors.Is(err, apiclient.ErrUnauthorized):
		return "session expired: " + apiclient.Message(err)
	case errors.Is(err, context.DeadlineExceeded):
		return "request timed out"
	}
	return "error: " + err.Error()
}
