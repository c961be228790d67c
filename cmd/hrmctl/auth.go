package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"hrmportal/internal/domain/auth"
)

var (
	loginEmail        string
	loginPasswordFile string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and keep the session locally",
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(loginEmail) == "" {
			return errors.New("--email is required")
		}
		password, err := readPassword(loginPasswordFile)
		if err != nil {
			return err
		}
		ok, err := app.Login(cmd.Context(), loginEmail, password)
		if err != nil {
			return err
		}
		if !ok {
			return errors.New("invalid email or password")
		}
		sess, _ := app.Current()
		fmt.Fprintf(cmd.OutOrStdout(), "signed in as %s (%s)\n", sess.DisplayName, sess.Role)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, ok := app.Current(); !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "not signed in")
			return nil
		}
		if err := app.Logout(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "signed out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user and what they may do",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, ok := app.Current()
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "not signed in")
			return nil
		}
		granted := app.Matrix.Load().Granted(sess.Role)
		if output == "json" {
			caps := make([]string, 0, len(granted))
			for _, c := range granted {
				caps = append(caps, c.String())
			}
			return printJSON(cmd, map[string]any{
				"user":        sess.User(),
				"expiresAt":   sess.ExpiresAt,
				"permissions": caps,
			})
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s <%s>\nrole: %s\nuser id: %s\nexpires: %s\n", sess.DisplayName, sess.Email, sess.Role, sess.UserID, sess.ExpiresAt.Local().Format("2006-01-02 15:04"))
		fmt.Fprintln(out, "permissions:")
		for _, c := range granted {
			fmt.Fprintf(out, "  %s\n", c)
		}
		return nil
	},
}

var canCmd = &cobra.Command{
	Use:   "can <module> <action>",
	Short: "Check a permission for the signed-in user",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		module, action := auth.Module(strings.ToLower(args[0])), auth.Action(strings.ToLower(args[1]))
		if _, ok := auth.CapabilityFor(module, action); !ok {
			return fmt.Errorf("unknown permission %s.%s", module, action)
		}
		allowed := app.Can(module, action)
		fmt.Fprintln(cmd.OutOrStdout(), allowed)
		if !allowed {
			teardown()
			os.Exit(2)
		}
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account email")
	loginCmd.Flags().StringVar(&loginPasswordFile, "password-file", "", "read the password from a file, - to prompt")
}

// readPassword prompts with echo off unless a file is given.
func readPassword(path string) (string, error) {
	if path != "" && path != "-" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read password file: %w", err)
		}
		return strings.TrimRight(string(data), "\r\n"), nil
	}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("no terminal for the password prompt, use --password-file")
	}
	fmt.Fprint(os.Stderr, "Password: ")
	data, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(data), nil
}
