package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"hrmportal/internal/domain/audit"
	"hrmportal/internal/domain/auth"
	"hrmportal/internal/domain/settings"
)

var (
	companyIn   settings.Company
	rolesFile   string
	auditFilter audit.Filter
	auditLimit  int
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Company details and role permissions",
}

var companyCmd = &cobra.Command{
	Use:   "company",
	Short: "Show company details",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := app.Company(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(cmd, c)
	},
}

var companySetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change company details; unset flags keep their value",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		current, err := app.Company(cmd.Context())
		if err != nil {
			return err
		}
		f := cmd.Flags()
		for name, dst := range map[string]*string{
			"name": &current.Name, "address": &current.Address, "email": &current.Email,
			"phone": &current.Phone, "website": &current.Website, "tax-id": &current.TaxID,
		} {
			if f.Changed(name) {
				v, _ := f.GetString(name)
				*dst = v
			}
		}
		updated, err := app.UpdateCompany(cmd.Context(), current)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "saved company %s\n", updated.Name)
		return nil
	},
}

var companyLogoCmd = &cobra.Command{
	Use:   "logo <image>",
	Short: "Upload the company logo",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, name, _, err := openUpload(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		c, err := app.UploadLogo(cmd.Context(), name, f)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "logo set: %s\n", c.Logo)
		return nil
	},
}

var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "Show the role permission matrix",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := app.RefreshRoles(cmd.Context())
		if err != nil {
			return err
		}
		if output == "json" {
			return printJSON(cmd, settings.RolesPayload{Roles: m.Wire()})
		}
		var rows [][]string
		for _, role := range auth.Roles {
			granted := m.Granted(role)
			names := make([]string, 0, len(granted))
			for _, c := range granted {
				names = append(names, c.String())
			}
			rows = append(rows, []string{string(role), strings.Join(names, " ")})
		}
		return printTable(cmd, m.Wire(), []string{"ROLE", "PERMISSIONS"}, rows)
	},
}

func roleToggle(allow bool) *cobra.Command {
	use, short := "grant", "Allow a role a permission"
	if !allow {
		use, short = "revoke", "Take a permission from a role"
	}
	return &cobra.Command{
		Use:   use + " <role> <module.action>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			role, err := auth.ParseRole(args[0])
			if err != nil {
				return err
			}
			module, action, _ := strings.Cut(strings.ToLower(args[1]), ".")
			c, ok := auth.CapabilityFor(auth.Module(module), auth.Action(action))
			if !ok {
				return fmt.Errorf("unknown permission %q", args[1])
			}
			m, err := app.RefreshRoles(cmd.Context())
			if err != nil {
				return err
			}
			if _, err := app.SaveRoles(cmd.Context(), m.With(role, c, allow)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s %s\n", role, use, c)
			return nil
		},
	}
}

var rolesSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Replace the matrix from a JSON file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(rolesFile)
		if err != nil {
			return err
		}
		var payload settings.RolesPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("parse %s: %w", rolesFile, err)
		}
		m, gaps := auth.MatrixFromWire(payload.Roles)
		if len(gaps) > 0 {
			return fmt.Errorf("incomplete matrix: %s", strings.Join(gaps, "; "))
		}
		if _, err := app.SaveRoles(cmd.Context(), m); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "roles saved")
		return nil
	},
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show who changed roles, company details or payroll",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		events, err := app.AuditTrail(cmd.Context(), auditFilter, auditLimit)
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(events))
		for _, e := range events {
			rows = append(rows, []string{e.CreatedAt.Local().Format("2006-01-02 15:04:05"), e.ActorID, e.Action, strings.TrimSpace(e.EntityType + " " + e.EntityID)})
		}
		return printTable(cmd, events, []string{"WHEN", "ACTOR", "ACTION", "ENTITY"}, rows)
	},
}

func init() {
	f := companySetCmd.Flags()
	f.StringVar(&companyIn.Name, "name", "", "company name")
	f.StringVar(&companyIn.Address, "address", "", "postal address")
	f.StringVar(&companyIn.Email, "email", "", "contact email")
	f.StringVar(&companyIn.Phone, "phone", "", "contact phone")
	f.StringVar(&companyIn.Website, "website", "", "website")
	f.StringVar(&companyIn.TaxID, "tax-id", "", "tax id")

	rolesSetCmd.Flags().StringVarP(&rolesFile, "file", "f", "", "JSON file with {\"roles\": [...]}")
	_ = rolesSetCmd.MarkFlagRequired("file")

	auditCmd.Flags().StringVar(&auditFilter.Action, "action", "", "only this action, e.g. settings.roles.update")
	auditCmd.Flags().StringVar(&auditFilter.ActorID, "actor", "", "only this user id")
	auditCmd.Flags().IntVar(&auditLimit, "limit", 50, "maximum events")

	companyCmd.AddCommand(companySetCmd, companyLogoCmd)
	rolesCmd.AddCommand(roleToggle(true), roleToggle(false), rolesSetCmd)
	settingsCmd.AddCommand(companyCmd, rolesCmd, auditCmd)
}
