package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zaroda/school-backend/internal/models"
	"github.com/zaroda/school-backend/internal/services"
)

func accountsCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Create, list and change the status of directory accounts",
	}
	cmd.AddCommand(accountsCreateCmd(e), accountsListCmd(e), accountsStatusCmd(e))
	return cmd
}

func accountsCreateCmd(e *env) *cobra.Command {
	var acct services.NewAccount
	var role string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a teacher, hoi, student or parent account",
		RunE: func(cmd *cobra.Command, args []string) error {
			acct.Role = models.Role(role)
			svc := services.NewAccountService(e.store, e.schools)
			rec, err := svc.CreateAccount(cmd.Context(), operator(e.cfg), acct)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), rec)
		},
	}
	cmd.Flags().StringVar(&acct.FullName, "name", "", "Full name")
	cmd.Flags().StringVar(&acct.Email, "email", "", "Login email")
	cmd.Flags().StringVar(&acct.Password, "password", "", "Initial password")
	cmd.Flags().StringVar(&role, "role", "", "Role (teacher, hoi, student, parent)")
	cmd.Flags().StringVar(&acct.SchoolCode, "school", "", "School code")
	cmd.Flags().StringVar(&acct.Phone, "phone", "", "Phone number")
	cmd.Flags().StringVar(&acct.Subject, "subject", "", "Subject taught")
	cmd.Flags().StringVar(&acct.Grade, "grade", "", "Grade")
	for _, name := range []string{"name", "email", "password", "role", "school"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func accountsListCmd(e *env) *cobra.Command {
	var filter services.DirectoryFilter
	var role, status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter.Role = models.Role(role)
			filter.Status = models.AccountStatus(status)
			svc := services.NewAccountService(e.store, e.schools)
			accounts, err := svc.ListAccounts(cmd.Context(), operator(e.cfg), filter)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), accounts)
		},
	}
	cmd.Flags().StringVar(&filter.SchoolCode, "school", "", "Only this school")
	cmd.Flags().StringVar(&role, "role", "", "Only this role")
	cmd.Flags().StringVar(&status, "status", "", "Only this status")
	return cmd
}

func accountsStatusCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <account-id> <active|inactive|suspended>",
		Short: "Change an account's status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := services.NewAccountService(e.store, e.schools)
			rec, err := svc.SetStatus(cmd.Context(), operator(e.cfg), args[0], models.AccountStatus(args[1]))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", rec.Email, rec.Status)
			return nil
		},
	}
	return cmd
}

func deputiesCmd(e *env) *cobra.Command {
	var acct services.NewAccount
	var hoiEmail string

	create := &cobra.Command{
		Use:   "create",
		Short: "Create a deputy HOI account on behalf of an HOI",
		RunE: func(cmd *cobra.Command, args []string) error {
			hoi, ok, err := services.NewUserDirectory(e.store).FindByEmail(cmd.Context(), hoiEmail)
			if err != nil {
				return err
			}
			if !ok || hoi.Role != models.RoleHOI {
				return fmt.Errorf("no HOI account with email %q", hoiEmail)
			}
			svc := services.NewAccountService(e.store, e.schools)
			rec, err := svc.CreateDeputy(cmd.Context(), hoi.AuthUser(), acct)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), rec)
		},
	}
	create.Flags().StringVar(&hoiEmail, "hoi", "", "Email of the HOI creating the deputy")
	create.Flags().StringVar(&acct.FullName, "name", "", "Full name")
	create.Flags().StringVar(&acct.Email, "email", "", "Login email")
	create.Flags().StringVar(&acct.Password, "password", "", "Initial password")
	create.Flags().StringVar(&acct.Phone, "phone", "", "Phone number")
	for _, name := range []string{"hoi", "name", "email", "password"} {
		_ = create.MarkFlagRequired(name)
	}

	cmd := &cobra.Command{
		Use:   "deputies",
		Short: "Manage deputy HOI accounts",
	}
	cmd.AddCommand(create)
	return cmd
}
