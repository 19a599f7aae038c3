package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zaroda/school-backend/internal/models"
	"github.com/zaroda/school-backend/internal/services"
	"github.com/zaroda/school-backend/internal/storage"
)

func sessionCmd(e *env) *cobra.Command {
	show := &cobra.Command{
		Use:   "show",
		Short: "Print the persisted session, if any",
		RunE: func(cmd *cobra.Command, args []string) error {
			// read-only: a running server owns clearing an unreadable session
			user, ok, err := storage.NewDocument[models.AuthUser](e.store, services.KeyCurrentSession).Load(cmd.Context())
			if err != nil {
				return err
			}
			if !ok || !user.Complete() {
				fmt.Fprintln(cmd.OutOrStdout(), "no active session")
				return nil
			}
			return printJSON(cmd.OutOrStdout(), struct {
				User      any    `json:"user"`
				Dashboard string `json:"dashboard"`
			}{user, services.DashboardFor(user.Role)})
		},
	}

	cmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect the current session",
	}
	cmd.AddCommand(show)
	return cmd
}
