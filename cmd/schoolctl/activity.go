package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/zaroda/school-backend/internal/models"
	"github.com/zaroda/school-backend/internal/services"
)

func activityCmd(e *env) *cobra.Command {
	var filter services.ActivityFilter
	var action string
	var asJSON bool

	list := &cobra.Command{
		Use:   "list",
		Short: "List activity events, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter.Action = models.ActivityAction(action)
			svc := services.NewAccountService(e.store, e.schools)
			events, err := svc.ListActivity(cmd.Context(), operator(e.cfg), filter)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), events)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tACTION\tROLE\tEMAIL\tSCHOOL\tDETAILS")
			for _, ev := range events {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					ev.Timestamp.Format(time.RFC3339), ev.Action, ev.Role, ev.Email, ev.SchoolCode, ev.Details)
			}
			return w.Flush()
		},
	}
	list.Flags().StringVar(&filter.SchoolCode, "school", "", "Only this school")
	list.Flags().StringVar(&filter.UserID, "user", "", "Only this user id")
	list.Flags().StringVar(&action, "action", "", "Only this action (login, logout, account_created, status_changed)")
	list.Flags().IntVarP(&filter.Limit, "limit", "n", 20, "Maximum number of events")
	list.Flags().BoolVar(&asJSON, "json", false, "Print JSON")

	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Inspect the activity log",
	}
	cmd.AddCommand(list)
	return cmd
}
