// Package history implements the "pacer history" command: list past
// scheduling runs for the configured user.
package history

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/pacer/internal/app"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// NewCommand builds the "history" cobra command.
func NewCommand(getContainer func() (*app.Container, error)) *cobra.Command {
	var limit int
	var since string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past scheduling runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := getContainer()
			if err != nil {
				return fmt.Errorf("initialize container: %w", err)
			}
			defer container.Close()

			sinceTime := time.Time{}
			if since != "" {
				sinceTime, err = time.Parse("2006-01-02", since)
				if err != nil {
					return fmt.Errorf("parse --since: %w", err)
				}
			}

			userID, err := uuid.Parse(container.Config.UserID)
			if err != nil {
				return fmt.Errorf("parse configured user id: %w", err)
			}

			runs, err := container.RunService.History(cmd.Context(), userID, sinceTime, limit)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(w, "no runs found")
				return nil
			}
			for _, run := range runs {
				fmt.Fprintf(w, "%s  %-10s  tasks=%d  objective=%d  makespan=%d  %s\n",
					run.ID(), run.Status(), run.TaskCount(), run.ObjectiveValue(), run.Makespan(),
					run.CompletedAt().Format(time.RFC3339))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to list")
	cmd.Flags().StringVar(&since, "since", "", "only list runs created on or after this date, YYYY-MM-DD")

	return cmd
}
