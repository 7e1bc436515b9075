package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"jobboard/internal/model"
)

type appliedChange struct {
	ID      string `json:"id"`
	Changed bool   `json:"changed"`
}

func (a *app) appliedCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "applied",
		Short: "Show or edit the list of jobs marked as applied",
	}
	cmd.AddCommand(a.appliedListCommand(), a.appliedAddCommand(), a.appliedRemoveCommand())
	return cmd
}

func (a *app) appliedListCommand() *cobra.Command {
	var details bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List applied job ids in the order they were recorded",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, _, err := a.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			ids := s.Applied()
			if !details {
				if a.jsonOut {
					return printJSON(a.stdout, ids)
				}
				if len(ids) == 0 {
					fmt.Fprintln(a.stdout, "No applications recorded.")
					return nil
				}
				for _, id := range ids {
					fmt.Fprintln(a.stdout, id)
				}
				return nil
			}

			if err := s.LoadAll(cmd.Context()); err != nil {
				return loadFailure(err)
			}
			views := make([]model.JobView, 0, len(ids))
			for _, id := range ids {
				job, ok := s.Job(id)
				if !ok {
					job = model.Job{ID: id, Title: "(no longer listed)"}
				}
				views = append(views, model.JobView{Job: job, Applied: true})
			}
			if a.jsonOut {
				return printJSON(a.stdout, views)
			}
			return writeJobTable(a.stdout, views)
		},
	}
	cmd.Flags().BoolVar(&details, "details", false, "load jobs and show titles")
	return cmd
}

func (a *app) appliedAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add <job-id>...",
		Short: "Mark jobs as applied without submitting anything",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.changeApplied(cmd, args, true)
		},
	}
}

func (a *app) appliedRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <job-id>...",
		Short: "Clear the applied marker from jobs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.changeApplied(cmd, args, false)
		},
	}
}

func (a *app) changeApplied(cmd *cobra.Command, ids []string, add bool) error {
	s, _, err := a.openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	changes := make([]appliedChange, 0, len(ids))
	for _, id := range ids {
		var changed bool
		if add {
			changed = s.MarkApplied(cmd.Context(), id)
		} else {
			changed = s.UnmarkApplied(cmd.Context(), id)
		}
		changes = append(changes, appliedChange{ID: id, Changed: changed})
	}
	if a.jsonOut {
		return printJSON(a.stdout, changes)
	}
	for _, c := range changes {
		switch {
		case add && c.Changed:
			fmt.Fprintf(a.stdout, "marked %s as applied\n", c.ID)
		case add:
			fmt.Fprintf(a.stdout, "%s was already marked\n", c.ID)
		case c.Changed:
			fmt.Fprintf(a.stdout, "cleared %s\n", c.ID)
		default:
			fmt.Fprintf(a.stdout, "%s was not marked\n", c.ID)
		}
	}
	return nil
}
