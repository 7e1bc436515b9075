package cli

import (
	"github.com/spf13/cobra"

	"jobboard/internal/errors"
	"jobboard/internal/model"
)

func (a *app) showCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <job-id>",
		Short: "Show one job in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := a.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			job, err := s.LoadOne(cmd.Context(), args[0])
			if err != nil {
				if errors.IsNotFound(err) {
					return errors.WithHint(err, "run `jobboard list` to see available ids")
				}
				return loadFailure(err)
			}
			view := model.JobView{Job: job, Applied: s.IsApplied(job.ID)}
			if a.jsonOut {
				return printJSON(a.stdout, view)
			}
			return writeJobDetail(a.stdout, view)
		},
	}
}
