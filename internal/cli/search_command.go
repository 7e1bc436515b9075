package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"jobboard/internal/errors"
	"jobboard/internal/filter"
	"jobboard/internal/model"
)

func (a *app) searchCommand() *cobra.Command {
	var jobType string
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Ask the job source for matching jobs",
		Long: `Ask the job source to search title, company and description, or to
list one job type. Results are not merged into the local collection.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) == 1 {
				query = strings.TrimSpace(args[0])
			}
			jobType = strings.TrimSpace(jobType)
			if query == "" && jobType == "" {
				return errors.New("give a query, --type, or both")
			}

			s, _, err := a.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			var jobs []model.Job
			if query != "" {
				jobs, err = s.SearchRemote(cmd.Context(), query)
				if err == nil && jobType != "" {
					jobs = keep(jobs, filter.TypeIs(jobType))
				}
			} else {
				jobs, err = s.ByTypeRemote(cmd.Context(), jobType)
			}
			if err != nil {
				return loadFailure(err)
			}

			views := s.Views(jobs)
			if a.jsonOut {
				return printJSON(a.stdout, views)
			}
			return writeJobTable(a.stdout, views)
		},
	}
	cmd.Flags().StringVar(&jobType, "type", "", "job type, e.g. Contract")
	return cmd
}

func keep(jobs []model.Job, pred func(model.Job) bool) []model.Job {
	out := make([]model.Job, 0, len(jobs))
	for _, j := range jobs {
		if pred(j) {
			out = append(out, j)
		}
	}
	return out
}
