package cli

import (
	"github.com/spf13/cobra"

	"jobboard/internal/errors"
	"jobboard/internal/model"
)

type listResult struct {
	Filters model.FilterCriteria `json:"filters"`
	Total   int                  `json:"total"`
	Shown   int                  `json:"shown"`
	Jobs    []model.JobView      `json:"jobs"`
}

func (a *app) listCommand() *cobra.Command {
	var (
		criteria    model.FilterCriteria
		appliedOnly bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs, optionally filtered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, _, err := a.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.LoadAll(cmd.Context()); err != nil {
				return loadFailure(err)
			}
			s.SetFilter(patchFromCriteria(criteria))

			views := s.Views(s.FilteredJobs())
			if appliedOnly {
				views = onlyApplied(views)
			}
			if a.jsonOut {
				return printJSON(a.stdout, listResult{
					Filters: s.CurrentFilters(),
					Total:   len(s.AllJobs()),
					Shown:   len(views),
					Jobs:    views,
				})
			}
			return writeJobTable(a.stdout, views)
		},
	}
	addFilterFlags(cmd, &criteria)
	cmd.Flags().BoolVar(&appliedOnly, "applied", false, "only jobs already applied to")
	return cmd
}

func addFilterFlags(cmd *cobra.Command, c *model.FilterCriteria) {
	cmd.Flags().StringVar(&c.Search, "search", "", "text to find in title or description")
	cmd.Flags().StringVar(&c.Location, "location", "", "text to find in location")
	cmd.Flags().StringVar(&c.Type, "type", "", "exact job type, e.g. Full-time")
	cmd.Flags().StringVar(&c.Company, "company", "", "text to find in company")
}

func patchFromCriteria(c model.FilterCriteria) model.FilterPatch {
	return model.FilterPatch{
		Search:   model.StringPtr(c.Search),
		Location: model.StringPtr(c.Location),
		Type:     model.StringPtr(c.Type),
		Company:  model.StringPtr(c.Company),
	}
}

func onlyApplied(views []model.JobView) []model.JobView {
	out := make([]model.JobView, 0, len(views))
	for _, v := range views {
		if v.Applied {
			out = append(out, v)
		}
	}
	return out
}

func loadFailure(err error) error {
	if errors.IsFetch(err) {
		return errors.WithHint(errors.Wrap(err, "load jobs"),
			"check source.base_url, or set fallback.policy = \"fallback\" to use built-in postings")
	}
	return err
}
