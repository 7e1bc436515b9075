package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"jobboard/internal/board"
	"jobboard/internal/errors"
)

func (a *app) doctorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check config, storage and job source reachability",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, warnings, err := a.loadConfig()
			if err != nil {
				return err
			}
			res := board.Doctor(cmd.Context(), cfg, warnings)
			if a.jsonOut {
				if err := printJSON(a.stdout, res); err != nil {
					return err
				}
			} else {
				for _, c := range res.Checks {
					status := "ok"
					if !c.OK {
						status = "fail"
					}
					fmt.Fprintf(a.stdout, "%s: %s (%s)\n", c.Name, status, c.Message)
				}
			}
			if !res.OK {
				return errors.New("doctor checks failed")
			}
			if !a.jsonOut {
				fmt.Fprintln(a.stdout, "doctor: all checks passed")
			}
			return nil
		},
	}
}
