package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"jobboard/internal/applyform"
	"jobboard/internal/errors"
	"jobboard/internal/submission"
)

type applyResult struct {
	Ack   submission.Ack `json:"ack"`
	Title string         `json:"title"`
}

func (a *app) applyCommand() *cobra.Command {
	var in applyform.Input
	cmd := &cobra.Command{
		Use:   "apply <job-id>",
		Short: "Submit an application and record the job as applied",
		Long: `Submit an application for one job. Missing fields are prompted for when
stdin is a terminal. The resume must be a PDF, DOC or DOCX file of at most 5 MB.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := a.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			job, err := s.LoadOne(cmd.Context(), args[0])
			if err != nil {
				return loadFailure(err)
			}
			if s.IsApplied(job.ID) {
				return errors.WithHint(
					errors.Newf("already applied to %s (job %s)", job.Title, job.ID),
					"use `jobboard applied remove "+job.ID+"` to clear the marker",
				)
			}

			if err := a.completeApplyInput(&in); err != nil {
				return err
			}
			applicant, err := applyform.New().Validate(in)
			if err != nil {
				return err
			}

			if !a.jsonOut {
				fmt.Fprintf(a.stdout, "Submitting application for %s at %s...\n", job.Title, job.Company)
			}
			ack, err := s.SubmitApplication(cmd.Context(), job.ID, applicant)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return printJSON(a.stdout, applyResult{Ack: ack, Title: job.Title})
			}
			fmt.Fprintf(a.stdout, "Application submitted (confirmation %s).\n", ack.ConfirmationID)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "full name")
	cmd.Flags().StringVar(&in.Email, "email", "", "email address")
	cmd.Flags().StringVar(&in.CoverLetter, "cover-letter", "", "optional cover letter text")
	cmd.Flags().StringVar(&in.ResumePath, "resume", "", "path to resume (.pdf, .doc, .docx)")
	return cmd
}

// completeApplyInput prompts for required fields left empty by flags. On a
// non-interactive stdin nothing is prompted and validation reports the gaps.
func (a *app) completeApplyInput(in *applyform.Input) error {
	p := newPrompter(a.stdin, a.stdout)
	if !p.tty {
		return nil
	}
	fields := []struct {
		label string
		value *string
	}{
		{"Full name", &in.Name},
		{"Email", &in.Email},
		{"Resume path", &in.ResumePath},
	}
	for _, f := range fields {
		if *f.value != "" {
			continue
		}
		v, err := p.required(f.label)
		if err != nil {
			return err
		}
		*f.value = v
	}
	if in.CoverLetter == "" {
		v, err := p.optional("Cover letter (optional)")
		if err != nil {
			return err
		}
		in.CoverLetter = v
	}
	return nil
}
