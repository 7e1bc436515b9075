package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"jobboard/internal/model"
	"jobboard/internal/submission"
)

// browseBoard is the part of board.Board the TUI drives.
type browseBoard interface {
	FilteredJobs() []model.Job
	AllJobs() []model.Job
	Views(jobs []model.Job) []model.JobView
	LoadingStatus() model.Status
	LastError() string
	CurrentFilters() model.FilterCriteria
	IsApplied(id string) bool
	Job(id string) (model.Job, bool)
	SetFilter(patch model.FilterPatch) model.FilterCriteria
	ClearFilter()
	LoadAll(ctx context.Context) error
	LoadOne(ctx context.Context, id string) (model.Job, error)
	SubmitApplication(ctx context.Context, jobID string, applicant model.Applicant) (submission.Ack, error)
	MarkApplied(ctx context.Context, jobID string) bool
	UnmarkApplied(ctx context.Context, jobID string) bool
}

type jobsLoadedMsg struct {
	err error
}

type jobLoadedMsg struct {
	id  string
	job model.Job
	err error
}

type submittedMsg struct {
	title string
	ack   submission.Ack
	err   error
}

type appliedToggledMsg struct {
	message string
}

func loadJobsCmd(ctx context.Context, b browseBoard) tea.Cmd {
	return func() tea.Msg {
		return jobsLoadedMsg{err: b.LoadAll(ctx)}
	}
}

func loadJobCmd(ctx context.Context, b browseBoard, id string) tea.Cmd {
	return func() tea.Msg {
		job, err := b.LoadOne(ctx, id)
		return jobLoadedMsg{id: id, job: job, err: err}
	}
}

func submitCmd(ctx context.Context, b browseBoard, job model.Job, applicant model.Applicant) tea.Cmd {
	return func() tea.Msg {
		ack, err := b.SubmitApplication(ctx, job.ID, applicant)
		return submittedMsg{title: job.Title, ack: ack, err: err}
	}
}

func toggleAppliedCmd(ctx context.Context, b browseBoard, job model.Job) tea.Cmd {
	return func() tea.Msg {
		if b.IsApplied(job.ID) {
			b.UnmarkApplied(ctx, job.ID)
			return appliedToggledMsg{message: fmt.Sprintf("cleared applied marker: %s", job.Title)}
		}
		b.MarkApplied(ctx, job.ID)
		return appliedToggledMsg{message: fmt.Sprintf("marked as applied: %s", job.Title)}
	}
}
