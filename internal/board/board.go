// Package board is the session-owned object the CLI and TUI talk to. It owns
// the job catalog, the applied-jobs ledger and the submission coordinator,
// and derives the applied flag that joins them.
package board

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"jobboard/internal/catalog"
	"jobboard/internal/errors"
	"jobboard/internal/ledger"
	"jobboard/internal/logger"
	"jobboard/internal/model"
	"jobboard/internal/submission"
)

type Board struct {
	catalog     *catalog.Store
	ledger      *ledger.Ledger
	coordinator *submission.Coordinator
	log         *zap.SugaredLogger
}

type Options struct {
	Catalog   *catalog.Store
	Ledger    *ledger.Ledger
	Submitter submission.Submitter
	Logger    *zap.SugaredLogger
}

// New wires the components. The ledger must already be initialized.
func New(opts Options) *Board {
	log := logger.OrNop(opts.Logger)
	return &Board{
		catalog:     opts.Catalog,
		ledger:      opts.Ledger,
		coordinator: submission.NewCoordinator(opts.Submitter, opts.Ledger, log.Named("submission")),
		log:         log,
	}
}

func (b *Board) AllJobs() []model.Job                 { return b.catalog.AllJobs() }
func (b *Board) FilteredJobs() []model.Job            { return b.catalog.FilteredJobs() }
func (b *Board) LoadingStatus() model.Status          { return b.catalog.Status() }
func (b *Board) LastError() string                    { return b.catalog.LastError() }
func (b *Board) CurrentFilters() model.FilterCriteria { return b.catalog.Filters() }
func (b *Board) IsApplied(id string) bool             { return b.ledger.Contains(id) }

// Applied returns the applied ids in the order they were recorded.
func (b *Board) Applied() []string { return b.ledger.IDs() }

// Job returns a loaded record without fetching.
func (b *Board) Job(id string) (model.Job, bool) { return b.catalog.Job(id) }

// Views pairs each job with its applied flag.
func (b *Board) Views(jobs []model.Job) []model.JobView {
	out := make([]model.JobView, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, model.JobView{Job: j, Applied: b.ledger.Contains(j.ID)})
	}
	return out
}

func (b *Board) SetFilter(patch model.FilterPatch) model.FilterCriteria {
	return b.catalog.SetFilter(patch)
}

func (b *Board) ClearFilter() { b.catalog.ClearFilter() }

func (b *Board) LoadAll(ctx context.Context) error {
	return b.catalog.LoadAll(ctx)
}

func (b *Board) LoadOne(ctx context.Context, id string) (model.Job, error) {
	return b.catalog.LoadOne(ctx, id)
}

func (b *Board) SearchRemote(ctx context.Context, query string) ([]model.Job, error) {
	return b.catalog.SearchRemote(ctx, query)
}

func (b *Board) ByTypeRemote(ctx context.Context, jobType string) ([]model.Job, error) {
	return b.catalog.ByTypeRemote(ctx, jobType)
}

// SubmitApplication sends the application and records the job as applied.
// An already-applied job is rejected before anything is sent.
func (b *Board) SubmitApplication(ctx context.Context, jobID string, applicant model.Applicant) (submission.Ack, error) {
	jobID = strings.TrimSpace(jobID)
	if b.ledger.Contains(jobID) {
		return submission.Ack{}, errors.WithHint(
			errors.Mark(errors.Newf("already applied to job %s", jobID), errors.ErrValidation),
			"use `jobboard applied remove` to clear the marker",
		)
	}
	return b.coordinator.Submit(ctx, jobID, applicant)
}

// MarkApplied records jobID without sending anything. It reports whether
// the ledger changed.
func (b *Board) MarkApplied(ctx context.Context, jobID string) bool {
	return b.ledger.Add(ctx, jobID)
}

func (b *Board) UnmarkApplied(ctx context.Context, jobID string) bool {
	return b.ledger.Remove(ctx, jobID)
}
