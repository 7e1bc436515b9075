// Package submission sends applications and records them in the ledger.
package submission

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"jobboard/internal/errors"
	"jobboard/internal/logger"
	"jobboard/internal/model"
)

// Recorder is the ledger side of a submission.
type Recorder interface {
	Add(ctx context.Context, id string) bool
}

// Ack confirms an accepted application.
type Ack struct {
	ConfirmationID string    `json:"confirmationId"`
	JobID          string    `json:"jobId"`
	SubmittedAt    time.Time `json:"submittedAt"`
}

// SubmissionError wraps a Submitter failure. It matches errors.ErrSubmission.
type SubmissionError struct {
	JobID string
	Err   error
}

func (e *SubmissionError) Error() string {
	return "submit application for job " + e.JobID + ": " + e.Err.Error()
}

func (e *SubmissionError) Unwrap() error { return e.Err }

func (e *SubmissionError) Is(target error) bool { return target == errors.ErrSubmission }

type Coordinator struct {
	submitter Submitter
	ledger    Recorder
	log       *zap.SugaredLogger
	now       func() time.Time
	newID     func() string
}

func NewCoordinator(submitter Submitter, ledger Recorder, log *zap.SugaredLogger) *Coordinator {
	return &Coordinator{
		submitter: submitter,
		ledger:    ledger,
		log:       logger.OrNop(log),
		now:       time.Now,
		newID:     func() string { return uuid.New().String() },
	}
}

// Submit sends the application and, once it is accepted, records jobID as
// applied. A rejected submission leaves the ledger untouched.
func (c *Coordinator) Submit(ctx context.Context, jobID string, applicant model.Applicant) (Ack, error) {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return Ack{}, errors.Mark(errors.New("job id is required"), errors.ErrValidation)
	}

	app := Application{
		ConfirmationID: c.newID(),
		JobID:          jobID,
		Applicant:      applicant,
	}
	if err := c.submitter.Submit(ctx, app); err != nil {
		c.log.Warnw("application rejected", "job_id", jobID, "error", err)
		return Ack{}, &SubmissionError{JobID: jobID, Err: err}
	}

	if !c.ledger.Add(ctx, jobID) {
		c.log.Infow("job was already recorded as applied", "job_id", jobID)
	}
	ack := Ack{
		ConfirmationID: app.ConfirmationID,
		JobID:          jobID,
		SubmittedAt:    c.now().UTC(),
	}
	c.log.Infow("application submitted", "job_id", jobID, "confirmation_id", ack.ConfirmationID)
	return ack, nil
}
