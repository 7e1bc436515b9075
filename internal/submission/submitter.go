package submission

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"jobboard/internal/errors"
	"jobboard/internal/model"
)

// DefaultSimulatedDelay matches how long the application form pretends to
// talk to a server.
const DefaultSimulatedDelay = 2 * time.Second

// Application is what a Submitter sends.
type Application struct {
	ConfirmationID string          `json:"confirmationId"`
	JobID          string          `json:"jobId"`
	Applicant      model.Applicant `json:"applicant"`
}

// Submitter delivers an application to whoever processes it.
type Submitter interface {
	Submit(ctx context.Context, app Application) error
}

// SimulatedSubmitter accepts every application after Delay.
type SimulatedSubmitter struct {
	Delay time.Duration
}

func (s SimulatedSubmitter) Submit(ctx context.Context, _ Application) error {
	delay := s.Delay
	if delay < 0 {
		delay = 0
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// HTTPSubmitter POSTs the application as JSON. The confirmation id is sent
// as Idempotency-Key.
type HTTPSubmitter struct {
	Endpoint string
	Client   *http.Client
}

func NewHTTPSubmitter(endpoint string, timeout time.Duration) *HTTPSubmitter {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPSubmitter{
		Endpoint: strings.TrimSpace(endpoint),
		Client:   &http.Client{Timeout: timeout},
	}
}

func (h *HTTPSubmitter) Submit(ctx context.Context, app Application) error {
	body, err := json.Marshal(app)
	if err != nil {
		return errors.Wrap(err, "encode application")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.Endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "build submission request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Idempotency-Key", app.ConfirmationID)

	resp, err := h.Client.Do(req)
	if err != nil {
		return errors.Wrap(err, "post application")
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.Newf("submission endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
