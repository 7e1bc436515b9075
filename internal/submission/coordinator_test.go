package submission

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobboard/internal/errors"
	"jobboard/internal/model"
)

type recordingLedger struct {
	added []string
	set   map[string]bool
}

func (r *recordingLedger) Add(_ context.Context, id string) bool {
	r.added = append(r.added, id)
	if r.set == nil {
		r.set = map[string]bool{}
	}
	if r.set[id] {
		return false
	}
	r.set[id] = true
	return true
}

type stubSubmitter struct {
	err  error
	apps []Application
}

func (s *stubSubmitter) Submit(_ context.Context, app Application) error {
	s.apps = append(s.apps, app)
	return s.err
}

var applicant = model.Applicant{Name: "Ada", Email: "ada@example.com"}

func TestSubmit_RecordsOnceOnSuccess(t *testing.T) {
	ledger := &recordingLedger{}
	sub := &stubSubmitter{}
	c := NewCoordinator(sub, ledger, nil)
	c.now = func() time.Time { return time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC) }

	ack, err := c.Submit(context.Background(), "5", applicant)
	require.NoError(t, err)
	assert.Equal(t, []string{"5"}, ledger.added)
	assert.Equal(t, "5", ack.JobID)
	assert.Equal(t, time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC), ack.SubmittedAt)
	_, err = uuid.Parse(ack.ConfirmationID)
	assert.NoError(t, err)

	require.Len(t, sub.apps, 1)
	assert.Equal(t, ack.ConfirmationID, sub.apps[0].ConfirmationID)
	assert.Equal(t, "Ada", sub.apps[0].Applicant.Name)
}

func TestSubmit_FailureLeavesLedgerUntouched(t *testing.T) {
	ledger := &recordingLedger{}
	c := NewCoordinator(&stubSubmitter{err: errors.New("server said no")}, ledger, nil)

	_, err := c.Submit(context.Background(), "5", applicant)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrSubmission))
	var serr *SubmissionError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, "5", serr.JobID)
	assert.Contains(t, err.Error(), "server said no")
	assert.Empty(t, ledger.added)
}

func TestSubmit_RequiresJobID(t *testing.T) {
	sub := &stubSubmitter{}
	_, err := NewCoordinator(sub, &recordingLedger{}, nil).Submit(context.Background(), " ", applicant)
	assert.True(t, errors.Is(err, errors.ErrValidation))
	assert.Empty(t, sub.apps)
}

func TestSimulatedSubmitter(t *testing.T) {
	assert.NoError(t, SimulatedSubmitter{Delay: time.Millisecond}.Submit(context.Background(), Application{}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := SimulatedSubmitter{Delay: time.Hour}.Submit(ctx, Application{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHTTPSubmitter(t *testing.T) {
	var got Application
	var key string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		key = r.Header.Get("Idempotency-Key")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		if got.JobID == "reject" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	s := NewHTTPSubmitter(srv.URL, time.Second)
	app := Application{ConfirmationID: "c-1", JobID: "5", Applicant: applicant}
	require.NoError(t, s.Submit(context.Background(), app))
	assert.Equal(t, "c-1", key)
	assert.Equal(t, "ada@example.com", got.Applicant.Email)

	app.JobID = "reject"
	err := s.Submit(context.Background(), app)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
}
