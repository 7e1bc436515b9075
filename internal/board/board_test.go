package board

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobboard/internal/config"
	"jobboard/internal/errors"
	"jobboard/internal/model"
	"jobboard/internal/submission"
)

func jobSource(t *testing.T, healthy *atomic.Bool) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !healthy.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		switch r.URL.Path {
		case "/jobs":
			_, _ = w.Write([]byte(`[
				{"id":"7","title":"Backend Engineer","company":"DataFlow Inc","type":"Full-time","location":"Remote"},
				{"id":"8","title":"Backend Engineer","company":"Creative Studio","type":"Contract","location":"Remote"}
			]`))
		case "/jobs/7":
			_, _ = w.Write([]byte(`{"id":"7","title":"Backend Engineer"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func openSession(t *testing.T, baseURL, dir string) *Session {
	t.Helper()
	cfg := config.Default()
	cfg.Source.BaseURL = baseURL
	cfg.Source.RequestsPerMinute = 0
	cfg.Storage.Dir = dir
	cfg.Submission.SimulatedDelayMS = 0
	s, err := Open(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestBoard_LoadFilterAndApply(t *testing.T) {
	var healthy atomic.Bool
	healthy.Store(true)
	srv := jobSource(t, &healthy)
	dir := filepath.Join(t.TempDir(), "data")
	ctx := context.Background()

	b := openSession(t, srv.URL, dir)
	require.NoError(t, b.LoadAll(ctx))
	assert.Equal(t, model.StatusSucceeded, b.LoadingStatus())
	assert.Len(t, b.AllJobs(), 2)

	b.SetFilter(model.FilterPatch{Search: model.StringPtr("engineer"), Type: model.StringPtr("Full-time")})
	filtered := b.FilteredJobs()
	require.Len(t, filtered, 1)
	assert.Equal(t, "7", filtered[0].ID)

	ack, err := b.SubmitApplication(ctx, "7", model.Applicant{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "7", ack.JobID)
	assert.True(t, b.IsApplied("7"))

	views := b.Views(b.AllJobs())
	assert.True(t, views[0].Applied)
	assert.False(t, views[1].Applied)

	_, err = b.SubmitApplication(ctx, "7", model.Applicant{})
	assert.True(t, errors.Is(err, errors.ErrValidation), "already-applied jobs are rejected")

	assert.True(t, b.MarkApplied(ctx, "8"))
	assert.False(t, b.MarkApplied(ctx, "8"))
	assert.Equal(t, []string{"7", "8"}, b.Applied())

	reopened := openSession(t, srv.URL, dir)
	assert.Equal(t, []string{"7", "8"}, reopened.Applied(), "ledger survives restart")

	assert.True(t, reopened.UnmarkApplied(ctx, "7"))
	assert.False(t, reopened.IsApplied("7"))

	reopened.ClearFilter()
	assert.True(t, reopened.CurrentFilters().IsEmpty())
}

func TestBoard_FallsBackWhenSourceDown(t *testing.T) {
	var healthy atomic.Bool
	srv := jobSource(t, &healthy)
	b := openSession(t, srv.URL, t.TempDir())

	require.NoError(t, b.LoadAll(context.Background()))
	assert.Equal(t, model.StatusSucceeded, b.LoadingStatus())
	assert.Empty(t, b.LastError())
	assert.Len(t, b.AllJobs(), 8)
}

func TestBoard_LoadOneNotFound(t *testing.T) {
	var healthy atomic.Bool
	healthy.Store(true)
	srv := jobSource(t, &healthy)
	b := openSession(t, srv.URL, t.TempDir())

	job, err := b.LoadOne(context.Background(), "7")
	require.NoError(t, err)
	found, ok := b.Job("7")
	require.True(t, ok)
	assert.Equal(t, job, found)

	_, err = b.LoadOne(context.Background(), "999")
	assert.True(t, errors.IsNotFound(err))
	assert.Equal(t, "job 999 not found", b.LastError())
}

func TestBoard_SubmitFailureDoesNotMarkApplied(t *testing.T) {
	var healthy atomic.Bool
	srv := jobSource(t, &healthy)
	cfg := config.Default()
	cfg.Source.BaseURL = srv.URL
	cfg.Storage.Backend = "memory"
	cfg.Submission.Endpoint = srv.URL + "/applications"

	s, err := Open(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.SubmitApplication(context.Background(), "3", model.Applicant{Name: "Ada", Email: "ada@example.com"})
	var serr *submission.SubmissionError
	require.True(t, errors.As(err, &serr))
	assert.False(t, s.IsApplied("3"))
}

func TestOpen_RejectsUnknownPolicy(t *testing.T) {
	cfg := config.Default()
	cfg.Fallback.Policy = "retry"
	_, err := Open(context.Background(), cfg, nil)
	assert.Error(t, err)
}
