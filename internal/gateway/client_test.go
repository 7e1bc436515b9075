package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobboard/internal/errors"
	"jobboard/internal/model"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Options{BaseURL: srv.URL + "/", Timeout: 2 * time.Second})
}

func TestFetchAll_DecodesAndDedupes(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/jobs", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		_, _ = w.Write([]byte(`[
			{"id":"1","title":"Frontend Developer","type":"Full-time"},
			{"id":2,"title":"Backend Engineer","type":"Full-time","unknown":true},
			{"id":"1","title":"Duplicate"}
		]`))
	})

	jobs, err := c.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "Frontend Developer", jobs[0].Title)
	assert.Equal(t, "2", jobs[1].ID)
}

func TestFetchAll_NonSuccessIsFetchError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.FetchAll(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrFetch))
	assert.False(t, errors.Is(err, errors.ErrNotFound))

	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, http.StatusInternalServerError, fe.StatusCode)
	assert.False(t, fe.Timeout)
}

func TestFetchAll_UndecodableBodyIsFetchError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"Internal"}`))
	})
	_, err := c.FetchAll(context.Background())
	assert.True(t, errors.Is(err, errors.ErrFetch))
}

func TestFetchAll_NullBodyIsEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("null"))
	})
	jobs, err := c.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestFetchAll_TimeoutIsFetchError(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := New(Options{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	_, err := c.FetchAll(context.Background())
	require.Error(t, err)

	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.True(t, fe.Timeout)
	assert.True(t, errors.Is(err, errors.ErrFetch))
}

func TestFetchAll_UnreachableIsFetchError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	_, err := New(Options{BaseURL: base}).FetchAll(context.Background())
	assert.True(t, errors.Is(err, errors.ErrFetch))
}

func TestFetchOne(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/jobs/7":
			_, _ = w.Write([]byte(`{"id":7,"title":"Product Manager","requirements":["Agile"]}`))
		case "/jobs/null":
			_, _ = w.Write([]byte(`null`))
		case "/jobs/boom":
			w.WriteHeader(http.StatusBadGateway)
		default:
			http.Error(w, `"Not found"`, http.StatusNotFound)
		}
	})
	ctx := context.Background()

	job, err := c.FetchOne(ctx, "7")
	require.NoError(t, err)
	assert.Equal(t, "7", job.ID)
	assert.Equal(t, []string{"Agile"}, job.Requirements)

	_, err = c.FetchOne(ctx, "404")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	assert.False(t, errors.Is(err, errors.ErrFetch))

	_, err = c.FetchOne(ctx, "null")
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	_, err = c.FetchOne(ctx, "boom")
	assert.True(t, errors.Is(err, errors.ErrFetch))

	_, err = c.FetchOne(ctx, " ")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestFetchOne_SharesInFlightRequest(t *testing.T) {
	var hits int32
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		<-release
		_, _ = w.Write([]byte(`{"id":"3","title":"UI/UX Designer"}`))
	})

	const callers = 5
	var wg sync.WaitGroup
	var started sync.WaitGroup
	started.Add(callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			started.Done()
			job, err := c.FetchOne(context.Background(), "3")
			assert.NoError(t, err)
			assert.Equal(t, "UI/UX Designer", job.Title)
		}()
	}
	started.Wait()
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestFetchOne_CancelledCallerDoesNotFailOthers(t *testing.T) {
	var hits int32
	arrived := make(chan struct{}, 1)
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		arrived <- struct{}{}
		<-release
		_, _ = w.Write([]byte(`{"id":"3","title":"UI/UX Designer"}`))
	})

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := c.FetchOne(firstCtx, "3")
		firstErr <- err
	}()
	<-arrived

	type result struct {
		job model.Job
		err error
	}
	second := make(chan result, 1)
	go func() {
		job, err := c.FetchOne(context.Background(), "3")
		second <- result{job, err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancelFirst()
	err := <-firstErr
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrFetch))
	assert.True(t, errors.Is(err, context.Canceled))

	close(release)
	res := <-second
	require.NoError(t, res.err)
	assert.Equal(t, "UI/UX Designer", res.job.Title)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestSearchAndFetchByType(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("search") == "engineer":
			_, _ = w.Write([]byte(`[{"id":"2","title":"Backend Engineer"}]`))
		case q.Get("type") == "Contract":
			_, _ = w.Write([]byte(`[{"id":"3","title":"UI/UX Designer","type":"Contract"}]`))
		default:
			http.Error(w, `"Not found"`, http.StatusNotFound)
		}
	})
	ctx := context.Background()

	jobs, err := c.Search(ctx, " engineer ")
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "2", jobs[0].ID)

	jobs, err = c.FetchByType(ctx, "Contract")
	require.NoError(t, err)
	require.Len(t, jobs, 1)

	jobs, err = c.Search(ctx, "nothing")
	require.NoError(t, err, "404 from a query means no matches")
	assert.Empty(t, jobs)
}

func TestRateLimitWaitCancelledIsFetchError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})
	c2 := New(Options{BaseURL: c.BaseURL(), RequestsPerMinute: 1})
	ctx := context.Background()
	for i := 0; i < limiterBurst; i++ {
		_, err := c2.FetchAll(ctx)
		require.NoError(t, err)
	}

	ctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err := c2.FetchAll(ctx)
	assert.True(t, errors.Is(err, errors.ErrFetch))
}
