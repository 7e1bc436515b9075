package catalog

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobboard/internal/errors"
	"jobboard/internal/fallback"
	"jobboard/internal/gateway"
	"jobboard/internal/model"
)

type fakeSource struct {
	mu      sync.Mutex
	all     []model.Job
	one     map[string]model.Job
	err     error
	gates   map[string]chan struct{}
	queries []string
}

func (f *fakeSource) wait(key string) {
	f.mu.Lock()
	gate := f.gates[key]
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
}

func (f *fakeSource) FetchAll(ctx context.Context) ([]model.Job, error) {
	f.wait("all")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]model.Job(nil), f.all...), nil
}

func (f *fakeSource) FetchOne(ctx context.Context, id string) (model.Job, error) {
	f.wait("one:" + id)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return model.Job{}, f.err
	}
	j, ok := f.one[id]
	if !ok {
		return model.Job{}, errors.NewNotFoundError("job %s not found", id)
	}
	return j, nil
}

func (f *fakeSource) Search(ctx context.Context, query string) ([]model.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, "search="+query)
	if f.err != nil {
		return nil, f.err
	}
	return f.all[:1], nil
}

func (f *fakeSource) FetchByType(ctx context.Context, jobType string) ([]model.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, "type="+jobType)
	if f.err != nil {
		return nil, f.err
	}
	return f.all[:1], nil
}

var fetchFailure = &gateway.FetchError{Op: "fetch jobs", StatusCode: 503}

func remoteJobs() []model.Job {
	return []model.Job{
		{ID: "10", Title: "Backend Engineer", Type: "Full-time", Location: "Berlin"},
		{ID: "11", Title: "Backend Engineer", Type: "Contract", Location: "Remote"},
		{ID: "12", Title: "Designer", Type: "Full-time", Location: "Remote"},
	}
}

func TestNewStoreStartsIdle(t *testing.T) {
	s := New(Options{Source: &fakeSource{}})
	assert.Equal(t, model.StatusIdle, s.Status())
	assert.Empty(t, s.AllJobs())
	assert.Empty(t, s.LastError())
}

func TestLoadAll_ReplacesCollection(t *testing.T) {
	src := &fakeSource{all: remoteJobs()}
	s := New(Options{Source: src, Fallback: fallback.Builtin()})

	require.NoError(t, s.LoadAll(context.Background()))
	assert.Equal(t, model.StatusSucceeded, s.Status())
	assert.Len(t, s.AllJobs(), 3)

	src.all = remoteJobs()[:1]
	require.NoError(t, s.LoadAll(context.Background()))
	assert.Len(t, s.AllJobs(), 1, "a later load replaces rather than merges")
}

func TestLoadAll_FallsBackSilentlyOnFetchError(t *testing.T) {
	s := New(Options{Source: &fakeSource{err: fetchFailure}, Fallback: fallback.Builtin()})

	require.NoError(t, s.LoadAll(context.Background()))
	assert.Equal(t, model.StatusSucceeded, s.Status())
	assert.Empty(t, s.LastError())
	assert.Equal(t, fallback.Builtin().All(), s.AllJobs())
}

func TestLoadAll_SurfacePolicyFailsAndKeepsCollection(t *testing.T) {
	src := &fakeSource{all: remoteJobs()}
	s := New(Options{Source: src, Fallback: fallback.Builtin(), Policy: PolicySurface})
	require.NoError(t, s.LoadAll(context.Background()))

	src.err = fetchFailure
	err := s.LoadAll(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrFetch))
	assert.Equal(t, model.StatusFailed, s.Status())
	assert.Contains(t, s.LastError(), "503")
	assert.Len(t, s.AllJobs(), 3)

	src.err = nil
	require.NoError(t, s.LoadAll(context.Background()))
	assert.Equal(t, model.StatusSucceeded, s.Status())
	assert.Empty(t, s.LastError(), "a new load clears the previous error")
}

func TestLoadAll_NoFallbackProviderFails(t *testing.T) {
	s := New(Options{Source: &fakeSource{err: fetchFailure}})
	assert.Error(t, s.LoadAll(context.Background()))
	assert.Equal(t, model.StatusFailed, s.Status())
}

func TestLoadOne_UpsertIsInsertIfAbsent(t *testing.T) {
	src := &fakeSource{
		all: remoteJobs(),
		one: map[string]model.Job{
			"10": {ID: "10", Title: "Changed Title"},
			"99": {ID: "99", Title: "Late Addition"},
		},
	}
	s := New(Options{Source: src})
	require.NoError(t, s.LoadAll(context.Background()))

	job, err := s.LoadOne(context.Background(), "10")
	require.NoError(t, err)
	assert.Equal(t, "Backend Engineer", job.Title, "existing record is kept")
	assert.Len(t, s.AllJobs(), 3)

	job, err = s.LoadOne(context.Background(), "99")
	require.NoError(t, err)
	assert.Equal(t, "Late Addition", job.Title)
	all := s.AllJobs()
	require.Len(t, all, 4)
	assert.Equal(t, "99", all[3].ID)
	assert.Equal(t, model.StatusSucceeded, s.Status())
}

func TestLoadOne_NotFoundIsTerminal(t *testing.T) {
	s := New(Options{Source: &fakeSource{one: map[string]model.Job{}}, Fallback: fallback.Builtin()})

	_, err := s.LoadOne(context.Background(), "1")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
	assert.False(t, errors.IsFetch(err))
	assert.Equal(t, model.StatusSucceeded, s.Status())
	assert.Equal(t, "job 1 not found", s.LastError())
	assert.Empty(t, s.AllJobs(), "fallback is not consulted for a definitive not-found")
}

func TestLoadOne_FetchErrorUsesFallback(t *testing.T) {
	s := New(Options{Source: &fakeSource{err: fetchFailure}, Fallback: fallback.Builtin()})

	job, err := s.LoadOne(context.Background(), "2")
	require.NoError(t, err)
	assert.Equal(t, "Backend Engineer", job.Title)
	assert.Equal(t, model.StatusSucceeded, s.Status())
	assert.Len(t, s.AllJobs(), 1)

	_, err = s.LoadOne(context.Background(), "404")
	assert.True(t, errors.IsNotFound(err))
	assert.Equal(t, "job 404 not found", s.LastError())
}

func TestLoadOne_SurfacePolicy(t *testing.T) {
	s := New(Options{Source: &fakeSource{err: fetchFailure}, Fallback: fallback.Builtin(), Policy: PolicySurface})

	_, err := s.LoadOne(context.Background(), "2")
	assert.True(t, errors.IsFetch(err))
	assert.Equal(t, model.StatusFailed, s.Status())
	assert.Empty(t, s.AllJobs())
}

func TestLoadAll_StaleResponseIsDiscarded(t *testing.T) {
	gate := make(chan struct{})
	src := &fakeSource{all: remoteJobs(), gates: map[string]chan struct{}{"all": gate}}
	s := New(Options{Source: src})

	firstDone := make(chan error, 1)
	go func() { firstDone <- s.LoadAll(context.Background()) }()

	// Wait until the first load has taken its token.
	require.Eventually(t, func() bool { return s.Status() == model.StatusLoading }, time.Second, time.Millisecond)

	src.mu.Lock()
	src.gates = nil
	src.all = remoteJobs()[2:]
	src.mu.Unlock()
	require.NoError(t, s.LoadAll(context.Background()))

	src.mu.Lock()
	src.all = remoteJobs()
	src.mu.Unlock()
	close(gate)

	assert.True(t, errors.Is(<-firstDone, ErrSuperseded))
	all := s.AllJobs()
	require.Len(t, all, 1)
	assert.Equal(t, "12", all[0].ID)
	assert.Equal(t, model.StatusSucceeded, s.Status())
}

func TestLoadOne_DiscardedWhenListLoadStartsLater(t *testing.T) {
	gate := make(chan struct{})
	src := &fakeSource{
		all:   remoteJobs(),
		one:   map[string]model.Job{"77": {ID: "77", Title: "Old"}},
		gates: map[string]chan struct{}{"one:77": gate},
	}
	s := New(Options{Source: src})

	done := make(chan error, 1)
	go func() {
		_, err := s.LoadOne(context.Background(), "77")
		done <- err
	}()
	require.Eventually(t, func() bool { return s.Status() == model.StatusLoading }, time.Second, time.Millisecond)

	require.NoError(t, s.LoadAll(context.Background()))
	close(gate)

	assert.True(t, errors.Is(<-done, ErrSuperseded))
	assert.Len(t, s.AllJobs(), 3)
	_, ok := s.Job("77")
	assert.False(t, ok)
	assert.Equal(t, model.StatusSucceeded, s.Status())
}

func TestLoadAll_OlderListKeepsNewerInsert(t *testing.T) {
	gate := make(chan struct{})
	src := &fakeSource{
		all:   remoteJobs(),
		one:   map[string]model.Job{"99": {ID: "99", Title: "Late Addition"}},
		gates: map[string]chan struct{}{"all": gate},
	}
	s := New(Options{Source: src})

	done := make(chan error, 1)
	go func() { done <- s.LoadAll(context.Background()) }()
	require.Eventually(t, func() bool { return s.Status() == model.StatusLoading }, time.Second, time.Millisecond)

	job, err := s.LoadOne(context.Background(), "99")
	require.NoError(t, err)
	assert.Equal(t, "Late Addition", job.Title)

	close(gate)
	require.NoError(t, <-done)

	all := s.AllJobs()
	require.Len(t, all, 4)
	assert.Equal(t, "99", all[3].ID)
	_, ok := s.Job("99")
	assert.True(t, ok)
	assert.Equal(t, model.StatusSucceeded, s.Status())

	// A list load that starts after the insert replaces it as usual.
	require.NoError(t, s.LoadAll(context.Background()))
	_, ok = s.Job("99")
	assert.False(t, ok)
}

func TestLoadOne_SettlesStatusAfterPreviousLoad(t *testing.T) {
	gate := make(chan struct{})
	src := &fakeSource{
		all:   remoteJobs(),
		one:   map[string]model.Job{"10": {ID: "10"}},
		gates: map[string]chan struct{}{"one:10": gate},
	}
	s := New(Options{Source: src})
	require.NoError(t, s.LoadAll(context.Background()))

	done := make(chan error, 1)
	go func() {
		_, err := s.LoadOne(context.Background(), "10")
		done <- err
	}()
	require.Eventually(t, func() bool { return s.Status() == model.StatusLoading }, time.Second, time.Millisecond)
	close(gate)
	require.NoError(t, <-done)
	assert.Equal(t, model.StatusSucceeded, s.Status())
}

func TestFilters(t *testing.T) {
	s := New(Options{Source: &fakeSource{all: remoteJobs()}})
	require.NoError(t, s.LoadAll(context.Background()))

	s.SetFilter(model.FilterPatch{Search: model.StringPtr("engineer")})
	got := s.SetFilter(model.FilterPatch{Type: model.StringPtr("full-time")})
	assert.Equal(t, model.FilterCriteria{Search: "engineer", Type: "full-time"}, got)
	assert.Equal(t, got, s.Filters())

	filtered := s.FilteredJobs()
	require.Len(t, filtered, 1)
	assert.Equal(t, "10", filtered[0].ID)

	s.ClearFilter()
	assert.True(t, s.Filters().IsEmpty())
	assert.Len(t, s.FilteredJobs(), 3)
}

func TestRemoteQueriesDoNotTouchCollection(t *testing.T) {
	src := &fakeSource{all: remoteJobs()}
	s := New(Options{Source: src, Fallback: fallback.Builtin()})

	jobs, err := s.SearchRemote(context.Background(), "engineer")
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
	assert.Empty(t, s.AllJobs())
	assert.Equal(t, model.StatusIdle, s.Status())

	src.err = fetchFailure
	jobs, err = s.SearchRemote(context.Background(), "techcorp")
	require.NoError(t, err)
	require.Len(t, jobs, 1, "fallback search also matches company")
	assert.Equal(t, "Frontend Developer", jobs[0].Title)

	jobs, err = s.ByTypeRemote(context.Background(), "part-time")
	require.NoError(t, err)
	assert.Len(t, jobs, 2)

	surfaced := New(Options{Source: src, Fallback: fallback.Builtin(), Policy: PolicySurface})
	_, err = surfaced.SearchRemote(context.Background(), "x")
	assert.True(t, errors.IsFetch(err))
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyFallback, p)

	p, err = ParsePolicy(" Surface ")
	require.NoError(t, err)
	assert.Equal(t, PolicySurface, p)

	_, err = ParsePolicy("retry")
	assert.Error(t, err)
}
