// Package catalog owns the in-memory job collection, the active filter and
// the request lifecycle of the loads that feed it.
package catalog

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"jobboard/internal/errors"
	"jobboard/internal/fallback"
	"jobboard/internal/filter"
	"jobboard/internal/gateway"
	"jobboard/internal/logger"
	"jobboard/internal/model"
)

// Policy decides what a load does when the job source fails.
type Policy string

const (
	// PolicyFallback serves the built-in dataset and reports success.
	PolicyFallback Policy = "fallback"
	// PolicySurface reports the failure and keeps the current collection.
	PolicySurface Policy = "surface"
)

// ParsePolicy maps a config string to a Policy; empty means PolicyFallback.
func ParsePolicy(raw string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(raw))) {
	case "", PolicyFallback:
		return PolicyFallback, nil
	case PolicySurface:
		return PolicySurface, nil
	default:
		return PolicyFallback, errors.Newf("invalid fallback policy %q (expected fallback or surface)", raw)
	}
}

// ErrSuperseded is returned by a load whose result arrived after a newer
// load made it obsolete. The store is left untouched.
var ErrSuperseded = errors.New("superseded by a newer request")

type Options struct {
	Source gateway.Source
	// Fallback may be nil, in which case every source failure is surfaced.
	Fallback fallback.Provider
	Policy   Policy
	Logger   *zap.SugaredLogger
}

type Store struct {
	source   gateway.Source
	fallback fallback.Provider
	policy   Policy
	log      *zap.SugaredLogger

	mu       sync.Mutex
	jobs     []model.Job
	index    map[string]int
	criteria model.FilterCriteria
	status   model.Status
	lastErr  string

	// seq is the token of the most recently started load; latestAll is the
	// token of the most recently started LoadAll.
	seq       uint64
	latestAll uint64
	// inserted holds records LoadOne added to the collection, keyed by the
	// inserting load's token, so an older LoadAll landing later keeps them.
	inserted []insertedJob
}

type insertedJob struct {
	token uint64
	job   model.Job
}

func New(opts Options) *Store {
	policy := opts.Policy
	if policy == "" {
		policy = PolicyFallback
	}
	return &Store{
		source:   opts.Source,
		fallback: opts.Fallback,
		policy:   policy,
		log:      logger.OrNop(opts.Logger),
		index:    map[string]int{},
		status:   model.StatusIdle,
	}
}

// LoadAll replaces the collection with the source's list, or with the
// fallback dataset when the source fails and the policy allows it.
func (s *Store) LoadAll(ctx context.Context) error {
	token := s.begin(true)

	jobs, err := s.source.FetchAll(ctx)
	status := model.StatusSucceeded
	lastErr := ""
	var result error
	if err != nil {
		if fb, ok := s.fallbackFor(); ok {
			s.log.Warnw("job source unavailable, serving built-in postings", "error", err)
			jobs = fb.All()
		} else {
			jobs = nil
			status = model.StatusFailed
			lastErr = err.Error()
			result = err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.latestAll {
		s.log.Debugw("discarding stale job list", "token", token, "latest", s.latestAll)
		return ErrSuperseded
	}
	if jobs != nil {
		s.replaceLocked(jobs)
		s.reinsertNewerLocked(token)
	}
	s.finishLocked(token, status, lastErr)
	return result
}

// LoadOne makes sure id is in the collection and returns its record. An
// existing record is never overwritten by the fetched one.
func (s *Store) LoadOne(ctx context.Context, id string) (model.Job, error) {
	id = strings.TrimSpace(id)
	token := s.begin(false)

	job, err := s.source.FetchOne(ctx, id)
	found := err == nil
	status := model.StatusSucceeded
	lastErr := ""
	var result error
	switch {
	case err == nil:
	case errors.IsNotFound(err):
		lastErr = notFoundMessage(id)
		result = errors.NewNotFoundError("%s", lastErr)
	default:
		if fb, ok := s.fallbackFor(); ok {
			s.log.Warnw("job source unavailable, looking up built-in postings", "id", id, "error", err)
			job, found = fb.ByID(id)
			if !found {
				lastErr = notFoundMessage(id)
				result = errors.NewNotFoundError("%s", lastErr)
			}
		} else {
			status = model.StatusFailed
			lastErr = err.Error()
			result = err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latestAll > token {
		s.log.Debugw("discarding job fetched before a newer list load", "id", id)
		return model.Job{}, ErrSuperseded
	}
	if found {
		var added bool
		job, added = s.upsertLocked(job)
		if added {
			s.inserted = append(s.inserted, insertedJob{token: token, job: job})
		}
	}
	s.finishLocked(token, status, lastErr)
	return job, result
}

// SearchRemote asks the source for matches without touching the collection.
func (s *Store) SearchRemote(ctx context.Context, query string) ([]model.Job, error) {
	jobs, err := s.source.Search(ctx, query)
	if err == nil {
		return jobs, nil
	}
	if fb, ok := s.fallbackFor(); ok {
		s.log.Warnw("remote search unavailable, searching built-in postings", "query", query, "error", err)
		return fb.Matching(filter.SearchAny(query)), nil
	}
	return nil, err
}

// ByTypeRemote asks the source for one job type without touching the
// collection.
func (s *Store) ByTypeRemote(ctx context.Context, jobType string) ([]model.Job, error) {
	jobs, err := s.source.FetchByType(ctx, jobType)
	if err == nil {
		return jobs, nil
	}
	if fb, ok := s.fallbackFor(); ok {
		s.log.Warnw("remote type filter unavailable, filtering built-in postings", "type", jobType, "error", err)
		return fb.Matching(filter.TypeIs(jobType)), nil
	}
	return nil, err
}

func (s *Store) SetFilter(patch model.FilterPatch) model.FilterCriteria {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.criteria = patch.Apply(s.criteria)
	return s.criteria
}

func (s *Store) ClearFilter() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.criteria = model.FilterCriteria{}
}

func (s *Store) AllJobs() []model.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneJobs(s.jobs)
}

func (s *Store) FilteredJobs() []model.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filter.Visible(s.jobs, s.criteria)
}

// Job returns the record for id if it is in the collection.
func (s *Store) Job(id string) (model.Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[strings.TrimSpace(id)]
	if !ok {
		return model.Job{}, false
	}
	return s.jobs[i], true
}

func (s *Store) Status() model.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Store) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Store) Filters() model.FilterCriteria {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.criteria
}

func (s *Store) begin(all bool) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	if all {
		s.latestAll = s.seq
	}
	s.transitionLocked(model.StatusLoading)
	s.lastErr = ""
	return s.seq
}

// finishLocked settles status only for the most recently started load; an
// older load that still applied its data leaves status to the newer one.
func (s *Store) finishLocked(token uint64, status model.Status, lastErr string) {
	if token != s.seq {
		return
	}
	s.transitionLocked(status)
	s.lastErr = lastErr
}

func (s *Store) transitionLocked(next model.Status) {
	if err := model.TransitionStatus(&s.status, next); err != nil {
		s.log.Errorw("collection status out of sequence", "error", err)
		s.status = next
	}
}

func (s *Store) replaceLocked(jobs []model.Job) {
	jobs = model.DedupeByID(jobs)
	s.jobs = cloneJobs(jobs)
	s.index = make(map[string]int, len(jobs))
	for i, j := range s.jobs {
		s.index[j.ID] = i
	}
}

// upsertLocked inserts job unless its id is present and reports whether it
// was added. The returned record is the one held by the collection.
func (s *Store) upsertLocked(job model.Job) (model.Job, bool) {
	if i, ok := s.index[job.ID]; ok {
		return s.jobs[i], false
	}
	s.index[job.ID] = len(s.jobs)
	s.jobs = append(s.jobs, job)
	return job, true
}

// reinsertNewerLocked restores records inserted by LoadOne calls that
// started after the list load with the given token. Older inserts are
// superseded by the list and are forgotten.
func (s *Store) reinsertNewerLocked(token uint64) {
	kept := s.inserted[:0]
	for _, in := range s.inserted {
		if in.token <= token {
			continue
		}
		s.upsertLocked(in.job)
		kept = append(kept, in)
	}
	s.inserted = kept
}

func (s *Store) fallbackFor() (fallback.Provider, bool) {
	if s.policy != PolicyFallback || s.fallback == nil {
		return nil, false
	}
	return s.fallback, true
}

func notFoundMessage(id string) string {
	return "job " + id + " not found"
}

func cloneJobs(in []model.Job) []model.Job {
	out := make([]model.Job, len(in))
	copy(out, in)
	return out
}
