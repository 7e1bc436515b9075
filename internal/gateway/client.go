// Package gateway talks to the remote job listing source.
//
// Every failure is reported as *FetchError, except a well-formed "no such
// record" answer, which is errors.ErrNotFound. There are no retries here.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"jobboard/internal/errors"
	"jobboard/internal/logger"
	"jobboard/internal/model"
)

const (
	DefaultBaseURL = "https://6857e2b721f5d3463e5676b9.mockapi.io/api/v1"
	DefaultTimeout = 10 * time.Second

	maxBodyBytes = 8 << 20
	limiterBurst = 5
)

// Source is the read side the catalog depends on.
type Source interface {
	FetchAll(ctx context.Context) ([]model.Job, error)
	FetchOne(ctx context.Context, id string) (model.Job, error)
	Search(ctx context.Context, query string) ([]model.Job, error)
	FetchByType(ctx context.Context, jobType string) ([]model.Job, error)
}

type Options struct {
	BaseURL string
	Timeout time.Duration
	// RequestsPerMinute caps outbound requests; zero disables the limit.
	RequestsPerMinute int
	HTTPClient        *http.Client
	Logger            *zap.SugaredLogger
}

type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	limiter *rate.Limiter
	group   singleflight.Group
	log     *zap.SugaredLogger
}

func New(opts Options) *Client {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}
	var limiter *rate.Limiter
	if opts.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(opts.RequestsPerMinute)/60.0), limiterBurst)
	}
	return &Client{
		baseURL: base,
		http:    hc,
		timeout: timeout,
		limiter: limiter,
		log:     logger.OrNop(opts.Logger),
	}
}

func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) FetchAll(ctx context.Context) ([]model.Job, error) {
	return c.fetchList(ctx, "fetch jobs", c.baseURL+"/jobs", false)
}

// FetchOne shares one request between concurrent callers asking for the
// same id. The shared request is detached from any single caller's context
// and bounded by the client timeout; each caller stops waiting when its own
// context ends.
func (c *Client) FetchOne(ctx context.Context, id string) (model.Job, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return model.Job{}, errors.NewNotFoundError("job id is empty")
	}
	ch := c.group.DoChan(id, func() (interface{}, error) {
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()
		return c.fetchOne(shared, id)
	})
	select {
	case <-ctx.Done():
		return model.Job{}, newFetchError("fetch job "+id, c.baseURL, ctx.Err())
	case res := <-ch:
		if res.Shared {
			c.log.Debugw("shared in-flight job request", "id", id)
		}
		if res.Err != nil {
			return model.Job{}, res.Err
		}
		return cloneJob(res.Val.(model.Job)), nil
	}
}

// Search asks the source for jobs matching query. The source answers 404
// when nothing matches, which is reported as an empty result.
func (c *Client) Search(ctx context.Context, query string) ([]model.Job, error) {
	u := c.baseURL + "/jobs?" + url.Values{"search": {strings.TrimSpace(query)}}.Encode()
	return c.fetchList(ctx, "search jobs", u, true)
}

// FetchByType asks the source for jobs of one type. Same 404 handling as
// Search.
func (c *Client) FetchByType(ctx context.Context, jobType string) ([]model.Job, error) {
	u := c.baseURL + "/jobs?" + url.Values{"type": {strings.TrimSpace(jobType)}}.Encode()
	return c.fetchList(ctx, "fetch jobs by type", u, true)
}

func (c *Client) fetchOne(ctx context.Context, id string) (model.Job, error) {
	op := "fetch job " + id
	body, status, err := c.get(ctx, op, c.baseURL+"/jobs/"+url.PathEscape(id))
	if err != nil {
		return model.Job{}, err
	}
	if status == http.StatusNotFound {
		return model.Job{}, errors.NewNotFoundError("job %s not found", id)
	}
	if status < 200 || status > 299 {
		return model.Job{}, &FetchError{Op: op, URL: c.baseURL, StatusCode: status}
	}
	if isNullBody(body) {
		return model.Job{}, errors.NewNotFoundError("job %s not found", id)
	}
	var job model.Job
	if err := json.Unmarshal(body, &job); err != nil {
		return model.Job{}, newFetchError(op, c.baseURL, errors.Wrap(err, "decode job"))
	}
	if job.ID == "" {
		job.ID = id
	}
	return job, nil
}

func (c *Client) fetchList(ctx context.Context, op, u string, notFoundIsEmpty bool) ([]model.Job, error) {
	body, status, err := c.get(ctx, op, u)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound && notFoundIsEmpty {
		return []model.Job{}, nil
	}
	if status < 200 || status > 299 {
		return nil, &FetchError{Op: op, URL: u, StatusCode: status}
	}
	if isNullBody(body) {
		return []model.Job{}, nil
	}
	var jobs []model.Job
	if err := json.Unmarshal(body, &jobs); err != nil {
		return nil, newFetchError(op, u, errors.Wrap(err, "decode jobs"))
	}
	deduped := model.DedupeByID(jobs)
	if dropped := len(jobs) - len(deduped); dropped > 0 {
		c.log.Warnw("dropped jobs with duplicate or missing ids", "op", op, "dropped", dropped)
	}
	return deduped, nil
}

func (c *Client) get(ctx context.Context, op, u string) ([]byte, int, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, 0, newFetchError(op, u, errors.Wrap(err, "rate limit wait"))
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, 0, newFetchError(op, u, err)
	}
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debugw("job source request failed", "op", op, "error", err)
		return nil, 0, newFetchError(op, u, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, resp.StatusCode, newFetchError(op, u, errors.Wrap(err, "read body"))
	}
	c.log.Debugw("job source request", "op", op, "status", resp.StatusCode, "elapsed", time.Since(started))
	return body, resp.StatusCode, nil
}

func isNullBody(body []byte) bool {
	b := bytes.TrimSpace(body)
	return len(b) == 0 || bytes.Equal(b, []byte("null"))
}

func cloneJob(j model.Job) model.Job {
	if j.Requirements != nil {
		j.Requirements = append([]string(nil), j.Requirements...)
	}
	return j
}
