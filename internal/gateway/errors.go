package gateway

import (
	"context"
	"fmt"
	"net"

	"jobboard/internal/errors"
)

// FetchError is the only failure the gateway reports besides ErrNotFound.
// It matches errors.ErrFetch.
type FetchError struct {
	Op         string
	URL        string
	StatusCode int
	Timeout    bool
	Err        error
}

func (e *FetchError) Error() string {
	switch {
	case e.Timeout:
		return fmt.Sprintf("%s: timed out", e.Op)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return e.Op + ": failed"
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool { return target == errors.ErrFetch }

func newFetchError(op, url string, err error) *FetchError {
	return &FetchError{Op: op, URL: url, Err: err, Timeout: isTimeout(err)}
}

func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
