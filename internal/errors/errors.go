// Package errors provides error handling for jobboard.
//
// It re-exports github.com/cockroachdb/errors so every package wraps and
// inspects errors the same way, and defines the sentinel kinds the board
// distinguishes between:
//
//	ErrFetch      transport failure, timeout or non-2xx from the job source
//	ErrNotFound   the source answered, but the record does not exist
//	ErrStorage    durable local store read or write failure
//	ErrValidation applicant input rejected before submission
//	ErrSubmission the external submission collaborator failed
//
// Wrap with context and check with Is:
//
//	if errors.Is(err, errors.ErrNotFound) {
//	    // render a not-found state, not a retry prompt
//	}
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
	Mark         = crdb.Mark
)

// User-facing messages and details
var (
	WithHint     = crdb.WithHint
	WithHintf    = crdb.WithHintf
	WithDetail   = crdb.WithDetail
	WithDetailf  = crdb.WithDetailf
	GetAllHints  = crdb.GetAllHints
	FlattenHints = crdb.FlattenHints
)

// Error inspection
var (
	Is        = crdb.Is
	IsAny     = crdb.IsAny
	As        = crdb.As
	Unwrap    = crdb.Unwrap
	UnwrapAll = crdb.UnwrapAll
)

var (
	// ErrFetch indicates the remote job source could not produce a result.
	ErrFetch = New("job source unavailable")

	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = New("not found")

	// ErrStorage indicates the durable local store failed.
	ErrStorage = New("storage failure")

	// ErrValidation indicates applicant input was rejected.
	ErrValidation = New("validation failed")

	// ErrSubmission indicates the submission collaborator failed.
	ErrSubmission = New("submission failed")
)

// IsNotFound reports whether err is or wraps ErrNotFound.
func IsNotFound(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}

// IsFetch reports whether err is or wraps ErrFetch.
func IsFetch(err error) bool {
	return err != nil && Is(err, ErrFetch)
}

// NewNotFoundError creates a not-found error with a formatted message.
func NewNotFoundError(format string, args ...interface{}) error {
	return Mark(Newf(format, args...), ErrNotFound)
}

// WrapStorage marks err as a storage failure, keeping its message.
func WrapStorage(err error, context string) error {
	if err == nil {
		return nil
	}
	return Mark(Wrap(err, context), ErrStorage)
}
