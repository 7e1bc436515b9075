package model

import "fmt"

// Status is the request lifecycle of the job collection.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusLoading   Status = "loading"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

var allowedTransitions = map[Status]map[Status]bool{
	StatusIdle: {
		StatusLoading: true,
	},
	StatusLoading: {
		StatusLoading:   true, // a newer request superseded the running one
		StatusSucceeded: true,
		StatusFailed:    true,
	},
	StatusSucceeded: {
		StatusLoading: true,
	},
	StatusFailed: {
		StatusLoading: true,
	},
}

func IsKnownStatus(status Status) bool {
	_, ok := allowedTransitions[status]
	return ok
}

func CanTransition(from, to Status) bool {
	next, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	return next[to]
}

// TransitionStatus moves *current to next, rejecting transitions the
// lifecycle does not allow.
func TransitionStatus(current *Status, next Status) error {
	from := *current
	if !CanTransition(from, next) {
		return fmt.Errorf("invalid collection status transition: %q -> %q", from, next)
	}
	*current = next
	return nil
}
