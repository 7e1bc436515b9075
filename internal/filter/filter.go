// Package filter computes the visible subset of a job collection.
//
// Everything here is pure: no state, no I/O, same inputs give the same
// output, and input order is preserved.
package filter

import (
	"strings"

	"jobboard/internal/model"
)

// Visible returns the jobs matching every non-empty field of c, in input
// order. The result never aliases jobs.
func Visible(jobs []model.Job, c model.FilterCriteria) []model.Job {
	c = c.Normalize()
	out := make([]model.Job, 0, len(jobs))
	for _, j := range jobs {
		if matches(j, c) {
			out = append(out, j)
		}
	}
	return out
}

// Matches reports whether j satisfies every non-empty field of c.
func Matches(j model.Job, c model.FilterCriteria) bool {
	return matches(j, c.Normalize())
}

func matches(j model.Job, c model.FilterCriteria) bool {
	if c.Search != "" && !containsFold(j.Title, c.Search) && !containsFold(j.Description, c.Search) {
		return false
	}
	if c.Location != "" && !containsFold(j.Location, c.Location) {
		return false
	}
	if c.Type != "" && !strings.EqualFold(strings.TrimSpace(j.Type), c.Type) {
		return false
	}
	if c.Company != "" && !containsFold(j.Company, c.Company) {
		return false
	}
	return true
}

// SearchAny is the broader predicate used when a remote search falls back to
// local data: the query may appear in title, company, or description.
func SearchAny(query string) func(model.Job) bool {
	q := strings.TrimSpace(query)
	return func(j model.Job) bool {
		if q == "" {
			return true
		}
		return containsFold(j.Title, q) || containsFold(j.Company, q) || containsFold(j.Description, q)
	}
}

// TypeIs matches jobs whose type equals t, ignoring case.
func TypeIs(t string) func(model.Job) bool {
	want := strings.TrimSpace(t)
	return func(j model.Job) bool {
		if want == "" {
			return true
		}
		return strings.EqualFold(strings.TrimSpace(j.Type), want)
	}
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// IsEmpty reports whether c leaves the collection unconstrained.
func IsEmpty(c model.FilterCriteria) bool {
	return c.IsEmpty()
}
