// Package fallback serves the built-in job postings used when the remote
// source cannot answer.
package fallback

import (
	_ "embed"
	"encoding/json"
	"strings"

	"jobboard/internal/model"
)

//go:embed jobs.json
var jobsJSON []byte

var builtin = mustDecode(jobsJSON)

func mustDecode(data []byte) []model.Job {
	var jobs []model.Job
	if err := json.Unmarshal(data, &jobs); err != nil {
		panic("fallback: decode embedded jobs: " + err.Error())
	}
	if len(jobs) == 0 {
		panic("fallback: embedded dataset is empty")
	}
	return model.DedupeByID(jobs)
}

// Provider is what the catalog needs from a fallback source.
type Provider interface {
	All() []model.Job
	ByID(id string) (model.Job, bool)
	Matching(pred func(model.Job) bool) []model.Job
}

// Dataset is a fixed, read-only set of postings.
type Dataset struct {
	jobs []model.Job
}

// Builtin returns the embedded dataset.
func Builtin() Dataset {
	return Dataset{jobs: builtin}
}

// New wraps jobs as a Dataset. Used by tests that need a smaller fixture.
func New(jobs []model.Job) Dataset {
	return Dataset{jobs: cloneJobs(model.DedupeByID(jobs))}
}

func (d Dataset) All() []model.Job {
	return cloneJobs(d.jobs)
}

func (d Dataset) ByID(id string) (model.Job, bool) {
	id = strings.TrimSpace(id)
	for _, j := range d.jobs {
		if j.ID == id {
			return cloneJob(j), true
		}
	}
	return model.Job{}, false
}

func (d Dataset) Matching(pred func(model.Job) bool) []model.Job {
	out := make([]model.Job, 0, len(d.jobs))
	for _, j := range d.jobs {
		if pred == nil || pred(j) {
			out = append(out, cloneJob(j))
		}
	}
	return out
}

func cloneJobs(in []model.Job) []model.Job {
	out := make([]model.Job, len(in))
	for i, j := range in {
		out[i] = cloneJob(j)
	}
	return out
}

func cloneJob(j model.Job) model.Job {
	if j.Requirements != nil {
		j.Requirements = append([]string(nil), j.Requirements...)
	}
	return j
}
