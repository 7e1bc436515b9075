package model

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Job is a single posting as returned by the job source. It is treated as
// immutable once fetched.
type Job struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Company      string   `json:"company"`
	Location     string   `json:"location"`
	Type         string   `json:"type"`
	Description  string   `json:"description"`
	Salary       string   `json:"salary,omitempty"`
	Requirements []string `json:"requirements,omitempty"`
	PostedDate   string   `json:"postedDate"`
}

// JobView is a Job paired with the applied flag derived from the ledger.
type JobView struct {
	Job
	Applied bool `json:"applied"`
}

// UnmarshalJSON accepts ids encoded as JSON strings or numbers.
func (j *Job) UnmarshalJSON(data []byte) error {
	type alias Job
	aux := struct {
		ID json.RawMessage `json:"id"`
		*alias
	}{alias: (*alias)(j)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	id, err := decodeID(aux.ID)
	if err != nil {
		return err
	}
	j.ID = id
	return nil
}

// UnmarshalJSON decodes the embedded Job and the applied flag. Without it
// the promoted Job.UnmarshalJSON would swallow the whole object.
func (v *JobView) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &v.Job); err != nil {
		return err
	}
	var flag struct {
		Applied bool `json:"applied"`
	}
	if err := json.Unmarshal(data, &flag); err != nil {
		return err
	}
	v.Applied = flag.Applied
	return nil
}

func decodeID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return strings.TrimSpace(s), nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}

// DedupeByID keeps the first occurrence of every id and drops records
// without one, preserving order.
func DedupeByID(jobs []Job) []Job {
	out := make([]Job, 0, len(jobs))
	seen := make(map[string]bool, len(jobs))
	for _, j := range jobs {
		id := strings.TrimSpace(j.ID)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, j)
	}
	return out
}
