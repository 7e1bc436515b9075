package model

import "strings"

// Job types offered by the filter form. The set is open-ended; records may
// carry any category string.
const (
	JobTypeFullTime   = "Full-time"
	JobTypePartTime   = "Part-time"
	JobTypeContract   = "Contract"
	JobTypeInternship = "Internship"
)

// KnownJobTypes lists the types offered by the filter form, in display order.
var KnownJobTypes = []string{JobTypeFullTime, JobTypePartTime, JobTypeContract, JobTypeInternship}

// FilterCriteria narrows the visible collection. An empty field means no
// constraint for that field.
type FilterCriteria struct {
	Search   string `json:"search"`
	Location string `json:"location"`
	Type     string `json:"type"`
	Company  string `json:"company"`
}

// FilterPatch is a partial update of FilterCriteria; nil fields are left
// unchanged.
type FilterPatch struct {
	Search   *string
	Location *string
	Type     *string
	Company  *string
}

// Apply merges p into c and returns the result with whitespace trimmed.
func (p FilterPatch) Apply(c FilterCriteria) FilterCriteria {
	if p.Search != nil {
		c.Search = *p.Search
	}
	if p.Location != nil {
		c.Location = *p.Location
	}
	if p.Type != nil {
		c.Type = *p.Type
	}
	if p.Company != nil {
		c.Company = *p.Company
	}
	return c.Normalize()
}

// Normalize trims surrounding whitespace from every field.
func (c FilterCriteria) Normalize() FilterCriteria {
	return FilterCriteria{
		Search:   strings.TrimSpace(c.Search),
		Location: strings.TrimSpace(c.Location),
		Type:     strings.TrimSpace(c.Type),
		Company:  strings.TrimSpace(c.Company),
	}
}

// IsEmpty reports whether no field constrains the collection.
func (c FilterCriteria) IsEmpty() bool {
	return c.Normalize() == FilterCriteria{}
}

// StringPtr is a convenience for building FilterPatch values.
func StringPtr(s string) *string {
	v := s
	return &v
}
