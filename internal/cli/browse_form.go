package cli

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"

	"jobboard/internal/applyform"
	"jobboard/internal/model"
)

type browseFormKind int

const (
	browseFormFilter browseFormKind = iota
	browseFormApply
)

type browseFieldKind int

const (
	browseFieldString browseFieldKind = iota
	browseFieldSelect
)

// typeAll is the filter form's label for "no type constraint".
const typeAll = "All"

type browseFormField struct {
	Key     string
	Label   string
	Help    string
	Kind    browseFieldKind
	Value   string
	Options []string
}

type browseForm struct {
	Kind   browseFormKind
	Title  string
	JobID  string
	Fields []browseFormField
	Index  int
	Input  textinput.Model
	Error  string
	Saving bool
}

func newFilterForm(c model.FilterCriteria, width int) *browseForm {
	typeOptions := append([]string{typeAll}, model.KnownJobTypes...)
	f := &browseForm{
		Kind:  browseFormFilter,
		Title: "Filter Jobs",
		Fields: []browseFormField{
			{Key: "search", Label: "Search", Help: "Matches title or description", Value: c.Search},
			{Key: "location", Label: "Location", Help: "Part of the location, e.g. Remote", Value: c.Location},
			{Key: "company", Label: "Company", Help: "Part of the company name", Value: c.Company},
			{Key: "type", Label: "Job Type", Help: "left/right or space to change", Kind: browseFieldSelect, Value: typeOption(c.Type, typeOptions), Options: typeOptions},
		},
	}
	f.initInput(width)
	return f
}

func newApplyForm(job model.Job, width int) *browseForm {
	f := &browseForm{
		Kind:  browseFormApply,
		Title: "Apply: " + job.Title + " at " + job.Company,
		JobID: job.ID,
		Fields: []browseFormField{
			{Key: "name", Label: "Full Name", Help: "At least 2 characters"},
			{Key: "email", Label: "Email", Help: "Where the employer can reach you"},
			{Key: "cover_letter", Label: "Cover Letter", Help: "Optional"},
			{Key: "resume", Label: "Resume Path", Help: "PDF, DOC or DOCX, 5 MB max"},
		},
	}
	f.initInput(width)
	return f
}

// typeOption maps a criteria type onto the select's option list. Types
// outside the list still show, so an unusual filter set by flags survives.
func typeOption(raw string, options []string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return typeAll
	}
	for _, opt := range options {
		if strings.EqualFold(opt, raw) {
			return opt
		}
	}
	return raw
}

func (f *browseForm) initInput(width int) {
	input := textinput.New()
	input.Prompt = "> "
	input.CharLimit = 1024
	input.Width = max(20, min(width-8, 120))
	f.Input = input
	f.loadFieldIntoInput()
	f.Input.Focus()
}

func (f *browseForm) resize(width int) {
	if f == nil {
		return
	}
	f.Input.Width = max(20, min(width-8, 120))
}

func (f *browseForm) currentField() browseFormField {
	if len(f.Fields) == 0 {
		return browseFormField{}
	}
	if f.Index < 0 {
		f.Index = 0
	}
	if f.Index >= len(f.Fields) {
		f.Index = len(f.Fields) - 1
	}
	return f.Fields[f.Index]
}

func (f *browseForm) commitInput() {
	if f == nil || len(f.Fields) == 0 {
		return
	}
	if f.Fields[f.Index].Kind == browseFieldSelect {
		return
	}
	f.Fields[f.Index].Value = strings.TrimSpace(f.Input.Value())
}

func (f *browseForm) loadFieldIntoInput() {
	if f == nil || len(f.Fields) == 0 {
		return
	}
	f.Input.SetValue(f.Fields[f.Index].Value)
	f.Input.CursorEnd()
}

func (f *browseForm) nextSelectOption() { f.stepSelectOption(1) }
func (f *browseForm) prevSelectOption() { f.stepSelectOption(-1) }

func (f *browseForm) stepSelectOption(delta int) {
	if f == nil || len(f.Fields) == 0 {
		return
	}
	curr := f.Fields[f.Index]
	if curr.Kind != browseFieldSelect || len(curr.Options) == 0 {
		return
	}
	pos := 0
	for i, opt := range curr.Options {
		if strings.EqualFold(opt, strings.TrimSpace(curr.Value)) {
			pos = i
			break
		}
	}
	n := len(curr.Options)
	curr.Value = curr.Options[(pos+delta+n)%n]
	f.Fields[f.Index] = curr
	f.loadFieldIntoInput()
}

func (f *browseForm) value(key string) string {
	for _, field := range f.Fields {
		if field.Key == key {
			return strings.TrimSpace(field.Value)
		}
	}
	return ""
}

// toPatch replaces every criterion; "All" clears the type.
func (f *browseForm) toPatch() model.FilterPatch {
	jobType := f.value("type")
	if strings.EqualFold(jobType, typeAll) {
		jobType = ""
	}
	return model.FilterPatch{
		Search:   model.StringPtr(f.value("search")),
		Location: model.StringPtr(f.value("location")),
		Company:  model.StringPtr(f.value("company")),
		Type:     model.StringPtr(jobType),
	}
}

func (f *browseForm) toApplyInput() applyform.Input {
	return applyform.Input{
		Name:        f.value("name"),
		Email:       f.value("email"),
		CoverLetter: f.value("cover_letter"),
		ResumePath:  f.value("resume"),
	}
}
