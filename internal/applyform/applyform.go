// Package applyform validates applicant input before it reaches the
// submission coordinator.
package applyform

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"

	"jobboard/internal/errors"
	"jobboard/internal/model"
)

// MaxResumeBytes is the largest resume accepted.
const MaxResumeBytes = 5 << 20

// Input is the raw form as typed by the user.
type Input struct {
	Name        string `json:"name" validate:"required,min=2"`
	Email       string `json:"email" validate:"required,email"`
	CoverLetter string `json:"coverLetter" validate:"max=10000"`
	ResumePath  string `json:"resume" validate:"required"`
}

// acceptedResumeTypes maps an extension to the detected types allowed for
// it. A detected type is accepted if it or any of its parents is listed.
var acceptedResumeTypes = map[string][]string{
	".pdf":  {"application/pdf"},
	".doc":  {"application/msword", "application/x-ole-storage"},
	".docx": {"application/vnd.openxmlformats-officedocument.wordprocessingml.document", "application/zip"},
}

// ValidationError lists every rejected field with a user-facing message.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid application: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == errors.ErrValidation }

type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return &Validator{v: v}
}

// Validate checks in and inspects the resume file. It returns every field
// problem at once as a *ValidationError.
func (val *Validator) Validate(in Input) (model.Applicant, error) {
	in = Input{
		Name:        strings.TrimSpace(in.Name),
		Email:       strings.TrimSpace(in.Email),
		CoverLetter: strings.TrimSpace(in.CoverLetter),
		ResumePath:  strings.TrimSpace(in.ResumePath),
	}

	fields := map[string]string{}
	if err := val.v.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return model.Applicant{}, errors.Wrap(err, "validate application")
		}
		for _, fe := range verrs {
			fields[fe.Field()] = messageFor(fe)
		}
	}

	var resume model.Resume
	if _, bad := fields["resume"]; !bad {
		r, msg := inspectResume(in.ResumePath)
		if msg != "" {
			fields["resume"] = msg
		}
		resume = r
	}

	if len(fields) > 0 {
		return model.Applicant{}, &ValidationError{Fields: fields}
	}
	return model.Applicant{
		Name:        in.Name,
		Email:       in.Email,
		CoverLetter: in.CoverLetter,
		Resume:      resume,
	}, nil
}

func messageFor(fe validator.FieldError) string {
	label := map[string]string{
		"name":        "Name",
		"email":       "Email",
		"coverLetter": "Cover letter",
		"resume":      "Resume",
	}[fe.Field()]
	if label == "" {
		label = fe.Field()
	}
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
	case "email":
		return "Please enter a valid email address"
	default:
		return label + " is invalid"
	}
}

func inspectResume(path string) (model.Resume, string) {
	ext := strings.ToLower(filepath.Ext(path))
	accepted, ok := acceptedResumeTypes[ext]
	if !ok {
		return model.Resume{}, "Resume must be a PDF, DOC or DOCX file"
	}
	info, err := os.Stat(path)
	if err != nil {
		return model.Resume{}, "Resume file cannot be read"
	}
	if info.IsDir() {
		return model.Resume{}, "Resume must be a file"
	}
	if info.Size() == 0 {
		return model.Resume{}, "Resume file is empty"
	}
	if info.Size() > MaxResumeBytes {
		return model.Resume{}, "Resume must be 5 MB or smaller"
	}
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return model.Resume{}, "Resume file cannot be read"
	}
	if !matchesAny(mtype, accepted) {
		return model.Resume{}, fmt.Sprintf("Resume content (%s) does not match its %s extension", mtype.String(), ext)
	}
	return model.Resume{
		Path:        path,
		FileName:    filepath.Base(path),
		Size:        info.Size(),
		ContentType: mtype.String(),
	}, ""
}

func matchesAny(mtype *mimetype.MIME, accepted []string) bool {
	for m := mtype; m != nil; m = m.Parent() {
		for _, want := range accepted {
			if m.Is(want) {
				return true
			}
		}
	}
	return false
}
