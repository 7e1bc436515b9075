package model

// Resume describes the file attached to an application. The file itself
// stays on disk; only its metadata travels with the application.
type Resume struct {
	Path        string `json:"-"`
	FileName    string `json:"fileName"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType"`
}

// Applicant is validated applicant input, ready for submission.
type Applicant struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	CoverLetter string `json:"coverLetter,omitempty"`
	Resume      Resume `json:"resume"`
}
