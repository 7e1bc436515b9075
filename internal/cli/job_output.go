package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"jobboard/internal/model"
)

func writeJobTable(w io.Writer, views []model.JobView) error {
	if len(views) == 0 {
		_, err := fmt.Fprintln(w, "No jobs match the current filters.")
		return err
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "TITLE", "COMPANY", "LOCATION", "TYPE", "APPLIED")
	for _, v := range views {
		t.Row(
			v.ID,
			fitWidth(v.Title, 40),
			fitWidth(v.Company, 24),
			fitWidth(v.Location, 24),
			v.Type,
			appliedMark(v.Applied),
		)
	}
	_, err := fmt.Fprintln(w, t.String())
	return err
}

func writeJobDetail(w io.Writer, v model.JobView) error {
	lines := jobDetailLines(v)
	_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
	return err
}

func jobDetailLines(v model.JobView) []string {
	lines := append([]string{v.Title, ""}, jobFacts(v, true)...)
	lines = append(lines, "", v.Description)
	if len(v.Requirements) > 0 {
		lines = append(lines, "", "Requirements:")
		for _, r := range v.Requirements {
			lines = append(lines, "  - "+r)
		}
	}
	return lines
}

// jobFacts lists the labelled attributes shown under a job title. The posted
// date is left out of the compact browser preview.
func jobFacts(v model.JobView, withPosted bool) []string {
	salary := v.Salary
	if strings.TrimSpace(salary) == "" {
		salary = "(not listed)"
	}
	applied := "no"
	if v.Applied {
		applied = "yes"
	}
	facts := []string{
		"company: " + v.Company,
		"location: " + v.Location,
		"type: " + v.Type,
		"salary: " + salary,
	}
	if withPosted {
		posted := v.PostedDate
		if strings.TrimSpace(posted) == "" {
			posted = "(unknown)"
		}
		facts = append(facts, "posted: "+posted)
	}
	return append(facts, "applied: "+applied)
}

func appliedMark(applied bool) string {
	if applied {
		return "yes"
	}
	return ""
}
