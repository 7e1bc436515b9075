package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"jobboard/internal/model"
)

func (m browseModel) View() string {
	if m.width <= 0 {
		m.width = 100
	}
	if m.height <= 0 {
		m.height = 30
	}

	switch m.mode {
	case browseModeForm:
		return m.viewForm()
	case browseModeDetail:
		return m.viewDetail()
	default:
		return m.viewList()
	}
}

func (m browseModel) viewList() string {
	header := browseTitleStyle.Render("jobboard") + "  " + browseMutedStyle.Render(filterSummary(m.board.CurrentFilters())) + "\n" +
		browseMutedStyle.Render("up/down: move | enter: details | f: filter | c: clear | a: apply | space: applied | r: refresh | q: quit")

	if m.width < 90 {
		list := m.renderListPanel(m.width)
		preview := m.renderPreviewPanel(m.width)
		status := m.renderStatusLine(m.width)
		return lipgloss.JoinVertical(lipgloss.Left, header, list, preview, status)
	}

	leftW := max(40, min(m.width/2, 64))
	rightW := m.width - leftW - 1
	body := lipgloss.JoinHorizontal(lipgloss.Top, m.renderListPanel(leftW), m.renderPreviewPanel(rightW))
	status := m.renderStatusLine(m.width)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, status)
}

func filterSummary(c model.FilterCriteria) string {
	c = c.Normalize()
	if c.IsEmpty() {
		return "(no filters)"
	}
	parts := make([]string, 0, 4)
	for _, f := range []struct{ name, value string }{
		{"search", c.Search},
		{"location", c.Location},
		{"company", c.Company},
		{"type", c.Type},
	} {
		if f.value != "" {
			parts = append(parts, fmt.Sprintf("%s=%q", f.name, f.value))
		}
	}
	return strings.Join(parts, " ")
}

func (m browseModel) renderListPanel(width int) string {
	maxRows := max(4, min(m.height-10, 24))
	lines := make([]string, 0, maxRows+2)

	switch {
	case m.loading && len(m.jobs) == 0:
		lines = append(lines, browseMutedStyle.Render("Loading jobs..."))
	case len(m.jobs) == 0 && len(m.board.AllJobs()) > 0:
		lines = append(lines, browseMutedStyle.Render("No jobs match the current filters."))
		lines = append(lines, browseMutedStyle.Render("Press c to clear them."))
	case len(m.jobs) == 0:
		lines = append(lines, browseMutedStyle.Render("No jobs loaded."))
		lines = append(lines, browseMutedStyle.Render("Press r to try again."))
	}

	start, end := scrollWindow(len(m.jobs), m.cursor, maxRows)
	if start > 0 {
		lines = append(lines, browseMutedStyle.Render("..."))
	}
	for i := start; i < end; i++ {
		j := m.jobs[i]
		mark := " "
		if j.Applied {
			mark = "x"
		}
		line := fitWidth(fmt.Sprintf("[%s] %s  %s", mark, j.Title, j.Company), max(width-6, 10))
		if i == m.cursor {
			line = browseSelStyle.Width(max(width-4, 6)).Render(line)
		}
		lines = append(lines, line)
	}
	if end < len(m.jobs) {
		lines = append(lines, browseMutedStyle.Render("..."))
	}
	return browsePanelStyle.Width(width).Render(strings.Join(lines, "\n"))
}

func (m browseModel) renderPreviewPanel(width int) string {
	sel, ok := m.selected()
	if !ok {
		return browsePanelStyle.Width(width).Render(browseMutedStyle.Render("Select a job to see a summary."))
	}
	lines := append([]string{sel.Title, ""}, jobFacts(sel, false)...)
	for i := range lines {
		lines[i] = fitWidth(lines[i], max(width-6, 12))
	}
	return browsePanelStyle.Width(width).Render(strings.Join(lines, "\n"))
}

func (m browseModel) renderStatusLine(width int) string {
	msg := strings.TrimSpace(m.statusMessage)
	if msg == "" && m.board.LoadingStatus() == model.StatusFailed {
		msg = "error: " + m.board.LastError()
	}
	if msg == "" && m.loading {
		msg = "loading..."
	}
	if msg == "" {
		msg = fmt.Sprintf("%d of %d job(s) shown", len(m.jobs), len(m.board.AllJobs()))
	}
	style := browseMutedStyle
	lower := strings.ToLower(msg)
	if strings.HasPrefix(lower, "error:") {
		style = browseErrorStyle
	} else if strings.HasPrefix(lower, "application submitted") || strings.HasPrefix(lower, "marked") {
		style = browseOKStyle
	}
	return style.Width(width).Render(fitWidth(msg, max(width-2, 10)))
}

func (m browseModel) viewDetail() string {
	header := browseTitleStyle.Render("Job "+m.detailID) + "\n" +
		browseMutedStyle.Render("esc: back | a: apply | space: applied | q: quit")
	inner := max(m.width-6, 20)

	var lines []string
	switch {
	case m.detailMissing:
		lines = []string{
			browseErrorStyle.Render("Job not found"),
			"",
			"The job source has no posting with id " + m.detailID + ".",
		}
	case m.detailErr != "" && m.detailJob.ID == "":
		lines = []string{
			browseErrorStyle.Render("Could not load job"),
			"",
			m.detailErr,
		}
	default:
		view := model.JobView{Job: m.detailJob, Applied: m.board.IsApplied(m.detailJob.ID)}
		for _, line := range jobDetailLines(view) {
			lines = append(lines, wrapWords(line, inner)...)
		}
		if m.detailLoading {
			lines = append(lines, "", browseMutedStyle.Render("refreshing..."))
		}
	}
	panel := browsePanelStyle.Width(max(m.width, 40)).Render(strings.Join(lines, "\n"))
	return lipgloss.JoinVertical(lipgloss.Left, header, panel, m.renderStatusLine(m.width))
}

func (m browseModel) viewForm() string {
	if m.form == nil {
		return ""
	}
	header := browseTitleStyle.Render(m.form.Title)
	hints := browseMutedStyle.Render("tab/shift+tab or up/down: move | left/right/space: change option | enter: next/save | ctrl+s: save | esc: cancel")

	lines := make([]string, 0, len(m.form.Fields)+6)
	for i, f := range m.form.Fields {
		prefix := "  "
		if i == m.form.Index {
			prefix = "> "
		}
		display := strings.TrimSpace(f.Value)
		if display == "" {
			display = browseMutedStyle.Render("(empty)")
		}
		if f.Kind == browseFieldSelect {
			display = "[" + display + "]"
		}
		lines = append(lines, fitWidth(fmt.Sprintf("%s%s: %s", prefix, f.Label, display), max(m.width-6, 20)))
	}

	curr := m.form.currentField()
	inputLabel := fmt.Sprintf("\n%s\n", curr.Label)
	inputHelp := ""
	if strings.TrimSpace(curr.Help) != "" {
		inputHelp = browseMutedStyle.Render(curr.Help) + "\n"
	}
	input := m.form.Input.View()
	if curr.Kind == browseFieldSelect {
		input = "[" + curr.Value + "]"
	}
	status := ""
	if m.form.Saving {
		status = browseMutedStyle.Render("\nSubmitting...")
	}
	if strings.TrimSpace(m.form.Error) != "" {
		status = "\n" + browseErrorStyle.Render(m.form.Error)
	}

	panel := browsePanelStyle.Width(max(m.width, 40)).Render(strings.Join(lines, "\n") + inputLabel + inputHelp + input + status)
	return lipgloss.JoinVertical(lipgloss.Left, header, hints, panel)
}
