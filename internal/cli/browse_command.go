package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"jobboard/internal/applyform"
	"jobboard/internal/board"
	"jobboard/internal/catalog"
	"jobboard/internal/errors"
	"jobboard/internal/logger"
	"jobboard/internal/model"
)

type browseMode int

const (
	browseModeList browseMode = iota
	browseModeDetail
	browseModeForm
)

type browseModel struct {
	ctx    context.Context
	board  browseBoard
	jobs   []model.JobView
	cursor int
	width  int
	height int
	mode   browseMode
	form   *browseForm
	// formReturn is the mode a closed form goes back to.
	formReturn browseMode

	detailID      string
	detailJob     model.Job
	detailLoading bool
	detailMissing bool
	detailErr     string

	loading       bool
	statusMessage string
}

var (
	browseTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	browseMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	browseErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	browseOKStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	browsePanelStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	browseSelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62")).Bold(true)
)

const browseTTYMessage = "browse requires an interactive terminal (TTY)"

func (a *app) browseCommand() *cobra.Command {
	var criteria model.FilterCriteria
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Interactive job browser",
		Long: `Interactive job browser.

Keys: up/down move, enter details, f filter, c clear filters, a apply,
space toggle applied marker, r refresh, q quit.

The browser never logs to the terminal; set log.file to keep logs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !readerIsTTY(a.stdin) {
				return errors.New(browseTTYMessage)
			}
			cfg, _, err := a.loadConfig()
			if err != nil {
				return err
			}
			if cfg.Log.File != "" {
				if err := logger.Initialize(cfg.LoggerOptions()); err != nil {
					return err
				}
			} else {
				logger.Discard()
			}

			ctx := cmd.Context()
			s, err := board.Open(ctx, cfg, logger.Logger)
			if err != nil {
				return err
			}
			defer s.Close()
			s.SetFilter(patchFromCriteria(criteria))

			m := newBrowseModel(ctx, s.Board)
			p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx), tea.WithInput(a.stdin), tea.WithOutput(a.stdout))
			if _, err := p.Run(); err != nil {
				if errors.Is(err, tea.ErrProgramKilled) {
					return nil
				}
				if strings.Contains(strings.ToLower(err.Error()), "tty") {
					return errors.New(browseTTYMessage)
				}
				return err
			}
			return nil
		},
	}
	addFilterFlags(cmd, &criteria)
	return cmd
}

func newBrowseModel(ctx context.Context, b browseBoard) browseModel {
	return browseModel{ctx: ctx, board: b, mode: browseModeList, loading: true}
}

func (m browseModel) Init() tea.Cmd {
	return loadJobsCmd(m.ctx, m.board)
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.form.resize(m.width)
		return m, nil
	case jobsLoadedMsg:
		if errors.Is(msg.err, catalog.ErrSuperseded) {
			return m, nil
		}
		m.loading = false
		m.refreshJobs()
		if msg.err != nil {
			m.statusMessage = "error: " + msg.err.Error()
		}
		return m, nil
	case jobLoadedMsg:
		return m.applyJobLoaded(msg), nil
	case submittedMsg:
		if msg.err != nil {
			if m.form != nil {
				m.form.Saving = false
				m.form.Error = msg.err.Error()
				return m, nil
			}
			m.statusMessage = "error: " + msg.err.Error()
			return m, nil
		}
		m.closeForm()
		m.refreshJobs()
		m.statusMessage = fmt.Sprintf("application submitted: %s (confirmation %s)", msg.title, msg.ack.ConfirmationID)
		return m, nil
	case appliedToggledMsg:
		m.refreshJobs()
		m.statusMessage = msg.message
		return m, nil
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch m.mode {
	case browseModeDetail:
		return m.updateDetail(keyMsg)
	case browseModeForm:
		return m.updateForm(keyMsg)
	default:
		return m.updateList(keyMsg)
	}
}

func (m *browseModel) refreshJobs() {
	m.jobs = m.board.Views(m.board.FilteredJobs())
	if m.cursor > len(m.jobs)-1 {
		m.cursor = len(m.jobs) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m browseModel) applyJobLoaded(msg jobLoadedMsg) browseModel {
	if msg.id != m.detailID {
		return m
	}
	m.detailLoading = false
	switch {
	case msg.err == nil:
		m.detailJob = msg.job
	case errors.Is(msg.err, catalog.ErrSuperseded):
		// A refresh replaced the collection meanwhile; show whatever it holds.
		if job, ok := m.board.Job(msg.id); ok {
			m.detailJob = job
		} else {
			m.detailMissing = true
		}
	case errors.IsNotFound(msg.err):
		m.detailMissing = true
	default:
		m.detailErr = msg.err.Error()
	}
	m.refreshJobs()
	return m
}

func (m browseModel) selected() (model.JobView, bool) {
	if m.cursor < 0 || m.cursor >= len(m.jobs) {
		return model.JobView{}, false
	}
	return m.jobs[m.cursor], true
}

func (m browseModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "down", "j":
		if m.cursor < len(m.jobs)-1 {
			m.cursor++
		}
		return m, nil
	case "r":
		m.loading = true
		m.statusMessage = ""
		return m, loadJobsCmd(m.ctx, m.board)
	case "f", "/":
		m.openForm(newFilterForm(m.board.CurrentFilters(), m.width))
		return m, nil
	case "c":
		m.board.ClearFilter()
		m.refreshJobs()
		m.statusMessage = "filters cleared"
		return m, nil
	case "enter", "e":
		sel, ok := m.selected()
		if !ok {
			m.statusMessage = "no job selected"
			return m, nil
		}
		m.mode = browseModeDetail
		m.detailID = sel.ID
		m.detailJob = sel.Job
		m.detailLoading = true
		m.detailMissing = false
		m.detailErr = ""
		return m, loadJobCmd(m.ctx, m.board, sel.ID)
	case "a":
		sel, ok := m.selected()
		if !ok {
			return m, nil
		}
		return m.startApply(sel.Job)
	case " ", "space":
		sel, ok := m.selected()
		if !ok {
			return m, nil
		}
		return m, toggleAppliedCmd(m.ctx, m.board, sel.Job)
	}
	return m, nil
}

func (m browseModel) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "esc", "backspace", "left", "h":
		m.mode = browseModeList
		m.detailID = ""
		return m, nil
	case "a":
		if m.detailMissing || m.detailJob.ID == "" {
			return m, nil
		}
		return m.startApply(m.detailJob)
	case " ", "space":
		if m.detailMissing || m.detailJob.ID == "" {
			return m, nil
		}
		return m, toggleAppliedCmd(m.ctx, m.board, m.detailJob)
	}
	return m, nil
}

func (m browseModel) startApply(job model.Job) (tea.Model, tea.Cmd) {
	if m.board.IsApplied(job.ID) {
		m.statusMessage = "already applied: " + job.Title
		return m, nil
	}
	m.openForm(newApplyForm(job, m.width))
	return m, nil
}

func (m *browseModel) openForm(f *browseForm) {
	m.formReturn = m.mode
	m.mode = browseModeForm
	m.form = f
	m.statusMessage = ""
}

func (m *browseModel) closeForm() {
	m.mode = m.formReturn
	m.form = nil
}

func (m browseModel) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.form == nil {
		m.mode = browseModeList
		return m, nil
	}
	if m.form.Saving {
		return m, nil
	}

	key := strings.ToLower(msg.String())
	switch key {
	case "ctrl+c", "esc":
		m.closeForm()
		m.statusMessage = "cancelled"
		return m, nil
	case "up", "shift+tab":
		m.form.commitInput()
		if m.form.Index > 0 {
			m.form.Index--
		}
		m.form.loadFieldIntoInput()
		return m, nil
	case "down", "tab":
		m.form.commitInput()
		if m.form.Index < len(m.form.Fields)-1 {
			m.form.Index++
		}
		m.form.loadFieldIntoInput()
		return m, nil
	case " ", "space", "right", "l":
		if m.form.currentField().Kind == browseFieldSelect {
			m.form.nextSelectOption()
			return m, nil
		}
	case "left", "h":
		if m.form.currentField().Kind == browseFieldSelect {
			m.form.prevSelectOption()
			return m, nil
		}
	case "enter", "ctrl+s":
		m.form.commitInput()
		if m.form.Index < len(m.form.Fields)-1 && key != "ctrl+s" {
			m.form.Index++
			m.form.loadFieldIntoInput()
			return m, nil
		}
		return m.submitForm()
	}

	if m.form.currentField().Kind == browseFieldSelect {
		return m, nil
	}
	var cmd tea.Cmd
	m.form.Input, cmd = m.form.Input.Update(msg)
	m.form.Fields[m.form.Index].Value = m.form.Input.Value()
	return m, cmd
}

func (m browseModel) submitForm() (tea.Model, tea.Cmd) {
	switch m.form.Kind {
	case browseFormFilter:
		m.board.SetFilter(m.form.toPatch())
		m.closeForm()
		m.cursor = 0
		m.refreshJobs()
		m.statusMessage = fmt.Sprintf("%d job(s) match", len(m.jobs))
		return m, nil
	case browseFormApply:
		applicant, err := applyform.New().Validate(m.form.toApplyInput())
		if err != nil {
			m.form.Error = err.Error()
			return m, nil
		}
		job, ok := m.board.Job(m.form.JobID)
		if !ok {
			job = model.Job{ID: m.form.JobID, Title: m.form.JobID}
		}
		m.form.Error = ""
		m.form.Saving = true
		return m, submitCmd(m.ctx, m.board, job, applicant)
	}
	return m, nil
}
