// Package historyui provides the Bubble Tea job history interface.
package historyui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/iccgen/internal/history"
	"github.com/verte-zerg/iccgen/internal/model"
)

const (
	tabJobs = iota
	tabSteps
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	okStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Source loads history data.
type Source interface {
	ListJobSummaries(ctx context.Context, limit int) ([]model.JobSummary, error)
	ListSteps(ctx context.Context, jobID string) ([]model.StepRecord, error)
}

// Model implements the Bubble Tea history UI.
type Model struct {
	source Source
	limit  int
	now    func() time.Time

	report history.Report
	errMsg string

	tabs      []string
	activeTab int
	jobTable  table.Model
	steps     viewport.Model
	stepsFor  string

	width  int
	height int
}

// NewModel constructs a history UI model showing at most limit jobs when
// limit is positive.
func NewModel(src Source, limit int) *Model {
	m := &Model{
		source: src,
		limit:  limit,
		now:    time.Now,
		tabs:   []string{"Jobs", "Steps"},
		steps:  viewport.New(0, 0),
	}
	m.jobTable = table.New(
		table.WithColumns(jobColumns(0)),
		table.WithFocused(true),
		table.WithHeight(1),
	)
	m.jobTable.SetStyles(jobTableStyles())
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			return m, tea.Quit
		}
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "enter":
			if m.activeTab == tabJobs {
				m.activeTab = tabSteps
				m.loadSteps()
				return m, tea.ClearScreen
			}
			return m, nil
		case "r":
			m.refresh()
			m.updateLayout()
			return m, nil
		case "g", "home":
			if m.activeTab == tabJobs {
				m.jobTable.GotoTop()
			} else {
				m.steps.GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabJobs {
				m.jobTable.GotoBottom()
			} else {
				m.steps.GotoBottom()
			}
			return m, nil
		default:
			var cmd tea.Cmd
			if m.activeTab == tabJobs {
				m.jobTable, cmd = m.jobTable.Update(msg)
			} else {
				m.steps, cmd = m.steps.Update(msg)
			}
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderTabs(), m.width, headerHeight)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) refresh() {
	jobs, err := m.source.ListJobSummaries(context.Background(), m.limit)
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.errMsg = ""
	m.report = history.Report{Jobs: jobs, Now: m.now()}
	rows := make([]table.Row, 0, len(jobs))
	for _, r := range m.report.Rows() {
		rows = append(rows, table.Row(r))
	}
	m.jobTable.SetRows(rows)
	m.stepsFor = ""
}

func (m *Model) selectedJob() (model.JobSummary, bool) {
	idx := m.jobTable.Cursor()
	if idx < 0 || idx >= len(m.report.Jobs) {
		return model.JobSummary{}, false
	}
	return m.report.Jobs[idx], true
}

func (m *Model) loadSteps() {
	sel, ok := m.selectedJob()
	if !ok {
		m.steps.SetContent("No job selected.")
		return
	}
	if m.stepsFor == sel.Job.ID {
		return
	}
	steps, err := m.source.ListSteps(context.Background(), sel.Job.ID)
	if err != nil {
		m.errMsg = err.Error()
		m.steps.SetContent("Failed to load steps.")
		return
	}
	m.stepsFor = sel.Job.ID
	m.steps.SetContent(renderSteps(sel, steps))
	m.steps.GotoTop()
}

func renderSteps(sel model.JobSummary, steps []model.StepRecord) string {
	p := sel.Job.Params
	lines := []string{
		headerStyle.Render(sel.Job.ProfileName),
		headerStyle.Render(fmt.Sprintf("pages=%d  high_density=%t  gray=%d  settings=%s",
			p.NumberOfPages, p.HighDensity, p.GrayPatchCount, sel.Job.SettingsPath)),
		"",
	}
	if len(steps) == 0 {
		return strings.Join(append(lines, "No steps recorded."), "\n")
	}
	for _, s := range steps {
		status := okStyle.Render("ok")
		if !s.OK() {
			status = errorStyle.Render("failed: " + s.Err)
		}
		lines = append(lines, fmt.Sprintf("%s  %-16s %8s  %s",
			s.StartedAt.Local().Format("2006-01-02 15:04:05"),
			s.Step,
			s.EndedAt.Sub(s.StartedAt).Round(time.Millisecond),
			status,
		))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	if m.activeTab == tabSteps {
		m.loadSteps()
		m.jobTable.Blur()
	} else {
		m.jobTable.Focus()
	}
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	headerHeight = lipgloss.Height(activeNavStyle.Render("X"))
	if headerHeight < 1 {
		headerHeight = 1
	}
	footerHeight = 1
	if m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.steps.Width = m.width
	m.steps.Height = bodyHeight
	m.jobTable.SetColumns(jobColumns(m.width))
	m.jobTable.SetWidth(m.width)
	// One line goes to the header row.
	m.jobTable.SetHeight(maxInt(1, bodyHeight-1))
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderBody() string {
	if m.activeTab == tabSteps {
		return m.steps.View()
	}
	if len(m.report.Jobs) == 0 {
		return "No jobs found."
	}
	return tableMutedStyle.Render(m.jobTable.View())
}

func (m *Model) renderFooter() string {
	help := "Nav: left/right  Select: up/down  Steps: enter  Reload: r  Quit: q"
	if m.activeTab == tabSteps {
		help = "Nav: left/right  Scroll: up/down/pgup/pgdn  Quit: q"
	}
	help = headerStyle.Render(help)
	if m.errMsg != "" {
		return help + "\n" + errorStyle.Render(m.errMsg)
	}
	return help
}

// jobColumns gives the profile name whatever width the fixed columns leave.
func jobColumns(width int) []table.Column {
	fixed := []table.Column{
		{Title: history.Headers[1], Width: 16},
		{Title: history.Headers[2], Width: 5},
		{Title: history.Headers[3], Width: 7},
		{Title: history.Headers[4], Width: 5},
		{Title: history.Headers[5], Width: 16},
		{Title: history.Headers[6], Width: 6},
	}
	used := 0
	for _, c := range fixed {
		used += c.Width + 1
	}
	name := maxInt(20, width-used-1)
	return append([]table.Column{{Title: history.Headers[0], Width: name}}, fixed...)
}

func jobTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if w := lipgloss.Width(line); w < width {
			lines[i] = line + strings.Repeat(" ", width-w)
		}
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}
