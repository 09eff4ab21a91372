package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"triagedesk/dashboard/internal/presentation"
	"triagedesk/dashboard/internal/service"
)

// 面板序号
const (
	panelOverview = iota
	panelIntents
	panelHighPriority
	panelCount
)

// 意图柱状图的最大宽度
const barWidth = 24

type dashboardModel struct {
	svc         Service
	activePanel int
	width       int
	height      int

	view    *service.DashboardView
	loading bool
	err     error
}

// dashboardLoadedMsg 仪表盘数据加载完成
type dashboardLoadedMsg struct {
	view *service.DashboardView
	err  error
}

func newDashboardModel(svc Service) dashboardModel {
	return dashboardModel{
		svc:         svc,
		activePanel: panelOverview,
		loading:     true,
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return m.load
}

func (m dashboardModel) load() tea.Msg {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	view, err := m.svc.Dashboard(ctx)
	return dashboardLoadedMsg{view: view, err: err}
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.activePanel = (m.activePanel + 1) % panelCount
			return m, nil
		case "shift+tab":
			m.activePanel = (m.activePanel - 1 + panelCount) % panelCount
			return m, nil
		case "r":
			m.loading = true
			return m, m.load
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case dashboardLoadedMsg:
		m.loading = false
		// 刷新失败时保留上一次的数据
		m.err = msg.err
		if msg.err == nil {
			m.view = msg.view
		}
		return m, nil
	}

	return m, nil
}

func (m dashboardModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	title := titleStyle.Render(" Email Triage Dashboard ")
	help := helpStyle.Render("tab: switch panel | r: refresh | q: quit")

	if m.loading && m.view == nil {
		return fmt.Sprintf("%s\n\n  Loading data...\n\n%s", title, help)
	}
	if m.view == nil {
		return fmt.Sprintf("%s\n\n  %s\n\n%s", title, errorStyle.Render("Error loading emails. Please try again."), help)
	}

	panels := []string{m.renderOverview(), m.renderIntents(), m.renderHighPriority()}

	availableWidth := m.width - 2
	var body string
	if availableWidth > 120 {
		colWidth := availableWidth / panelCount
		for i := range panels {
			panels[i] = m.applyPanelStyle(i, panels[i], colWidth-4)
		}
		body = lipgloss.JoinHorizontal(lipgloss.Top, panels...)
	} else {
		panelWidth := availableWidth - 4
		if panelWidth < 20 {
			panelWidth = 20
		}
		for i := range panels {
			panels[i] = m.applyPanelStyle(i, panels[i], panelWidth)
		}
		body = lipgloss.JoinVertical(lipgloss.Left, panels...)
	}

	status := ""
	if m.err != nil {
		status = "\n" + errorStyle.Render("  Refresh failed: "+userMessage(m.err))
	}
	return fmt.Sprintf("%s\n\n%s%s\n\n%s", title, body, status, help)
}

func (m dashboardModel) applyPanelStyle(panel int, content string, width int) string {
	style := panelStyle
	if m.activePanel == panel {
		style = activePanelStyle
	}
	return style.Width(width).Render(content)
}

func (m dashboardModel) renderOverview() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Overview"))
	b.WriteString("\n")

	for _, card := range m.view.Stats {
		b.WriteString(fmt.Sprintf("  %-14s %s\n", card.Name, card.Color.Style().Render(card.Value)))
	}

	if len(m.view.StatusCounts) > 0 {
		b.WriteString("\n")
		for _, c := range m.view.StatusCounts {
			b.WriteString(fmt.Sprintf("  %-16s %d\n", c.Label, c.Count))
		}
	}
	return b.String()
}

func (m dashboardModel) renderIntents() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Emails by Intent"))
	b.WriteString("\n")

	var peak int64
	for _, ic := range m.view.IntentChart {
		if ic.Count > peak {
			peak = ic.Count
		}
	}
	for _, ic := range m.view.IntentChart {
		bar := ""
		if peak > 0 {
			bar = strings.Repeat("█", int(ic.Count*barWidth/peak))
		}
		b.WriteString(fmt.Sprintf("  %-18s %s %d\n", ic.Label, presentation.Indigo.Style().Render(bar), ic.Count))
	}
	return b.String()
}

func (m dashboardModel) renderHighPriority() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("High Priority"))
	b.WriteString("\n")

	if len(m.view.HighPriority) == 0 {
		b.WriteString("  No high priority emails.")
		return b.String()
	}
	for _, row := range m.view.HighPriority {
		b.WriteString(fmt.Sprintf("  %s %s\n", priorityBadge(row.Priority), truncate(row.Subject, subjectWidth)))
		b.WriteString(fmt.Sprintf("    %s\n", labelStyle.Render(row.From+" · "+row.Received)))
	}
	return b.String()
}

func newDashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Interactive dashboard with statistics and high priority emails",
		Long: `Launch an interactive terminal dashboard showing email statistics,
the intent distribution and high priority emails.

Navigate between panels with Tab, refresh with r, quit with q.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := tea.NewProgram(newDashboardModel(Svc), tea.WithAltScreen())
			_, err := p.Run()
			return err
		},
	}
}
