package cli

import (
	"errors"

	"github.com/charmbracelet/lipgloss"

	"triagedesk/dashboard/internal/domain"
	"triagedesk/dashboard/internal/presentation"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 2)

	activePanelStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("62")).
				Padding(1, 2)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
)

func statusBadge(s domain.EmailStatus) string {
	return presentation.Badge(s, presentation.StatusColor(s))
}

func priorityBadge(p domain.Priority) string {
	return presentation.Badge(p, presentation.PriorityColor(p))
}

// userMessage 校验错误直接展示提示文案，其余错误原样输出
func userMessage(err error) string {
	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		return vErr.Message
	}
	return err.Error()
}
