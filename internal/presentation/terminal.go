package presentation

import "github.com/charmbracelet/lipgloss"

// 终端 256 色
var terminalColors = map[Color]lipgloss.Color{
	Gray:   lipgloss.Color("245"),
	Blue:   lipgloss.Color("69"),
	Indigo: lipgloss.Color("99"),
	Yellow: lipgloss.Color("226"),
	Orange: lipgloss.Color("208"),
	Green:  lipgloss.Color("46"),
	Red:    lipgloss.Color("196"),
}

// Terminal 颜色在终端中的对应值
func (c Color) Terminal() lipgloss.Color {
	if tc, ok := terminalColors[c]; ok {
		return tc
	}
	return terminalColors[Gray]
}

// Style 前景色为 c 的终端样式
func (c Color) Style() lipgloss.Style {
	s := lipgloss.NewStyle().Foreground(c.Terminal())
	if c == Red {
		s = s.Bold(true)
	}
	return s
}

// Badge 用颜色渲染枚举文案
func Badge[T ~string](v T, c Color) string {
	return c.Style().Render(Label(v))
}
