// Package presentation 把领域枚举映射为展示用的颜色、文案和日期格式。
//
// 每个映射都覆盖枚举的全部取值，未知值落到灰色。
package presentation

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"triagedesk/dashboard/internal/domain"
)

// Color 语义颜色
type Color string

const (
	Gray   Color = "gray"
	Blue   Color = "blue"
	Indigo Color = "indigo"
	Yellow Color = "yellow"
	Orange Color = "orange"
	Green  Color = "green"
	Red    Color = "red"
)

var statusColors = map[domain.EmailStatus]Color{
	domain.StatusReceived:       Gray,
	domain.StatusProcessing:     Blue,
	domain.StatusIntentDetected: Indigo,
	domain.StatusAssigned:       Yellow,
	domain.StatusInProgress:     Orange,
	domain.StatusResponded:      Green,
	domain.StatusClosed:         Gray,
	domain.StatusEscalated:      Red,
}

var priorityColors = map[domain.Priority]Color{
	domain.PriorityLow:    Green,
	domain.PriorityMedium: Yellow,
	domain.PriorityHigh:   Orange,
	domain.PriorityUrgent: Red,
}

var severityColors = map[domain.Severity]Color{
	domain.SeverityHigh:   Red,
	domain.SeverityMedium: Yellow,
	domain.SeverityLow:    Green,
}

// StatusColor 状态徽章颜色
func StatusColor(s domain.EmailStatus) Color {
	if c, ok := statusColors[s]; ok {
		return c
	}
	return Gray
}

// PriorityColor 优先级徽章颜色
func PriorityColor(p domain.Priority) Color {
	if c, ok := priorityColors[p]; ok {
		return c
	}
	return Gray
}

// SeverityColor AI 反馈条目颜色
func SeverityColor(s domain.Severity) Color {
	if c, ok := severityColors[s]; ok {
		return c
	}
	return Gray
}

// TeamStatusColor 只有启用的团队显示为绿色
func TeamStatusColor(s domain.TeamStatus) Color {
	if s == domain.TeamActive {
		return Green
	}
	return Gray
}

// BadgeClass 徽章的 CSS 类
func (c Color) BadgeClass() string {
	return fmt.Sprintf("bg-%s-100 text-%s-800", c, c)
}

// FeedbackClass 反馈卡片的 CSS 类
func (c Color) FeedbackClass() string {
	return fmt.Sprintf("text-%s-600 bg-%s-50 border-%s-200", c, c, c)
}

// Label 枚举值的展示文案，IN_PROGRESS → IN PROGRESS
func Label[T ~string](v T) string {
	return strings.ReplaceAll(string(v), "_", " ")
}

// Percent 0..1 的比例四舍五入为整数百分比
func Percent(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	return int(math.Round(v * 100))
}

// ConfidenceLabel 意图置信度文案，0.873 → "87% confidence"
func ConfidenceLabel(v float64) string {
	return strconv.Itoa(Percent(v)) + "% confidence"
}

// ResponseTime 平均响应时间，保留两位小数并加 h 后缀
func ResponseTime(hours float64) string {
	return strconv.FormatFloat(math.Round(hours*100)/100, 'f', -1, 64) + "h"
}

// Distribution 意图分布文案 "K: v, K: v"，为空时返回 N/A
func Distribution(m map[string]int64) string {
	if len(m) == 0 {
		return "N/A"
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %d", k, m[k]))
	}
	return strings.Join(parts, ", ")
}

// 日期格式
const (
	listLayout   = "Jan 2, 03:04 PM"
	detailLayout = "January 2, 2006 at 03:04 PM"
	dayLayout    = "1/2/2006"
)

// ListDate 列表中的时间，例如 "Mar 1, 10:15 AM"
func ListDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(listLayout)
}

// DetailDate 详情页中的时间，例如 "March 1, 2024 at 10:15 AM"
func DetailDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(detailLayout)
}

// Day 只显示日期，例如 "3/1/2024"
func Day(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dayLayout)
}
