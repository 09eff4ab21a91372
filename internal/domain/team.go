package domain

import "time"

// TeamStatus 团队状态
type TeamStatus string

const (
	TeamActive   TeamStatus = "ACTIVE"
	TeamInactive TeamStatus = "INACTIVE"
	TeamArchived TeamStatus = "ARCHIVED"
)

var allTeamStatuses = []TeamStatus{TeamActive, TeamInactive, TeamArchived}

// AllTeamStatuses 返回全部团队状态
func AllTeamStatuses() []TeamStatus {
	out := make([]TeamStatus, len(allTeamStatuses))
	copy(out, allTeamStatuses)
	return out
}

// Valid 判断团队状态是否合法
func (s TeamStatus) Valid() bool {
	for _, v := range allTeamStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// ParseTeamStatus 解析团队状态字符串
func ParseTeamStatus(value string) (TeamStatus, bool) {
	s := TeamStatus(normalizeEnum(value))
	return s, s.Valid()
}

// Team 支持团队
type Team struct {
	ID             string        `json:"id" yaml:"-"`
	Name           string        `json:"name" yaml:"name"`
	Description    string        `json:"description,omitempty" yaml:"description"`
	ManagerID      string        `json:"managerId,omitempty" yaml:"managerId,omitempty"`
	MemberIDs      []string      `json:"memberIds" yaml:"memberIds,omitempty"`
	HandledIntents []EmailIntent `json:"handledIntents" yaml:"handledIntents"`
	Status         TeamStatus    `json:"status" yaml:"status"`
	CreatedAt      time.Time     `json:"createdAt" yaml:"-"`
	UpdatedAt      time.Time     `json:"updatedAt" yaml:"-"`

	// 绩效计数，后端可能不返回
	TotalEmailsHandled        *int     `json:"totalEmailsHandled,omitempty" yaml:"-"`
	AverageResponseTime       *float64 `json:"averageResponseTime,omitempty" yaml:"-"`
	CustomerSatisfactionScore *float64 `json:"customerSatisfactionScore,omitempty" yaml:"-"`
}

// TeamInput 创建或更新团队时提交的字段
type TeamInput struct {
	Name           string        `json:"name"`
	Description    string        `json:"description"`
	Status         TeamStatus    `json:"status"`
	ManagerID      string        `json:"managerId,omitempty"`
	MemberIDs      []string      `json:"memberIds"`
	HandledIntents []EmailIntent `json:"handledIntents"`
}

// AssignmentRules 意图到团队名称的映射，键集合固定为全部意图
type AssignmentRules map[EmailIntent]string
