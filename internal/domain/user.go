package domain

import "time"

// UserRole 客服人员角色
type UserRole string

const (
	RoleAdmin   UserRole = "ADMIN"
	RoleManager UserRole = "MANAGER"
	RoleAgent   UserRole = "AGENT"
	RoleViewer  UserRole = "VIEWER"
)

// UserStatus 客服人员在线状态
type UserStatus string

const (
	UserActive   UserStatus = "ACTIVE"
	UserInactive UserStatus = "INACTIVE"
	UserBusy     UserStatus = "BUSY"
	UserOffline  UserStatus = "OFFLINE"
)

// User 表示处理邮件的客服人员
type User struct {
	ID          string        `json:"id"`
	Email       string        `json:"email"`
	FirstName   string        `json:"firstName"`
	LastName    string        `json:"lastName"`
	DisplayName string        `json:"displayName"`
	Avatar      string        `json:"avatar,omitempty"`
	Role        UserRole      `json:"role"`
	Status      UserStatus    `json:"status"`
	TeamIDs     []string      `json:"teamIds"`
	Expertise   []EmailIntent `json:"expertise"`
	CreatedAt   time.Time     `json:"createdAt"`
	LastLoginAt *time.Time    `json:"lastLoginAt,omitempty"`

	TotalEmailsHandled        *int     `json:"totalEmailsHandled,omitempty"`
	AverageResponseTime       *float64 `json:"averageResponseTime,omitempty"`
	CustomerSatisfactionScore *float64 `json:"customerSatisfactionScore,omitempty"`
	CurrentWorkload           *int     `json:"currentWorkload,omitempty"`
}

// IsAdmin 判断用户是否为管理员
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Name 返回用于展示的名称
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	if u.FirstName != "" || u.LastName != "" {
		if u.LastName == "" {
			return u.FirstName
		}
		if u.FirstName == "" {
			return u.LastName
		}
		return u.FirstName + " " + u.LastName
	}
	return u.Email
}
