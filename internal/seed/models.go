package seed

import (
	"time"

	"triagedesk/dashboard/internal/domain"
)

// EmailRecord emails 表，由分类后端写入，这里只负责建表和索引
type EmailRecord struct {
	ID               string             `gorm:"primaryKey;size:64"`
	From             string             `gorm:"column:from_address;size:320;not null;index:idx_emails_from"`
	To               string             `gorm:"column:to_address;size:320;not null"`
	CC               string             `gorm:"size:1024"`
	Subject          string             `gorm:"size:998"`
	Body             string             `gorm:"type:text"`
	HTMLBody         string             `gorm:"type:text"`
	Status           domain.EmailStatus `gorm:"size:32;not null;index:idx_emails_status"`
	Intent           domain.EmailIntent `gorm:"size:32;index:idx_emails_intent"`
	IntentConfidence float64
	Priority         domain.Priority `gorm:"size:16;index:idx_emails_priority"`
	AssignedTeam     string          `gorm:"size:128;index:idx_emails_assigned_team"`
	AssignedUser     string          `gorm:"size:64"`
	Notes            []string        `gorm:"serializer:json"`
	ReplyContent     string          `gorm:"type:text"`
	ReceivedAt       time.Time       `gorm:"not null;index:idx_emails_received_at"`
	ProcessedAt      *time.Time
	RespondedAt      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (EmailRecord) TableName() string { return "emails" }

// TeamRecord teams 表
type TeamRecord struct {
	ID                        string               `gorm:"primaryKey;size:64"`
	Name                      string               `gorm:"size:128;not null;uniqueIndex:idx_teams_name"`
	Description               string               `gorm:"size:512"`
	ManagerID                 string               `gorm:"size:64"`
	MemberIDs                 []string             `gorm:"serializer:json"`
	HandledIntents            []domain.EmailIntent `gorm:"serializer:json"`
	Status                    domain.TeamStatus    `gorm:"size:16;not null;index:idx_teams_status"`
	TotalEmailsHandled        int                  `gorm:"not null;default:0"`
	AverageResponseTime       float64              `gorm:"not null;default:0"`
	CustomerSatisfactionScore float64              `gorm:"not null;default:0"`
	CreatedAt                 time.Time
	UpdatedAt                 time.Time
}

func (TeamRecord) TableName() string { return "teams" }

// UserRecord users 表
type UserRecord struct {
	ID          string               `gorm:"primaryKey;size:64"`
	Email       string               `gorm:"size:320;not null;uniqueIndex:idx_users_email"`
	FirstName   string               `gorm:"size:128"`
	LastName    string               `gorm:"size:128"`
	DisplayName string               `gorm:"size:256"`
	Role        domain.UserRole      `gorm:"size:16;not null;index:idx_users_role"`
	Status      domain.UserStatus    `gorm:"size:16;not null"`
	TeamIDs     []string             `gorm:"serializer:json"`
	Expertise   []domain.EmailIntent `gorm:"serializer:json"`
	CreatedAt   time.Time
	LastLoginAt *time.Time
}

func (UserRecord) TableName() string { return "users" }
