package domain

import (
	"strings"
	"time"
)

// EmailStatus 邮件处理状态
type EmailStatus string

const (
	StatusReceived       EmailStatus = "RECEIVED"
	StatusProcessing     EmailStatus = "PROCESSING"
	StatusIntentDetected EmailStatus = "INTENT_DETECTED"
	StatusAssigned       EmailStatus = "ASSIGNED"
	StatusInProgress     EmailStatus = "IN_PROGRESS"
	StatusResponded      EmailStatus = "RESPONDED"
	StatusClosed         EmailStatus = "CLOSED"
	StatusEscalated      EmailStatus = "ESCALATED"
)

var allStatuses = []EmailStatus{
	StatusReceived,
	StatusProcessing,
	StatusIntentDetected,
	StatusAssigned,
	StatusInProgress,
	StatusResponded,
	StatusClosed,
	StatusEscalated,
}

// AllStatuses 按固定顺序返回全部状态
func AllStatuses() []EmailStatus {
	out := make([]EmailStatus, len(allStatuses))
	copy(out, allStatuses)
	return out
}

// Valid 判断状态是否为已知枚举值
func (s EmailStatus) Valid() bool {
	for _, v := range allStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// ParseStatus 解析状态字符串（大小写不敏感）
func ParseStatus(value string) (EmailStatus, bool) {
	s := EmailStatus(normalizeEnum(value))
	return s, s.Valid()
}

// EmailIntent 后端分类出的邮件意图
type EmailIntent string

const (
	IntentRefundRequest    EmailIntent = "REFUND_REQUEST"
	IntentBugReport        EmailIntent = "BUG_REPORT"
	IntentFeatureInquiry   EmailIntent = "FEATURE_INQUIRY"
	IntentGeneralSupport   EmailIntent = "GENERAL_SUPPORT"
	IntentBillingIssue     EmailIntent = "BILLING_ISSUE"
	IntentTechnicalSupport EmailIntent = "TECHNICAL_SUPPORT"
	IntentComplaint        EmailIntent = "COMPLAINT"
	IntentFeedback         EmailIntent = "FEEDBACK"
	IntentUnknown          EmailIntent = "UNKNOWN"
)

var allIntents = []EmailIntent{
	IntentRefundRequest,
	IntentBugReport,
	IntentFeatureInquiry,
	IntentGeneralSupport,
	IntentBillingIssue,
	IntentTechnicalSupport,
	IntentComplaint,
	IntentFeedback,
	IntentUnknown,
}

// AllIntents 按固定顺序返回全部意图
func AllIntents() []EmailIntent {
	out := make([]EmailIntent, len(allIntents))
	copy(out, allIntents)
	return out
}

// Valid 判断意图是否为已知枚举值
func (i EmailIntent) Valid() bool {
	for _, v := range allIntents {
		if i == v {
			return true
		}
	}
	return false
}

// ParseIntent 解析意图字符串（大小写不敏感）
func ParseIntent(value string) (EmailIntent, bool) {
	i := EmailIntent(normalizeEnum(value))
	return i, i.Valid()
}

// Priority 邮件优先级
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

var allPriorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

// AllPriorities 按从低到高的顺序返回全部优先级
func AllPriorities() []Priority {
	out := make([]Priority, len(allPriorities))
	copy(out, allPriorities)
	return out
}

// Valid 判断优先级是否为已知枚举值
func (p Priority) Valid() bool {
	return p.Rank() >= 0
}

// Rank 返回优先级的排序权重，未知值返回 -1
func (p Priority) Rank() int {
	for i, v := range allPriorities {
		if p == v {
			return i
		}
	}
	return -1
}

// ParsePriority 解析优先级字符串（大小写不敏感）
func ParsePriority(value string) (Priority, bool) {
	p := Priority(normalizeEnum(value))
	return p, p.Valid()
}

// Email 表示一封进入分诊流程的客户邮件
type Email struct {
	ID               string         `json:"id"`
	MessageID        string         `json:"messageId"`
	From             string         `json:"from"`
	To               string         `json:"to"`
	Subject          string         `json:"subject"`
	Body             string         `json:"body,omitempty"`
	Status           EmailStatus    `json:"status"`
	Intent           EmailIntent    `json:"intent"`
	IntentConfidence float64        `json:"intentConfidence"`
	AssignedTeam     string         `json:"assignedTeam,omitempty"`
	AssignedUser     string         `json:"assignedUser,omitempty"`
	Priority         Priority       `json:"priority"`
	ReceivedAt       time.Time      `json:"receivedAt"`
	ProcessedAt      *time.Time     `json:"processedAt,omitempty"`
	AIGeneratedReply string         `json:"aiGeneratedReply,omitempty"`
	FinalReply       string         `json:"finalReply,omitempty"`
	Metadata         *EmailMetadata `json:"metadata,omitempty"`
}

// EmailMetadata 后端分析得到的附加信息
type EmailMetadata struct {
	Language       string   `json:"language,omitempty"`
	Sentiment      string   `json:"sentiment,omitempty"`
	SentimentScore *float64 `json:"sentimentScore,omitempty"`
	Urgency        string   `json:"urgency,omitempty"`
	CustomerTier   string   `json:"customerTier,omitempty"`
	ProcessingTime string   `json:"processingTime,omitempty"`
}

// IsPending 邮件是否仍待处理（未回复且未关闭）
func (e *Email) IsPending() bool {
	return e.Status != StatusResponded && e.Status != StatusClosed
}

// EmailRequest 新建邮件请求
type EmailRequest struct {
	From        string   `json:"from"`
	To          string   `json:"to"`
	CC          string   `json:"cc,omitempty"`
	BCC         string   `json:"bcc,omitempty"`
	Subject     string   `json:"subject"`
	Body        string   `json:"body"`
	HTMLBody    string   `json:"htmlBody,omitempty"`
	Attachments []string `json:"attachments,omitempty"`
	MessageID   string   `json:"messageId,omitempty"`
}

// DefaultSender 新建邮件未指定发件人时使用的地址
const DefaultSender = "support@company.com"

// EmailFilters 邮件列表过滤条件，空字符串表示不过滤
type EmailFilters struct {
	Status   string `json:"status,omitempty" form:"status"`
	Team     string `json:"team,omitempty" form:"team"`
	User     string `json:"user,omitempty" form:"user"`
	Intent   string `json:"intent,omitempty" form:"intent"`
	Priority string `json:"priority,omitempty" form:"priority"`
}

// IsEmpty 是否没有任何过滤条件
func (f EmailFilters) IsEmpty() bool {
	return len(f.Pairs()) == 0
}

// Pairs 返回去除空白后非空的过滤条件
func (f EmailFilters) Pairs() map[string]string {
	out := make(map[string]string, 5)
	add := func(k, v string) {
		if v = strings.TrimSpace(v); v != "" {
			out[k] = v
		}
	}
	add("status", f.Status)
	add("team", f.Team)
	add("user", f.User)
	add("intent", f.Intent)
	add("priority", f.Priority)
	return out
}

// Match 判断邮件是否满足过滤条件（用于后端不支持的字段在本地过滤）
func (f EmailFilters) Match(e *Email) bool {
	for k, v := range f.Pairs() {
		switch k {
		case "status":
			if !strings.EqualFold(string(e.Status), v) {
				return false
			}
		case "intent":
			if !strings.EqualFold(string(e.Intent), v) {
				return false
			}
		case "priority":
			if !strings.EqualFold(string(e.Priority), v) {
				return false
			}
		case "team":
			if !strings.EqualFold(e.AssignedTeam, v) {
				return false
			}
		case "user":
			if !strings.EqualFold(e.AssignedUser, v) {
				return false
			}
		}
	}
	return true
}

// EmailStatistics 后端汇总的邮件统计
type EmailStatistics struct {
	TotalEmails         int64                 `json:"totalEmails"`
	PendingEmails       int64                 `json:"pendingEmails"`
	ResolvedEmails      int64                 `json:"resolvedEmails"`
	EmailsByIntent      map[EmailIntent]int64 `json:"emailsByIntent"`
	EmailsByStatus      map[EmailStatus]int64 `json:"emailsByStatus"`
	AverageResponseTime float64               `json:"averageResponseTime"`
	IntentDistribution  map[string]int64      `json:"intentDistribution"`
}

func normalizeEnum(value string) string {
	v := strings.ToUpper(strings.TrimSpace(value))
	v = strings.ReplaceAll(v, "-", "_")
	return strings.ReplaceAll(v, " ", "_")
}
