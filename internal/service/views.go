package service

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"triagedesk/dashboard/internal/domain"
	"triagedesk/dashboard/internal/presentation"
)

// 仪表盘列表条数
const (
	recentEmailLimit    = 10
	highPriorityLimit   = 5
	recentActivityLimit = 5
)

// EmailRow 列表中一行邮件及其展示字段
type EmailRow struct {
	domain.Email
	StatusLabel   string `json:"statusLabel"`
	StatusClass   string `json:"statusClass"`
	PriorityLabel string `json:"priorityLabel"`
	PriorityClass string `json:"priorityClass"`
	IntentLabel   string `json:"intentLabel"`
	Confidence    string `json:"confidence"`
	Received      string `json:"received"`
}

func newEmailRow(e domain.Email) EmailRow {
	return EmailRow{
		Email:         e,
		StatusLabel:   presentation.Label(e.Status),
		StatusClass:   presentation.StatusColor(e.Status).BadgeClass(),
		PriorityLabel: presentation.Label(e.Priority),
		PriorityClass: presentation.PriorityColor(e.Priority).BadgeClass(),
		IntentLabel:   presentation.Label(e.Intent),
		Confidence:    presentation.ConfidenceLabel(e.IntentConfidence),
		Received:      presentation.ListDate(e.ReceivedAt),
	}
}

func newEmailRows(emails []domain.Email, limit int) []EmailRow {
	if limit > 0 && len(emails) > limit {
		emails = emails[:limit]
	}
	rows := make([]EmailRow, 0, len(emails))
	for _, e := range emails {
		rows = append(rows, newEmailRow(e))
	}
	return rows
}

// StatCard 统计卡片
type StatCard struct {
	Name  string             `json:"name"`
	Value string             `json:"value"`
	Color presentation.Color `json:"color"`
}

// IntentCount 意图图表中的一项
type IntentCount struct {
	Intent domain.EmailIntent `json:"intent"`
	Label  string             `json:"label"`
	Count  int64              `json:"count"`
}

// EnumCount 按状态或优先级统计的数量
type EnumCount struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Count int    `json:"count"`
	Class string `json:"class"`
}

// intentChartLabels 图表中意图的展示名称
var intentChartLabels = map[domain.EmailIntent]string{
	domain.IntentRefundRequest:    "Refund Request",
	domain.IntentBugReport:        "Bug Report",
	domain.IntentFeatureInquiry:   "Feature Inquiry",
	domain.IntentGeneralSupport:   "General Support",
	domain.IntentBillingIssue:     "Billing Issue",
	domain.IntentTechnicalSupport: "Technical Support",
	domain.IntentComplaint:        "Complaint",
	domain.IntentFeedback:         "Feedback",
	domain.IntentUnknown:          "Unknown",
}

func intentChart(stats *domain.EmailStatistics) []IntentCount {
	out := make([]IntentCount, 0, len(intentChartLabels))
	for _, intent := range domain.AllIntents() {
		label, ok := intentChartLabels[intent]
		if !ok {
			label = presentation.Label(intent)
		}
		out = append(out, IntentCount{Intent: intent, Label: label, Count: stats.EmailsByIntent[intent]})
	}
	return out
}

// ========== 仪表盘 ==========

// DashboardView 仪表盘
type DashboardView struct {
	Stats          []StatCard    `json:"stats"`
	IntentChart    []IntentCount `json:"intentChart"`
	StatusCounts   []EnumCount   `json:"statusCounts"`
	PriorityCounts []EnumCount   `json:"priorityCounts"`
	RecentEmails   []EmailRow    `json:"recentEmails"`
	HighPriority   []EmailRow    `json:"highPriority"`
	RecentActivity []EmailRow    `json:"recentActivity"`
}

// Dashboard 并行读取统计、最近邮件、高优先级邮件和全部邮件，任一失败则整体失败
func (s *Service) Dashboard(ctx context.Context) (*DashboardView, error) {
	var (
		stats        *domain.EmailStatistics
		recent       []domain.Email
		highPriority []domain.Email
		all          []domain.Email
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats, err = s.Statistics(gctx)
		return err
	})
	g.Go(func() (err error) {
		recent, err = s.RecentEmails(gctx)
		return err
	})
	g.Go(func() (err error) {
		highPriority, err = s.HighPriorityEmails(gctx)
		return err
	})
	g.Go(func() (err error) {
		all, err = s.Emails(gctx, domain.EmailFilters{})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &DashboardView{
		Stats: []StatCard{
			{Name: "Total Emails", Value: strconv.FormatInt(stats.TotalEmails, 10), Color: presentation.Blue},
			{Name: "Pending", Value: strconv.FormatInt(stats.PendingEmails, 10), Color: presentation.Yellow},
			{Name: "Resolved", Value: strconv.FormatInt(stats.ResolvedEmails, 10), Color: presentation.Green},
			{Name: "High Priority", Value: strconv.Itoa(len(highPriority)), Color: presentation.Red},
		},
		IntentChart:    intentChart(stats),
		StatusCounts:   statusCounts(all),
		PriorityCounts: priorityCounts(all),
		RecentEmails:   newEmailRows(recent, recentEmailLimit),
		HighPriority:   newEmailRows(highPriority, highPriorityLimit),
		RecentActivity: newEmailRows(all, recentActivityLimit),
	}, nil
}

// statusCounts 按固定顺序统计各状态数量，数量为 0 的省略
func statusCounts(emails []domain.Email) []EnumCount {
	counts := make(map[domain.EmailStatus]int)
	for _, e := range emails {
		counts[e.Status]++
	}
	out := make([]EnumCount, 0, len(counts))
	for _, st := range domain.AllStatuses() {
		if n := counts[st]; n > 0 {
			out = append(out, EnumCount{
				Value: string(st),
				Label: presentation.Label(st),
				Count: n,
				Class: presentation.StatusColor(st).BadgeClass(),
			})
		}
	}
	return out
}

func priorityCounts(emails []domain.Email) []EnumCount {
	counts := make(map[domain.Priority]int)
	for _, e := range emails {
		counts[e.Priority]++
	}
	out := make([]EnumCount, 0, len(counts))
	for _, p := range domain.AllPriorities() {
		if n := counts[p]; n > 0 {
			out = append(out, EnumCount{
				Value: string(p),
				Label: presentation.Label(p),
				Count: n,
				Class: presentation.PriorityColor(p).BadgeClass(),
			})
		}
	}
	return out
}

// ========== 邮件列表 ==========

// SortField 列表排序字段
type SortField string

const (
	SortReceivedAt SortField = "receivedAt"
	SortPriority   SortField = "priority"
	SortStatus     SortField = "status"
	SortSubject    SortField = "subject"
)

// SortOrder 排序方向
type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// Sort 列表排序方式
type Sort struct {
	Field SortField `json:"field"`
	Order SortOrder `json:"order"`
}

// DefaultSort 最新的邮件在前
var DefaultSort = Sort{Field: SortReceivedAt, Order: OrderDesc}

// ParseSort 解析排序参数，未知字段回落到默认排序
func ParseSort(field, order string) Sort {
	s := DefaultSort
	switch SortField(strings.TrimSpace(field)) {
	case SortReceivedAt:
		s.Field = SortReceivedAt
	case SortPriority:
		s.Field = SortPriority
	case SortStatus:
		s.Field = SortStatus
	case SortSubject:
		s.Field = SortSubject
	}
	switch SortOrder(strings.ToLower(strings.TrimSpace(order))) {
	case OrderAsc:
		s.Order = OrderAsc
	case OrderDesc:
		s.Order = OrderDesc
	}
	return s
}

// Apply 原地稳定排序
func (s Sort) Apply(emails []domain.Email) {
	statusRank := make(map[domain.EmailStatus]int)
	for i, st := range domain.AllStatuses() {
		statusRank[st] = i
	}
	less := func(a, b *domain.Email) bool {
		switch s.Field {
		case SortPriority:
			return a.Priority.Rank() < b.Priority.Rank()
		case SortStatus:
			return statusRank[a.Status] < statusRank[b.Status]
		case SortSubject:
			return strings.ToLower(a.Subject) < strings.ToLower(b.Subject)
		default:
			return a.ReceivedAt.Before(b.ReceivedAt)
		}
	}
	sort.SliceStable(emails, func(i, j int) bool {
		if s.Order == OrderAsc {
			return less(&emails[i], &emails[j])
		}
		return less(&emails[j], &emails[i])
	})
}

// EmailListView 邮件列表
type EmailListView struct {
	Filters domain.EmailFilters `json:"filters"`
	Sort    Sort                `json:"sort"`
	Count   int                 `json:"count"`
	Emails  []EmailRow          `json:"emails"`
}

// EmailList 过滤并排序后的邮件列表，缓存中的列表不会被修改
func (s *Service) EmailList(ctx context.Context, filters domain.EmailFilters, order Sort) (*EmailListView, error) {
	emails, err := s.Emails(ctx, filters)
	if err != nil {
		return nil, err
	}
	sorted := make([]domain.Email, len(emails))
	copy(sorted, emails)
	order.Apply(sorted)

	return &EmailListView{
		Filters: filters,
		Sort:    order,
		Count:   len(sorted),
		Emails:  newEmailRows(sorted, 0),
	}, nil
}

// ========== 邮件详情 ==========

// Option 下拉选项
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// EmailDetailView 邮件详情
type EmailDetailView struct {
	Email      EmailRow      `json:"email"`
	Received   string        `json:"received"`
	Processed  string        `json:"processed,omitempty"`
	Teams      []domain.Team `json:"teams"`
	Statuses   []Option      `json:"statuses"`
	Priorities []Option      `json:"priorities"`
}

// EmailDetail 邮件详情及团队列表，占位 ID 直接拒绝，不发请求
func (s *Service) EmailDetail(ctx context.Context, id string) (*EmailDetailView, error) {
	if err := domain.ValidateEmailID(id); err != nil {
		return nil, err
	}

	var (
		email *domain.Email
		teams []domain.Team
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		email, err = s.Email(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		teams, err = s.Teams(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	view := &EmailDetailView{
		Email:    newEmailRow(*email),
		Received: presentation.DetailDate(email.ReceivedAt),
		Teams:    teams,
	}
	if email.ProcessedAt != nil {
		view.Processed = presentation.DetailDate(*email.ProcessedAt)
	}
	for _, st := range domain.AllStatuses() {
		view.Statuses = append(view.Statuses, Option{Value: string(st), Label: presentation.Label(st)})
	}
	for _, p := range domain.AllPriorities() {
		view.Priorities = append(view.Priorities, Option{Value: string(p), Label: presentation.Label(p)})
	}
	return view, nil
}

// ========== 团队管理 ==========

// TeamRow 团队列表中的一行
type TeamRow struct {
	domain.Team
	StatusClass string `json:"statusClass"`
	MemberCount int    `json:"memberCount"`
}

// RuleRow 分配规则中的一行，未配置时 TeamName 为空
type RuleRow struct {
	Intent   domain.EmailIntent `json:"intent"`
	Label    string             `json:"label"`
	TeamName string             `json:"teamName"`
}

// TeamManagementView 团队管理
type TeamManagementView struct {
	Teams []TeamRow `json:"teams"`
	Rules []RuleRow `json:"rules"`
}

// TeamManagement 团队及全部意图的分配规则
func (s *Service) TeamManagement(ctx context.Context) (*TeamManagementView, error) {
	var (
		teams []domain.Team
		rules domain.AssignmentRules
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		teams, err = s.Teams(gctx)
		return err
	})
	g.Go(func() (err error) {
		rules, err = s.AssignmentRules(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	view := &TeamManagementView{
		Teams: make([]TeamRow, 0, len(teams)),
		Rules: make([]RuleRow, 0, len(domain.AllIntents())),
	}
	for _, t := range teams {
		view.Teams = append(view.Teams, TeamRow{
			Team:        t,
			StatusClass: presentation.TeamStatusColor(t.Status).BadgeClass(),
			MemberCount: len(t.MemberIDs),
		})
	}
	for _, intent := range domain.AllIntents() {
		view.Rules = append(view.Rules, RuleRow{
			Intent:   intent,
			Label:    presentation.Label(intent),
			TeamName: rules[intent],
		})
	}
	return view, nil
}

// ========== 管理面板 ==========

// AdminPanelView 管理面板
type AdminPanelView struct {
	Stats          []StatCard    `json:"stats"`
	EmailsByIntent []IntentCount `json:"emailsByIntent"`
}

// AdminPanel 系统统计概览
func (s *Service) AdminPanel(ctx context.Context) (*AdminPanelView, error) {
	stats, err := s.Statistics(ctx)
	if err != nil {
		return nil, err
	}

	byIntent := make([]IntentCount, 0, len(stats.EmailsByIntent))
	for _, intent := range domain.AllIntents() {
		if n, ok := stats.EmailsByIntent[intent]; ok {
			byIntent = append(byIntent, IntentCount{Intent: intent, Label: presentation.Label(intent), Count: n})
		}
	}

	return &AdminPanelView{
		Stats: []StatCard{
			{Name: "Total Emails", Value: strconv.FormatInt(stats.TotalEmails, 10), Color: presentation.Blue},
			{Name: "Pending", Value: strconv.FormatInt(stats.PendingEmails, 10), Color: presentation.Yellow},
			{Name: "Resolved", Value: strconv.FormatInt(stats.ResolvedEmails, 10), Color: presentation.Green},
			{Name: "Avg Response Time", Value: presentation.ResponseTime(stats.AverageResponseTime), Color: presentation.Indigo},
			{Name: "Intent Distribution", Value: presentation.Distribution(stats.IntentDistribution), Color: presentation.Red},
		},
		EmailsByIntent: byIntent,
	}, nil
}
