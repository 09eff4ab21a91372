package service

import (
	"context"

	"go.uber.org/zap"

	"triagedesk/dashboard/internal/domain"
	"triagedesk/dashboard/internal/draft"
	"triagedesk/dashboard/internal/query"
)

// Backend 服务层用到的后端操作，*backend.Client 实现了该接口
type Backend interface {
	CreateEmail(ctx context.Context, req domain.EmailRequest) (*domain.Email, error)
	ListEmails(ctx context.Context, filters domain.EmailFilters) ([]domain.Email, error)
	GetEmail(ctx context.Context, id string) (*domain.Email, error)
	ListHighPriorityEmails(ctx context.Context) ([]domain.Email, error)
	AssignTeam(ctx context.Context, id, teamID string) (*domain.Email, error)
	AssignUser(ctx context.Context, id, userID string) (*domain.Email, error)
	UpdateStatus(ctx context.Context, id string, status domain.EmailStatus) (*domain.Email, error)
	UpdatePriority(ctx context.Context, id string, priority domain.Priority) (*domain.Email, error)
	AddNote(ctx context.Context, id, note, userID string) (*domain.Email, error)
	SendReply(ctx context.Context, id, reply, userID string) (*domain.Email, error)
	GenerateAIReply(ctx context.Context, req domain.AiReplyRequest) (*domain.AiReplyResponse, error)
	GetStatistics(ctx context.Context) (*domain.EmailStatistics, error)

	ListTeams(ctx context.Context) ([]domain.Team, error)
	GetTeam(ctx context.Context, id string) (*domain.Team, error)
	CreateTeam(ctx context.Context, in domain.TeamInput) (*domain.Team, error)
	UpdateTeam(ctx context.Context, id string, in domain.TeamInput) (*domain.Team, error)
	DeleteTeam(ctx context.Context, id string) error
	GetAssignmentRules(ctx context.Context) (domain.AssignmentRules, error)
	UpdateAssignmentRule(ctx context.Context, intent domain.EmailIntent, teamName string) error

	CurrentUser(ctx context.Context) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
}

// Service 组合后端、查询缓存和草稿存储，为各个视图提供数据与变更操作
type Service struct {
	api    Backend
	cache  *query.Client
	drafts *draft.Drafts
	log    *zap.Logger
}

// New 创建服务
func New(api Backend, cache *query.Client, drafts *draft.Drafts, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		api:    api,
		cache:  cache,
		drafts: drafts,
		log:    log,
	}
}

// Cache 返回查询缓存（用于状态查询和健康检查）
func (s *Service) Cache() *query.Client {
	return s.cache
}

// 各类变更成功后需要失效的键
func emailInvalidations(id string) []query.Key {
	return []query.Key{
		query.EmailKey(id),
		query.KeyEmails,
		query.KeyRecentEmails,
		query.KeyHighPriorityEmails,
		query.KeyEmailStatistics,
	}
}

var (
	createEmailInvalidations = []query.Key{
		query.KeyEmails,
		query.KeyRecentEmails,
		query.KeyHighPriorityEmails,
		query.KeyEmailStatistics,
	}
	teamInvalidations           = []query.Key{query.KeyTeams}
	assignmentRuleInvalidations = []query.Key{query.KeyAssignmentRules}
)

// ========== 带缓存的读取 ==========

// Emails 按过滤条件读取邮件列表
//
// 后端不支持按优先级过滤，优先级条件在本地应用。
func (s *Service) Emails(ctx context.Context, filters domain.EmailFilters) ([]domain.Email, error) {
	return query.Query(ctx, s.cache, query.EmailsKey(filters), func(ctx context.Context) ([]domain.Email, error) {
		emails, err := s.api.ListEmails(ctx, filters)
		if err != nil {
			return nil, err
		}
		p := filters.Pairs()["priority"]
		if p == "" {
			return emails, nil
		}
		byPriority := domain.EmailFilters{Priority: p}
		out := make([]domain.Email, 0, len(emails))
		for i := range emails {
			if byPriority.Match(&emails[i]) {
				out = append(out, emails[i])
			}
		}
		return out, nil
	})
}

// Email 读取单封邮件
func (s *Service) Email(ctx context.Context, id string) (*domain.Email, error) {
	if err := domain.ValidateEmailID(id); err != nil {
		return nil, err
	}
	return query.Query(ctx, s.cache, query.EmailKey(id), func(ctx context.Context) (*domain.Email, error) {
		return s.api.GetEmail(ctx, id)
	})
}

// RecentEmails 仪表盘“最近邮件”使用的列表
func (s *Service) RecentEmails(ctx context.Context) ([]domain.Email, error) {
	return query.Query(ctx, s.cache, query.KeyRecentEmails, func(ctx context.Context) ([]domain.Email, error) {
		return s.api.ListEmails(ctx, domain.EmailFilters{})
	})
}

// HighPriorityEmails 高优先级待处理邮件
func (s *Service) HighPriorityEmails(ctx context.Context) ([]domain.Email, error) {
	return query.Query(ctx, s.cache, query.KeyHighPriorityEmails, s.api.ListHighPriorityEmails)
}

// Statistics 邮件统计
func (s *Service) Statistics(ctx context.Context) (*domain.EmailStatistics, error) {
	return query.Query(ctx, s.cache, query.KeyEmailStatistics, s.api.GetStatistics)
}

// Teams 全部团队
func (s *Service) Teams(ctx context.Context) ([]domain.Team, error) {
	return query.Query(ctx, s.cache, query.KeyTeams, s.api.ListTeams)
}

// Team 单个团队
func (s *Service) Team(ctx context.Context, id string) (*domain.Team, error) {
	return query.Query(ctx, s.cache, query.TeamKey(id), func(ctx context.Context) (*domain.Team, error) {
		return s.api.GetTeam(ctx, id)
	})
}

// AssignmentRules 意图到团队的分配规则
func (s *Service) AssignmentRules(ctx context.Context) (domain.AssignmentRules, error) {
	return query.Query(ctx, s.cache, query.KeyAssignmentRules, s.api.GetAssignmentRules)
}

// Users 全部客服人员
func (s *Service) Users(ctx context.Context) ([]domain.User, error) {
	return query.Query(ctx, s.cache, query.KeyUsers, s.api.ListUsers)
}

// CurrentUser 当前登录的客服人员
func (s *Service) CurrentUser(ctx context.Context) (*domain.User, error) {
	return query.Query(ctx, s.cache, query.KeyCurrentUser, s.api.CurrentUser)
}
