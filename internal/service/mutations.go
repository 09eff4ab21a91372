package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"triagedesk/dashboard/internal/domain"
	"triagedesk/dashboard/internal/query"
)

// mutateEmail 执行单封邮件的变更，成功后失效该邮件、各个列表和统计
func (s *Service) mutateEmail(ctx context.Context, id string, fn func(context.Context) (*domain.Email, error)) (*domain.Email, error) {
	return query.Do(ctx, s.cache, fn, emailInvalidations(id)...)
}

// UpdateStatus 设置邮件状态，不限制状态之间的流转
func (s *Service) UpdateStatus(ctx context.Context, id string, status domain.EmailStatus) (*domain.Email, error) {
	if err := domain.ValidateEmailID(id); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, &domain.ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", status), Err: domain.ErrInvalidEnum}
	}
	email, err := s.mutateEmail(ctx, id, func(ctx context.Context) (*domain.Email, error) {
		return s.api.UpdateStatus(ctx, id, status)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("email status updated", zap.String("emailId", id), zap.String("status", string(status)))
	return email, nil
}

// Assign 一键分配（状态置为 ASSIGNED）
func (s *Service) Assign(ctx context.Context, id string) (*domain.Email, error) {
	return s.UpdateStatus(ctx, id, domain.StatusAssigned)
}

// Escalate 一键升级（状态置为 ESCALATED）
func (s *Service) Escalate(ctx context.Context, id string) (*domain.Email, error) {
	return s.UpdateStatus(ctx, id, domain.StatusEscalated)
}

// UpdatePriority 设置邮件优先级
func (s *Service) UpdatePriority(ctx context.Context, id string, priority domain.Priority) (*domain.Email, error) {
	if err := domain.ValidateEmailID(id); err != nil {
		return nil, err
	}
	if !priority.Valid() {
		return nil, &domain.ValidationError{Field: "priority", Message: fmt.Sprintf("unknown priority %q", priority), Err: domain.ErrInvalidEnum}
	}
	return s.mutateEmail(ctx, id, func(ctx context.Context) (*domain.Email, error) {
		return s.api.UpdatePriority(ctx, id, priority)
	})
}

// AssignTeam 把邮件分配给团队
func (s *Service) AssignTeam(ctx context.Context, id, teamID string) (*domain.Email, error) {
	if err := domain.ValidateEmailID(id); err != nil {
		return nil, err
	}
	if strings.TrimSpace(teamID) == "" {
		return nil, &domain.ValidationError{Field: "teamId", Message: "team is required", Err: domain.ErrRequired}
	}
	return s.mutateEmail(ctx, id, func(ctx context.Context) (*domain.Email, error) {
		return s.api.AssignTeam(ctx, id, teamID)
	})
}

// AssignUser 把邮件分配给客服人员
func (s *Service) AssignUser(ctx context.Context, id, userID string) (*domain.Email, error) {
	if err := domain.ValidateEmailID(id); err != nil {
		return nil, err
	}
	if strings.TrimSpace(userID) == "" {
		return nil, &domain.ValidationError{Field: "userId", Message: "user is required", Err: domain.ErrRequired}
	}
	return s.mutateEmail(ctx, id, func(ctx context.Context) (*domain.Email, error) {
		return s.api.AssignUser(ctx, id, userID)
	})
}

// AddNote 添加内部备注
func (s *Service) AddNote(ctx context.Context, id, note, userID string) (*domain.Email, error) {
	if err := domain.ValidateEmailID(id); err != nil {
		return nil, err
	}
	if err := domain.ValidateNote(note); err != nil {
		return nil, err
	}
	return s.mutateEmail(ctx, id, func(ctx context.Context) (*domain.Email, error) {
		return s.api.AddNote(ctx, id, note, userID)
	})
}

// CreateEmail 新建邮件，未指定发件人时使用默认地址
func (s *Service) CreateEmail(ctx context.Context, req domain.EmailRequest) (*domain.Email, error) {
	if strings.TrimSpace(req.From) == "" {
		req.From = domain.DefaultSender
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	email, err := query.Do(ctx, s.cache, func(ctx context.Context) (*domain.Email, error) {
		return s.api.CreateEmail(ctx, req)
	}, createEmailInvalidations...)
	if err != nil {
		return nil, err
	}
	s.log.Info("email created", zap.String("emailId", email.ID), zap.String("to", req.To))
	return email, nil
}

// CreateTeam 新建团队，状态默认为 ACTIVE
func (s *Service) CreateTeam(ctx context.Context, in domain.TeamInput) (*domain.Team, error) {
	in = normalizeTeamInput(in)
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return query.Do(ctx, s.cache, func(ctx context.Context) (*domain.Team, error) {
		return s.api.CreateTeam(ctx, in)
	}, teamInvalidations...)
}

// UpdateTeam 更新团队
func (s *Service) UpdateTeam(ctx context.Context, id string, in domain.TeamInput) (*domain.Team, error) {
	if strings.TrimSpace(id) == "" {
		return nil, &domain.ValidationError{Field: "id", Message: "team id is required", Err: domain.ErrRequired}
	}
	in = normalizeTeamInput(in)
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return query.Do(ctx, s.cache, func(ctx context.Context) (*domain.Team, error) {
		return s.api.UpdateTeam(ctx, id, in)
	}, teamInvalidations...)
}

// DeleteTeam 删除团队
func (s *Service) DeleteTeam(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return &domain.ValidationError{Field: "id", Message: "team id is required", Err: domain.ErrRequired}
	}
	_, err := query.Do(ctx, s.cache, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.api.DeleteTeam(ctx, id)
	}, teamInvalidations...)
	if err != nil {
		return err
	}
	s.log.Info("team deleted", zap.String("teamId", id))
	return nil
}

// UpdateAssignmentRule 修改某个意图负责的团队
func (s *Service) UpdateAssignmentRule(ctx context.Context, intent domain.EmailIntent, teamName string) error {
	if err := domain.ValidateAssignmentRule(intent, teamName); err != nil {
		return err
	}
	_, err := query.Do(ctx, s.cache, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.api.UpdateAssignmentRule(ctx, intent, teamName)
	}, assignmentRuleInvalidations...)
	return err
}

func normalizeTeamInput(in domain.TeamInput) domain.TeamInput {
	in.Name = strings.TrimSpace(in.Name)
	if in.Status == "" {
		in.Status = domain.TeamActive
	}
	if in.MemberIDs == nil {
		in.MemberIDs = []string{}
	}
	if in.HandledIntents == nil {
		in.HandledIntents = []domain.EmailIntent{}
	}
	return in
}
