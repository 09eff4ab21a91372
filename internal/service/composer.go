package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"triagedesk/dashboard/internal/domain"
	"triagedesk/dashboard/internal/presentation"
)

// defaultReplySubject 原邮件没有主题时的回复主题
const defaultReplySubject = "Re: Your Email"

// ComposerView 回复编辑器的初始状态
type ComposerView struct {
	EmailID   string                 `json:"emailId"`
	From      string                 `json:"from"`
	Subject   string                 `json:"subject"`
	Body      string                 `json:"body,omitempty"`
	Draft     domain.Draft           `json:"draft"`
	Restored  bool                   `json:"restored"`
	Templates []domain.ReplyTemplate `json:"templates"`
}

// FeedbackRow 带颜色的反馈条目
type FeedbackRow struct {
	domain.FeedbackItem
	Color presentation.Color `json:"color"`
	Class string             `json:"class"`
}

// GeneratedReply AI 生成结果及展示字段
type GeneratedReply struct {
	*domain.AiReplyResponse
	ToneFeedback    []FeedbackRow `json:"toneFeedback"`
	ClarityFeedback []FeedbackRow `json:"clarityFeedback"`
	Confidence      string        `json:"confidence"`
}

// DefaultAiReplyRequest 编辑器打开时的生成参数
func DefaultAiReplyRequest(emailID string) domain.AiReplyRequest {
	return domain.AiReplyRequest{
		EmailID:                emailID,
		Tone:                   domain.DefaultTone,
		Style:                  domain.DefaultStyle,
		IncludeToneFeedback:    true,
		IncludeClarityFeedback: true,
	}
}

func replySubject(subject string) string {
	if strings.TrimSpace(subject) == "" {
		return defaultReplySubject
	}
	return "Re: " + subject
}

// OpenComposer 打开回复编辑器，有草稿时恢复草稿
func (s *Service) OpenComposer(ctx context.Context, emailID string) (*ComposerView, error) {
	email, err := s.Email(ctx, emailID)
	if err != nil {
		return nil, err
	}

	view := &ComposerView{
		EmailID:   emailID,
		From:      email.From,
		Subject:   email.Subject,
		Body:      email.Body,
		Draft:     domain.Draft{Subject: replySubject(email.Subject)},
		Templates: domain.ReplyTemplates,
	}

	saved, ok, err := s.drafts.Load(ctx, emailID)
	if err != nil {
		return nil, err
	}
	if ok {
		view.Restored = true
		view.Draft.ReplyContent = saved.ReplyContent
		if strings.TrimSpace(saved.Subject) != "" {
			view.Draft.Subject = saved.Subject
		}
	}
	return view, nil
}

// Draft 读取草稿
func (s *Service) Draft(ctx context.Context, emailID string) (domain.Draft, bool, error) {
	if err := domain.ValidateEmailID(emailID); err != nil {
		return domain.Draft{}, false, err
	}
	return s.drafts.Load(ctx, emailID)
}

// SaveDraft 覆盖保存草稿
func (s *Service) SaveDraft(ctx context.Context, emailID string, d domain.Draft) error {
	if err := domain.ValidateEmailID(emailID); err != nil {
		return err
	}
	if strings.TrimSpace(d.Subject) == "" {
		d.Subject = defaultReplySubject
	}
	return s.drafts.Save(ctx, emailID, d)
}

// DiscardDraft 删除草稿
func (s *Service) DiscardDraft(ctx context.Context, emailID string) error {
	if err := domain.ValidateEmailID(emailID); err != nil {
		return err
	}
	return s.drafts.Delete(ctx, emailID)
}

// GenerateReply 调用 AI 生成回复并把生成的正文写入草稿
//
// 生成结果不进入查询缓存。
func (s *Service) GenerateReply(ctx context.Context, req domain.AiReplyRequest) (*GeneratedReply, error) {
	if err := domain.ValidateEmailID(req.EmailID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Tone) == "" {
		req.Tone = domain.DefaultTone
	}
	if strings.TrimSpace(req.Style) == "" {
		req.Style = domain.DefaultStyle
	}

	resp, err := s.api.GenerateAIReply(ctx, req)
	if err != nil {
		return nil, err
	}

	// 草稿只是附带写入，存储出错不影响已生成的回复
	if d, ok, err := s.drafts.Load(ctx, req.EmailID); err != nil {
		s.log.Warn("failed to load draft for generated reply", zap.String("emailId", req.EmailID), zap.Error(err))
	} else {
		if !ok || strings.TrimSpace(d.Subject) == "" {
			d.Subject = defaultReplySubject
		}
		d.ReplyContent = resp.GeneratedReply
		if err := s.drafts.Save(ctx, req.EmailID, d); err != nil {
			s.log.Warn("failed to save generated reply as draft", zap.String("emailId", req.EmailID), zap.Error(err))
		}
	}

	return &GeneratedReply{
		AiReplyResponse: resp,
		ToneFeedback:    feedbackRows(resp.ToneFeedback),
		ClarityFeedback: feedbackRows(resp.ClarityFeedback),
		Confidence:      presentation.ConfidenceLabel(resp.ConfidenceScore),
	}, nil
}

func feedbackRows(items []domain.FeedbackItem) []FeedbackRow {
	rows := make([]FeedbackRow, 0, len(items))
	for _, item := range items {
		c := presentation.SeverityColor(item.Severity)
		rows = append(rows, FeedbackRow{FeedbackItem: item, Color: c, Class: c.FeedbackClass()})
	}
	return rows
}

// SendReply 发送回复
//
// 正文为空时直接返回校验错误，不发请求也不动草稿。发送成功后删除草稿，
// 失败时草稿保持不变以便重试。
func (s *Service) SendReply(ctx context.Context, emailID, body, userID string) (*domain.Email, error) {
	if err := domain.ValidateEmailID(emailID); err != nil {
		return nil, err
	}
	if err := domain.ValidateReply(body); err != nil {
		return nil, err
	}

	email, err := s.mutateEmail(ctx, emailID, func(ctx context.Context) (*domain.Email, error) {
		return s.api.SendReply(ctx, emailID, body, userID)
	})
	if err != nil {
		s.log.Warn("failed to send reply", zap.String("emailId", emailID), zap.Error(err))
		return nil, err
	}

	if err := s.drafts.Delete(ctx, emailID); err != nil {
		s.log.Warn("reply sent but draft could not be removed", zap.String("emailId", emailID), zap.Error(err))
	}
	s.log.Info("reply sent", zap.String("emailId", emailID))
	return email, nil
}
