package httptransport

import (
	"context"
	"errors"
	"net/url"

	"github.com/gin-gonic/gin"

	"triagedesk/dashboard/internal/backend"
	"triagedesk/dashboard/internal/domain"
)

// 通用提示信息
const (
	MsgOK             = "ok"
	MsgInvalidRequest = "Invalid request."
	MsgInternalError  = "Something went wrong. Please try again."
	MsgBackendTimeout = "The triage service did not respond in time."

	MsgDashboardFailed  = "Error loading dashboard. Please try again."
	MsgAdminFailed      = "Error loading statistics. Please try again."
	MsgEmailsFailed     = "Error loading emails. Please try again."
	MsgEmailFailed      = "Error loading email. Please try again."
	MsgEmailNotFound    = "Email not found."
	MsgEmailCreated     = "Email created successfully!"
	MsgEmailCreate      = "Failed to create email. Please try again."
	MsgEmailUpdate      = "Failed to update email. Please try again."
	MsgNoteFailed       = "Failed to add note. Please try again."
	MsgReplySent        = "Reply sent successfully!"
	MsgReplyFailed      = "Failed to send reply. Please try again."
	MsgAIReplyFailed    = "Failed to generate reply"
	MsgDraftFailed      = "Failed to save draft."
	MsgDraftNotFound    = "No draft saved for this email."
	MsgTeamsFailed      = "Error loading teams. Please try again."
	MsgTeamNotFound     = "Team not found."
	MsgTeamSaveFailed   = "Failed to save team. Please try again."
	MsgTeamDeleteFailed = "Failed to delete team. Please try again."
	MsgRuleFailed       = "Failed to update assignment rule. Please try again."
	MsgUsersFailed      = "Error loading users. Please try again."
)

// respondError 把服务层错误映射为 HTTP 响应
//
// 校验错误返回 400 和校验信息；后端 404 返回 notFound；后端错误和网络错误
// 返回 502，其余返回 500。原始错误只写日志。
func respondError(c *gin.Context, err error, fallback, notFound string) {
	_ = c.Error(err)

	var (
		vErr   *domain.ValidationError
		urlErr *url.Error
	)
	switch {
	case errors.As(err, &vErr):
		BadRequest(c, vErr.Message)
	case backend.IsNotFound(err) && notFound != "":
		NotFound(c, notFound)
	case errors.Is(err, context.DeadlineExceeded):
		GatewayTimeout(c, MsgBackendTimeout)
	case backend.StatusCode(err) != 0, errors.As(err, &urlErr):
		BadGateway(c, fallback)
	default:
		InternalError(c, fallback)
	}
}
