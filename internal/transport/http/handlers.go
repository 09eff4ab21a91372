package httptransport

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"triagedesk/dashboard/internal/domain"
	"triagedesk/dashboard/internal/service"
)

// ========== 视图 ==========

func (h *Handler) dashboard(c *gin.Context) {
	view, err := h.svc.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, err, MsgDashboardFailed, "")
		return
	}
	Success(c, view)
}

func (h *Handler) adminPanel(c *gin.Context) {
	view, err := h.svc.AdminPanel(c.Request.Context())
	if err != nil {
		respondError(c, err, MsgAdminFailed, "")
		return
	}
	Success(c, view)
}

// ========== 邮件 ==========

// listEmails 过滤参数 status/team/user/intent/priority，排序参数 sort/order
func (h *Handler) listEmails(c *gin.Context) {
	var filters domain.EmailFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}
	order := service.ParseSort(c.Query("sort"), c.Query("order"))

	view, err := h.svc.EmailList(c.Request.Context(), filters, order)
	if err != nil {
		respondError(c, err, MsgEmailsFailed, "")
		return
	}
	Success(c, view)
}

func (h *Handler) createEmail(c *gin.Context) {
	var req domain.EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	email, err := h.svc.CreateEmail(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, MsgEmailCreate, "")
		return
	}
	CreatedWithMsg(c, MsgEmailCreated, email)
}

func (h *Handler) getEmail(c *gin.Context) {
	view, err := h.svc.EmailDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, MsgEmailFailed, MsgEmailNotFound)
		return
	}
	Success(c, view)
}

// updateStatus 状态大小写不敏感，未知状态返回 400
func (h *Handler) updateStatus(c *gin.Context) {
	status, _ := domain.ParseStatus(c.Param("status"))
	h.respondEmail(c)(h.svc.UpdateStatus(c.Request.Context(), c.Param("id"), status))
}

func (h *Handler) updatePriority(c *gin.Context) {
	priority, _ := domain.ParsePriority(c.Param("priority"))
	h.respondEmail(c)(h.svc.UpdatePriority(c.Request.Context(), c.Param("id"), priority))
}

func (h *Handler) assign(c *gin.Context) {
	h.respondEmail(c)(h.svc.Assign(c.Request.Context(), c.Param("id")))
}

func (h *Handler) escalate(c *gin.Context) {
	h.respondEmail(c)(h.svc.Escalate(c.Request.Context(), c.Param("id")))
}

func (h *Handler) assignTeam(c *gin.Context) {
	h.respondEmail(c)(h.svc.AssignTeam(c.Request.Context(), c.Param("id"), c.Param("teamId")))
}

func (h *Handler) assignUser(c *gin.Context) {
	h.respondEmail(c)(h.svc.AssignUser(c.Request.Context(), c.Param("id"), c.Param("userId")))
}

// respondEmail 邮件变更的统一响应
func (h *Handler) respondEmail(c *gin.Context) func(*domain.Email, error) {
	return func(email *domain.Email, err error) {
		if err != nil {
			respondError(c, err, MsgEmailUpdate, MsgEmailNotFound)
			return
		}
		Success(c, email)
	}
}

type noteRequest struct {
	Note   string `json:"note"`
	UserID string `json:"userId"`
}

func (h *Handler) addNote(c *gin.Context) {
	var req noteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	email, err := h.svc.AddNote(c.Request.Context(), c.Param("id"), req.Note, req.UserID)
	if err != nil {
		respondError(c, err, MsgNoteFailed, MsgEmailNotFound)
		return
	}
	Success(c, email)
}

type replyRequest struct {
	Reply  string `json:"reply"`
	UserID string `json:"userId"`
}

func (h *Handler) sendReply(c *gin.Context) {
	var req replyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	email, err := h.svc.SendReply(c.Request.Context(), c.Param("id"), req.Reply, req.UserID)
	if err != nil {
		respondError(c, err, MsgReplyFailed, MsgEmailNotFound)
		return
	}
	SuccessWithMsg(c, MsgReplySent, email)
}

// generateReply 请求体可以为空，此时使用默认的语气与风格
func (h *Handler) generateReply(c *gin.Context) {
	id := c.Param("id")
	req := service.DefaultAiReplyRequest(id)
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		BadRequest(c, MsgInvalidRequest)
		return
	}
	req.EmailID = id

	reply, err := h.svc.GenerateReply(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, MsgAIReplyFailed, MsgEmailNotFound)
		return
	}
	Success(c, reply)
}

func (h *Handler) openComposer(c *gin.Context) {
	view, err := h.svc.OpenComposer(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, MsgEmailFailed, MsgEmailNotFound)
		return
	}
	Success(c, view)
}

// ========== 草稿 ==========

func (h *Handler) getDraft(c *gin.Context) {
	d, ok, err := h.svc.Draft(c.Request.Context(), c.Param("emailId"))
	if err != nil {
		respondError(c, err, MsgDraftFailed, "")
		return
	}
	if !ok {
		NotFound(c, MsgDraftNotFound)
		return
	}
	Success(c, d)
}

func (h *Handler) saveDraft(c *gin.Context) {
	var d domain.Draft
	if err := c.ShouldBindJSON(&d); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}
	if err := h.svc.SaveDraft(c.Request.Context(), c.Param("emailId"), d); err != nil {
		respondError(c, err, MsgDraftFailed, "")
		return
	}
	NoContent(c)
}

func (h *Handler) discardDraft(c *gin.Context) {
	if err := h.svc.DiscardDraft(c.Request.Context(), c.Param("emailId")); err != nil {
		respondError(c, err, MsgDraftFailed, "")
		return
	}
	NoContent(c)
}

// ========== 团队 ==========

func (h *Handler) teamManagement(c *gin.Context) {
	view, err := h.svc.TeamManagement(c.Request.Context())
	if err != nil {
		respondError(c, err, MsgTeamsFailed, "")
		return
	}
	Success(c, view)
}

func (h *Handler) getTeam(c *gin.Context) {
	team, err := h.svc.Team(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, MsgTeamsFailed, MsgTeamNotFound)
		return
	}
	Success(c, team)
}

func (h *Handler) createTeam(c *gin.Context) {
	var in domain.TeamInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	team, err := h.svc.CreateTeam(c.Request.Context(), in)
	if err != nil {
		respondError(c, err, MsgTeamSaveFailed, "")
		return
	}
	CreatedWithMsg(c, MsgOK, team)
}

func (h *Handler) updateTeam(c *gin.Context) {
	var in domain.TeamInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	team, err := h.svc.UpdateTeam(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, err, MsgTeamSaveFailed, MsgTeamNotFound)
		return
	}
	Success(c, team)
}

func (h *Handler) deleteTeam(c *gin.Context) {
	if err := h.svc.DeleteTeam(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err, MsgTeamDeleteFailed, MsgTeamNotFound)
		return
	}
	NoContent(c)
}

func (h *Handler) assignmentRules(c *gin.Context) {
	rules, err := h.svc.AssignmentRules(c.Request.Context())
	if err != nil {
		respondError(c, err, MsgTeamsFailed, "")
		return
	}
	Success(c, rules)
}

// updateAssignmentRule PUT /api/teams/assignment-rules/:intent?teamName=
func (h *Handler) updateAssignmentRule(c *gin.Context) {
	intent, _ := domain.ParseIntent(c.Param("intent"))
	if err := h.svc.UpdateAssignmentRule(c.Request.Context(), intent, c.Query("teamName")); err != nil {
		respondError(c, err, MsgRuleFailed, "")
		return
	}
	NoContent(c)
}

// ========== 客服人员 ==========

func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.svc.Users(c.Request.Context())
	if err != nil {
		respondError(c, err, MsgUsersFailed, "")
		return
	}
	Success(c, users)
}

func (h *Handler) currentUser(c *gin.Context) {
	user, err := h.svc.CurrentUser(c.Request.Context())
	if err != nil {
		respondError(c, err, MsgUsersFailed, "")
		return
	}
	Success(c, user)
}
