package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"triagedesk/dashboard/internal/domain"
)

// emailFilterParams 后端 GET /emails 支持的过滤参数（priority 仅在本地过滤）
var emailFilterParams = []string{"status", "team", "user", "intent"}

func (c *Client) email(ctx context.Context, r request) (*domain.Email, error) {
	var raw json.RawMessage
	if err := c.do(ctx, r, &raw); err != nil {
		return nil, err
	}
	e, err := NormalizeEmail(raw)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (c *Client) emails(ctx context.Context, r request) ([]domain.Email, error) {
	var raw []json.RawMessage
	if err := c.do(ctx, r, &raw); err != nil {
		return nil, err
	}
	return normalizeEmails(raw)
}

// CreateEmail POST /emails
func (c *Client) CreateEmail(ctx context.Context, req domain.EmailRequest) (*domain.Email, error) {
	body, err := jsonBody(req)
	if err != nil {
		return nil, err
	}
	return c.email(ctx, request{method: http.MethodPost, route: "/emails", path: "/emails", body: body})
}

// ListEmails GET /emails[?status&team&user&intent]
func (c *Client) ListEmails(ctx context.Context, filters domain.EmailFilters) ([]domain.Email, error) {
	pairs := filters.Pairs()
	query := url.Values{}
	for _, k := range emailFilterParams {
		if v, ok := pairs[k]; ok {
			query.Set(k, v)
		}
	}
	return c.emails(ctx, request{method: http.MethodGet, route: "/emails", path: "/emails", query: query})
}

// GetEmail GET /emails/{id}
func (c *Client) GetEmail(ctx context.Context, id string) (*domain.Email, error) {
	return c.email(ctx, request{method: http.MethodGet, route: "/emails/{id}", path: "/emails/" + seg(id)})
}

// ListEmailsByStatus GET /emails/status/{status}
func (c *Client) ListEmailsByStatus(ctx context.Context, status domain.EmailStatus) ([]domain.Email, error) {
	return c.emails(ctx, request{
		method: http.MethodGet,
		route:  "/emails/status/{status}",
		path:   "/emails/status/" + seg(string(status)),
	})
}

// ListEmailsByTeam GET /emails/team/{teamId}
func (c *Client) ListEmailsByTeam(ctx context.Context, teamID string) ([]domain.Email, error) {
	return c.emails(ctx, request{method: http.MethodGet, route: "/emails/team/{teamId}", path: "/emails/team/" + seg(teamID)})
}

// ListEmailsByUser GET /emails/user/{userId}
func (c *Client) ListEmailsByUser(ctx context.Context, userID string) ([]domain.Email, error) {
	return c.emails(ctx, request{method: http.MethodGet, route: "/emails/user/{userId}", path: "/emails/user/" + seg(userID)})
}

// ListHighPriorityEmails GET /emails/priority/high
func (c *Client) ListHighPriorityEmails(ctx context.Context) ([]domain.Email, error) {
	return c.emails(ctx, request{method: http.MethodGet, route: "/emails/priority/high", path: "/emails/priority/high"})
}

// AssignTeam PUT /emails/{id}/assign/team/{teamId}
func (c *Client) AssignTeam(ctx context.Context, id, teamID string) (*domain.Email, error) {
	return c.email(ctx, request{
		method: http.MethodPut,
		route:  "/emails/{id}/assign/team/{teamId}",
		path:   "/emails/" + seg(id) + "/assign/team/" + seg(teamID),
	})
}

// AssignUser PUT /emails/{id}/assign/user/{userId}
func (c *Client) AssignUser(ctx context.Context, id, userID string) (*domain.Email, error) {
	return c.email(ctx, request{
		method: http.MethodPut,
		route:  "/emails/{id}/assign/user/{userId}",
		path:   "/emails/" + seg(id) + "/assign/user/" + seg(userID),
	})
}

// UpdateStatus PUT /emails/{id}/status/{status}
func (c *Client) UpdateStatus(ctx context.Context, id string, status domain.EmailStatus) (*domain.Email, error) {
	return c.email(ctx, request{
		method: http.MethodPut,
		route:  "/emails/{id}/status/{status}",
		path:   "/emails/" + seg(id) + "/status/" + seg(string(status)),
	})
}

// UpdatePriority PUT /emails/{id}/priority/{priority}
func (c *Client) UpdatePriority(ctx context.Context, id string, priority domain.Priority) (*domain.Email, error) {
	return c.email(ctx, request{
		method: http.MethodPut,
		route:  "/emails/{id}/priority/{priority}",
		path:   "/emails/" + seg(id) + "/priority/" + seg(string(priority)),
	})
}

// AddNote POST /emails/{id}/notes?userId=，请求体为备注原文
func (c *Client) AddNote(ctx context.Context, id, note, userID string) (*domain.Email, error) {
	return c.email(ctx, request{
		method:      http.MethodPost,
		route:       "/emails/{id}/notes",
		path:        "/emails/" + seg(id) + "/notes",
		query:       url.Values{"userId": {c.userID(userID)}},
		body:        strings.NewReader(note),
		contentType: "text/plain; charset=utf-8",
	})
}

// SendReply POST /emails/{id}/reply?userId=，请求体为回复原文
func (c *Client) SendReply(ctx context.Context, id, reply, userID string) (*domain.Email, error) {
	return c.email(ctx, request{
		method:      http.MethodPost,
		route:       "/emails/{id}/reply",
		path:        "/emails/" + seg(id) + "/reply",
		query:       url.Values{"userId": {c.userID(userID)}},
		body:        strings.NewReader(reply),
		contentType: "text/plain; charset=utf-8",
	})
}

// GenerateAIReply POST /emails/ai/reply
func (c *Client) GenerateAIReply(ctx context.Context, req domain.AiReplyRequest) (*domain.AiReplyResponse, error) {
	body, err := jsonBody(req)
	if err != nil {
		return nil, err
	}
	var resp domain.AiReplyResponse
	if err := c.do(ctx, request{method: http.MethodPost, route: "/emails/ai/reply", path: "/emails/ai/reply", body: body}, &resp); err != nil {
		return nil, err
	}
	if resp.ToneFeedback == nil {
		resp.ToneFeedback = []domain.FeedbackItem{}
	}
	if resp.ClarityFeedback == nil {
		resp.ClarityFeedback = []domain.FeedbackItem{}
	}
	return &resp, nil
}

// GetStatistics GET /emails/statistics
func (c *Client) GetStatistics(ctx context.Context) (*domain.EmailStatistics, error) {
	var stats domain.EmailStatistics
	if err := c.do(ctx, request{method: http.MethodGet, route: "/emails/statistics", path: "/emails/statistics"}, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
