package backend

import (
	"context"
	"net/http"
	"net/url"

	"triagedesk/dashboard/internal/domain"
)

// wireTeam 后端团队结构，时间字段格式不固定
type wireTeam struct {
	ID                        string               `json:"id"`
	Name                      string               `json:"name"`
	Description               string               `json:"description"`
	ManagerID                 string               `json:"managerId"`
	MemberIDs                 []string             `json:"memberIds"`
	HandledIntents            []domain.EmailIntent `json:"handledIntents"`
	Status                    string               `json:"status"`
	CreatedAt                 Timestamp            `json:"createdAt"`
	UpdatedAt                 Timestamp            `json:"updatedAt"`
	TotalEmailsHandled        *int                 `json:"totalEmailsHandled"`
	AverageResponseTime       *float64             `json:"averageResponseTime"`
	CustomerSatisfactionScore *float64             `json:"customerSatisfactionScore"`
}

func (w wireTeam) toDomain() domain.Team {
	status, ok := domain.ParseTeamStatus(w.Status)
	if !ok {
		status = domain.TeamActive
	}
	members := w.MemberIDs
	if members == nil {
		members = []string{}
	}
	intents := make([]domain.EmailIntent, 0, len(w.HandledIntents))
	for _, i := range w.HandledIntents {
		if parsed, ok := domain.ParseIntent(string(i)); ok {
			intents = append(intents, parsed)
		}
	}
	return domain.Team{
		ID:                        w.ID,
		Name:                      w.Name,
		Description:               w.Description,
		ManagerID:                 w.ManagerID,
		MemberIDs:                 members,
		HandledIntents:            intents,
		Status:                    status,
		CreatedAt:                 w.CreatedAt.Time,
		UpdatedAt:                 w.UpdatedAt.Time,
		TotalEmailsHandled:        w.TotalEmailsHandled,
		AverageResponseTime:       w.AverageResponseTime,
		CustomerSatisfactionScore: w.CustomerSatisfactionScore,
	}
}

func (c *Client) team(ctx context.Context, r request) (*domain.Team, error) {
	var w wireTeam
	if err := c.do(ctx, r, &w); err != nil {
		return nil, err
	}
	t := w.toDomain()
	return &t, nil
}

func (c *Client) teams(ctx context.Context, r request) ([]domain.Team, error) {
	var ws []wireTeam
	if err := c.do(ctx, r, &ws); err != nil {
		return nil, err
	}
	out := make([]domain.Team, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.toDomain())
	}
	return out, nil
}

// ListTeams GET /teams
func (c *Client) ListTeams(ctx context.Context) ([]domain.Team, error) {
	return c.teams(ctx, request{method: http.MethodGet, route: "/teams", path: "/teams"})
}

// GetTeam GET /teams/{id}
func (c *Client) GetTeam(ctx context.Context, id string) (*domain.Team, error) {
	return c.team(ctx, request{method: http.MethodGet, route: "/teams/{id}", path: "/teams/" + seg(id)})
}

// GetTeamByName GET /teams/name/{name}
func (c *Client) GetTeamByName(ctx context.Context, name string) (*domain.Team, error) {
	return c.team(ctx, request{method: http.MethodGet, route: "/teams/name/{name}", path: "/teams/name/" + seg(name)})
}

// ListTeamsByStatus GET /teams/status/{status}
func (c *Client) ListTeamsByStatus(ctx context.Context, status domain.TeamStatus) ([]domain.Team, error) {
	return c.teams(ctx, request{method: http.MethodGet, route: "/teams/status/{status}", path: "/teams/status/" + seg(string(status))})
}

// ListTeamsByManager GET /teams/manager/{id}
func (c *Client) ListTeamsByManager(ctx context.Context, managerID string) ([]domain.Team, error) {
	return c.teams(ctx, request{method: http.MethodGet, route: "/teams/manager/{id}", path: "/teams/manager/" + seg(managerID)})
}

// ListTeamsByMember GET /teams/member/{id}
func (c *Client) ListTeamsByMember(ctx context.Context, memberID string) ([]domain.Team, error) {
	return c.teams(ctx, request{method: http.MethodGet, route: "/teams/member/{id}", path: "/teams/member/" + seg(memberID)})
}

// CreateTeam POST /teams
func (c *Client) CreateTeam(ctx context.Context, in domain.TeamInput) (*domain.Team, error) {
	body, err := jsonBody(in)
	if err != nil {
		return nil, err
	}
	return c.team(ctx, request{method: http.MethodPost, route: "/teams", path: "/teams", body: body})
}

// UpdateTeam PUT /teams/{id}
func (c *Client) UpdateTeam(ctx context.Context, id string, in domain.TeamInput) (*domain.Team, error) {
	body, err := jsonBody(in)
	if err != nil {
		return nil, err
	}
	return c.team(ctx, request{method: http.MethodPut, route: "/teams/{id}", path: "/teams/" + seg(id), body: body})
}

// DeleteTeam DELETE /teams/{id}
func (c *Client) DeleteTeam(ctx context.Context, id string) error {
	return c.do(ctx, request{method: http.MethodDelete, route: "/teams/{id}", path: "/teams/" + seg(id)}, nil)
}

// GetAssignmentRules GET /teams/assignment-rules
//
// 未知意图的键会被丢弃。
func (c *Client) GetAssignmentRules(ctx context.Context) (domain.AssignmentRules, error) {
	var raw map[string]string
	if err := c.do(ctx, request{method: http.MethodGet, route: "/teams/assignment-rules", path: "/teams/assignment-rules"}, &raw); err != nil {
		return nil, err
	}
	rules := make(domain.AssignmentRules, len(raw))
	for k, v := range raw {
		if intent, ok := domain.ParseIntent(k); ok {
			rules[intent] = v
		}
	}
	return rules, nil
}

// UpdateAssignmentRule PUT /teams/assignment-rules/{intent}?teamName=
func (c *Client) UpdateAssignmentRule(ctx context.Context, intent domain.EmailIntent, teamName string) error {
	return c.do(ctx, request{
		method: http.MethodPut,
		route:  "/teams/assignment-rules/{intent}",
		path:   "/teams/assignment-rules/" + seg(string(intent)),
		query:  url.Values{"teamName": {teamName}},
	}, nil)
}
