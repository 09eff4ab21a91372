package backend

import (
	"context"
	"net/http"

	"triagedesk/dashboard/internal/domain"
)

type wireUser struct {
	ID                        string               `json:"id"`
	Email                     string               `json:"email"`
	FirstName                 string               `json:"firstName"`
	LastName                  string               `json:"lastName"`
	DisplayName               string               `json:"displayName"`
	Avatar                    string               `json:"avatar"`
	Role                      domain.UserRole      `json:"role"`
	Status                    domain.UserStatus    `json:"status"`
	TeamIDs                   []string             `json:"teamIds"`
	Expertise                 []domain.EmailIntent `json:"expertise"`
	CreatedAt                 Timestamp            `json:"createdAt"`
	LastLoginAt               Timestamp            `json:"lastLoginAt"`
	TotalEmailsHandled        *int                 `json:"totalEmailsHandled"`
	AverageResponseTime       *float64             `json:"averageResponseTime"`
	CustomerSatisfactionScore *float64             `json:"customerSatisfactionScore"`
	CurrentWorkload           *int                 `json:"currentWorkload"`
}

func (w wireUser) toDomain() domain.User {
	teamIDs := w.TeamIDs
	if teamIDs == nil {
		teamIDs = []string{}
	}
	expertise := w.Expertise
	if expertise == nil {
		expertise = []domain.EmailIntent{}
	}
	return domain.User{
		ID:                        w.ID,
		Email:                     w.Email,
		FirstName:                 w.FirstName,
		LastName:                  w.LastName,
		DisplayName:               w.DisplayName,
		Avatar:                    w.Avatar,
		Role:                      w.Role,
		Status:                    w.Status,
		TeamIDs:                   teamIDs,
		Expertise:                 expertise,
		CreatedAt:                 w.CreatedAt.Time,
		LastLoginAt:               w.LastLoginAt.Ptr(),
		TotalEmailsHandled:        w.TotalEmailsHandled,
		AverageResponseTime:       w.AverageResponseTime,
		CustomerSatisfactionScore: w.CustomerSatisfactionScore,
		CurrentWorkload:           w.CurrentWorkload,
	}
}

func (c *Client) user(ctx context.Context, r request) (*domain.User, error) {
	var w wireUser
	if err := c.do(ctx, r, &w); err != nil {
		return nil, err
	}
	u := w.toDomain()
	return &u, nil
}

// CurrentUser GET /users/me
func (c *Client) CurrentUser(ctx context.Context) (*domain.User, error) {
	return c.user(ctx, request{method: http.MethodGet, route: "/users/me", path: "/users/me"})
}

// GetUser GET /users/{id}
func (c *Client) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return c.user(ctx, request{method: http.MethodGet, route: "/users/{id}", path: "/users/" + seg(id)})
}

// ListUsers GET /users
func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	var ws []wireUser
	if err := c.do(ctx, request{method: http.MethodGet, route: "/users", path: "/users"}, &ws); err != nil {
		return nil, err
	}
	out := make([]domain.User, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.toDomain())
	}
	return out, nil
}
