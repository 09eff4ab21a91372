package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"triagedesk/dashboard/internal/backend"
	"triagedesk/dashboard/internal/domain"
)

// fakeBackend 内存中的后端，记录每个操作的调用次数
type fakeBackend struct {
	mu      sync.Mutex
	emails  map[string]*domain.Email
	teams   map[string]*domain.Team
	rules   domain.AssignmentRules
	stats   domain.EmailStatistics
	calls   map[string]int
	fail    map[string]error
	lastReq domain.AiReplyRequest
	nextID  int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		emails: make(map[string]*domain.Email),
		teams:  make(map[string]*domain.Team),
		rules:  make(domain.AssignmentRules),
		calls:  make(map[string]int),
		fail:   make(map[string]error),
	}
}

func (f *fakeBackend) addEmail(e domain.Email) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emails[e.ID] = &e
}

func (f *fakeBackend) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeBackend) failOn(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[op] = err
}

// enter 记录一次调用，调用方持有锁
func (f *fakeBackend) enter(op string) error {
	f.calls[op]++
	return f.fail[op]
}

func notFound(path string) error {
	return &backend.APIError{Method: "GET", Path: path, StatusCode: 404}
}

func (f *fakeBackend) sortedEmails() []domain.Email {
	out := make([]domain.Email, 0, len(f.emails))
	for _, e := range f.emails {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReceivedAt.After(out[j].ReceivedAt) })
	return out
}

func (f *fakeBackend) CreateEmail(_ context.Context, req domain.EmailRequest) (*domain.Email, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("CreateEmail"); err != nil {
		return nil, err
	}
	f.nextID++
	e := &domain.Email{
		ID:         fmt.Sprintf("new-%d", f.nextID),
		From:       req.From,
		To:         req.To,
		Subject:    req.Subject,
		Body:       req.Body,
		Status:     domain.StatusReceived,
		Intent:     domain.IntentUnknown,
		Priority:   domain.PriorityMedium,
		ReceivedAt: time.Now().UTC(),
	}
	f.emails[e.ID] = e
	out := *e
	return &out, nil
}

func (f *fakeBackend) ListEmails(_ context.Context, filters domain.EmailFilters) ([]domain.Email, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("ListEmails"); err != nil {
		return nil, err
	}
	// 与真实后端一样忽略 priority
	filters.Priority = ""
	var out []domain.Email
	for _, e := range f.sortedEmails() {
		if filters.Match(&e) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeBackend) GetEmail(_ context.Context, id string) (*domain.Email, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("GetEmail"); err != nil {
		return nil, err
	}
	e, ok := f.emails[id]
	if !ok {
		return nil, notFound("/emails/" + id)
	}
	out := *e
	return &out, nil
}

func (f *fakeBackend) ListHighPriorityEmails(context.Context) ([]domain.Email, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("ListHighPriorityEmails"); err != nil {
		return nil, err
	}
	var out []domain.Email
	for _, e := range f.sortedEmails() {
		if e.Priority.Rank() >= domain.PriorityHigh.Rank() && e.IsPending() {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeBackend) update(op, id string, apply func(*domain.Email)) (*domain.Email, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(op); err != nil {
		return nil, err
	}
	e, ok := f.emails[id]
	if !ok {
		return nil, notFound("/emails/" + id)
	}
	apply(e)
	out := *e
	return &out, nil
}

func (f *fakeBackend) AssignTeam(_ context.Context, id, teamID string) (*domain.Email, error) {
	return f.update("AssignTeam", id, func(e *domain.Email) { e.AssignedTeam = teamID })
}

func (f *fakeBackend) AssignUser(_ context.Context, id, userID string) (*domain.Email, error) {
	return f.update("AssignUser", id, func(e *domain.Email) { e.AssignedUser = userID })
}

func (f *fakeBackend) UpdateStatus(_ context.Context, id string, status domain.EmailStatus) (*domain.Email, error) {
	return f.update("UpdateStatus", id, func(e *domain.Email) { e.Status = status })
}

func (f *fakeBackend) UpdatePriority(_ context.Context, id string, priority domain.Priority) (*domain.Email, error) {
	return f.update("UpdatePriority", id, func(e *domain.Email) { e.Priority = priority })
}

func (f *fakeBackend) AddNote(_ context.Context, id, _ string, _ string) (*domain.Email, error) {
	return f.update("AddNote", id, func(*domain.Email) {})
}

func (f *fakeBackend) SendReply(_ context.Context, id, reply, _ string) (*domain.Email, error) {
	return f.update("SendReply", id, func(e *domain.Email) {
		e.FinalReply = reply
		e.Status = domain.StatusResponded
	})
}

func (f *fakeBackend) GenerateAIReply(_ context.Context, req domain.AiReplyRequest) (*domain.AiReplyResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("GenerateAIReply"); err != nil {
		return nil, err
	}
	f.lastReq = req
	return &domain.AiReplyResponse{
		EmailID:        req.EmailID,
		GeneratedReply: "Dear customer, thank you.",
		Tone:           req.Tone,
		Style:          req.Style,
		ToneFeedback: []domain.FeedbackItem{
			{Category: "tone", Suggestion: "soften", Severity: domain.SeverityHigh},
			{Category: "tone", Suggestion: "ok", Severity: "unknown"},
		},
		ConfidenceScore: 0.873,
	}, nil
}

func (f *fakeBackend) GetStatistics(context.Context) (*domain.EmailStatistics, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("GetStatistics"); err != nil {
		return nil, err
	}
	stats := f.stats
	stats.TotalEmails = int64(len(f.emails))
	return &stats, nil
}

func (f *fakeBackend) ListTeams(context.Context) ([]domain.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("ListTeams"); err != nil {
		return nil, err
	}
	out := make([]domain.Team, 0, len(f.teams))
	for _, t := range f.teams {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeBackend) GetTeam(_ context.Context, id string) (*domain.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("GetTeam"); err != nil {
		return nil, err
	}
	t, ok := f.teams[id]
	if !ok {
		return nil, notFound("/teams/" + id)
	}
	out := *t
	return &out, nil
}

func (f *fakeBackend) CreateTeam(_ context.Context, in domain.TeamInput) (*domain.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("CreateTeam"); err != nil {
		return nil, err
	}
	f.nextID++
	t := &domain.Team{
		ID:             fmt.Sprintf("team-%d", f.nextID),
		Name:           in.Name,
		Description:    in.Description,
		MemberIDs:      in.MemberIDs,
		HandledIntents: in.HandledIntents,
		Status:         in.Status,
	}
	f.teams[t.ID] = t
	out := *t
	return &out, nil
}

func (f *fakeBackend) UpdateTeam(_ context.Context, id string, in domain.TeamInput) (*domain.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("UpdateTeam"); err != nil {
		return nil, err
	}
	t, ok := f.teams[id]
	if !ok {
		return nil, notFound("/teams/" + id)
	}
	t.Name, t.Description, t.Status = in.Name, in.Description, in.Status
	out := *t
	return &out, nil
}

func (f *fakeBackend) DeleteTeam(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("DeleteTeam"); err != nil {
		return err
	}
	delete(f.teams, id)
	return nil
}

func (f *fakeBackend) GetAssignmentRules(context.Context) (domain.AssignmentRules, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("GetAssignmentRules"); err != nil {
		return nil, err
	}
	out := make(domain.AssignmentRules, len(f.rules))
	for k, v := range f.rules {
		out[k] = v
	}
	return out, nil
}

func (f *fakeBackend) UpdateAssignmentRule(_ context.Context, intent domain.EmailIntent, teamName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("UpdateAssignmentRule"); err != nil {
		return err
	}
	f.rules[intent] = teamName
	return nil
}

func (f *fakeBackend) CurrentUser(context.Context) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("CurrentUser"); err != nil {
		return nil, err
	}
	return &domain.User{ID: "u1", Email: "agent@company.com", Role: domain.RoleAgent}, nil
}

func (f *fakeBackend) ListUsers(context.Context) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("ListUsers"); err != nil {
		return nil, err
	}
	return []domain.User{{ID: "u1", Email: "agent@company.com"}}, nil
}
