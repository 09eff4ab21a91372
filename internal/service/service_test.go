package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"triagedesk/dashboard/internal/domain"
	"triagedesk/dashboard/internal/draft"
	"triagedesk/dashboard/internal/query"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ Backend = (*fakeBackend)(nil)

var baseTime = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *fakeBackend, *draft.MemoryStore) {
	t.Helper()
	api := newFakeBackend()
	store := draft.NewMemoryStore()
	svc := New(api, query.New(query.WithStaleTime(time.Minute)), draft.NewDrafts(store), nil)
	return svc, api, store
}

// brokenStore 所有操作都失败的草稿存储
type brokenStore struct{}

var errStoreDown = errors.New("draft store down")

func (brokenStore) Get(context.Context, string) ([]byte, bool, error) { return nil, false, errStoreDown }
func (brokenStore) Set(context.Context, string, []byte) error { return errStoreDown }
func (brokenStore) Delete(context.Context, string) error { return errStoreDown }
func (brokenStore) Health(context.Context) error { return errStoreDown }
func (brokenStore) Close() error { return nil }

func seedEmails(api *fakeBackend) {
	api.addEmail(domain.Email{ID: "E1", Subject: "Refund", Status: domain.StatusReceived, Intent: domain.IntentRefundRequest, Priority: domain.PriorityHigh, IntentConfidence: 0.873, ReceivedAt: baseTime})
	api.addEmail(domain.Email{ID: "E2", Subject: "bug in app", Status: domain.StatusAssigned, Intent: domain.IntentBugReport, Priority: domain.PriorityLow, AssignedTeam: "technical-team", ReceivedAt: baseTime.Add(time.Hour)})
	api.addEmail(domain.Email{ID: "E3", Subject: "Angry", Status: domain.StatusReceived, Intent: domain.IntentComplaint, Priority: domain.PriorityUrgent, ReceivedAt: baseTime.Add(2 * time.Hour)})
}

func TestCreateEmail_InvalidatesDefaultList(t *testing.T) {
	svc, api, _ := newTestService(t)
	ctx := context.Background()
	seedEmails(api)

	before, err := svc.Emails(ctx, domain.EmailFilters{})
	require.NoError(t, err)
	require.Len(t, before, 3)

	created, err := svc.CreateEmail(ctx, domain.EmailRequest{To: "a@b.com", Subject: "Hi", Body: "Test"})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSender, created.From)

	after, err := svc.Emails(ctx, domain.EmailFilters{})
	require.NoError(t, err)
	assert.Len(t, after, 4)
	assert.Equal(t, 2, api.count("ListEmails"))

	var ids []string
	for _, e := range after {
		ids = append(ids, e.ID)
	}
	assert.Contains(t, ids, created.ID)
}

func TestCreateEmail_ValidationBeforeNetwork(t *testing.T) {
	svc, api, _ := newTestService(t)

	_, err := svc.CreateEmail(context.Background(), domain.EmailRequest{To: "a@b.com", Subject: "Hi"})
	require.Error(t, err)

	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "Please fill in all required fields.", vErr.Message)
	assert.Zero(t, api.count("CreateEmail"))
}

func TestEscalate_InvalidatesEmailAndList(t *testing.T) {
	svc, api, _ := newTestService(t)
	ctx := context.Background()
	seedEmails(api)

	e, err := svc.Email(ctx, "E1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusReceived, e.Status)
	_, err = svc.Emails(ctx, domain.EmailFilters{Status: "RECEIVED"})
	require.NoError(t, err)

	// 缓存命中，不再请求
	_, err = svc.Email(ctx, "E1")
	require.NoError(t, err)
	assert.Equal(t, 1, api.count("GetEmail"))

	_, err = svc.Escalate(ctx, "E1")
	require.NoError(t, err)

	assert.Equal(t, query.StateIdle, svc.Cache().Status(query.EmailKey("E1")).State)
	assert.Equal(t, query.StateIdle, svc.Cache().Status(query.EmailsKey(domain.EmailFilters{Status: "RECEIVED"})).State)

	e, err = svc.Email(ctx, "E1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusEscalated, e.Status)
	assert.Equal(t, 2, api.count("GetEmail"))

	received, err := svc.Emails(ctx, domain.EmailFilters{Status: "RECEIVED"})
	require.NoError(t, err)
	for _, r := range received {
		assert.NotEqual(t, "E1", r.ID)
	}
}

func TestMutationFailure_KeepsCache(t *testing.T) {
	svc, api, _ := newTestService(t)
	ctx := context.Background()
	seedEmails(api)

	_, err := svc.Email(ctx, "E1")
	require.NoError(t, err)

	api.failOn("UpdatePriority", errors.New("backend down"))
	_, err = svc.UpdatePriority(ctx, "E1", domain.PriorityLow)
	require.Error(t, err)

	assert.Equal(t, query.StateData, svc.Cache().Status(query.EmailKey("E1")).State)
}

func TestUpdateStatus_AnyTransitionAllowed(t *testing.T) {
	svc, api, _ := newTestService(t)
	ctx := context.Background()
	api.addEmail(domain.Email{ID: "E9", Status: domain.StatusClosed})

	e, err := svc.UpdateStatus(ctx, "E9", domain.StatusReceived)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusReceived, e.Status)

	_, err = svc.UpdateStatus(ctx, "E9", "DONE")
	assert.ErrorIs(t, err, domain.ErrInvalidEnum)
}

func TestSendReply(t *testing.T) {
	ctx := context.Background()

	t.Run("空白正文不发请求也不清除草稿", func(t *testing.T) {
		svc, api, _ := newTestService(t)
		seedEmails(api)
		require.NoError(t, svc.SaveDraft(ctx, "E1", domain.Draft{Subject: "Re: Refund", ReplyContent: "half"}))

		_, err := svc.SendReply(ctx, "E1", "   \n\t", "")
		var vErr *domain.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "Please enter a reply message.", vErr.Message)
		assert.Zero(t, api.count("SendReply"))

		d, ok, err := svc.Draft(ctx, "E1")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "half", d.ReplyContent)
	})

	t.Run("发送成功后删除草稿并刷新邮件", func(t *testing.T) {
		svc, api, _ := newTestService(t)
		seedEmails(api)
		_, err := svc.Email(ctx, "E1")
		require.NoError(t, err)
		require.NoError(t, svc.SaveDraft(ctx, "E1", domain.Draft{ReplyContent: "Thanks"}))

		_, err = svc.SendReply(ctx, "E1", "Thanks", "")
		require.NoError(t, err)

		_, ok, err := svc.Draft(ctx, "E1")
		require.NoError(t, err)
		assert.False(t, ok)

		e, err := svc.Email(ctx, "E1")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusResponded, e.Status)
	})

	t.Run("发送失败保留草稿", func(t *testing.T) {
		svc, api, _ := newTestService(t)
		seedEmails(api)
		require.NoError(t, svc.SaveDraft(ctx, "E1", domain.Draft{ReplyContent: "Retry me"}))
		api.failOn("SendReply", errors.New("timeout"))

		_, err := svc.SendReply(ctx, "E1", "Retry me", "")
		require.Error(t, err)

		d, ok, err := svc.Draft(ctx, "E1")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "Retry me", d.ReplyContent)
	})
}

func TestComposer(t *testing.T) {
	ctx := context.Background()

	t.Run("无草稿时使用默认主题", func(t *testing.T) {
		svc, api, _ := newTestService(t)
		seedEmails(api)

		view, err := svc.OpenComposer(ctx, "E1")
		require.NoError(t, err)
		assert.False(t, view.Restored)
		assert.Equal(t, "Re: Refund", view.Draft.Subject)
		assert.Len(t, view.Templates, 4)
		assert.Equal(t, "Thank You", view.Templates[0].Name)
	})

	t.Run("恢复已保存的草稿", func(t *testing.T) {
		svc, api, _ := newTestService(t)
		seedEmails(api)
		require.NoError(t, svc.SaveDraft(ctx, "E1", domain.Draft{Subject: "Re: custom", ReplyContent: "wip"}))

		view, err := svc.OpenComposer(ctx, "E1")
		require.NoError(t, err)
		assert.True(t, view.Restored)
		assert.Equal(t, domain.Draft{Subject: "Re: custom", ReplyContent: "wip"}, view.Draft)
	})

	t.Run("生成回复使用默认参数并写入草稿", func(t *testing.T) {
		svc, api, _ := newTestService(t)
		seedEmails(api)

		got, err := svc.GenerateReply(ctx, domain.AiReplyRequest{EmailID: "E1"})
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultTone, api.lastReq.Tone)
		assert.Equal(t, domain.DefaultStyle, api.lastReq.Style)
		assert.Equal(t, "87% confidence", got.Confidence)

		require.Len(t, got.ToneFeedback, 2)
		assert.Equal(t, "text-red-600 bg-red-50 border-red-200", got.ToneFeedback[0].Class)
		assert.Equal(t, "text-gray-600 bg-gray-50 border-gray-200", got.ToneFeedback[1].Class)
		assert.NotNil(t, got.ClarityFeedback)

		d, ok, err := svc.Draft(ctx, "E1")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "Re: Your Email", d.Subject)
		assert.Equal(t, "Dear customer, thank you.", d.ReplyContent)
	})

	t.Run("草稿读取失败仍返回生成结果", func(t *testing.T) {
		api := newFakeBackend()
		seedEmails(api)
		svc := New(api, query.New(), draft.NewDrafts(brokenStore{}), nil)

		got, err := svc.GenerateReply(ctx, domain.AiReplyRequest{EmailID: "E1"})
		require.NoError(t, err)
		assert.Equal(t, "Dear customer, thank you.", got.GeneratedReply)
		assert.Equal(t, 1, api.count("GenerateAIReply"))
	})

	t.Run("默认生成参数", func(t *testing.T) {
		req := DefaultAiReplyRequest("E1")
		assert.Equal(t, "professional", req.Tone)
		assert.Equal(t, "detailed", req.Style)
		assert.True(t, req.IncludeToneFeedback)
		assert.True(t, req.IncludeClarityFeedback)
	})
}

func TestEmailDetail_RejectsPlaceholderIDs(t *testing.T) {
	svc, api, _ := newTestService(t)

	for _, id := range []string{"", "new", "undefined"} {
		_, err := svc.EmailDetail(context.Background(), id)
		assert.ErrorIs(t, err, domain.ErrInvalidEmailID, id)
	}
	assert.Zero(t, api.count("GetEmail"))
	assert.Zero(t, api.count("ListTeams"))
}

func TestEmailDetail(t *testing.T) {
	svc, api, _ := newTestService(t)
	seedEmails(api)
	_, err := api.CreateTeam(context.Background(), domain.TeamInput{Name: "billing-team", Status: domain.TeamActive})
	require.NoError(t, err)

	view, err := svc.EmailDetail(context.Background(), "E1")
	require.NoError(t, err)
	assert.Equal(t, "87% confidence", view.Email.Confidence)
	assert.Equal(t, "March 1, 2024 at 09:00 AM", view.Received)
	assert.Len(t, view.Teams, 1)
	assert.Len(t, view.Statuses, len(domain.AllStatuses()))
	assert.Equal(t, "INTENT DETECTED", view.Statuses[2].Label)
}

func TestDashboard(t *testing.T) {
	svc, api, _ := newTestService(t)
	seedEmails(api)
	api.stats = domain.EmailStatistics{
		PendingEmails:  2,
		ResolvedEmails: 1,
		EmailsByIntent: map[domain.EmailIntent]int64{domain.IntentRefundRequest: 1, domain.IntentBugReport: 1},
	}

	view, err := svc.Dashboard(context.Background())
	require.NoError(t, err)

	require.Len(t, view.Stats, 4)
	assert.Equal(t, StatCard{Name: "Total Emails", Value: "3", Color: "blue"}, view.Stats[0])
	assert.Equal(t, "2", view.Stats[1].Value)
	assert.Equal(t, "High Priority", view.Stats[3].Name)
	assert.Equal(t, "2", view.Stats[3].Value)

	require.Len(t, view.IntentChart, 9)
	assert.Equal(t, "Refund Request", view.IntentChart[0].Label)
	assert.Equal(t, int64(1), view.IntentChart[0].Count)
	assert.Equal(t, "Unknown", view.IntentChart[8].Label)

	assert.Equal(t, []EnumCount{
		{Value: "RECEIVED", Label: "RECEIVED", Count: 2, Class: "bg-gray-100 text-gray-800"},
		{Value: "ASSIGNED", Label: "ASSIGNED", Count: 1, Class: "bg-yellow-100 text-yellow-800"},
	}, view.StatusCounts)
	assert.Len(t, view.PriorityCounts, 3)
	assert.Len(t, view.RecentEmails, 3)
	assert.Len(t, view.RecentActivity, 3)
}

func TestDashboard_FailsAsAWhole(t *testing.T) {
	svc, api, _ := newTestService(t)
	seedEmails(api)
	api.failOn("GetStatistics", errors.New("stats unavailable"))

	_, err := svc.Dashboard(context.Background())
	assert.EqualError(t, err, "stats unavailable")
}

func TestEmailList_SortAndPriorityFilter(t *testing.T) {
	svc, api, _ := newTestService(t)
	ctx := context.Background()
	seedEmails(api)

	view, err := svc.EmailList(ctx, domain.EmailFilters{}, DefaultSort)
	require.NoError(t, err)
	require.Equal(t, 3, view.Count)
	assert.Equal(t, "E3", view.Emails[0].ID)

	view, err = svc.EmailList(ctx, domain.EmailFilters{}, ParseSort("priority", "desc"))
	require.NoError(t, err)
	assert.Equal(t, []string{"E3", "E1", "E2"}, rowIDs(view.Emails))

	view, err = svc.EmailList(ctx, domain.EmailFilters{}, ParseSort("subject", "asc"))
	require.NoError(t, err)
	assert.Equal(t, []string{"E3", "E2", "E1"}, rowIDs(view.Emails))

	view, err = svc.EmailList(ctx, domain.EmailFilters{Priority: "urgent"}, DefaultSort)
	require.NoError(t, err)
	assert.Equal(t, []string{"E3"}, rowIDs(view.Emails))

	// 排序不会改动缓存中的列表
	cached, err := svc.Emails(ctx, domain.EmailFilters{})
	require.NoError(t, err)
	assert.Equal(t, "E3", cached[0].ID)
}

func TestParseSort(t *testing.T) {
	assert.Equal(t, DefaultSort, ParseSort("", ""))
	assert.Equal(t, DefaultSort, ParseSort("bogus", "sideways"))
	assert.Equal(t, Sort{Field: SortStatus, Order: OrderAsc}, ParseSort("status", "ASC"))
}

func rowIDs(rows []EmailRow) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ID)
	}
	return out
}

func TestTeamManagement(t *testing.T) {
	svc, api, _ := newTestService(t)
	ctx := context.Background()

	team, err := svc.CreateTeam(ctx, domain.TeamInput{Name: "  billing-team "})
	require.NoError(t, err)
	assert.Equal(t, "billing-team", team.Name)
	assert.Equal(t, domain.TeamActive, team.Status)

	require.NoError(t, svc.UpdateAssignmentRule(ctx, domain.IntentRefundRequest, "billing-team"))

	view, err := svc.TeamManagement(ctx)
	require.NoError(t, err)
	require.Len(t, view.Teams, 1)
	assert.Equal(t, "bg-green-100 text-green-800", view.Teams[0].StatusClass)

	require.Len(t, view.Rules, len(domain.AllIntents()))
	assert.Equal(t, "billing-team", view.Rules[0].TeamName)
	assert.Equal(t, "", view.Rules[1].TeamName)

	// 删除后团队列表重新拉取
	require.NoError(t, svc.DeleteTeam(ctx, team.ID))
	view, err = svc.TeamManagement(ctx)
	require.NoError(t, err)
	assert.Empty(t, view.Teams)
	assert.Equal(t, 2, api.count("ListTeams"))
	assert.Equal(t, 1, api.count("GetAssignmentRules"))

	err = svc.UpdateAssignmentRule(ctx, "NOT_AN_INTENT", "x")
	assert.ErrorIs(t, err, domain.ErrInvalidEnum)
}

func TestAdminPanel(t *testing.T) {
	svc, api, _ := newTestService(t)
	api.stats = domain.EmailStatistics{
		AverageResponseTime: 3.14159,
		EmailsByIntent:      map[domain.EmailIntent]int64{domain.IntentFeedback: 4},
	}

	view, err := svc.AdminPanel(context.Background())
	require.NoError(t, err)
	require.Len(t, view.Stats, 5)
	assert.Equal(t, "3.14h", view.Stats[3].Value)
	assert.Equal(t, "N/A", view.Stats[4].Value)
	assert.Equal(t, []IntentCount{{Intent: domain.IntentFeedback, Label: "FEEDBACK", Count: 4}}, view.EmailsByIntent)
}
