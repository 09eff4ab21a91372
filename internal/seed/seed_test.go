package seed

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"triagedesk/dashboard/internal/config"
	"triagedesk/dashboard/internal/domain"
)

// memoryRepository 按名称/邮箱保存的内存实现
type memoryRepository struct {
	migrations int
	teams      map[string]*TeamRecord
	users      map[string]*UserRecord
	migrateErr error
	createErr  error
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{teams: map[string]*TeamRecord{}, users: map[string]*UserRecord{}}
}

func (m *memoryRepository) Migrate(context.Context) error {
	m.migrations++
	return m.migrateErr
}

func (m *memoryRepository) TeamExists(_ context.Context, name string) (bool, error) {
	_, ok := m.teams[name]
	return ok, nil
}

func (m *memoryRepository) CreateTeam(_ context.Context, team *TeamRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.teams[team.Name] = team
	return nil
}

func (m *memoryRepository) UserExists(_ context.Context, email string) (bool, error) {
	_, ok := m.users[email]
	return ok, nil
}

func (m *memoryRepository) CreateUser(_ context.Context, user *UserRecord) error {
	m.users[user.Email] = user
	return nil
}

func TestDefaultData(t *testing.T) {
	d, err := DefaultData()
	require.NoError(t, err)

	names := make([]string, 0, len(d.Teams))
	for _, team := range d.Teams {
		names = append(names, team.Name)
		assert.Equal(t, domain.TeamActive, team.Status)
		assert.NotEmpty(t, team.HandledIntents)
	}
	assert.Equal(t, []string{"billing-team", "technical-team", "product-team", "support-team"}, names)
	assert.Equal(t, []domain.EmailIntent{domain.IntentRefundRequest, domain.IntentBillingIssue}, d.Teams[0].HandledIntents)
	require.Len(t, d.Users, 2)
	assert.Equal(t, domain.RoleManager, d.Users[0].Role)
}

func TestParseDefaults_Rejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"未知意图", "teams:\n  - name: a\n    handledIntents: [ACCOUNT_ACCESS]\n", "unknown intent"},
		{"重复团队", "teams:\n  - name: a\n  - name: a\n", "duplicate name"},
		{"缺少名称", "teams:\n  - description: x\n", "name is required"},
		{"未知团队", "teams:\n  - name: a\nusers:\n  - email: x@y.com\n    teams: [b]\n", "unknown team"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDefaults([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSeeder_Idempotent(t *testing.T) {
	d, err := DefaultData()
	require.NoError(t, err)
	repo := newMemoryRepository()
	s := NewSeeder(repo, nil)

	res, err := s.Run(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, Result{TeamsCreated: 4, UsersCreated: 2}, res)

	billing := repo.teams["billing-team"]
	require.NotNil(t, billing)
	assert.NotEmpty(t, billing.ID)
	assert.Zero(t, billing.TotalEmailsHandled)
	assert.Equal(t, []string{}, billing.MemberIDs)
	assert.Equal(t, "Admin User", repo.users["admin@emailassistant.com"].DisplayName)

	res, err = s.Run(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, Result{TeamsSkipped: 4, UsersSkipped: 2}, res)
	assert.Len(t, repo.teams, 4)
	assert.Equal(t, 2, repo.migrations)
}

func TestSeeder_Errors(t *testing.T) {
	d, err := DefaultData()
	require.NoError(t, err)

	repo := newMemoryRepository()
	repo.migrateErr = errors.New("permission denied")
	_, err = NewSeeder(repo, nil).Run(context.Background(), d)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migrate")
	assert.Empty(t, repo.teams)

	repo = newMemoryRepository()
	repo.createErr = errors.New("duplicate key")
	res, err := NewSeeder(repo, nil).Run(context.Background(), d)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `create team "billing-team"`)
	assert.Zero(t, res.TeamsCreated)
}

func TestOpen_RejectsBadConfig(t *testing.T) {
	_, err := Open(context.Background(), config.DatabaseConfig{Type: "sqlite", DSN: "x"})
	assert.ErrorContains(t, err, "unsupported database driver")

	_, err = Open(context.Background(), config.DatabaseConfig{Type: DriverPostgres})
	assert.ErrorContains(t, err, "DSN is required")
}
