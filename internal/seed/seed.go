// Package seed 初始化仪表盘共享的数据库：建表、建索引并写入默认团队与客服人员。
package seed

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"triagedesk/dashboard/internal/domain"
)

// Repository 种子写入所需的存储操作
type Repository interface {
	Migrate(ctx context.Context) error
	TeamExists(ctx context.Context, name string) (bool, error)
	CreateTeam(ctx context.Context, team *TeamRecord) error
	UserExists(ctx context.Context, email string) (bool, error)
	CreateUser(ctx context.Context, user *UserRecord) error
}

// Result 本次写入的数量
type Result struct {
	TeamsCreated int
	TeamsSkipped int
	UsersCreated int
	UsersSkipped int
}

// Seeder 按名称/邮箱去重写入默认数据，重复执行不会产生重复行
type Seeder struct {
	repo Repository
	log  *zap.Logger
}

// NewSeeder 创建 Seeder
func NewSeeder(repo Repository, log *zap.Logger) *Seeder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Seeder{repo: repo, log: log}
}

// Migrate 只建表和索引
func (s *Seeder) Migrate(ctx context.Context) error {
	if err := s.repo.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Run 建表后写入 defaults 中尚不存在的团队和人员
func (s *Seeder) Run(ctx context.Context, defaults *Defaults) (Result, error) {
	var res Result
	if err := s.Migrate(ctx); err != nil {
		return res, err
	}

	for _, t := range defaults.Teams {
		exists, err := s.repo.TeamExists(ctx, t.Name)
		if err != nil {
			return res, fmt.Errorf("check team %q: %w", t.Name, err)
		}
		if exists {
			res.TeamsSkipped++
			s.log.Debug("team already exists", zap.String("team", t.Name))
			continue
		}
		if err := s.repo.CreateTeam(ctx, teamRecord(t)); err != nil {
			return res, fmt.Errorf("create team %q: %w", t.Name, err)
		}
		res.TeamsCreated++
		s.log.Info("created team", zap.String("team", t.Name))
	}

	for _, u := range defaults.Users {
		exists, err := s.repo.UserExists(ctx, u.Email)
		if err != nil {
			return res, fmt.Errorf("check user %q: %w", u.Email, err)
		}
		if exists {
			res.UsersSkipped++
			continue
		}
		if err := s.repo.CreateUser(ctx, userRecord(u)); err != nil {
			return res, fmt.Errorf("create user %q: %w", u.Email, err)
		}
		res.UsersCreated++
		s.log.Info("created user", zap.String("email", u.Email))
	}
	return res, nil
}

// 新团队的绩效计数从零开始
func teamRecord(t domain.Team) *TeamRecord {
	intents := t.HandledIntents
	if intents == nil {
		intents = []domain.EmailIntent{}
	}
	members := t.MemberIDs
	if members == nil {
		members = []string{}
	}
	return &TeamRecord{
		ID:             uuid.NewString(),
		Name:           t.Name,
		Description:    t.Description,
		ManagerID:      t.ManagerID,
		MemberIDs:      members,
		HandledIntents: intents,
		Status:         t.Status,
	}
}

func userRecord(u UserSeed) *UserRecord {
	display := (&domain.User{FirstName: u.FirstName, LastName: u.LastName, Email: u.Email}).Name()
	role := u.Role
	if role == "" {
		role = domain.RoleAgent
	}
	teams := u.Teams
	if teams == nil {
		teams = []string{}
	}
	expertise := u.Expertise
	if expertise == nil {
		expertise = []domain.EmailIntent{}
	}
	return &UserRecord{
		ID:          uuid.NewString(),
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		DisplayName: display,
		Role:        role,
		Status:      domain.UserActive,
		TeamIDs:     teams,
		Expertise:   expertise,
	}
}
