package seed

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"triagedesk/dashboard/internal/domain"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// UserSeed 默认客服人员
type UserSeed struct {
	Email     string               `yaml:"email"`
	FirstName string               `yaml:"firstName"`
	LastName  string               `yaml:"lastName"`
	Role      domain.UserRole      `yaml:"role"`
	Teams     []string             `yaml:"teams"`
	Expertise []domain.EmailIntent `yaml:"expertise"`
}

// Defaults 种子数据
type Defaults struct {
	Teams []domain.Team `yaml:"teams"`
	Users []UserSeed    `yaml:"users"`
}

// DefaultData 解析内置的默认团队与人员
func DefaultData() (*Defaults, error) {
	return ParseDefaults(defaultsYAML)
}

// ParseDefaults 解析种子 YAML 并校验枚举值
func ParseDefaults(data []byte) (*Defaults, error) {
	var d Defaults
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse seed data: %w", err)
	}

	seen := make(map[string]bool, len(d.Teams))
	for i := range d.Teams {
		t := &d.Teams[i]
		t.Name = strings.TrimSpace(t.Name)
		if t.Name == "" {
			return nil, fmt.Errorf("team #%d: name is required", i+1)
		}
		if seen[t.Name] {
			return nil, fmt.Errorf("team %q: duplicate name", t.Name)
		}
		seen[t.Name] = true
		if t.Status == "" {
			t.Status = domain.TeamActive
		}
		if !t.Status.Valid() {
			return nil, fmt.Errorf("team %q: unknown status %q", t.Name, t.Status)
		}
		for _, intent := range t.HandledIntents {
			if !intent.Valid() {
				return nil, fmt.Errorf("team %q: unknown intent %q", t.Name, intent)
			}
		}
	}

	for i := range d.Users {
		u := &d.Users[i]
		if strings.TrimSpace(u.Email) == "" {
			return nil, fmt.Errorf("user #%d: email is required", i+1)
		}
		for _, name := range u.Teams {
			if !seen[name] {
				return nil, fmt.Errorf("user %q: unknown team %q", u.Email, name)
			}
		}
		for _, intent := range u.Expertise {
			if !intent.Valid() {
				return nil, fmt.Errorf("user %q: unknown intent %q", u.Email, intent)
			}
		}
	}
	return &d, nil
}
