package query

import (
	"net/url"
	"strings"

	"triagedesk/dashboard/internal/domain"
)

// Key 缓存键
//
// 形如 "emails"、"emails?intent=BUG_REPORT&status=ASSIGNED"、"email/e1"。
// 参数部分按键名排序，同一组过滤条件总是得到同一个键。
type Key string

// 固定的缓存键
const (
	KeyEmails             Key = "emails"
	KeyTeams              Key = "teams"
	KeyAssignmentRules    Key = "assignmentRules"
	KeyEmailStatistics    Key = "emailStatistics"
	KeyRecentEmails       Key = "recentEmails"
	KeyHighPriorityEmails Key = "highPriorityEmails"
	KeyUsers              Key = "users"
	KeyCurrentUser        Key = "currentUser"
)

// EmailsKey 邮件列表键，过滤条件为空时返回 KeyEmails
func EmailsKey(filters domain.EmailFilters) Key {
	pairs := filters.Pairs()
	if len(pairs) == 0 {
		return KeyEmails
	}
	values := make(url.Values, len(pairs))
	for k, v := range pairs {
		values.Set(k, v)
	}
	// Encode 按键名排序
	return Key(string(KeyEmails) + "?" + values.Encode())
}

// EmailKey 单封邮件键
func EmailKey(id string) Key {
	return Key("email/" + url.PathEscape(id))
}

// TeamKey 单个团队键，属于 teams 前缀
func TeamKey(id string) Key {
	return Key(string(KeyTeams) + "/" + url.PathEscape(id))
}

// HasPrefix 判断键是否落在 prefix 之下
//
// 只在段边界匹配："emails" 覆盖 "emails?status=X"，但不覆盖 "emailStatistics"。
func (k Key) HasPrefix(prefix Key) bool {
	if k == prefix {
		return true
	}
	if !strings.HasPrefix(string(k), string(prefix)) {
		return false
	}
	switch k[len(prefix)] {
	case '/', '?':
		return true
	}
	return false
}

// Kind 返回键的第一段（用作指标标签）
func (k Key) Kind() string {
	s := string(k)
	if i := strings.IndexAny(s, "/?"); i >= 0 {
		return s[:i]
	}
	return s
}
