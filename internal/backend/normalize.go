package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"triagedesk/dashboard/internal/domain"
)

// 后端 LocalDateTime 序列化出来的时间没有时区，统一按 UTC 解释
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// rawObject 后端返回的原始 JSON 对象
type rawObject map[string]json.RawMessage

// NormalizeEmail 把后端返回的原始邮件对象转换为统一的 Email 结构
//
// 兼容的字段漂移：
//   - 备用字段名（_id / emailId、sender / recipient、content）
//   - 无时区的 LocalDateTime、数组形式的时间、毫秒时间戳
//   - 小写或未知的枚举值（状态回落到 RECEIVED、意图回落到 UNKNOWN、优先级回落到 MEDIUM）
//   - 置信度被截断到 [0,1]
func NormalizeEmail(data json.RawMessage) (domain.Email, error) {
	var raw rawObject
	if err := json.Unmarshal(data, &raw); err != nil {
		return domain.Email{}, fmt.Errorf("email payload is not an object: %w", err)
	}

	e := domain.Email{
		ID:               raw.str("id", "_id", "emailId"),
		MessageID:        raw.str("messageId", "message_id"),
		From:             raw.str("from", "sender"),
		To:               raw.str("to", "recipient"),
		Subject:          raw.str("subject"),
		Body:             raw.str("body", "content", "textBody"),
		AssignedTeam:     raw.str("assignedTeam", "assignedTeamId", "team"),
		AssignedUser:     raw.str("assignedUser", "assignedUserId", "user"),
		AIGeneratedReply: raw.str("aiGeneratedReply"),
		FinalReply:       raw.str("finalReply"),
	}

	if s, ok := domain.ParseStatus(raw.str("status")); ok {
		e.Status = s
	} else {
		e.Status = domain.StatusReceived
	}
	if i, ok := domain.ParseIntent(raw.str("intent")); ok {
		e.Intent = i
	} else {
		e.Intent = domain.IntentUnknown
	}
	if p, ok := domain.ParsePriority(raw.str("priority")); ok {
		e.Priority = p
	} else {
		e.Priority = domain.PriorityMedium
	}

	e.IntentConfidence = clampConfidence(raw.float("intentConfidence", "confidence"))

	if t, ok := raw.time("receivedAt", "received_at", "createdAt"); ok {
		e.ReceivedAt = t
	}
	if t, ok := raw.time("processedAt", "processed_at"); ok {
		e.ProcessedAt = &t
	}

	if md, ok := raw["metadata"]; ok && !isNull(md) {
		var meta domain.EmailMetadata
		if err := json.Unmarshal(md, &meta); err == nil {
			e.Metadata = &meta
		}
	}

	return e, nil
}

// normalizeEmails 规范化邮件数组
func normalizeEmails(items []json.RawMessage) ([]domain.Email, error) {
	out := make([]domain.Email, 0, len(items))
	for i, item := range items {
		e, err := NormalizeEmail(item)
		if err != nil {
			return nil, fmt.Errorf("email %d: %w", i, err)
		}
		out = append(out, e)
	}
	return out, nil
}

func clampConfidence(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

func isNull(v json.RawMessage) bool {
	return len(bytes.TrimSpace(v)) == 0 || string(bytes.TrimSpace(v)) == "null"
}

// str 返回第一个存在的字符串字段（数字会被转为字符串）
func (r rawObject) str(keys ...string) string {
	for _, k := range keys {
		v, ok := r[k]
		if !ok || isNull(v) {
			continue
		}
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			return s
		}
		var n json.Number
		if err := json.Unmarshal(v, &n); err == nil {
			return n.String()
		}
		var obj struct {
			OID string `json:"$oid"`
		}
		if err := json.Unmarshal(v, &obj); err == nil && obj.OID != "" {
			return obj.OID
		}
	}
	return ""
}

// float 返回第一个存在的数字字段（兼容字符串形式的数字）
func (r rawObject) float(keys ...string) float64 {
	for _, k := range keys {
		v, ok := r[k]
		if !ok || isNull(v) {
			continue
		}
		var f float64
		if err := json.Unmarshal(v, &f); err == nil {
			return f
		}
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
				return f
			}
		}
	}
	return 0
}

// time 返回第一个可以解析的时间字段
func (r rawObject) time(keys ...string) (time.Time, bool) {
	for _, k := range keys {
		v, ok := r[k]
		if !ok || isNull(v) {
			continue
		}
		if t, err := parseTimeJSON(v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseTimeJSON 解析字符串、数组（[y,m,d,h,mi,s,ns]）或毫秒时间戳形式的时间
func parseTimeJSON(v json.RawMessage) (time.Time, error) {
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return parseTime(s)
	}

	var parts []int
	if err := json.Unmarshal(v, &parts); err == nil && len(parts) >= 3 {
		for len(parts) < 7 {
			parts = append(parts, 0)
		}
		return time.Date(parts[0], time.Month(parts[1]), parts[2], parts[3], parts[4], parts[5], parts[6], time.UTC), nil
	}

	var ms int64
	if err := json.Unmarshal(v, &ms); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}

	return time.Time{}, fmt.Errorf("unsupported time value %s", string(v))
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported time format %q", s)
}

// Timestamp 容忍后端多种时间格式的 JSON 时间类型
type Timestamp struct {
	time.Time
}

// UnmarshalJSON 实现 json.Unmarshaler
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	parsed, err := parseTimeJSON(data)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// Ptr 零值时返回 nil
func (t Timestamp) Ptr() *time.Time {
	if t.IsZero() {
		return nil
	}
	v := t.Time
	return &v
}
