package domain

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
)

// 验证相关的错误定义
var (
	ErrInvalidEmail   = errors.New("invalid email format")
	ErrEmailTooLong   = errors.New("email address too long")
	ErrRequired       = errors.New("field is required")
	ErrInvalidEmailID = errors.New("invalid email id")
	ErrInvalidEnum    = errors.New("invalid enum value")
)

// MaxEmailLength RFC 5322 邮箱地址长度上限
const MaxEmailLength = 254

// ValidationError 客户端校验失败，发生在任何网络请求之前
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func newValidationError(field, msg string, err error) *ValidationError {
	return &ValidationError{Field: field, Message: msg, Err: err}
}

// ValidateAddress 校验单个邮箱地址
func ValidateAddress(address string) error {
	address = strings.TrimSpace(address)
	if len(address) > MaxEmailLength {
		return ErrEmailTooLong
	}
	parsed, err := mail.ParseAddress(address)
	if err != nil || parsed.Address != address {
		return ErrInvalidEmail
	}
	return nil
}

// ValidateAddressList 校验逗号分隔的地址列表，空字符串视为合法
func ValidateAddressList(list string) error {
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if err := ValidateAddress(part); err != nil {
			return err
		}
	}
	return nil
}

// Validate 校验新建邮件请求：收件人、主题、正文必填
func (r *EmailRequest) Validate() error {
	if strings.TrimSpace(r.To) == "" || strings.TrimSpace(r.Subject) == "" || strings.TrimSpace(r.Body) == "" {
		return newValidationError("", "Please fill in all required fields.", ErrRequired)
	}
	if err := ValidateAddress(r.To); err != nil {
		return newValidationError("to", "recipient address is not valid", err)
	}
	if err := ValidateAddressList(r.CC); err != nil {
		return newValidationError("cc", "cc address is not valid", err)
	}
	if err := ValidateAddressList(r.BCC); err != nil {
		return newValidationError("bcc", "bcc address is not valid", err)
	}
	if r.From != "" {
		if err := ValidateAddress(r.From); err != nil {
			return newValidationError("from", "sender address is not valid", err)
		}
	}
	return nil
}

// ValidateReply 回复正文不能为空或仅包含空白
func ValidateReply(body string) error {
	if strings.TrimSpace(body) == "" {
		return newValidationError("reply", "Please enter a reply message.", ErrRequired)
	}
	return nil
}

// ValidateNote 备注不能为空
func ValidateNote(note string) error {
	if strings.TrimSpace(note) == "" {
		return newValidationError("note", "Please enter a note.", ErrRequired)
	}
	return nil
}

// ValidateEmailID 拒绝路由中常见的占位 ID
func ValidateEmailID(id string) error {
	switch strings.TrimSpace(id) {
	case "", "new", "undefined", "null":
		return newValidationError("id", fmt.Sprintf("The email ID %q is not valid.", id), ErrInvalidEmailID)
	}
	return nil
}

// Validate 校验团队表单
func (t *TeamInput) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return newValidationError("name", "team name is required", ErrRequired)
	}
	if t.Status != "" && !t.Status.Valid() {
		return newValidationError("status", fmt.Sprintf("unknown team status %q", t.Status), ErrInvalidEnum)
	}
	for _, intent := range t.HandledIntents {
		if !intent.Valid() {
			return newValidationError("handledIntents", fmt.Sprintf("unknown intent %q", intent), ErrInvalidEnum)
		}
	}
	return nil
}

// ValidateAssignmentRule 校验单条分配规则
func ValidateAssignmentRule(intent EmailIntent, teamName string) error {
	if !intent.Valid() {
		return newValidationError("intent", fmt.Sprintf("unknown intent %q", intent), ErrInvalidEnum)
	}
	if strings.TrimSpace(teamName) == "" {
		return newValidationError("teamName", "team name is required", ErrRequired)
	}
	return nil
}
