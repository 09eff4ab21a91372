// Package draft 保存客服尚未发送的回复草稿。
//
// 草稿只在本机（或共享的 Redis）上持久化，不会同步到后端，也没有过期时间。
package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"triagedesk/dashboard/internal/config"
	"triagedesk/dashboard/internal/domain"

	"go.uber.org/zap"
)

// ErrInvalidKey 键为空或包含非法字符
var ErrInvalidKey = errors.New("invalid draft key")

// Store 键值存储后端
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Health(ctx context.Context) error
	Close() error
}

// Open 根据配置创建存储后端
func Open(cfg config.DraftConfig, redisCfg config.RedisConfig, log *zap.Logger) (Store, error) {
	switch cfg.Backend {
	case config.DraftBackendMemory:
		return NewMemoryStore(), nil
	case config.DraftBackendFilesystem, "":
		return NewFileStore(cfg.Path)
	case config.DraftBackendRedis:
		return NewRedisStore(redisCfg, cfg.KeyPrefix, log)
	default:
		return nil, fmt.Errorf("unsupported drafts backend %q", cfg.Backend)
	}
}

// Key 邮件对应的草稿键
func Key(emailID string) string {
	return "draft-" + emailID
}

// Drafts 以邮件为单位读写草稿
type Drafts struct {
	store Store
}

// NewDrafts 创建草稿仓库
func NewDrafts(store Store) *Drafts {
	return &Drafts{store: store}
}

// Load 读取草稿，不存在时返回 ok=false
//
// 内容无法解析的草稿按不存在处理。
func (d *Drafts) Load(ctx context.Context, emailID string) (domain.Draft, bool, error) {
	if err := checkEmailID(emailID); err != nil {
		return domain.Draft{}, false, err
	}
	data, ok, err := d.store.Get(ctx, Key(emailID))
	if err != nil || !ok {
		return domain.Draft{}, false, err
	}
	var draft domain.Draft
	if err := json.Unmarshal(data, &draft); err != nil {
		return domain.Draft{}, false, nil
	}
	return draft, true, nil
}

// Save 覆盖保存草稿
func (d *Drafts) Save(ctx context.Context, emailID string, draft domain.Draft) error {
	if err := checkEmailID(emailID); err != nil {
		return err
	}
	data, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("failed to encode draft: %w", err)
	}
	return d.store.Set(ctx, Key(emailID), data)
}

// Delete 删除草稿，不存在时不报错
func (d *Drafts) Delete(ctx context.Context, emailID string) error {
	if err := checkEmailID(emailID); err != nil {
		return err
	}
	return d.store.Delete(ctx, Key(emailID))
}

// Health 检查底层存储
func (d *Drafts) Health(ctx context.Context) error {
	return d.store.Health(ctx)
}

func checkEmailID(emailID string) error {
	if strings.TrimSpace(emailID) == "" {
		return fmt.Errorf("%w: empty email id", ErrInvalidKey)
	}
	return nil
}
