package draft

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"triagedesk/dashboard/internal/config"
)

// RedisStore Redis 存储，多个仪表盘实例可共享草稿
type RedisStore struct {
	rdb    *goredis.Client
	prefix string
	log    *zap.Logger
}

// NewRedisStore 连接 Redis 并创建存储
func NewRedisStore(cfg config.RedisConfig, prefix string, log *zap.Logger) (*RedisStore, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// 测试连接
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if log == nil {
		log = zap.NewNop()
	}
	log.Info("connected to Redis",
		zap.String("address", cfg.Address),
		zap.Int("db", cfg.DB),
	)

	return NewRedisStoreWithClient(rdb, prefix, log), nil
}

// NewRedisStoreWithClient 使用已有的客户端创建存储
func NewRedisStoreWithClient(rdb *goredis.Client, prefix string, log *zap.Logger) *RedisStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisStore{rdb: rdb, prefix: prefix, log: log}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.rdb.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read draft from Redis: %w", err)
	}
	return data, true, nil
}

// Set 写入草稿，不设置过期时间
func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return ErrInvalidKey
	}
	if err := s.rdb.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to write draft to Redis: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete draft from Redis: %w", err)
	}
	return nil
}

func (s *RedisStore) Health(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Close 关闭 Redis 连接
func (s *RedisStore) Close() error {
	if err := s.rdb.Close(); err != nil {
		s.log.Error("failed to close Redis connection", zap.Error(err))
		return err
	}
	s.log.Info("Redis connection closed")
	return nil
}
