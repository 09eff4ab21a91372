package health

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/heptiolabs/healthcheck"
	"go.uber.org/zap"
)

// 单项检查的超时
const checkTimeout = 5 * time.Second

// Pinger 后端可达性检查（*backend.Client 实现）
type Pinger interface {
	Ping(ctx context.Context) error
}

// StoreChecker 草稿存储检查（*draft.Drafts 实现）
type StoreChecker interface {
	Health(ctx context.Context) error
}

// HealthChecker 健康检查器
type HealthChecker struct {
	health  healthcheck.Handler
	backend Pinger
	drafts  StoreChecker
	logger  *zap.Logger
}

// NewHealthChecker 创建健康检查器
func NewHealthChecker(backend Pinger, drafts StoreChecker, logger *zap.Logger) *HealthChecker {
	if logger == nil {
		logger = zap.NewNop()
	}
	hc := &HealthChecker{
		health:  healthcheck.NewHandler(),
		backend: backend,
		drafts:  drafts,
		logger:  logger,
	}

	hc.addChecks()

	return hc
}

// addChecks 添加健康检查
func (hc *HealthChecker) addChecks() {
	hc.health.AddLivenessCheck("goroutines", healthcheck.GoroutineCountCheck(10000))

	// 后端不可达时不接收流量
	hc.health.AddReadinessCheck("backend", healthcheck.Timeout(BackendHealthCheck(hc.backend), checkTimeout))
	hc.health.AddReadinessCheck("drafts", healthcheck.Timeout(DraftStoreHealthCheck(hc.drafts), checkTimeout))
}

// Handler 返回健康检查处理器，提供 /live 和 /ready
func (hc *HealthChecker) Handler() http.Handler {
	return hc.health
}

// LiveEndpoint 存活检查
func (hc *HealthChecker) LiveEndpoint(w http.ResponseWriter, r *http.Request) {
	hc.health.LiveEndpoint(w, r)
}

// ReadyEndpoint 就绪检查
func (hc *HealthChecker) ReadyEndpoint(w http.ResponseWriter, r *http.Request) {
	hc.health.ReadyEndpoint(w, r)
}

// CheckHealth 执行健康检查，返回各组件状态
func (hc *HealthChecker) CheckHealth(ctx context.Context) map[string]string {
	results := make(map[string]string)

	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	if err := hc.backend.Ping(ctx); err != nil {
		hc.logger.Warn("backend health check failed", zap.Error(err))
		results["backend"] = fmt.Sprintf("ERROR: %v", err)
	} else {
		results["backend"] = "OK"
	}

	if err := hc.drafts.Health(ctx); err != nil {
		hc.logger.Warn("draft store health check failed", zap.Error(err))
		results["drafts"] = fmt.Sprintf("ERROR: %v", err)
	} else {
		results["drafts"] = "OK"
	}

	results["timestamp"] = time.Now().Format(time.RFC3339)

	return results
}

// BackendHealthCheck 后端健康检查
func BackendHealthCheck(p Pinger) healthcheck.Check {
	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
		defer cancel()

		return p.Ping(ctx)
	}
}

// DraftStoreHealthCheck 草稿存储健康检查
func DraftStoreHealthCheck(s StoreChecker) healthcheck.Check {
	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
		defer cancel()

		return s.Health(ctx)
	}
}
