package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"triagedesk/dashboard/internal/backend"
	"triagedesk/dashboard/internal/config"
	"triagedesk/dashboard/internal/draft"
	"triagedesk/dashboard/internal/health"
	"triagedesk/dashboard/internal/logger"
	"triagedesk/dashboard/internal/monitoring"
	"triagedesk/dashboard/internal/query"
	"triagedesk/dashboard/internal/service"
	httptransport "triagedesk/dashboard/internal/transport/http"
	"triagedesk/dashboard/internal/websocket"
)

// main 启动仪表盘 HTTP 服务：浏览器 API、失效推送、健康检查与指标。
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync() //nolint:errcheck

	log.Info("starting triagedesk dashboard",
		zap.String("backend", cfg.Backend.BaseURL),
		zap.String("drafts", cfg.Drafts.Backend),
		zap.Duration("stale_time", cfg.Cache.StaleTime),
		zap.Bool("development", cfg.Log.Development),
	)

	metrics := monitoring.NewMetrics()

	api := backend.New(cfg.Backend.BaseURL,
		backend.WithTimeout(cfg.Backend.Timeout),
		backend.WithRateLimit(cfg.Backend.RateLimit, cfg.Backend.RateBurst),
		backend.WithDefaultUserID(cfg.Backend.DefaultUserID),
		backend.WithObserver(metrics),
		backend.WithLogger(log.Named("backend")),
	)

	store, err := draft.Open(cfg.Drafts, cfg.Redis, log)
	if err != nil {
		log.Fatal("failed to open draft store", zap.Error(err))
	}
	defer store.Close()
	drafts := draft.NewDrafts(store)

	// 失效事件同时推送给浏览器并计入指标
	wsHub := websocket.NewHub(cfg.CORS.AllowedOrigins, log.Named("ws"))
	wsHub.SetClientCounter(metrics)

	cache := query.New(
		query.WithStaleTime(cfg.Cache.StaleTime),
		query.WithMaxEntries(cfg.Cache.MaxEntries),
		query.WithObserver(metrics),
		query.WithObserver(wsHub),
		query.WithLogger(log.Named("query")),
	)

	svc := service.New(api, cache, drafts, log)
	healthChecker := health.NewHealthChecker(api, drafts, log)

	httpAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	router := httptransport.NewRouter(httptransport.RouterDependencies{
		Config:       cfg,
		Service:      svc,
		WebSocketHub: wsHub,
		Metrics:      metrics,
		Health:       healthChecker,
		Logger:       log,
	})

	httpServer := &http.Server{
		Addr:              httpAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.Backend.Timeout + 10*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Info("starting HTTP server", zap.String("address", httpAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", zap.Error(err))
			return err
		}
		return nil
	})

	group.Go(func() error {
		log.Info("starting WebSocket hub")
		wsHub.Run(groupCtx)
		return nil
	})

	// 启动时检查一次后端，不可达只告警（就绪检查会拒绝流量）
	group.Go(func() error {
		for name, status := range healthChecker.CheckHealth(groupCtx) {
			if name != "timestamp" {
				log.Info("startup health check", zap.String("component", name), zap.String("status", status))
			}
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		log.Info("shutdown signal received, gracefully shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP server shutdown error", zap.Error(err))
		}
		log.Info("server stopped")
		return nil
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal("server error", zap.Error(err))
	}

	log.Info("server exited cleanly")
}
