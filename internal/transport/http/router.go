package httptransport

import (
	"net/http"
	"time"

	gincors "github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"triagedesk/dashboard/internal/config"
	"triagedesk/dashboard/internal/health"
	"triagedesk/dashboard/internal/middleware"
	"triagedesk/dashboard/internal/monitoring"
	"triagedesk/dashboard/internal/service"
	"triagedesk/dashboard/internal/websocket"
)

// Handler 聚合所有 HTTP 处理逻辑
type Handler struct {
	svc *service.Service
	log *zap.Logger
}

// RouterDependencies 路由器依赖项
//
// WebSocketHub、Metrics、Health 可以为 nil，对应的路由不注册。
type RouterDependencies struct {
	Config       *config.Config
	Service      *service.Service
	WebSocketHub *websocket.Hub
	Metrics      *monitoring.Metrics
	Health       *health.HealthChecker
	Logger       *zap.Logger
}

// NewRouter 创建并返回 Gin 路由实例
func NewRouter(deps RouterDependencies) *gin.Engine {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	router := gin.New()

	router.Use(middleware.RecoveryHandler(log))
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(log))
	if deps.Metrics != nil {
		router.Use(middleware.HTTPMetrics(deps.Metrics), middleware.PanicMetrics(deps.Metrics))
	}
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.BodySizeLimit(middleware.DefaultBodyLimit))

	// CORS 配置
	corsConfig := gincors.Config{
		AllowOrigins:     deps.Config.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	// 如果允许所有来源，则需清空凭证支持
	for _, origin := range corsConfig.AllowOrigins {
		if origin == "*" {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowAllOrigins = true
			corsConfig.AllowCredentials = false
			break
		}
	}
	router.Use(gincors.New(corsConfig))

	h := &Handler{svc: deps.Service, log: log}

	// 健康检查
	if deps.Health != nil {
		router.GET("/health", func(c *gin.Context) {
			Success(c, deps.Health.CheckHealth(c.Request.Context()))
		})
		router.GET("/health/live", gin.WrapF(deps.Health.LiveEndpoint))
		router.GET("/health/ready", gin.WrapF(deps.Health.ReadyEndpoint))
	} else {
		router.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
	}

	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.HTTPHandler()))
	}

	if deps.WebSocketHub != nil {
		router.GET("/ws", websocket.HandleWebSocket(deps.WebSocketHub))
	}

	api := router.Group("/api")
	{
		api.GET("/dashboard", h.dashboard)
		api.GET("/admin", h.adminPanel)

		// ========== Email Routes ==========
		emails := api.Group("/emails")
		{
			emails.GET("", h.listEmails)
			emails.POST("", h.createEmail)
			emails.GET("/:id", h.getEmail)
			emails.PUT("/:id/status/:status", h.updateStatus)
			emails.PUT("/:id/priority/:priority", h.updatePriority)
			emails.POST("/:id/assign", h.assign)
			emails.POST("/:id/escalate", h.escalate)
			emails.PUT("/:id/assign/team/:teamId", h.assignTeam)
			emails.PUT("/:id/assign/user/:userId", h.assignUser)
			emails.POST("/:id/notes", h.addNote)
			emails.POST("/:id/reply", h.sendReply)
			emails.POST("/:id/ai-reply", h.generateReply)
			emails.GET("/:id/composer", h.openComposer)
		}

		// ========== Draft Routes ==========
		drafts := api.Group("/drafts")
		{
			drafts.GET("/:emailId", h.getDraft)
			drafts.PUT("/:emailId", h.saveDraft)
			drafts.DELETE("/:emailId", h.discardDraft)
		}

		// ========== Team Routes ==========
		teams := api.Group("/teams")
		{
			teams.GET("", h.teamManagement)
			teams.POST("", h.createTeam)
			teams.GET("/assignment-rules", h.assignmentRules)
			teams.PUT("/assignment-rules/:intent", h.updateAssignmentRule)
			teams.GET("/:id", h.getTeam)
			teams.PUT("/:id", h.updateTeam)
			teams.DELETE("/:id", h.deleteTeam)
		}

		// ========== User Routes ==========
		users := api.Group("/users")
		{
			users.GET("", h.listUsers)
			users.GET("/me", h.currentUser)
		}
	}

	return router
}
