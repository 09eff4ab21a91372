// Package cli 实现 triagectl 终端客户端：在终端里查看仪表盘、处理邮件和团队。
//
// 客户端在进程内组装与仪表盘服务相同的数据层（后端客户端、查询缓存、草稿存储），
// 不经过仪表盘的 HTTP 接口。
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"triagedesk/dashboard/internal/backend"
	"triagedesk/dashboard/internal/config"
	"triagedesk/dashboard/internal/domain"
	"triagedesk/dashboard/internal/draft"
	"triagedesk/dashboard/internal/query"
	"triagedesk/dashboard/internal/service"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo 设置构建时注入的版本信息
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

// Service 终端客户端使用的数据层操作（*service.Service 实现）
type Service interface {
	Dashboard(ctx context.Context) (*service.DashboardView, error)
	EmailList(ctx context.Context, filters domain.EmailFilters, order service.Sort) (*service.EmailListView, error)
	EmailDetail(ctx context.Context, id string) (*service.EmailDetailView, error)
	UpdateStatus(ctx context.Context, id string, status domain.EmailStatus) (*domain.Email, error)
	Assign(ctx context.Context, id string) (*domain.Email, error)
	Escalate(ctx context.Context, id string) (*domain.Email, error)
	SendReply(ctx context.Context, emailID, body, userID string) (*domain.Email, error)
	TeamManagement(ctx context.Context) (*service.TeamManagementView, error)
}

// Svc 由 main 或测试注入；为空时根据配置和命令行参数创建
var Svc Service

// requestTimeout 单条命令的整体超时
const requestTimeout = 30 * time.Second

type rootOptions struct {
	backendURL string
	userID     string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "triagectl",
		Short: "Terminal client for the support email triage dashboard",
		Long: `triagectl talks to the triage backend directly and shows the same views as the
web dashboard: statistics, filtered email lists, email details and team rules.

Configuration comes from TRIAGEDESK_* environment variables or a .env file;
--backend overrides the backend base URL.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if Svc != nil || cmd.Name() == "version" {
				return nil
			}
			svc, err := buildService(opts)
			if err != nil {
				return err
			}
			Svc = svc
			return nil
		},
	}
	root.PersistentFlags().StringVar(&opts.backendURL, "backend", "", "triage backend base URL (default from TRIAGEDESK_BACKEND_BASE_URL)")
	root.PersistentFlags().StringVar(&opts.userID, "user", "", "user id recorded on notes and replies")

	root.AddCommand(
		newVersionCmd(),
		newDashboardCmd(),
		newEmailsCmd(),
		newEmailCmd(opts),
		newTeamsCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "triagectl %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
		},
	}
}

// buildService 终端里只用内存草稿，日志关闭以免打乱输出
func buildService(opts *rootOptions) (*service.Service, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	baseURL := cfg.Backend.BaseURL
	if opts.backendURL != "" {
		baseURL = opts.backendURL
	}

	api := backend.New(baseURL,
		backend.WithTimeout(cfg.Backend.Timeout),
		backend.WithRateLimit(cfg.Backend.RateLimit, cfg.Backend.RateBurst),
		backend.WithDefaultUserID(cfg.Backend.DefaultUserID),
	)
	cache := query.New(query.WithStaleTime(cfg.Cache.StaleTime), query.WithMaxEntries(cfg.Cache.MaxEntries))
	return service.New(api, cache, draft.NewDrafts(draft.NewMemoryStore()), zap.NewNop()), nil
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, requestTimeout)
}

// Execute 运行根命令
func Execute() error {
	return newRootCmd().Execute()
}
