// Package backend 是分诊后端 REST 服务的类型化客户端。
//
// 每个方法只发起一次 HTTP 请求，成功时返回规范化后的领域对象；
// 任何非 2xx 响应或网络错误都直接返回给调用方，这一层不做重试。
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// maxErrorBody 错误响应体最多保留的字节数
const maxErrorBody = 2048

// APIError 后端返回了非成功状态码
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("backend %s %s returned status %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("backend %s %s returned status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// IsNotFound 判断错误是否为后端 404
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// StatusCode 返回错误携带的后端状态码，非 APIError 返回 0
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// RequestObserver 观察每次后端调用（用于监控指标）
type RequestObserver interface {
	ObserveBackendRequest(route string, statusCode int, duration time.Duration)
}

// Client 后端 REST 客户端
type Client struct {
	baseURL       string
	httpClient    *http.Client
	limiter       *rate.Limiter
	observer      RequestObserver
	defaultUserID string
	log           *zap.Logger
}

// Option 客户端可选配置
type Option func(*Client)

// WithHTTPClient 使用自定义 http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout 设置单次请求超时
//
// 修改的是 http.Client 的副本，WithHTTPClient 传入的实例保持不变。
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			hc := *c.httpClient
			hc.Timeout = d
			c.httpClient = &hc
		}
	}
}

// WithRateLimit 启用客户端令牌桶限流，perSecond <= 0 时不限流
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		if perSecond > 0 {
			if burst <= 0 {
				burst = 1
			}
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		}
	}
}

// WithObserver 设置请求观察者
func WithObserver(o RequestObserver) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// WithDefaultUserID 设置备注与回复的默认 userId
func WithDefaultUserID(id string) Option {
	return func(c *Client) {
		if id != "" {
			c.defaultUserID = id
		}
	}
}

// WithLogger 设置日志记录器
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// New 创建后端客户端，baseURL 形如 http://host:port/api
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		defaultUserID: "system",
		log:           zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL 返回后端基础地址
func (c *Client) BaseURL() string {
	return c.baseURL
}

// request 描述一次后端调用
type request struct {
	method      string
	route       string // 用于日志和指标的路由模板，例如 /emails/{id}
	path        string // 已转义的实际路径
	query       url.Values
	body        io.Reader
	contentType string
}

// Ping 检查后端是否可达（任何 HTTP 响应都视为可达）
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/emails/statistics", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("backend unreachable: %w", err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode >= 500 {
		return fmt.Errorf("backend unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

// do 执行请求并把 JSON 响应解码到 out（out 为 nil 时丢弃响应体）
func (c *Client) do(ctx context.Context, r request, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("backend rate limiter: %w", err)
		}
	}

	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, r.body)
	if err != nil {
		return fmt.Errorf("failed to create backend request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if r.body != nil {
		ct := r.contentType
		if ct == "" {
			ct = "application/json"
		}
		req.Header.Set("Content-Type", ct)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		c.observe(r.route, 0, duration)
		c.log.Warn("backend request failed",
			zap.String("method", r.method),
			zap.String("route", r.route),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return fmt.Errorf("backend %s %s: %w", r.method, r.path, err)
	}
	defer resp.Body.Close()
	c.observe(r.route, resp.StatusCode, duration)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.log.Warn("backend returned error status",
			zap.String("method", r.method),
			zap.String("route", r.route),
			zap.Int("status", resp.StatusCode),
			zap.Duration("duration", duration),
		)
		return &APIError{
			Method:     r.method,
			Path:       r.path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	c.log.Debug("backend request",
		zap.String("method", r.method),
		zap.String("route", r.route),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", duration),
	)

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to decode backend response for %s %s: %w", r.method, r.path, err)
	}
	return nil
}

func (c *Client) observe(route string, status int, d time.Duration) {
	if c.observer != nil {
		c.observer.ObserveBackendRequest(route, status, d)
	}
}

// jsonBody 将请求体编码为 JSON
func jsonBody(v any) (io.Reader, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}
	return bytes.NewReader(data), nil
}

// seg 转义单个路径段
func seg(s string) string {
	return url.PathEscape(s)
}

func (c *Client) userID(id string) string {
	if strings.TrimSpace(id) == "" {
		return c.defaultUserID
	}
	return id
}
