package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"triagedesk/dashboard/internal/monitoring"
)

// HTTPMetrics HTTP 指标中间件
func HTTPMetrics(metrics *monitoring.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		// 未匹配的路由
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		status := c.Writer.Status()
		size := c.Writer.Size()
		if size < 0 {
			size = 0
		}

		metrics.RecordHTTPRequest(
			c.Request.Method,
			endpoint,
			strconv.Itoa(status),
			time.Since(start),
			int64(size),
		)

		if status >= 500 {
			metrics.RecordError("http_error", "http")
		}
	}
}

// PanicMetrics 记录 panic 次数后继续向外抛出，交给 RecoveryHandler 处理
func PanicMetrics(metrics *monitoring.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				metrics.RecordPanic()
				panic(err)
			}
		}()

		c.Next()
	}
}
