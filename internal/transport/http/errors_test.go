package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"triagedesk/dashboard/internal/backend"
	"triagedesk/dashboard/internal/domain"
)

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		err      error
		notFound string
		wantCode int
		wantMsg  string
	}{
		{
			name:     "校验错误",
			err:      &domain.ValidationError{Field: "body", Message: "Please enter a reply message."},
			wantCode: CodeBadRequest,
			wantMsg:  "Please enter a reply message.",
		},
		{
			name:     "后端 404",
			err:      fmt.Errorf("get email: %w", &backend.APIError{Method: http.MethodGet, Path: "/emails/x", StatusCode: http.StatusNotFound}),
			notFound: MsgEmailNotFound,
			wantCode: CodeNotFound,
			wantMsg:  MsgEmailNotFound,
		},
		{
			name:     "未提供 notFound 时后端 404 按后端错误处理",
			err:      &backend.APIError{Method: http.MethodGet, Path: "/teams", StatusCode: http.StatusNotFound},
			wantCode: CodeBadGateway,
			wantMsg:  MsgTeamsFailed,
		},
		{
			name:     "后端超时",
			err:      fmt.Errorf("list emails: %w", context.DeadlineExceeded),
			wantCode: CodeGatewayTimeout,
			wantMsg:  MsgBackendTimeout,
		},
		{
			name:     "网络错误",
			err:      &url.Error{Op: "Get", URL: "http://backend/api/teams", Err: errors.New("connection refused")},
			wantCode: CodeBadGateway,
			wantMsg:  MsgTeamsFailed,
		},
		{
			name:     "其他错误",
			err:      errors.New("boom"),
			wantCode: CodeInternalError,
			wantMsg:  MsgTeamsFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)

			fallback := MsgTeamsFailed
			respondError(c, tt.err, fallback, tt.notFound)

			var resp Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantCode, resp.Code)
			assert.Equal(t, tt.wantMsg, resp.Msg)
		})
	}
}

func TestNoContent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	NoContent(c)
	c.Writer.WriteHeaderNow()

	assert.Equal(t, CodeNoContent, rec.Code)
	assert.Zero(t, rec.Body.Len())
}
