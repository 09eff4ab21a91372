package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type funcCheck func(ctx context.Context) error

func (f funcCheck) Ping(ctx context.Context) error   { return f(ctx) }
func (f funcCheck) Health(ctx context.Context) error { return f(ctx) }

func ok(context.Context) error { return nil }

func TestReadiness(t *testing.T) {
	tests := []struct {
		name    string
		backend funcCheck
		drafts  funcCheck
		want    int
	}{
		{"全部正常", ok, ok, http.StatusOK},
		{"后端不可达", func(context.Context) error { return errors.New("connection refused") }, ok, http.StatusServiceUnavailable},
		{"草稿存储异常", ok, func(context.Context) error { return errors.New("redis down") }, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hc := NewHealthChecker(tt.backend, tt.drafts, nil)

			rec := httptest.NewRecorder()
			hc.ReadyEndpoint(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
			assert.Equal(t, tt.want, rec.Code)

			// 存活检查不依赖外部组件
			rec = httptest.NewRecorder()
			hc.LiveEndpoint(rec, httptest.NewRequest(http.MethodGet, "/live", nil))
			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}
}

func TestCheckHealth(t *testing.T) {
	hc := NewHealthChecker(funcCheck(ok), funcCheck(func(context.Context) error { return errors.New("disk full") }), nil)

	got := hc.CheckHealth(context.Background())
	assert.Equal(t, "OK", got["backend"])
	assert.Equal(t, "ERROR: disk full", got["drafts"])
	assert.NotEmpty(t, got["timestamp"])
}
