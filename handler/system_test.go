package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaos-io/visionkit/health"
)

type fixedStatus health.Status

func (s fixedStatus) Status() health.Status { return health.Status(s) }

func TestSystemHandler(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		monitor StatusReporter
		status  string
	}{
		{name: "未配置监控", status: "ok"},
		{name: "推理服务正常", monitor: fixedStatus{Healthy: true, CheckedAt: time.Now()}, status: "ok"},
		{name: "推理服务异常", monitor: fixedStatus{Healthy: false, Error: "timeout"}, status: "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := gin.New()
			NewSystemHandler(BuildInfo{Version: "1.2.3"}, tt.monitor).Register(r)

			w, body := serve(r, httptest.NewRequest(http.MethodGet, "/health", nil))
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.status, body["status"])
			assert.Equal(t, "1.2.3", body["version"])
			if tt.monitor == nil {
				assert.NotContains(t, body, "inference")
			} else {
				assert.Contains(t, body, "inference")
			}

			w, body = serve(r, httptest.NewRequest(http.MethodGet, "/version", nil))
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "1.2.3", body["version"])
			assert.NotEmpty(t, body["go_version"])
		})
	}
}
