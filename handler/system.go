package handler

import (
	"net/http"
	"runtime"

	"github.com/gin-gonic/gin"

	"github.com/chaos-io/visionkit/health"
	"github.com/chaos-io/visionkit/model"
)

type BuildInfo struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time"`
	GitCommit string `json:"git_commit"`
}

type StatusReporter interface {
	Status() health.Status
}

type SystemHandler struct {
	build   BuildInfo
	monitor StatusReporter
}

// NewSystemHandler monitor 为 nil 时 /health 只报告进程存活
func NewSystemHandler(build BuildInfo, monitor StatusReporter) *SystemHandler {
	return &SystemHandler{build: build, monitor: monitor}
}

func (h *SystemHandler) Register(r gin.IRouter) {
	r.GET("/health", h.Health)
	r.GET("/version", h.Version)
}

func (h *SystemHandler) Health(c *gin.Context) {
	resp := gin.H{
		"status":  "ok",
		"version": h.build.Version,
	}
	if h.monitor != nil {
		status := h.monitor.Status()
		if !status.Healthy {
			resp["status"] = "degraded"
		}
		resp["inference"] = status
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SystemHandler) Version(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version":    h.build.Version,
		"build_time": h.build.BuildTime,
		"git_commit": h.build.GitCommit,
		"go_version": runtime.Version(),
	})
}

// NotFound 未知路由
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, model.ErrorResponse{
		Success: false,
		Message: "Endpoint not found",
	})
}
