package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	resp "redflix-api/internal/transport/http/response"
)

// Pinger redis 等可选依赖
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	DB    *gorm.DB
	Cache Pinger // nil 表示未启用
	Log   *zap.Logger
}

func (h *HealthHandler) Mount(r gin.IRouter) {
	r.GET("/health", h.Live)
	r.GET("/health/ready", h.Ready)
}

func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, resp.OK(gin.H{"ok": 1}))
}

// Ready db 必须可达；配置了 redis 时也要可达
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := gin.H{"db": "ok"}
	healthy := true
	if err := h.pingDB(ctx); err != nil {
		checks["db"] = "down"
		healthy = false
		h.logFail("db", err)
	}
	if h.Cache != nil {
		checks["redis"] = "ok"
		if err := h.Cache.Ping(ctx); err != nil {
			checks["redis"] = "down"
			healthy = false
			h.logFail("redis", err)
		}
	}
	if !healthy {
		c.JSON(http.StatusServiceUnavailable, resp.Resp{Code: http.StatusServiceUnavailable, Msg: "not ready", Data: checks})
		return
	}
	c.JSON(http.StatusOK, resp.OK(checks))
}

func (h *HealthHandler) pingDB(ctx context.Context) error {
	if h.DB == nil {
		return gorm.ErrInvalidDB
	}
	sqlDB, err := h.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (h *HealthHandler) logFail(dep string, err error) {
	if h.Log != nil {
		h.Log.Warn("readiness check failed", zap.String("dep", dep), zap.Error(err))
	}
}
