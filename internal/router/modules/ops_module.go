package modules

import (
	"context"
	"expvar"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lukian/user-api/internal/container"
	"github.com/lukian/user-api/internal/interface/middleware"
	"github.com/lukian/user-api/pkg/response"
)

// OpsModule exposes operational endpoints: a health check probing the
// backing stores and the expvar metrics dump.
type OpsModule struct{}

func NewOpsModule() *OpsModule { return &OpsModule{} }

func (m *OpsModule) Register(rg *gin.RouterGroup) {
	rl := middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())

	rg.GET("/healthz", rl, healthz)
	if cfg := container.GetConfig(); cfg == nil || cfg.DebugMetricsEnabled {
		rg.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
	}
}

func healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{}
	healthy := true

	if pool := container.GetPGPool(); pool != nil {
		if err := pool.Ping(ctx); err != nil {
			checks["postgres"] = err.Error()
			healthy = false
		} else {
			checks["postgres"] = "ok"
		}
	}
	if rdb := container.GetRedis(); rdb != nil {
		if err := rdb.Ping(ctx).Err(); err != nil {
			checks["redis"] = err.Error()
			healthy = false
		} else {
			checks["redis"] = "ok"
		}
	}

	if !healthy {
		response.Error(c, http.StatusServiceUnavailable, "degraded", checks)
		return
	}
	response.Success(c, http.StatusOK, checks, "healthy")
}
