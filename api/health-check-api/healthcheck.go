package health_check_api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pathwiseai/config"
	"github.com/pathwiseai/pkg/commons"
)

type HealthCheckApi struct {
	cfg    *config.AppConfig
	logger commons.Logger
}

func New(cfg *config.AppConfig, logger commons.Logger) *HealthCheckApi {
	return &HealthCheckApi{cfg: cfg, logger: logger}
}

// Healthz reports process liveness.
func (hApi *HealthCheckApi) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"name":    hApi.cfg.Name,
		"version": hApi.cfg.Version,
	})
}

// Readiness reports whether the service can take traffic. There are no
// backing stores; being up is being ready.
func (hApi *HealthCheckApi) Readiness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
