package interview_routers

import (
	"github.com/gin-gonic/gin"

	healthCheckApi "github.com/pathwiseai/api/health-check-api"
	interviewApi "github.com/pathwiseai/api/interview-api"
	"github.com/pathwiseai/config"
	"github.com/pathwiseai/pkg/commons"
)

func InterviewRoutes(cfg *config.AppConfig, engine *gin.Engine, logger commons.Logger, controller interviewApi.SessionController) {
	logger.Info("Interview session routes added to engine.")
	apiv1 := engine.Group("v1/interview")
	iApi := interviewApi.New(cfg, logger, controller)
	{
		apiv1.POST("/start", iApi.Start)
		apiv1.POST("/stop", iApi.Stop)
		apiv1.POST("/mute", iApi.ToggleMute)
		apiv1.GET("/status", iApi.Status)
		apiv1.GET("/transcript", iApi.Transcript)
	}
}

func HealthCheckRoutes(cfg *config.AppConfig, engine *gin.Engine, logger commons.Logger) {
	logger.Info("Internal HealthCheckRoutes added to engine.")
	apiv1 := engine.Group("")
	hcApi := healthCheckApi.New(cfg, logger)
	{
		apiv1.GET("/readiness/", hcApi.Readiness)
		apiv1.GET("/healthz/", hcApi.Healthz)
	}
}
