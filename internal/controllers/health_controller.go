package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/poofware/submission-service/internal/app"
	"github.com/poofware/submission-service/internal/dtos"
	"github.com/poofware/submission-service/internal/forms"
	"github.com/poofware/submission-service/internal/utils"
)

const healthProbeTimeout = 2 * time.Second

type HealthController struct {
	app    *app.App
	logger logrus.FieldLogger
	now    func() time.Time
}

func NewHealthController(a *app.App, logger logrus.FieldLogger) *HealthController {
	return &HealthController{app: a, logger: logger, now: time.Now}
}

func (c *HealthController) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	cfg := c.app.Config
	resp := dtos.HealthCheckResponse{
		Status:      dtos.HealthStatusHealthy,
		Timestamp:   c.now().UTC().Format(time.RFC3339),
		Service:     cfg.AppName,
		Environment: cfg.Env,
		Endpoints:   forms.Paths(),
	}

	// Probe the only external dependency (mail transport config)
	ctx, cancel := context.WithTimeout(r.Context(), healthProbeTimeout)
	defer cancel()
	if err := c.app.SubmissionService.Ping(ctx); err != nil {
		c.logger.WithField("request_id", utils.RequestIDFromContext(r.Context())).
			WithError(err).Error("submission-service unhealthy")
		resp.Status = dtos.HealthStatusUnhealthy
		resp.Error = "Mail transport unavailable"
		if cfg.DevMode() {
			resp.Error = err.Error()
		}
		utils.RespondWithJSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, resp)
}
