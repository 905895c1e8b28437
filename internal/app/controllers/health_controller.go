package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aman-gurjar-dev/TechnoHack/internal/app/models/dto"
	"github.com/aman-gurjar-dev/TechnoHack/internal/middleware"
	"github.com/aman-gurjar-dev/TechnoHack/internal/pkg/apperrors"
)

// Pinger reports whether the store answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthController serves liveness and readiness probes
type HealthController struct {
	store   Pinger
	timeout time.Duration
}

// NewHealthController creates a new HealthController
func NewHealthController(store Pinger, timeout time.Duration) *HealthController {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &HealthController{store: store, timeout: timeout}
}

// Ping is a liveness probe that never touches the store.
func (hc *HealthController) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"message": "pong"}, ""))
}

// Health reports 503 while the database is unreachable.
func (hc *HealthController) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), hc.timeout)
	defer cancel()

	if err := hc.store.Ping(ctx); err != nil {
		middleware.HandleAPIError(c, apperrors.NewServiceUnavailableError("Database is unavailable", err))
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"database": "up"}, "OK"))
}
