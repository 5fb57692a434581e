package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tinylink/internal/adapters/httpapi/dto"
)

const (
	healthPingTimeout = 2 * time.Second

	databaseConnected    = "connected"
	databaseDisconnected = "disconnected"
)

func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthPingTimeout)
	defer cancel()

	resp := dto.HealthResponse{
		OK:       true,
		Version:  h.version,
		Uptime:   h.now().Sub(h.startedAt).Seconds(),
		Database: databaseConnected,
	}

	if err := h.svc.Ping(ctx); err != nil {
		h.log.WarnContext(ctx, "health check failed", "err", err)

		resp.OK = false
		resp.Database = databaseDisconnected
		c.JSON(http.StatusInternalServerError, resp)

		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Ping(c *gin.Context) {
	c.String(http.StatusOK, "pong")
}
