// Package httpapi exposes the link service over HTTP.
package httpapi

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"tinylink/internal/adapters/httpapi/handlers"
	"tinylink/internal/app/links"
)

const (
	linksPath      = "/links"
	linkByCodePath = "/links/:code"
)

type RouterDeps struct {
	Links     links.UseCase
	BaseURL   string
	Version   string
	StartedAt time.Time
	Logger    *slog.Logger
}

type EnginePlugin func(*gin.Engine)

// NewEngine creates a bare gin.Engine and applies plugins in order.
func NewEngine(plugins ...EnginePlugin) *gin.Engine {
	r := gin.New()

	for _, p := range plugins {
		p(r)
	}

	return r
}

// RegisterRoutes attaches routes/handlers to an existing engine.
func RegisterRoutes(r *gin.Engine, deps RouterDeps) {
	h := handlers.New(deps.Links, deps.BaseURL,
		handlers.WithVersion(deps.Version),
		handlers.WithStartedAt(deps.StartedAt),
		handlers.WithLogger(deps.Logger),
	)

	r.NoRoute(h.NotFound)
	r.GET("/ping", h.Ping)
	r.GET("/healthz", h.Health)

	api := r.Group("/api")
	{
		api.GET(linksPath, h.ListLinks)
		api.POST(linksPath, h.CreateLink)
		api.GET(linkByCodePath, h.GetLink)
		api.DELETE(linkByCodePath, h.DeleteLink)
	}

	r.GET("/:code", h.Redirect)
}
