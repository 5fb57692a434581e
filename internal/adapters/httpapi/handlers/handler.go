package handlers

import (
	"log/slog"
	"net/http"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"

	"tinylink/internal/adapters/httpapi/middleware"
	"tinylink/internal/adapters/httpapi/problems"
	"tinylink/internal/app/links"
)

const defaultVersion = "1.0"

type Handler struct {
	svc       links.UseCase
	baseURL   string
	version   string
	startedAt time.Time
	now       func() time.Time
	log       *slog.Logger
}

type Option func(*Handler)

func WithVersion(v string) Option {
	return func(h *Handler) {
		if v != "" {
			h.version = v
		}
	}
}

// WithStartedAt sets the instant uptime is measured from.
func WithStartedAt(t time.Time) Option {
	return func(h *Handler) {
		if !t.IsZero() {
			h.startedAt = t
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		if now != nil {
			h.now = now
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.log = l
		}
	}
}

func New(svc links.UseCase, baseURL string, opts ...Option) *Handler {
	h := &Handler{
		svc:       svc,
		baseURL:   baseURL,
		version:   defaultVersion,
		startedAt: time.Now(),
		now:       time.Now,
		log:       slog.Default(),
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

func (h *Handler) fail(c *gin.Context, err error) {
	if errs, ok := validationErrorsFromDomain(err); ok {
		writeValidationErrors(c, errs)

		return
	}

	p := problemFromError(err)
	if p.Status >= http.StatusInternalServerError {
		h.report(c, err)
	}

	problems.WriteProblem(c, p)
}

// report sends server-side failures to the log and to Sentry when enabled.
func (h *Handler) report(c *gin.Context, err error) {
	h.log.ErrorContext(c.Request.Context(), "request failed",
		"method", c.Request.Method,
		"path", c.FullPath(),
		"request_id", c.GetString(middleware.RequestIDKey),
		"err", err,
	)

	if hub := sentrygin.GetHubFromContext(c); hub != nil {
		hub.CaptureException(err)
	}
}

func (h *Handler) NotFound(c *gin.Context) {
	problems.WriteProblem(c, problems.Problem{
		Type:   problems.ProblemTypeNotFound,
		Title:  problems.TitleNotFound,
		Status: http.StatusNotFound,
		Detail: problems.DetailNotFound,
	})
}
