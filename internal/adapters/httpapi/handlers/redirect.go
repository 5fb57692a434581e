package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tinylink/internal/domain"
)

const notFoundPage = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>404 - Page Not Found</title></head>
<body>
<h1>404 - Page Not Found</h1>
<p>The page or short link you're looking for doesn't exist.</p>
<p><a href="/">Back to Dashboard</a></p>
</body>
</html>
`

// Redirect answers 302 to the stored target and counts the click.
func (h *Handler) Redirect(c *gin.Context) {
	target, err := h.svc.Resolve(c.Request.Context(), c.Param("code"))
	if errors.Is(err, domain.ErrNotFound) {
		c.Data(http.StatusNotFound, "text/html; charset=utf-8", []byte(notFoundPage))

		return
	}

	if err != nil {
		h.fail(c, err)

		return
	}

	// Every hit must reach the server to be counted.
	c.Header("Cache-Control", "no-store")
	c.Redirect(http.StatusFound, target)
}
