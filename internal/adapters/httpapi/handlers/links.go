package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tinylink/internal/adapters/httpapi/dto"
)

const linksAPIPath = "/api/links/"

type CreateLinkRequest struct {
	TargetURL  string `json:"targetUrl" binding:"required" example:"https://example.com"`
	CustomCode string `json:"customCode" binding:"omitempty,alphanum,min=6,max=8" example:"abc123de"`
}

func (h *Handler) ListLinks(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.fail(c, err)

		return
	}

	c.JSON(http.StatusOK, dto.FromDomainList(items, h.baseURL))
}

func (h *Handler) CreateLink(c *gin.Context) {
	var req CreateLinkRequest

	if err := BindJSONStrict(c, &req); err != nil {
		badJSON(c)

		return
	}

	req.TargetURL = strings.TrimSpace(req.TargetURL)
	req.CustomCode = strings.TrimSpace(req.CustomCode)

	if errs, ok := validateStruct(req); ok {
		writeValidationErrors(c, errs)

		return
	}

	link, err := h.svc.Create(c.Request.Context(), req.TargetURL, req.CustomCode)
	if err != nil {
		h.fail(c, err)

		return
	}

	c.Header("Location", linksAPIPath+link.Code)
	c.JSON(http.StatusCreated, dto.FromDomain(link, h.baseURL))
}

func (h *Handler) GetLink(c *gin.Context) {
	link, err := h.svc.Get(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.fail(c, err)

		return
	}

	c.JSON(http.StatusOK, dto.FromDomain(link, h.baseURL))
}

func (h *Handler) DeleteLink(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("code")); err != nil {
		h.fail(c, err)

		return
	}

	c.Status(http.StatusNoContent)
}
