package dto

import (
	"strings"
	"time"

	"tinylink/internal/domain"
)

type LinkResponse struct {
	ID            int64      `json:"id" example:"1"`
	Code          string     `json:"code" example:"abc123de"`
	TargetURL     string     `json:"targetUrl" example:"https://example.com"`
	ShortURL      string     `json:"shortUrl" example:"http://localhost:8080/abc123de"`
	Clicks        int64      `json:"clicks" example:"0"`
	LastClickedAt *time.Time `json:"lastClickedAt"`
	CreatedAt     time.Time  `json:"createdAt"`
}

func FromDomain(l domain.Link, baseURL string) LinkResponse {
	return LinkResponse{
		ID:            l.ID,
		Code:          l.Code,
		TargetURL:     l.TargetURL,
		ShortURL:      ShortURL(baseURL, l.Code),
		Clicks:        l.Clicks,
		LastClickedAt: l.LastClickedAt,
		CreatedAt:     l.CreatedAt,
	}
}

func FromDomainList(items []domain.Link, baseURL string) []LinkResponse {
	out := make([]LinkResponse, 0, len(items))
	for _, it := range items {
		out = append(out, FromDomain(it, baseURL))
	}

	return out
}

func ShortURL(baseURL, code string) string {
	return strings.TrimRight(baseURL, "/") + "/" + code
}

type HealthResponse struct {
	OK       bool    `json:"ok"`
	Version  string  `json:"version"`
	Uptime   float64 `json:"uptime"`
	Database string  `json:"database"`
}
