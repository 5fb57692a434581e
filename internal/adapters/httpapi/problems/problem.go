package problems

import (
	"github.com/gin-gonic/gin"
)

type Problem struct {
	Type   string            `json:"type" example:"validation_error"`
	Title  string            `json:"title" example:"Validation error"`
	Status int               `json:"status" example:"400"`
	Detail string            `json:"detail,omitempty" example:"customCode must be 6 to 8 letters or digits"`
	Errors map[string]string `json:"errors,omitempty"`
}

func WriteProblem(c *gin.Context, p Problem) {
	c.Header("Content-Type", ContentTypeProblemJSON)
	c.AbortWithStatusJSON(p.Status, p)
}
