package handlers

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"tinylink/internal/adapters/httpapi/problems"
	"tinylink/internal/domain"
)

const (
	fieldTargetURL  = "targetUrl"
	fieldCustomCode = "customCode"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.SetTagName("binding")
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.Split(field.Tag.Get("json"), ",")[0]
		if name == "-" {
			return ""
		}

		return name
	})

	return v
}

func validateStruct(v any) (map[string]string, bool) {
	err := validate.Struct(v)
	if err == nil {
		return nil, false
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, false
	}

	out := make(map[string]string, len(verrs))
	for _, verr := range verrs {
		field := verr.Field()
		if field == "" {
			continue
		}

		if _, exists := out[field]; exists {
			continue
		}

		out[field] = fieldMessage(verr)
	}

	if len(out) == 0 {
		return nil, false
	}

	return out, true
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case fieldTargetURL:
		if fe.Tag() == "required" {
			return "targetUrl is required"
		}

		return problems.DetailInvalidURL
	case fieldCustomCode:
		return problems.DetailInvalidCode
	default:
		return fe.Error()
	}
}

func validationErrorsFromDomain(err error) (map[string]string, bool) {
	switch {
	case errors.Is(err, domain.ErrInvalidURL):
		return map[string]string{fieldTargetURL: problems.DetailInvalidURL}, true
	case errors.Is(err, domain.ErrInvalidCode):
		return map[string]string{fieldCustomCode: problems.DetailInvalidCode}, true
	default:
		return nil, false
	}
}

func writeValidationErrors(c *gin.Context, errs map[string]string) {
	detail := problems.DetailValidationMultiple
	if len(errs) == 1 {
		for _, msg := range errs {
			detail = msg
		}
	}

	problems.WriteProblem(c, problems.Problem{
		Type:   problems.ProblemTypeValidation,
		Title:  problems.TitleValidation,
		Status: http.StatusBadRequest,
		Detail: detail,
		Errors: errs,
	})
}
