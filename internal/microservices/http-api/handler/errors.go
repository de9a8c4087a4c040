package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"libraryhub/internal/microservices/http-api/dto"
	"libraryhub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func writeError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, dto.ErrorResponse{Error: msg})
}

// respondError maps ledger errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:  verr.Error(),
			Fields: []dto.FieldError{{Field: verr.Field, Rule: "invalid", Message: verr.Error()}},
		})
	case errors.Is(err, service.ErrAuthRequired):
		writeError(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrForbidden):
		writeError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrOutOfStock), errors.Is(err, service.ErrConflict):
		writeError(c, http.StatusConflict, err.Error())
	default:
		slog.Error("request_failed", "path", c.FullPath(), "error", err)
		writeError(c, http.StatusInternalServerError, "internal server error")
	}
}

// bindJSON decodes the body into dst and writes a 400 with per-field details on failure.
func bindJSON(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]dto.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			name := fe.Field()
			fields = append(fields, dto.FieldError{
				Field:   name,
				Rule:    fe.Tag(),
				Message: fieldMessage(name, fe),
			})
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{Error: "validation failed", Fields: fields})
		return false
	}

	writeError(c, http.StatusBadRequest, "Invalid JSON body")
	return false
}

func fieldMessage(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return field + " must be at least " + fe.Param()
	case "max":
		return field + " must have at most " + fe.Param() + " items"
	}
	return field + " is invalid (" + fe.Tag() + ")"
}

// report json field names in validation errors
func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	}
}
