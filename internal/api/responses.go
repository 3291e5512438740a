package api

import (
	"errors"
	"net/http"
	"strconv"

	"fitclub/internal/apperrors"
	"fitclub/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type ErrorResponse struct {
	Error   string         `json:"error" example:"room 3 not found"`
	Code    string         `json:"code,omitempty" example:"NOT_FOUND"`
	Details map[string]any `json:"details,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message" example:"ok"`
}

// ValidationError is one failed field of a request body.
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// RespondError writes err with the status its kind maps to. Internal errors
// are logged and their cause is not echoed back.
func RespondError(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)

	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		logger.Error("unhandled error", "path", c.FullPath(), "error", err)
		c.JSON(status, ErrorResponse{Error: "internal server error", Code: string(apperrors.KindInternal)})
		return
	}

	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "path", c.FullPath(), "kind", appErr.Kind, "error", err)
	}
	c.JSON(status, ErrorResponse{Error: appErr.Message, Code: string(appErr.Kind), Details: appErr.Details})
}

// RespondBindError reports a request body that failed to decode or validate.
func RespondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation failed",
			"code":    string(apperrors.KindValidation),
			"details": fieldErrors(verrs),
		})
		return
	}
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: string(apperrors.KindValidation)})
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email address"
	case "min":
		return fe.Field() + " must be at least " + fe.Param() + " characters"
	case "max":
		return fe.Field() + " must be at most " + fe.Param() + " characters"
	case "gt":
		return fe.Field() + " must be greater than " + fe.Param()
	case "gte":
		return fe.Field() + " must be greater than or equal to " + fe.Param()
	case "lte":
		return fe.Field() + " must be less than or equal to " + fe.Param()
	case "oneof":
		return fe.Field() + " must be one of: " + fe.Param()
	default:
		return fe.Field() + " is invalid"
	}
}

// PathID parses a positive integer path parameter, writing a 400 on failure.
func PathID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + name, Code: string(apperrors.KindValidation)})
		return 0, false
	}
	return id, true
}
