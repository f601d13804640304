package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	apperrors "github.com/doctaba/telehealth-api/pkg/errors"
	"github.com/doctaba/telehealth-api/pkg/validator"
)

// ContextUserID is the gin context key holding the authenticated user id
const ContextUserID = "user_id"

type ErrorResponse struct {
	Message string                 `json:"message"`
	Errors  []validator.FieldError `json:"errors,omitempty"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

func NewErrorResponse(message string) *ErrorResponse {
	return &ErrorResponse{Message: message}
}

// RespondError writes err as a JSON error body. Errors that are not
// *apperrors.AppError are logged and reported as a generic 500.
func RespondError(c *gin.Context, err error) {
	appErr, ok := apperrors.As(err)
	if !ok {
		appErr = apperrors.Internal(err)
	}

	resp := &ErrorResponse{Message: appErr.Message}
	if details, ok := appErr.Details.([]validator.FieldError); ok {
		resp.Errors = details
	}

	status := appErr.StatusCode()
	if status >= http.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("request_id", c.GetString("request_id")).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("request failed")
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, resp)
}

// BindJSON binds and validates the request body. On failure it writes
// 400 "Invalid <entity> data" with per-field errors and returns false.
func BindJSON(c *gin.Context, obj interface{}, entity string) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		RespondError(c, apperrors.Invalid(fmt.Sprintf("Invalid %s data", entity), validator.Errors(err)))
		return false
	}
	return true
}

// BindOptionalJSON is BindJSON for bodies whose fields are all checked by the
// service. A request with no body binds as an empty object.
func BindOptionalJSON(c *gin.Context, obj interface{}, entity string) bool {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		RespondError(c, apperrors.Invalid(fmt.Sprintf("Invalid %s data", entity), validator.Errors(err)))
		return false
	}
	return true
}

// ParamID parses a positive integer path parameter. On failure it writes
// 400 "Invalid <entity> id" and returns false.
func ParamID(c *gin.Context, name, entity string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		RespondError(c, apperrors.BadRequest(fmt.Sprintf("Invalid %s id", entity), err))
		return 0, false
	}
	return id, true
}

// CurrentUserID returns the id set by the session gate
func CurrentUserID(c *gin.Context) int64 {
	return c.GetInt64(ContextUserID)
}
