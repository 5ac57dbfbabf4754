package util

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lefthq/left-backend/internal/errors"
	"github.com/lefthq/left-backend/internal/logger"
	"go.uber.org/zap"
)

// ErrorResponse is the wire shape of an error.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
	Field   string `json:"field,omitempty"`
	Details string `json:"details,omitempty"`
}

// RespondWithAPIError sends a structured API error response.
func RespondWithAPIError(c *gin.Context, apiErr *errors.APIError) {
	if apiErr.Status >= http.StatusInternalServerError {
		logger.Log.Error("API error",
			zap.String("code", string(apiErr.Code)),
			zap.String("message", apiErr.Message),
			zap.Int("status", apiErr.Status),
		)
	} else {
		logger.Log.Warn("API error",
			zap.String("code", string(apiErr.Code)),
			zap.String("message", apiErr.Message),
		)
	}

	c.JSON(apiErr.Status, ErrorResponse{
		Code:    string(apiErr.Code),
		Message: apiErr.Message,
		Field:   apiErr.Field,
		Details: apiErr.Details,
	})
}

// RespondServiceError maps a service-layer error onto the response. An
// *errors.APIError keeps its status; anything else becomes a 500.
func RespondServiceError(c *gin.Context, err error) {
	if apiErr, ok := err.(*errors.APIError); ok {
		RespondWithAPIError(c, apiErr)
		return
	}
	RespondWithAPIError(c, errors.InternalError("internal server error").WithDetails(err.Error()))
}

func RespondUnauthorized(c *gin.Context, message string) {
	RespondWithAPIError(c, errors.Unauthorized(message))
}

func RespondNotFound(c *gin.Context, resource string) {
	RespondWithAPIError(c, errors.NotFound(resource))
}

func RespondBadRequest(c *gin.Context, message string) {
	RespondWithAPIError(c, errors.BadRequest(message))
}

func RespondForbidden(c *gin.Context, message string) {
	RespondWithAPIError(c, errors.Forbidden(message))
}

func RespondInternalError(c *gin.Context, message string) {
	RespondWithAPIError(c, errors.InternalError(message))
}

func RespondValidationError(c *gin.Context, field, message string) {
	RespondWithAPIError(c, errors.ValidationError(field, message))
}

func RespondAlreadyExists(c *gin.Context, resource string) {
	RespondWithAPIError(c, errors.AlreadyExists(resource))
}
