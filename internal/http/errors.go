package http

import (
	"errors"
	"net/http"

	"storefront-api/internal/apperr"
	"storefront-api/internal/validation"

	"github.com/gin-gonic/gin"
)

const internalErrorMessage = "Internal server error"

type errorResponse struct {
	StatusCode int      `json:"statusCode" example:"404"`
	Message    string   `json:"message" example:"Product with ID 65f1c2a9e4b0a1b2c3d4e5f6 not found"`
	Error      string   `json:"error" example:"Not Found"`
	Errors     []string `json:"errors,omitempty"`
}

// statusFor is the only mapping from outcome kind to HTTP status.
func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.InvalidArgument:
		return http.StatusBadRequest
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.RateLimited:
		return http.StatusTooManyRequests
	case apperr.StorageError:
		return http.StatusBadRequest
	case apperr.MethodNotAllowed:
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}

// abortWithError records err for the access log and writes the JSON error body.
func abortWithError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	status := statusFor(kind)

	resp := errorResponse{
		StatusCode: status,
		Message:    internalErrorMessage,
		Error:      http.StatusText(status),
	}
	if kind != apperr.Unknown {
		resp.Message = apperr.MessageOf(err)
	}

	var ve validation.ValidationError
	if errors.As(err, &ve) {
		resp.Errors = ve.Messages()
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, resp)
}
