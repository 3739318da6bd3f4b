package httpx

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/bookmarks/pkg/bookmarks/errx"
	"go.uber.org/zap"
)

const internalErrorMessage = "Internal server error"

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusFor maps an error kind to its HTTP status code.
func StatusFor(kind errx.Kind) int {
	switch kind {
	case errx.Invalid:
		return http.StatusBadRequest
	case errx.Unauthorized:
		return http.StatusUnauthorized
	case errx.NotFound:
		return http.StatusNotFound
	case errx.Conflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error aborts the request with the status for err's kind and an {"error": message} body.
// Internal and unknown failures are logged and reported with a generic message.
func Error(c *gin.Context, err error) {
	status := StatusFor(errx.KindOf(err))
	message := errx.Message(err)
	if status == http.StatusInternalServerError {
		LoggerFrom(c).Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		message = internalErrorMessage
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Error: message})
}

// BadRequest aborts with 400 and message; used for bodies that never reach a service.
func BadRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: message})
}
