package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/and161185/helpdesk/internal/errs"
)

const internalErrorMsg = "internal server error"

// statusFor maps error kinds to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrValidation), errors.Is(err, errs.ErrAlreadyExists):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, errs.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err as a JSON error response. Unclassified errors are logged
// and hidden behind a generic message.
func (s *Server) fail(c *gin.Context, err error) {
	code := statusFor(err)
	msg, ok := errs.Message(err)
	if code == http.StatusInternalServerError {
		s.log.Error("request failed",
			zap.Error(err),
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.String("path", c.Request.URL.Path),
			zap.String("action", c.Query("action")),
		)
		msg = internalErrorMsg
	} else if !ok {
		msg = http.StatusText(code)
	}
	writeError(c, code, msg)
}

func (s *Server) internal(c *gin.Context) {
	writeError(c, http.StatusInternalServerError, internalErrorMsg)
}

func writeError(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(code, gin.H{"error": msg, "request_id": c.GetString(requestIDKey)})
}

func notFound(c *gin.Context) {
	writeError(c, http.StatusNotFound, "Not found")
}

func badBody(c *gin.Context) {
	writeError(c, http.StatusBadRequest, "invalid request body")
}
