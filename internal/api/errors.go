package api

import (
	"errors"
	"net/http"

	"gymconnect/backend/internal/service"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const internalErrorMessage = "internal server error"

// statusFor maps the service error taxonomy to an HTTP status. Zero means
// the error is not part of the taxonomy.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrInvalidReference):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	}
	return 0
}

// respondError writes err as {"error": msg}. Errors outside the taxonomy are
// logged and answered with a generic 500.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status != 0 {
		abortWithError(c, status, err.Error())
		return
	}

	fields := log.Fields{"path": c.FullPath(), "method": c.Request.Method}
	if p, ok := principalFrom(c); ok {
		fields["user_id"] = p.UserID().Hex()
	}
	log.WithFields(fields).WithError(err).Error("request failed")
	abortWithError(c, http.StatusInternalServerError, internalErrorMessage)
}

// Helper to return JSON error response and abort request
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}
