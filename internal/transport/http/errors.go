package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/iamasit07/5-in-a-row/backend/internal/domain"
)

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrBadRequest), errors.Is(err, domain.ErrOutOfBounds):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrCellOccupied),
		errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, domain.ErrNothingToUndo),
		errors.Is(err, domain.ErrNotYourTurn):
		return http.StatusConflict
	case errors.Is(err, domain.ErrWrongSeat):
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("[HTTP] %s %s failed: %v", c.Request.Method, c.FullPath(), err)
		c.AbortWithStatusJSON(status, gin.H{"error": "internal", "message": "internal server error"})
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"error": domain.ErrorCode(err), "message": err.Error()})
}
