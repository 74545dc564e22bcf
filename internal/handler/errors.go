package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"questlog/internal/models"

	"github.com/gin-gonic/gin"
)

const requestTimeout = 5 * time.Second

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrGameNotFound),
		errors.Is(err, models.ErrQuestNotFound),
		errors.Is(err, models.ErrMetadataNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrAlreadyTracked),
		errors.Is(err, models.ErrStatusMismatch):
		return http.StatusConflict
	case errors.Is(err, models.ErrUnknownStatus),
		errors.Is(err, models.ErrInvalidRating),
		errors.Is(err, models.ErrIndexOutOfRange),
		errors.Is(err, models.ErrInvalidDocument),
		errors.Is(err, models.ErrUnrankedBucket),
		errors.Is(err, models.ErrIncompleteOrder):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNoSource):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, logger *slog.Logger, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"request_id", c.GetString(requestIDKey),
			"error", err)
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func parseGameID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid game id")
		return 0, false
	}
	return id, true
}
