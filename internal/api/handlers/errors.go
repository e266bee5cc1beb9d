package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/codyseavey/card-resolver/internal/models"
	"github.com/codyseavey/card-resolver/internal/pricing"
)

// respondError maps domain errors onto HTTP statuses
func respondError(c *gin.Context, err error) {
	var apiErr *pricing.APIError
	switch {
	case errors.Is(err, models.ErrInvalidQuery):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrUnknownGame), errors.Is(err, models.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrPricingDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case errors.As(err, &apiErr):
		c.JSON(http.StatusBadGateway, gin.H{
			"error":              err.Error(),
			"upstream_status":    apiErr.UpstreamStatus,
			"retryable":          apiErr.Retryable,
			"cloudflare_blocked": apiErr.CloudflareBlocked,
		})
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "request timed out"})
	default:
		logrus.WithFields(logrus.Fields{
			"component": "api",
			"path":      c.FullPath(),
		}).WithError(err).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// gameParam parses the :game path parameter, writing a 404 when unknown
func gameParam(c *gin.Context) (models.Game, bool) {
	game, ok := models.ParseGame(c.Param("game"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown game: " + c.Param("game")})
		return "", false
	}
	return game, true
}

// validGrade reports whether grade is on the 1-10 grading scale
func validGrade(grade *float64) bool {
	return grade == nil || (*grade >= 1 && *grade <= 10)
}
