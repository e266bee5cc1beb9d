package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codyseavey/card-resolver/internal/models"
	"github.com/codyseavey/card-resolver/internal/services"
)

type ValuationHandler struct {
	valuation *services.ValuationService
}

func NewValuationHandler(valuation *services.ValuationService) *ValuationHandler {
	return &ValuationHandler{valuation: valuation}
}

type valuateRequest struct {
	Attributes map[string]any `json:"attributes" binding:"required"`
	Grade      *float64       `json:"grade"`
}

// Valuate identifies, prices and estimates one scanned card
func (h *ValuationHandler) Valuate(c *gin.Context) {
	game, ok := gameParam(c)
	if !ok {
		return
	}

	var req valuateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "attributes are required"})
		return
	}
	if !validGrade(req.Grade) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "grade must be between 1 and 10"})
		return
	}

	q, err := models.ParseQueryAttributes(req.Attributes)
	if err != nil {
		respondError(c, err)
		return
	}

	v, err := h.valuation.Valuate(c.Request.Context(), game, q, req.Grade)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, v)
}
