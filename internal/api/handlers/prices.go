package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codyseavey/card-resolver/internal/models"
	"github.com/codyseavey/card-resolver/internal/pricing"
)

type PriceHandler struct {
	pricing *pricing.Service
	cache   *PriceCache
}

// NewPriceHandler builds the pricing endpoints. cache may be nil.
func NewPriceHandler(svc *pricing.Service, cache *PriceCache) *PriceHandler {
	return &PriceHandler{
		pricing: svc,
		cache:   cache,
	}
}

type matchRequest struct {
	Game       string         `json:"game" binding:"required"`
	Attributes map[string]any `json:"attributes" binding:"required"`
}

// MatchPrice finds the priced catalog product for scanned attributes
func (h *PriceHandler) MatchPrice(c *gin.Context) {
	var req matchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "game and attributes are required"})
		return
	}
	game, ok := models.ParseGame(req.Game)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown game: " + req.Game})
		return
	}

	q, err := models.ParseQueryAttributes(req.Attributes)
	if err != nil {
		respondError(c, err)
		return
	}

	if cached, ok := h.cache.Get(game, q); ok {
		c.Header("X-Cache", "HIT")
		c.JSON(http.StatusOK, cached)
		return
	}

	match, err := h.pricing.MatchAndPrice(c.Request.Context(), game, q)
	if err != nil {
		respondError(c, err)
		return
	}
	h.cache.Add(game, q, match)

	c.Header("X-Cache", "MISS")
	c.JSON(http.StatusOK, match)
}

// GetParallels lists catalog parallels for a card, priced ones first
func (h *PriceHandler) GetParallels(c *gin.Context) {
	game, ok := gameParam(c)
	if !ok {
		return
	}
	m, err := h.pricing.For(game)
	if err != nil {
		respondError(c, err)
		return
	}

	q := models.QueryAttributes{
		Name:            c.Query("name"),
		SetName:         c.Query("set"),
		CollectorNumber: c.Query("number"),
		Year:            c.Query("year"),
		Sport:           c.Query("sport"),
	}.Trimmed()

	parallels, err := m.AvailableParallels(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"parallels": parallels})
}

// GetProductPrices returns normalized prices for a product the user picked
func (h *PriceHandler) GetProductPrices(c *gin.Context) {
	game, ok := gameParam(c)
	if !ok {
		return
	}
	m, err := h.pricing.For(game)
	if err != nil {
		respondError(c, err)
		return
	}

	prices, err := m.PricesForProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, prices)
}

type estimateRequest struct {
	Prices *models.NormalizedPriceSet `json:"prices" binding:"required"`
	Grade  *float64                   `json:"grade" binding:"required"`
}

// Estimate values a card at a grade from already-fetched prices
func (h *PriceHandler) Estimate(c *gin.Context) {
	var req estimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "prices and grade are required"})
		return
	}
	if !validGrade(req.Grade) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "grade must be between 1 and 10"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"grade":           *req.Grade,
		"estimated_value": pricing.EstimateValueAtGrade(req.Prices, *req.Grade),
	})
}
