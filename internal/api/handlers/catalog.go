package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/codyseavey/card-resolver/internal/catalog"
	"github.com/codyseavey/card-resolver/internal/matching"
	"github.com/codyseavey/card-resolver/internal/models"
)

type CatalogHandler struct {
	store catalog.Store
}

func NewCatalogHandler(store catalog.Store) *CatalogHandler {
	return &CatalogHandler{store: store}
}

// GetVariants lists the base print and its parallels/alt arts
func (h *CatalogHandler) GetVariants(c *gin.Context) {
	game, ok := gameParam(c)
	if !ok {
		return
	}
	id := matching.NormalizerFor(game).CardID(c.Param("id"))

	base, err := h.store.LookupByID(c.Request.Context(), game, id, false)
	if err != nil {
		respondError(c, err)
		return
	}
	if base == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "card not found"})
		return
	}

	variants, err := h.store.Variants(c.Request.Context(), game, base.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"card":     base,
		"variants": variants,
	})
}

// SearchCards browses the catalog by name, optionally narrowed to a set code
// or set name.
func (h *CatalogHandler) SearchCards(c *gin.Context) {
	game, ok := gameParam(c)
	if !ok {
		return
	}
	name := strings.TrimSpace(c.Query("q"))
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'q' is required"})
		return
	}

	limit := matching.DefaultSearchLimit
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, matching.MaxSearchLimit-1)
	}
	includeVariants := c.Query("variants") == "true"
	setCode := matching.NormalizerFor(game).SetCode(c.Query("set_code"))
	setName := strings.TrimSpace(c.Query("set"))

	// one extra row tells us whether there are more
	ctx := c.Request.Context()
	var (
		records []models.CatalogRecord
		err     error
	)
	switch {
	case setCode != "":
		records, err = h.store.SearchByNameAndSetCode(ctx, game, name, setCode, limit+1)
	case setName != "":
		records, err = h.store.SearchByNameAndSet(ctx, game, name, setName, limit+1, includeVariants)
	default:
		records, err = h.store.SearchByName(ctx, game, name, limit+1, includeVariants)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	result := models.CatalogSearchResult{Records: records, HasMore: len(records) > limit}
	if result.HasMore {
		result.Records = records[:limit]
	}
	if result.Records == nil {
		result.Records = []models.CatalogRecord{}
	}
	result.TotalCount = len(result.Records)

	c.JSON(http.StatusOK, result)
}
