package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/codyseavey/card-resolver/internal/models"
	"github.com/codyseavey/card-resolver/internal/services"
)

const (
	MaxBatchSize     = 50
	batchConcurrency = 8
)

type IdentifyHandler struct {
	identifier services.Identifier
}

func NewIdentifyHandler(identifier services.Identifier) *IdentifyHandler {
	return &IdentifyHandler{identifier: identifier}
}

// Identify resolves one set of scanned attributes against the game's catalog
func (h *IdentifyHandler) Identify(c *gin.Context) {
	game, ok := gameParam(c)
	if !ok {
		return
	}

	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	q, err := models.ParseQueryAttributes(raw)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.identifier.Resolve(c.Request.Context(), game, q)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

type batchItem struct {
	Game       string         `json:"game"`
	Attributes map[string]any `json:"attributes"`
}

type batchResult struct {
	Index  int                 `json:"index"`
	Game   models.Game         `json:"game,omitempty"`
	Result *models.MatchResult `json:"result,omitempty"`
	Error  string              `json:"error,omitempty"`
}

// IdentifyBatch resolves up to MaxBatchSize queries concurrently. A bad item
// reports its own error without failing the batch.
func (h *IdentifyHandler) IdentifyBatch(c *gin.Context) {
	var items []batchItem
	if err := c.ShouldBindJSON(&items); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be an array of {game, attributes}"})
		return
	}
	if len(items) == 0 || len(items) > MaxBatchSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "batch must contain between 1 and 50 items"})
		return
	}

	ctx := c.Request.Context()
	results := make([]batchResult, len(items))

	var g errgroup.Group
	g.SetLimit(batchConcurrency)
	for i, item := range items {
		results[i].Index = i
		g.Go(func() error {
			game, ok := models.ParseGame(item.Game)
			if !ok {
				results[i].Error = "unknown game: " + item.Game
				return nil
			}
			results[i].Game = game

			q, err := models.ParseQueryAttributes(item.Attributes)
			if err != nil {
				results[i].Error = err.Error()
				return nil
			}

			result, err := h.identifier.Resolve(ctx, game, q)
			if err != nil {
				results[i].Error = err.Error()
				return nil
			}
			results[i].Result = &result
			return nil
		})
	}
	_ = g.Wait()

	c.JSON(http.StatusOK, gin.H{"results": results})
}
