package handlers

import (
	"encoding/json"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/codyseavey/card-resolver/internal/metrics"
	"github.com/codyseavey/card-resolver/internal/models"
)

// PriceCache keeps recent price matches so repeated scans of the same card
// don't spend pricing API quota.
type PriceCache struct {
	lru *expirable.LRU[string, models.PriceMatch]
}

func NewPriceCache(size int, ttl time.Duration) *PriceCache {
	return &PriceCache{lru: expirable.NewLRU[string, models.PriceMatch](size, nil, ttl)}
}

func priceCacheKey(game models.Game, q models.QueryAttributes) string {
	b, _ := json.Marshal(q.Trimmed())
	return string(game) + "|" + string(b)
}

// Get returns a copy of the cached match
func (pc *PriceCache) Get(game models.Game, q models.QueryAttributes) (*models.PriceMatch, bool) {
	if pc == nil {
		return nil, false
	}
	match, ok := pc.lru.Get(priceCacheKey(game, q))
	if !ok {
		metrics.PriceCacheMisses.Inc()
		return nil, false
	}
	metrics.PriceCacheHits.Inc()
	return &match, true
}

// Add caches a match. Matches that found nothing are not cached.
func (pc *PriceCache) Add(game models.Game, q models.QueryAttributes, match *models.PriceMatch) {
	if pc == nil || match == nil || match.Confidence == models.ConfidenceNone {
		return
	}
	pc.lru.Add(priceCacheKey(game, q), *match)
}

func (pc *PriceCache) Len() int {
	if pc == nil {
		return 0
	}
	return pc.lru.Len()
}
