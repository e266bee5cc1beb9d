package matching

import (
	"context"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/codyseavey/card-resolver/internal/metrics"
	"github.com/codyseavey/card-resolver/internal/models"
)

// Coalescer deduplicates concurrent identical resolutions. The zero value is
// ready to use.
type Coalescer struct {
	group singleflight.Group
}

// QueryKey builds the coalescing key from the folded identifying attributes
func QueryKey(game models.Game, q models.QueryAttributes) string {
	parts := []string{
		string(game),
		foldText(q.CardID),
		foldText(q.SetCode),
		foldText(q.CollectorNumber),
		foldText(q.Name),
		foldText(q.SetName),
		foldText(q.Rarity),
	}
	return strings.Join(parts, "\x1f")
}

// Do runs fn once per key among concurrent callers. A caller whose context
// ends stops waiting; the shared call keeps running for the others.
func (c *Coalescer) Do(ctx context.Context, key string, fn func() (models.MatchResult, error)) (models.MatchResult, error) {
	ch := c.group.DoChan(key, func() (any, error) {
		return fn()
	})

	select {
	case <-ctx.Done():
		return models.MatchResult{}, ctx.Err()
	case res := <-ch:
		if res.Shared {
			metrics.CoalescedRequestsTotal.Inc()
		}
		if res.Err != nil {
			return models.MatchResult{}, res.Err
		}
		return cloneResult(res.Val.(models.MatchResult)), nil
	}
}

// cloneResult gives each caller its own slices
func cloneResult(r models.MatchResult) models.MatchResult {
	if r.Record != nil {
		rec := *r.Record
		r.Record = &rec
	}
	r.Confidence.Fields = append([]models.FieldMatch{}, r.Confidence.Fields...)
	r.Confidence.Warnings = append([]string{}, r.Confidence.Warnings...)
	return r
}
