package matching

import (
	"context"
	"fmt"
	"strings"

	"github.com/codyseavey/card-resolver/internal/models"
)

// Strategy names the retrieval path that produced a result
type Strategy string

const (
	StrategyCardID      Strategy = "card_id"
	StrategySetNumber   Strategy = "set_number"
	StrategyNumber      Strategy = "number"
	StrategyNameSetCode Strategy = "name_set_code"
	StrategyNameSetName Strategy = "name_set_name"
	StrategyName        Strategy = "name"
	StrategyNone        Strategy = "none"
)

// Retriever runs the bounded candidate strategies against a Store, applying
// the game's normalization to every value it passes down.
type Retriever struct {
	store Store
	cfg   GameConfig
}

func NewRetriever(store Store, cfg GameConfig) *Retriever {
	return &Retriever{store: store, cfg: cfg}
}

func (r *Retriever) limit() int {
	return ClampLimit(r.cfg.SearchLimit)
}

// ByID looks up a card id (or a variant's base print id)
func (r *Retriever) ByID(ctx context.Context, id string) (*models.CatalogRecord, error) {
	normalized := r.cfg.Normalizer.CardID(id)
	if normalized == "" {
		return nil, nil
	}
	rec, err := r.store.LookupByID(ctx, r.cfg.Game, normalized, r.cfg.IncludeVariants)
	if err != nil {
		return nil, fmt.Errorf("lookup %s card %q: %w", r.cfg.Game, normalized, err)
	}
	return rec, nil
}

// BySetAndNumber tries the normalized number first, then the number as given
func (r *Retriever) BySetAndNumber(ctx context.Context, setCode, number string) (*models.CatalogRecord, error) {
	set := r.cfg.Normalizer.SetCode(setCode)
	normalized := r.cfg.Normalizer.Number(number)

	rec, err := r.store.LookupBySetAndNumber(ctx, r.cfg.Game, set, normalized)
	if err != nil {
		return nil, fmt.Errorf("lookup %s %s/%s: %w", r.cfg.Game, set, normalized, err)
	}
	if rec != nil {
		return rec, nil
	}

	raw := strings.ToLower(strings.TrimSpace(number))
	if raw == normalized {
		return nil, nil
	}
	rec, err = r.store.LookupBySetAndNumber(ctx, r.cfg.Game, set, raw)
	if err != nil {
		return nil, fmt.Errorf("lookup %s %s/%s: %w", r.cfg.Game, set, raw, err)
	}
	return rec, nil
}

// ByNumber searches every set for a collector number
func (r *Retriever) ByNumber(ctx context.Context, number string) ([]models.CatalogRecord, error) {
	normalized := r.cfg.Normalizer.Number(number)
	if normalized == "" {
		return nil, nil
	}
	recs, err := r.store.SearchByNumber(ctx, r.cfg.Game, normalized, r.limit())
	if err != nil {
		return nil, fmt.Errorf("search %s number %q: %w", r.cfg.Game, normalized, err)
	}
	return recs, nil
}

// ByName narrows by set code, then set name, then falls back to the name
// alone. The first strategy with any candidates wins.
func (r *Retriever) ByName(ctx context.Context, q models.QueryAttributes) ([]models.CatalogRecord, Strategy, error) {
	if q.Name == "" {
		return nil, StrategyNone, nil
	}
	game := r.cfg.Game

	if q.SetCode != "" {
		recs, err := r.store.SearchByNameAndSetCode(ctx, game, q.Name, r.cfg.Normalizer.SetCode(q.SetCode), r.limit())
		if err != nil {
			return nil, StrategyNameSetCode, fmt.Errorf("search %s name %q in set %q: %w", game, q.Name, q.SetCode, err)
		}
		if len(recs) > 0 {
			return recs, StrategyNameSetCode, nil
		}
	}

	if q.SetName != "" {
		recs, err := r.store.SearchByNameAndSet(ctx, game, q.Name, q.SetName, r.limit(), r.cfg.IncludeVariants)
		if err != nil {
			return nil, StrategyNameSetName, fmt.Errorf("search %s name %q in set %q: %w", game, q.Name, q.SetName, err)
		}
		if len(recs) > 0 {
			return recs, StrategyNameSetName, nil
		}
	}

	recs, err := r.store.SearchByName(ctx, game, q.Name, r.limit(), r.cfg.IncludeVariants)
	if err != nil {
		return nil, StrategyName, fmt.Errorf("search %s name %q: %w", game, q.Name, err)
	}
	return recs, StrategyName, nil
}
