package matching

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/codyseavey/card-resolver/internal/metrics"
	"github.com/codyseavey/card-resolver/internal/models"
)

const (
	setMissSingleScore = 0.8
	numberOnlyScore    = 0.7
)

// Resolver turns noisy query attributes into the best catalog record for one game
type Resolver struct {
	cfg       GameConfig
	retriever *Retriever
	log       *logrus.Entry
}

func NewResolver(store Store, cfg GameConfig) *Resolver {
	return &Resolver{
		cfg:       cfg,
		retriever: NewRetriever(store, cfg),
		log:       logrus.WithFields(logrus.Fields{"component": "resolver", "game": cfg.Game}),
	}
}

func (r *Resolver) Game() models.Game {
	return r.cfg.Game
}

// Resolve returns the best match for q. A missing record is reported as a
// low-confidence MatchResult, never as an error; errors come only from the store.
func (r *Resolver) Resolve(ctx context.Context, q models.QueryAttributes) (models.MatchResult, error) {
	start := time.Now()
	q = q.Trimmed()

	result, strategy, err := r.resolve(ctx, q)
	metrics.ResolutionDuration.WithLabelValues(string(r.cfg.Game)).Observe(time.Since(start).Seconds())
	if err != nil {
		r.log.WithError(err).Warn("resolution failed")
		return models.MatchResult{}, err
	}

	metrics.ResolutionsTotal.WithLabelValues(string(r.cfg.Game), string(strategy), string(result.Confidence.OverallConfidence)).Inc()
	if result.Record != nil {
		metrics.ResolutionScore.Observe(result.Score)
	}

	log := r.log.WithFields(logrus.Fields{
		"strategy":   strategy,
		"score":      result.Score,
		"confidence": result.Confidence.OverallConfidence,
	})
	if result.Record != nil {
		log = log.WithField("card", result.Record.DisplayName())
	}
	log.Debug("resolved")

	return result, nil
}

func (r *Resolver) resolve(ctx context.Context, q models.QueryAttributes) (models.MatchResult, Strategy, error) {
	if q.IsEmpty() {
		return models.NoMatch("query has no identifying attributes"), StrategyNone, nil
	}

	if r.cfg.DirectByID && q.CardID != "" {
		rec, err := r.retriever.ByID(ctx, q.CardID)
		if err != nil {
			return models.MatchResult{}, StrategyCardID, err
		}
		if rec != nil {
			result := r.direct(rec, models.FieldIdentifier)
			if id := r.cfg.Normalizer.CardID(q.CardID); !strings.EqualFold(rec.ID, id) && !strings.EqualFold(rec.BasePrintID, id) {
				result.Confidence.Warnings = append(result.Confidence.Warnings,
					fmt.Sprintf("matched by partial card id %q", id))
			}
			return result, StrategyCardID, nil
		}
	}

	if q.SetCode != "" && q.CollectorNumber != "" && r.cfg.DirectBySetNumber {
		rec, err := r.retriever.BySetAndNumber(ctx, q.SetCode, q.CollectorNumber)
		if err != nil {
			return models.MatchResult{}, StrategySetNumber, err
		}
		if rec != nil {
			return r.direct(rec, models.FieldSetCode, models.FieldNumber), StrategySetNumber, nil
		}

		if r.cfg.NumberFallbackOnSetMiss {
			result, ok, err := r.resolveSetMiss(ctx, q)
			if err != nil || ok {
				return result, StrategyNumber, err
			}
		}
	}

	if q.CollectorNumber != "" && q.SetCode == "" {
		cands, err := r.retriever.ByNumber(ctx, q.CollectorNumber)
		if err != nil {
			return models.MatchResult{}, StrategyNumber, err
		}
		if len(cands) > 0 {
			if q.Name != "" {
				return r.best(cands, q), StrategyNumber, nil
			}
			rec := cands[0]
			return fixedResult(&rec, numberOnlyScore, models.ConfidenceMedium,
				"Set code not provided, matched by collector number only"), StrategyNumber, nil
		}
	}

	if q.Name != "" {
		cands, strategy, err := r.retriever.ByName(ctx, q)
		if err != nil {
			return models.MatchResult{}, strategy, err
		}
		if len(cands) > 0 {
			return r.best(cands, q), strategy, nil
		}
	}

	return models.NoMatch(), StrategyNone, nil
}

// resolveSetMiss handles a set code that was read wrong: the collector
// number is searched across every set instead.
func (r *Resolver) resolveSetMiss(ctx context.Context, q models.QueryAttributes) (models.MatchResult, bool, error) {
	cands, err := r.retriever.ByNumber(ctx, q.CollectorNumber)
	if err != nil {
		return models.MatchResult{}, false, err
	}
	if len(cands) == 0 {
		return models.MatchResult{}, false, nil
	}

	if q.Name != "" {
		best := r.best(cands, q)
		if best.Confidence.OverallConfidence == models.ConfidenceLow {
			return models.MatchResult{}, false, nil
		}
		best.Confidence.Warnings = append(best.Confidence.Warnings, setMissWarning(q.SetCode, best.Record))
		return best, true, nil
	}

	if len(cands) == 1 {
		rec := cands[0]
		return fixedResult(&rec, setMissSingleScore, models.ConfidenceMedium, setMissWarning(q.SetCode, &rec)), true, nil
	}

	return models.MatchResult{}, false, nil
}

func setMissWarning(querySet string, rec *models.CatalogRecord) string {
	found := rec.SetName
	if found == "" {
		found = rec.SetCode
	}
	return fmt.Sprintf("set %q was incorrect, found in %q", querySet, found)
}

// best classifies the candidates and applies the game's minimum score
func (r *Resolver) best(cands []models.CatalogRecord, q models.QueryAttributes) models.MatchResult {
	results := Classify(cands, q, r.cfg)
	best := results[0]

	if r.cfg.MinScore > 0 && best.Score < r.cfg.MinScore {
		best.Confidence.OverallConfidence = models.ConfidenceLow
		best.Confidence.Warnings = append(best.Confidence.Warnings,
			fmt.Sprintf("best candidate scored below %.2f", r.cfg.MinScore))
	}
	return best
}

// direct builds the result for an exact key hit. Only the key fields that
// were compared are reported.
func (r *Resolver) direct(rec *models.CatalogRecord, keys ...models.MatchField) models.MatchResult {
	conf := models.MatchConfidence{
		Fields:            make([]models.FieldMatch, 0, len(keys)),
		OverallConfidence: models.ConfidenceHigh,
		Warnings:          []string{},
	}
	for _, field := range keys {
		conf.Fields = append(conf.Fields, models.FieldMatch{Field: field, Score: 1, Matched: true})
	}
	conf.MatchedFeatures = len(conf.Fields)
	conf.TotalFeatures = len(conf.Fields)

	return models.MatchResult{Record: rec, Score: 1.0, Confidence: conf}
}

func fixedResult(rec *models.CatalogRecord, score float64, tier models.ConfidenceTier, warning string) models.MatchResult {
	return models.MatchResult{
		Record: rec,
		Score:  score,
		Confidence: models.MatchConfidence{
			Fields:            []models.FieldMatch{{Field: models.FieldNumber, Score: 1, Matched: true}},
			OverallConfidence: tier,
			MatchedFeatures:   1,
			TotalFeatures:     1,
			Warnings:          []string{warning},
		},
	}
}

// Registry holds one Resolver per catalog game
type Registry struct {
	resolvers map[models.Game]*Resolver
	coalescer *Coalescer
}

// NewRegistry builds resolvers for every catalog game, applying tuning
// overrides. coalescer may be nil.
func NewRegistry(store Store, tuning Tuning, coalescer *Coalescer) (*Registry, error) {
	reg := &Registry{
		resolvers: make(map[models.Game]*Resolver),
		coalescer: coalescer,
	}
	for _, game := range models.AllGames() {
		cfg, err := ConfigFor(game)
		if err != nil {
			return nil, err
		}
		cfg, err = tuning.Apply(cfg)
		if err != nil {
			return nil, err
		}
		reg.resolvers[game] = NewResolver(store, cfg)
	}
	return reg, nil
}

func (reg *Registry) Get(game models.Game) (*Resolver, error) {
	r, ok := reg.resolvers[game]
	if !ok {
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownGame, game)
	}
	return r, nil
}

// Resolve routes q to the game's resolver, sharing in-flight identical requests
func (reg *Registry) Resolve(ctx context.Context, game models.Game, q models.QueryAttributes) (models.MatchResult, error) {
	r, err := reg.Get(game)
	if err != nil {
		return models.MatchResult{}, err
	}
	if reg.coalescer == nil {
		return r.Resolve(ctx, q)
	}
	return reg.coalescer.Do(ctx, QueryKey(r.Game(), q), func() (models.MatchResult, error) {
		// detached so one caller's cancellation doesn't fail the others
		return r.Resolve(context.WithoutCancel(ctx), q)
	})
}
