package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/codyseavey/card-resolver/internal/metrics"
	"github.com/codyseavey/card-resolver/internal/models"
)

const parallelsSearchLimit = 25

// ProductSource is the catalog API a Matcher searches and prices against
type ProductSource interface {
	Enabled() bool
	SearchProducts(ctx context.Context, query string, limit int) ([]Product, error)
	Product(ctx context.Context, id string) (*Product, error)
}

var _ ProductSource = (*Client)(nil)

type scoredProduct struct {
	product Product
	score   int
}

// Matcher finds the best priced catalog product for one game
type Matcher struct {
	game   models.Game
	source ProductSource
	scorer Scorer
	group  singleflight.Group
	log    *logrus.Entry
}

func NewMatcher(game models.Game, source ProductSource, scorer Scorer) *Matcher {
	return &Matcher{
		game:   game,
		source: source,
		scorer: scorer,
		log:    logrus.WithFields(logrus.Fields{"component": "price-matcher", "game": game}),
	}
}

// Enabled reports whether the underlying catalog API is configured
func (m *Matcher) Enabled() bool {
	return m.source != nil && m.source.Enabled()
}

// MatchAndPrice searches the catalog, scores the results and returns the best
// product that has prices. Identical concurrent calls share one search.
func (m *Matcher) MatchAndPrice(ctx context.Context, q models.QueryAttributes) (*models.PriceMatch, error) {
	if !m.Enabled() {
		return nil, models.ErrPricingDisabled
	}
	q = q.Trimmed()
	query := m.scorer.BuildQuery(q)
	if query == "" {
		return nil, fmt.Errorf("%w: nothing to search for", models.ErrInvalidQuery)
	}

	ch := m.group.DoChan(coalesceKey(q), func() (any, error) {
		return m.matchAndPrice(context.WithoutCancel(ctx), q, query)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Shared {
			metrics.CoalescedRequestsTotal.Inc()
		}
		if res.Err != nil {
			return nil, res.Err
		}
		match := *res.Val.(*models.PriceMatch)
		if match.Prices != nil {
			prices := *match.Prices
			match.Prices = &prices
		}
		return &match, nil
	}
}

// coalesceKey covers every attribute the scorer reads, not just the ones that
// reach the search string
func coalesceKey(q models.QueryAttributes) string {
	b, _ := json.Marshal(q)
	return string(b)
}

func (m *Matcher) matchAndPrice(ctx context.Context, q models.QueryAttributes, query string) (*models.PriceMatch, error) {
	log := m.log.WithField("query", query)

	products, err := m.source.SearchProducts(ctx, query, m.scorer.SearchLimit())
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	products = m.scorer.Filter(products)

	scored := make([]scoredProduct, 0, len(products))
	for _, p := range products {
		s := m.scorer.Score(p, q)
		if s == Rejected {
			log.WithField("product", p.ProductName).Debug("rejected product")
			continue
		}
		scored = append(scored, scoredProduct{product: p, score: s})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	for i, sp := range scored[:min(5, len(scored))] {
		log.WithFields(logrus.Fields{
			"rank":    i + 1,
			"score":   sp.score,
			"product": sp.product.ProductName,
			"console": sp.product.ConsoleName,
		}).Debug("scored product")
	}

	if len(scored) == 0 {
		log.WithField("results", len(products)).Info("no matching product")
		return m.record(&models.PriceMatch{Confidence: models.ConfidenceNone, QueryUsed: query}), nil
	}

	var unpriced *scoredProduct
	for i := range scored {
		sp := scored[i]
		full, err := m.source.Product(ctx, string(sp.product.ID))
		if errors.Is(err, models.ErrProductNotFound) {
			log.WithField("product_id", sp.product.ID).Debug("product vanished from catalog")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("fetch product %s: %w", sp.product.ID, err)
		}

		prices := NormalizePrices(*full)
		if !prices.HasAnyPrice() {
			if unpriced == nil || sp.score > unpriced.score {
				sp.product = *full
				unpriced = &sp
			}
			continue
		}

		fallback := unpriced != nil && sp.score < unpriced.score
		if fallback {
			prices.IsFallback = true
			prices.ExactMatchName = unpriced.product.ProductName
			log.WithFields(logrus.Fields{
				"exact":    unpriced.product.ProductName,
				"fallback": full.ProductName,
			}).Info("exact product has no prices, using fallback")
		}
		return m.record(&models.PriceMatch{
			Prices:     &prices,
			Confidence: m.scorer.Confidence(sp.score, fallback),
			QueryUsed:  query,
		}), nil
	}

	if unpriced != nil {
		prices := unpricedSet(unpriced.product)
		return m.record(&models.PriceMatch{
			Prices:     &prices,
			Confidence: models.ConfidenceLow,
			QueryUsed:  query,
		}), nil
	}
	return m.record(&models.PriceMatch{Confidence: models.ConfidenceNone, QueryUsed: query}), nil
}

func (m *Matcher) record(pm *models.PriceMatch) *models.PriceMatch {
	fallback := pm.Prices != nil && pm.Prices.IsFallback
	metrics.PriceMatchesTotal.WithLabelValues(string(m.game), string(pm.Confidence), strconv.FormatBool(fallback)).Inc()
	return pm
}

// AvailableParallels lists every catalog variant of the queried card so a
// user can pick the right parallel. Priced variants sort first.
func (m *Matcher) AvailableParallels(ctx context.Context, q models.QueryAttributes) ([]models.Parallel, error) {
	if !m.Enabled() {
		return nil, models.ErrPricingDisabled
	}
	q = q.Trimmed()
	q.Variant = ""
	q.SerialNumbering = ""
	query := m.scorer.BuildQuery(q)
	if query == "" {
		return nil, fmt.Errorf("%w: nothing to search for", models.ErrInvalidQuery)
	}

	products, err := m.source.SearchProducts(ctx, query, parallelsSearchLimit)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	parallels := []models.Parallel{}
	for _, p := range m.scorer.Filter(products) {
		if !m.scorer.Related(p, q) {
			continue
		}
		parallels = append(parallels, models.Parallel{
			ID:       string(p.ID),
			Name:     p.ProductName,
			SetName:  p.ConsoleName,
			HasPrice: p.HasSearchPrice(),
		})
	}
	sort.SliceStable(parallels, func(i, j int) bool {
		if parallels[i].HasPrice != parallels[j].HasPrice {
			return parallels[i].HasPrice
		}
		return strings.ToLower(parallels[i].Name) < strings.ToLower(parallels[j].Name)
	})
	return parallels, nil
}

// PricesForProduct fetches and normalizes one product chosen by id
func (m *Matcher) PricesForProduct(ctx context.Context, id string) (*models.NormalizedPriceSet, error) {
	if !m.Enabled() {
		return nil, models.ErrPricingDisabled
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: empty product id", models.ErrInvalidQuery)
	}
	p, err := m.source.Product(ctx, id)
	if err != nil {
		return nil, err
	}
	prices := NormalizePrices(*p)
	return &prices, nil
}
