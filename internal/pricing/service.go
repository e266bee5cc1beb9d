package pricing

import (
	"context"
	"fmt"

	"github.com/codyseavey/card-resolver/internal/models"
)

// Service holds one Matcher per game: sports cards price against
// SportsCardsPro and trading-card games against PriceCharting.
type Service struct {
	matchers map[models.Game]*Matcher
}

// NewService wires the sports and TCG catalog clients to their scorers
func NewService(sports, tcg ProductSource) *Service {
	s := &Service{matchers: map[models.Game]*Matcher{}}
	s.matchers[models.GameSports] = NewMatcher(models.GameSports, sports, SportsScorer{})
	for _, game := range models.AllGames() {
		profile, err := ProfileFor(game)
		if err != nil {
			continue
		}
		s.matchers[game] = NewMatcher(game, tcg, NewTCGScorer(profile))
	}
	return s
}

// For returns the matcher for a game
func (s *Service) For(game models.Game) (*Matcher, error) {
	m, ok := s.matchers[game]
	if !ok {
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownGame, game)
	}
	return m, nil
}

// Enabled reports whether any catalog API is configured
func (s *Service) Enabled() bool {
	for _, m := range s.matchers {
		if m.Enabled() {
			return true
		}
	}
	return false
}

// MatchAndPrice prices q against the catalog for game
func (s *Service) MatchAndPrice(ctx context.Context, game models.Game, q models.QueryAttributes) (*models.PriceMatch, error) {
	m, err := s.For(game)
	if err != nil {
		return nil, err
	}
	return m.MatchAndPrice(ctx, q)
}
