// Package catalog holds the reference card catalog: an in-memory Store and
// the seed file loader used to populate any Store.
package catalog

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/codyseavey/card-resolver/internal/matching"
	"github.com/codyseavey/card-resolver/internal/models"
)

// Store is the read-only catalog interface the resolver queries
type Store = matching.Store

var ErrInvalidRecord = errors.New("invalid catalog record")

// NormalizeRecord prepares a record for storage: the set code and collector
// number are stored in normalized form, the printed number is kept as-is.
func NormalizeRecord(r models.CatalogRecord) (models.CatalogRecord, error) {
	if game, ok := models.ParseGame(string(r.Game)); ok {
		r.Game = game
	}
	if r.Game == models.GameSports || !isCatalogGame(r.Game) {
		return r, fmt.Errorf("%w: %q: %w", ErrInvalidRecord, r.Game, models.ErrUnknownGame)
	}

	r.ID = strings.TrimSpace(r.ID)
	r.Name = strings.TrimSpace(r.Name)
	if r.ID == "" || r.Name == "" {
		return r, fmt.Errorf("%w: id and name are required", ErrInvalidRecord)
	}

	n := matching.NormalizerFor(r.Game)
	if r.Game == models.GameOnePiece {
		r.ID = matching.NormalizeCardID(r.ID)
		if r.BasePrintID != "" {
			r.BasePrintID = matching.NormalizeCardID(r.BasePrintID)
		}
	}

	raw := strings.TrimSpace(r.CollectorNumber)
	if r.PrintedNumber == "" {
		r.PrintedNumber = raw
	}
	// "4/102" carries the printed set total
	if idx := strings.Index(raw, "/"); idx >= 0 && r.SetTotal == 0 {
		if total, err := strconv.Atoi(strings.TrimSpace(raw[idx+1:])); err == nil {
			r.SetTotal = total
		}
	}
	r.CollectorNumber = n.Number(raw)
	r.SetCode = n.SetCode(r.SetCode)
	r.VariantType = strings.TrimSpace(r.VariantType)

	return r, nil
}

func isCatalogGame(g models.Game) bool {
	for _, game := range models.AllGames() {
		if game == g {
			return true
		}
	}
	return false
}
