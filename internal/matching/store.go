package matching

import (
	"context"

	"github.com/codyseavey/card-resolver/internal/models"
)

const (
	DefaultSearchLimit = 10
	MaxSearchLimit     = 50
)

// Store is the read-only reference catalog the resolver queries.
//
// Lookups return (nil, nil) when nothing matches. Callers pass values already
// normalized with the game's Normalizer; stores compare them
// case-insensitively. Searches return at most limit records, base prints
// ordered before variants.
type Store interface {
	// LookupByID matches a record id or the base print id of a variant,
	// falling back to a substring match on the id.
	LookupByID(ctx context.Context, game models.Game, id string, includeVariants bool) (*models.CatalogRecord, error)
	LookupBySetAndNumber(ctx context.Context, game models.Game, setCode, number string) (*models.CatalogRecord, error)

	SearchByNumber(ctx context.Context, game models.Game, number string, limit int) ([]models.CatalogRecord, error)
	// SearchByName matches the name or the full name as a substring
	SearchByName(ctx context.Context, game models.Game, name string, limit int, includeVariants bool) ([]models.CatalogRecord, error)
	SearchByNameAndSet(ctx context.Context, game models.Game, name, setName string, limit int, includeVariants bool) ([]models.CatalogRecord, error)
	SearchByNameAndSetCode(ctx context.Context, game models.Game, name, setCode string, limit int) ([]models.CatalogRecord, error)

	// Variants returns the base print and all of its variants, base first
	Variants(ctx context.Context, game models.Game, basePrintID string) ([]models.CatalogRecord, error)
}

// ClampLimit applies the default and maximum search limits
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultSearchLimit
	}
	if limit > MaxSearchLimit {
		return MaxSearchLimit
	}
	return limit
}
