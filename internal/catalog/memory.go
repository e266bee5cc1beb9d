package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/codyseavey/card-resolver/internal/matching"
	"github.com/codyseavey/card-resolver/internal/metrics"
	"github.com/codyseavey/card-resolver/internal/models"
)

// MemoryStore is an in-memory Store indexed by game.
// It backs the CLI and tests, and serves small catalogs without a database.
type MemoryStore struct {
	records []models.CatalogRecord
	byKey   map[string]int        // game|id -> record index
	byGame  map[models.Game][]int // game -> record indices in insertion order
	mu      sync.RWMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byKey:  make(map[string]int),
		byGame: make(map[models.Game][]int),
	}
}

func recordKey(game models.Game, id string) string {
	return string(game) + "|" + strings.ToLower(id)
}

// Upsert normalizes and stores records, replacing any with the same game and id.
// It returns the number of records written.
func (s *MemoryStore) Upsert(records ...models.CatalogRecord) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	written := 0
	defer func() {
		for game, indices := range s.byGame {
			metrics.CatalogRecordsByGame.WithLabelValues(string(game)).Set(float64(len(indices)))
		}
	}()

	for _, raw := range records {
		rec, err := NormalizeRecord(raw)
		if err != nil {
			return written, err
		}

		key := recordKey(rec.Game, rec.ID)
		if idx, ok := s.byKey[key]; ok {
			s.records[idx] = rec
		} else {
			s.byKey[key] = len(s.records)
			s.byGame[rec.Game] = append(s.byGame[rec.Game], len(s.records))
			s.records = append(s.records, rec)
		}
		written++
	}
	return written, nil
}

// Count returns the number of records for a game
func (s *MemoryStore) Count(game models.Game) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byGame[game])
}

// collect returns copies of the game's records accepted by keep, base prints
// first, then insertion order, capped at limit (0 means no cap).
func (s *MemoryStore) collect(indices []int, keep func(models.CatalogRecord) bool, limit int) []models.CatalogRecord {
	var out []models.CatalogRecord
	for _, idx := range indices {
		if keep(s.records[idx]) {
			out = append(out, s.records[idx])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].IsBasePrint() && !out[j].IsBasePrint()
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func nameMatches(r models.CatalogRecord, name string) bool {
	name = strings.ToLower(name)
	return strings.Contains(strings.ToLower(r.Name), name) ||
		(r.FullName != "" && strings.Contains(strings.ToLower(r.FullName), name))
}

func (s *MemoryStore) LookupByID(_ context.Context, game models.Game, id string, includeVariants bool) (*models.CatalogRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	exact := s.collect(s.byGame[game], func(r models.CatalogRecord) bool {
		if !includeVariants && !r.IsBasePrint() {
			return false
		}
		return strings.EqualFold(r.ID, id) || strings.EqualFold(r.BasePrintID, id)
	}, 1)
	if len(exact) > 0 {
		return &exact[0], nil
	}

	lower := strings.ToLower(id)
	partial := s.collect(s.byGame[game], func(r models.CatalogRecord) bool {
		return strings.Contains(strings.ToLower(r.ID), lower) ||
			(r.BasePrintID != "" && strings.Contains(strings.ToLower(r.BasePrintID), lower))
	}, 1)
	if len(partial) > 0 {
		return &partial[0], nil
	}
	return nil, nil
}

func (s *MemoryStore) LookupBySetAndNumber(_ context.Context, game models.Game, setCode, number string) (*models.CatalogRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recs := s.collect(s.byGame[game], func(r models.CatalogRecord) bool {
		return strings.EqualFold(r.SetCode, setCode) && strings.EqualFold(r.CollectorNumber, number)
	}, 1)
	if len(recs) == 0 {
		return nil, nil
	}
	return &recs[0], nil
}

func (s *MemoryStore) SearchByNumber(_ context.Context, game models.Game, number string, limit int) ([]models.CatalogRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(s.byGame[game], func(r models.CatalogRecord) bool {
		return strings.EqualFold(r.CollectorNumber, number)
	}, matching.ClampLimit(limit)), nil
}

func (s *MemoryStore) SearchByName(_ context.Context, game models.Game, name string, limit int, includeVariants bool) ([]models.CatalogRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(s.byGame[game], func(r models.CatalogRecord) bool {
		return (includeVariants || r.IsBasePrint()) && nameMatches(r, name)
	}, matching.ClampLimit(limit)), nil
}

func (s *MemoryStore) SearchByNameAndSet(_ context.Context, game models.Game, name, setName string, limit int, includeVariants bool) ([]models.CatalogRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	set := strings.ToLower(setName)
	return s.collect(s.byGame[game], func(r models.CatalogRecord) bool {
		return (includeVariants || r.IsBasePrint()) && nameMatches(r, name) &&
			strings.Contains(strings.ToLower(r.SetName), set)
	}, matching.ClampLimit(limit)), nil
}

func (s *MemoryStore) SearchByNameAndSetCode(_ context.Context, game models.Game, name, setCode string, limit int) ([]models.CatalogRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(s.byGame[game], func(r models.CatalogRecord) bool {
		return strings.EqualFold(r.SetCode, setCode) && nameMatches(r, name)
	}, matching.ClampLimit(limit)), nil
}

func (s *MemoryStore) Variants(_ context.Context, game models.Game, basePrintID string) ([]models.CatalogRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(s.byGame[game], func(r models.CatalogRecord) bool {
		return strings.EqualFold(r.ID, basePrintID) || strings.EqualFold(r.BasePrintID, basePrintID)
	}, 0), nil
}

var _ Store = (*MemoryStore)(nil)
