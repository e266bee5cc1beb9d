package database

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/codyseavey/card-resolver/internal/catalog"
	"github.com/codyseavey/card-resolver/internal/matching"
	"github.com/codyseavey/card-resolver/internal/metrics"
	"github.com/codyseavey/card-resolver/internal/models"
)

// baseFirst orders base prints ahead of variants
const baseFirst = "CASE WHEN variant_type = '' OR variant_type IS NULL THEN 0 ELSE 1 END"

// Store is the sqlite-backed catalog
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) game(ctx context.Context, game models.Game) *gorm.DB {
	return s.db.WithContext(ctx).Model(&models.CatalogRecord{}).Where("game = ?", game)
}

func baseOnly(db *gorm.DB) *gorm.DB {
	return db.Where("variant_type = '' OR variant_type IS NULL")
}

func ordered(db *gorm.DB) *gorm.DB {
	return db.Order(baseFirst).Order("id")
}

func containsPattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(s)) + "%"
}

func first(db *gorm.DB) (*models.CatalogRecord, error) {
	var recs []models.CatalogRecord
	if err := db.Limit(1).Find(&recs).Error; err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}
	return &recs[0], nil
}

func (s *Store) LookupByID(ctx context.Context, game models.Game, id string, includeVariants bool) (*models.CatalogRecord, error) {
	q := s.game(ctx, game).Where("LOWER(id) = LOWER(?) OR LOWER(base_print_id) = LOWER(?)", id, id)
	if !includeVariants {
		q = q.Scopes(baseOnly)
	}
	rec, err := first(q.Scopes(ordered))
	if err != nil || rec != nil {
		return rec, err
	}

	pattern := containsPattern(id)
	return first(s.game(ctx, game).
		Where(`LOWER(id) LIKE ? ESCAPE '\' OR LOWER(base_print_id) LIKE ? ESCAPE '\'`, pattern, pattern).
		Scopes(ordered))
}

func (s *Store) LookupBySetAndNumber(ctx context.Context, game models.Game, setCode, number string) (*models.CatalogRecord, error) {
	return first(s.game(ctx, game).
		Where("LOWER(set_code) = LOWER(?) AND LOWER(collector_number) = LOWER(?)", setCode, number).
		Scopes(ordered))
}

func (s *Store) find(q *gorm.DB, limit int) ([]models.CatalogRecord, error) {
	var recs []models.CatalogRecord
	if err := q.Scopes(ordered).Limit(matching.ClampLimit(limit)).Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

func (s *Store) nameFilter(ctx context.Context, game models.Game, name string, includeVariants bool) *gorm.DB {
	pattern := containsPattern(name)
	q := s.game(ctx, game).Where(`LOWER(name) LIKE ? ESCAPE '\' OR LOWER(full_name) LIKE ? ESCAPE '\'`, pattern, pattern)
	if !includeVariants {
		q = q.Scopes(baseOnly)
	}
	return q
}

func (s *Store) SearchByNumber(ctx context.Context, game models.Game, number string, limit int) ([]models.CatalogRecord, error) {
	return s.find(s.game(ctx, game).Where("LOWER(collector_number) = LOWER(?)", number), limit)
}

func (s *Store) SearchByName(ctx context.Context, game models.Game, name string, limit int, includeVariants bool) ([]models.CatalogRecord, error) {
	return s.find(s.nameFilter(ctx, game, name, includeVariants), limit)
}

func (s *Store) SearchByNameAndSet(ctx context.Context, game models.Game, name, setName string, limit int, includeVariants bool) ([]models.CatalogRecord, error) {
	q := s.nameFilter(ctx, game, name, includeVariants).
		Where(`LOWER(set_name) LIKE ? ESCAPE '\'`, containsPattern(setName))
	return s.find(q, limit)
}

func (s *Store) SearchByNameAndSetCode(ctx context.Context, game models.Game, name, setCode string, limit int) ([]models.CatalogRecord, error) {
	q := s.nameFilter(ctx, game, name, true).Where("LOWER(set_code) = LOWER(?)", setCode)
	return s.find(q, limit)
}

func (s *Store) Variants(ctx context.Context, game models.Game, basePrintID string) ([]models.CatalogRecord, error) {
	var recs []models.CatalogRecord
	err := s.game(ctx, game).
		Where("LOWER(id) = LOWER(?) OR LOWER(base_print_id) = LOWER(?)", basePrintID, basePrintID).
		Scopes(ordered).
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	return recs, nil
}

// Upsert normalizes and writes records, replacing rows with the same game and id
func (s *Store) Upsert(ctx context.Context, records []models.CatalogRecord) (int, error) {
	normalized := make([]models.CatalogRecord, 0, len(records))
	for i, r := range records {
		rec, err := catalog.NormalizeRecord(r)
		if err != nil {
			return 0, fmt.Errorf("record %d (%s): %w", i, r.ID, err)
		}
		normalized = append(normalized, rec)
	}
	if len(normalized) == 0 {
		return 0, nil
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}, {Name: "game"}},
			UpdateAll: true,
		}).
		CreateInBatches(normalized, 200).Error
	if err != nil {
		return 0, fmt.Errorf("upsert catalog records: %w", err)
	}

	if err := s.UpdateMetrics(ctx); err != nil {
		return len(normalized), err
	}
	return len(normalized), nil
}

// Counts returns the number of records per game
func (s *Store) Counts(ctx context.Context) (map[models.Game]int64, error) {
	var rows []struct {
		Game  models.Game
		Count int64
	}
	err := s.db.WithContext(ctx).Model(&models.CatalogRecord{}).
		Select("game, COUNT(*) AS count").
		Group("game").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[models.Game]int64, len(rows))
	for _, r := range rows {
		counts[r.Game] = r.Count
	}
	return counts, nil
}

// UpdateMetrics refreshes the per-game catalog size gauges
func (s *Store) UpdateMetrics(ctx context.Context) error {
	counts, err := s.Counts(ctx)
	if err != nil {
		return fmt.Errorf("count catalog records: %w", err)
	}
	for _, game := range models.AllGames() {
		metrics.CatalogRecordsByGame.WithLabelValues(string(game)).Set(float64(counts[game]))
	}
	return nil
}

var _ catalog.Store = (*Store)(nil)
