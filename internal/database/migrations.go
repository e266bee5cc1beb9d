package database

import (
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/codyseavey/card-resolver/internal/catalog"
	"github.com/codyseavey/card-resolver/internal/models"
)

// RunMigrations runs any custom data migrations after schema changes
func RunMigrations(db *gorm.DB) error {
	if err := migrateEmptyVariantType(db); err != nil {
		return err
	}
	return renormalizeCatalogKeys(db)
}

// migrateEmptyVariantType turns NULL variant types into "" so base prints
// sort and filter the same way everywhere.
func migrateEmptyVariantType(db *gorm.DB) error {
	if !db.Migrator().HasColumn(&models.CatalogRecord{}, "variant_type") {
		return nil
	}
	result := db.Exec(`UPDATE catalog_records SET variant_type = '' WHERE variant_type IS NULL`)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		logrus.WithField("component", "migrations").Infof("Normalized %d NULL variant types", result.RowsAffected)
	}
	return nil
}

// renormalizeCatalogKeys re-applies the current normalization rules to stored
// set codes and collector numbers, for rows written by older importers.
func renormalizeCatalogKeys(db *gorm.DB) error {
	const batchSize = 500
	fixed := 0

	for offset := 0; ; offset += batchSize {
		var batch []models.CatalogRecord
		if err := db.Order("game, id").Offset(offset).Limit(batchSize).Find(&batch).Error; err != nil {
			return err
		}

		for _, rec := range batch {
			// PrintedNumber holds the number as imported
			raw := rec
			if raw.PrintedNumber != "" {
				raw.CollectorNumber = raw.PrintedNumber
			}
			normalized, err := catalog.NormalizeRecord(raw)
			if err != nil {
				continue
			}
			if normalized.CollectorNumber == rec.CollectorNumber && normalized.SetCode == rec.SetCode {
				continue
			}
			err = db.Model(&models.CatalogRecord{}).
				Where("id = ? AND game = ?", rec.ID, rec.Game).
				Updates(map[string]any{
					"collector_number": normalized.CollectorNumber,
					"set_code":         normalized.SetCode,
				}).Error
			if err != nil {
				return err
			}
			fixed++
		}

		if len(batch) < batchSize {
			break
		}
	}

	if fixed > 0 {
		logrus.WithField("component", "migrations").Infof("Re-normalized %d catalog keys", fixed)
	}
	return nil
}
