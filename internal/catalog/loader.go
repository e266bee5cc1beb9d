package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/codyseavey/card-resolver/internal/models"
)

// seedFile is the on-disk seed format. A top-level game applies to every
// record that doesn't name its own.
//
//	game: lorcana
//	records:
//	  - id: tfc-42
//	    name: Elsa
//	    full_name: Elsa - Spirit of Winter
//	    set_code: TFC
//	    set_name: The First Chapter
//	    collector_number: 42/204
type seedFile struct {
	Game    string       `json:"game" yaml:"game"`
	Records []seedRecord `json:"records" yaml:"records"`
}

type seedRecord struct {
	ID              string            `json:"id" yaml:"id"`
	Game            string            `json:"game" yaml:"game"`
	Name            string            `json:"name" yaml:"name"`
	FullName        string            `json:"full_name" yaml:"full_name"`
	SetID           string            `json:"set_id" yaml:"set_id"`
	SetCode         string            `json:"set_code" yaml:"set_code"`
	SetName         string            `json:"set_name" yaml:"set_name"`
	SetTotal        int               `json:"set_total" yaml:"set_total"`
	CollectorNumber string            `json:"collector_number" yaml:"collector_number"`
	Rarity          string            `json:"rarity" yaml:"rarity"`
	Colors          []string          `json:"colors" yaml:"colors"`
	Attributes      map[string]string `json:"attributes" yaml:"attributes"`
	VariantType     string            `json:"variant_type" yaml:"variant_type"`
	BasePrintID     string            `json:"base_print_id" yaml:"base_print_id"`
	ImageURL        string            `json:"image_url" yaml:"image_url"`
	MarketPriceUSD  *float64          `json:"market_price_usd" yaml:"market_price_usd"`
	ReleasedAt      string            `json:"released_at" yaml:"released_at"`
}

func (r seedRecord) toModel(defaultGame string) models.CatalogRecord {
	game := r.Game
	if game == "" {
		game = defaultGame
	}
	return models.CatalogRecord{
		ID:              r.ID,
		Game:            models.Game(strings.ToLower(strings.TrimSpace(game))),
		Name:            r.Name,
		FullName:        r.FullName,
		SetID:           r.SetID,
		SetCode:         r.SetCode,
		SetName:         r.SetName,
		SetTotal:        r.SetTotal,
		CollectorNumber: r.CollectorNumber,
		Rarity:          r.Rarity,
		Colors:          r.Colors,
		Attributes:      r.Attributes,
		VariantType:     r.VariantType,
		BasePrintID:     r.BasePrintID,
		ImageURL:        r.ImageURL,
		MarketPriceUSD:  r.MarketPriceUSD,
		ReleasedAt:      r.ReleasedAt,
	}
}

// LoadFile reads a JSON or YAML seed file. Records are returned as written;
// normalization happens when they are stored.
func LoadFile(path string) ([]models.CatalogRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var seed seedFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &seed); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".json":
		trimmed := bytes.TrimSpace(data)
		// a bare array of records is accepted too
		if len(trimmed) > 0 && trimmed[0] == '[' {
			err = json.Unmarshal(trimmed, &seed.Records)
		} else {
			err = json.Unmarshal(trimmed, &seed)
		}
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported seed file type %q", filepath.Ext(path))
	}

	records := make([]models.CatalogRecord, 0, len(seed.Records))
	for _, r := range seed.Records {
		records = append(records, r.toModel(seed.Game))
	}
	return records, nil
}

// LoadDir reads every JSON and YAML seed file under dir
func LoadDir(dir string) ([]models.CatalogRecord, error) {
	var records []models.CatalogRecord
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".json", ".yaml", ".yml":
		default:
			return nil
		}
		recs, err := LoadFile(path)
		if err != nil {
			return err
		}
		records = append(records, recs...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load seed dir %s: %w", dir, err)
	}
	return records, nil
}
