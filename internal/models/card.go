package models

import (
	"strconv"
	"strings"
	"time"
)

type Game string

const (
	GameMTG      Game = "mtg"
	GamePokemon  Game = "pokemon"
	GameLorcana  Game = "lorcana"
	GameOnePiece Game = "onepiece"
	// GameSports has no reference catalog; it is only priced.
	GameSports Game = "sports"
)

// AllGames returns the games that have a reference catalog
func AllGames() []Game {
	return []Game{GameMTG, GamePokemon, GameLorcana, GameOnePiece}
}

// ParseGame maps loose game names from clients and AI output to a Game.
func ParseGame(s string) (Game, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mtg", "magic", "magic the gathering", "magic: the gathering":
		return GameMTG, true
	case "pokemon", "pokémon", "ptcg":
		return GamePokemon, true
	case "lorcana", "disney lorcana":
		return GameLorcana, true
	case "onepiece", "one piece", "one_piece", "optcg":
		return GameOnePiece, true
	case "sports", "sport", "sports cards":
		return GameSports, true
	default:
		return "", false
	}
}

// CatalogRecord is one printing in the read-only reference catalog.
// SetCode and CollectorNumber are stored normalized; PrintedNumber keeps the
// number as it appears on the card.
type CatalogRecord struct {
	ID              string            `json:"id" gorm:"primaryKey"`
	Game            Game              `json:"game" gorm:"primaryKey;index:idx_game_set_number,priority:1"`
	Name            string            `json:"name" gorm:"not null;index"`
	FullName        string            `json:"full_name,omitempty"`
	SetID           string            `json:"set_id,omitempty"`
	SetCode         string            `json:"set_code" gorm:"index:idx_game_set_number,priority:2"`
	SetName         string            `json:"set_name"`
	SetTotal        int               `json:"set_total,omitempty"`
	CollectorNumber string            `json:"collector_number" gorm:"index:idx_game_set_number,priority:3"`
	PrintedNumber   string            `json:"printed_number,omitempty"`
	Rarity          string            `json:"rarity,omitempty"`
	Colors          []string          `json:"colors,omitempty" gorm:"serializer:json"`
	Attributes      map[string]string `json:"attributes,omitempty" gorm:"serializer:json"`
	VariantType     string            `json:"variant_type,omitempty"`
	BasePrintID     string            `json:"base_print_id,omitempty" gorm:"index"`
	ImageURL        string            `json:"image_url,omitempty"`
	MarketPriceUSD  *float64          `json:"market_price_usd,omitempty"`
	ReleasedAt      string            `json:"released_at,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

func (CatalogRecord) TableName() string {
	return "catalog_records"
}

// DisplayName prefers the full printed name (e.g. "Elsa - Spirit of Winter")
func (r CatalogRecord) DisplayName() string {
	if r.FullName != "" {
		return r.FullName
	}
	return r.Name
}

// IsBasePrint reports whether the record is the base card rather than a
// parallel/alt-art variant.
func (r CatalogRecord) IsBasePrint() bool {
	return r.VariantType == ""
}

// NumberWithTotal renders the number the way it is printed on Pokemon cards ("4/102").
func (r CatalogRecord) NumberWithTotal() string {
	if r.SetTotal <= 0 {
		return r.CollectorNumber
	}
	return r.CollectorNumber + "/" + strconv.Itoa(r.SetTotal)
}

type CatalogSearchResult struct {
	Records    []CatalogRecord `json:"records"`
	TotalCount int             `json:"total_count"`
	HasMore    bool            `json:"has_more"`
}
