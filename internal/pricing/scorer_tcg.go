package pricing

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/codyseavey/card-resolver/internal/matching"
	"github.com/codyseavey/card-resolver/internal/models"
)

const (
	tcgSearchLimit = 15
	tcgHighScore   = 40
	tcgMediumScore = 20
	nameMatchRatio = 0.8
)

// TCGProfile holds what differs between trading-card games on PriceCharting
type TCGProfile struct {
	Game models.Game
	// ConsoleKeyword must appear in a product's console name
	ConsoleKeyword string
	// SetPrefixes are stripped from the query set name
	SetPrefixes  []*regexp.Regexp
	MaxSetLength int
	// TracksFoil enables the foil bonus and penalties
	TracksFoil bool
	// VariantNames maps lowercase variant keywords to the catalog's wording
	VariantNames []variantName
}

type variantName struct {
	keywords []string
	label    string
}

func (p TCGProfile) stripSetPrefix(set string) string {
	s := strings.TrimSpace(set)
	for _, re := range p.SetPrefixes {
		s = re.ReplaceAllString(s, "")
	}
	return strings.TrimSpace(s)
}

// variant returns the catalog wording for the requested variant, or "" when
// there is nothing to ask for.
func (p TCGProfile) variant(q models.QueryAttributes) string {
	v := strings.TrimSpace(strings.ReplaceAll(q.Variant, "_", " "))
	if v == "" || isBaseVariant(v) {
		return ""
	}
	lower := strings.ToLower(v)
	padded := " " + strings.Join(strings.Fields(lower), " ") + " "
	for _, vn := range p.VariantNames {
		for _, kw := range vn.keywords {
			if strings.Contains(padded, " "+kw+" ") {
				return vn.label
			}
		}
	}
	if p.TracksFoil && lower == "foil" {
		// foil is scored separately
		return ""
	}
	return v
}

func MTGProfile() TCGProfile {
	return TCGProfile{
		Game:           models.GameMTG,
		ConsoleKeyword: "magic",
		SetPrefixes: []*regexp.Regexp{
			regexp.MustCompile(`(?i)^Magic[\s:]+`),
			regexp.MustCompile(`(?i)^The Gathering[\s:]+`),
		},
		MaxSetLength: 30,
		TracksFoil:   true,
		VariantNames: []variantName{
			{keywords: []string{"borderless"}, label: "Borderless"},
			{keywords: []string{"extended art", "extended"}, label: "Extended Art"},
			{keywords: []string{"showcase"}, label: "Showcase"},
			{keywords: []string{"retro frame", "retro"}, label: "Retro Frame"},
			{keywords: []string{"full art"}, label: "Full Art"},
		},
	}
}

func OnePieceProfile() TCGProfile {
	return TCGProfile{
		Game:           models.GameOnePiece,
		ConsoleKeyword: "one piece",
		SetPrefixes: []*regexp.Regexp{
			regexp.MustCompile(`(?i)^One Piece( Card Game)?[\s:\-]+`),
		},
		MaxSetLength: 40,
		// order matters: "special parallel" before "parallel"
		VariantNames: []variantName{
			{keywords: []string{"special parallel", "sp"}, label: "SP"},
			{keywords: []string{"special art"}, label: "Special Art"},
			{keywords: []string{"alternate art", "alt art"}, label: "Alt Art"},
			{keywords: []string{"manga"}, label: "Manga Art"},
			{keywords: []string{"parallel"}, label: "Parallel"},
			{keywords: []string{"promo"}, label: "Promo"},
		},
	}
}

func PokemonProfile() TCGProfile {
	return TCGProfile{
		Game:           models.GamePokemon,
		ConsoleKeyword: "pokemon",
		SetPrefixes: []*regexp.Regexp{
			regexp.MustCompile(`(?i)^Pok[eé]mon( TCG)?[\s:\-]+`),
		},
		MaxSetLength: 40,
		VariantNames: []variantName{
			{keywords: []string{"reverse holo", "reverse"}, label: "Reverse Holo"},
			{keywords: []string{"full art"}, label: "Full Art"},
		},
	}
}

func LorcanaProfile() TCGProfile {
	return TCGProfile{
		Game:           models.GameLorcana,
		ConsoleKeyword: "lorcana",
		SetPrefixes: []*regexp.Regexp{
			regexp.MustCompile(`(?i)^(Disney )?Lorcana[\s:\-]+`),
		},
		MaxSetLength: 40,
		VariantNames: []variantName{
			{keywords: []string{"enchanted"}, label: "Enchanted"},
			{keywords: []string{"foil"}, label: "Foil"},
		},
	}
}

// ProfileFor returns the PriceCharting profile for a trading-card game
func ProfileFor(game models.Game) (TCGProfile, error) {
	switch game {
	case models.GameMTG:
		return MTGProfile(), nil
	case models.GameOnePiece:
		return OnePieceProfile(), nil
	case models.GamePokemon:
		return PokemonProfile(), nil
	case models.GameLorcana:
		return LorcanaProfile(), nil
	default:
		return TCGProfile{}, fmt.Errorf("%w: %q has no trading card pricing profile", models.ErrUnknownGame, game)
	}
}

// TCGScorer ranks PriceCharting products for one trading-card game
type TCGScorer struct {
	Profile TCGProfile
}

func NewTCGScorer(profile TCGProfile) TCGScorer {
	return TCGScorer{Profile: profile}
}

func (s TCGScorer) BuildQuery(q models.QueryAttributes) string {
	return BuildTCGQuery(s.Profile, q)
}

func (TCGScorer) SearchLimit() int {
	return tcgSearchLimit
}

func (s TCGScorer) Filter(products []Product) []Product {
	kw := strings.ToLower(s.Profile.ConsoleKeyword)
	out := make([]Product, 0, len(products))
	for _, p := range products {
		console := strings.ReplaceAll(strings.ToLower(p.ConsoleName), "é", "e")
		if strings.Contains(console, kw) {
			out = append(out, p)
		}
	}
	return out
}

func (TCGScorer) Confidence(score int, fallback bool) models.ConfidenceTier {
	return bandConfidence(score, tcgHighScore, tcgMediumScore, fallback)
}

func (s TCGScorer) Related(p Product, q models.QueryAttributes) bool {
	product := strings.ToLower(p.ProductName)
	if _, ok := tcgNameScore(product, q.Name); !ok {
		return false
	}
	_, ok := tcgNumberScore(product, q.CollectorNumber)
	return ok
}

func (s TCGScorer) Score(p Product, q models.QueryAttributes) int {
	product := strings.ToLower(p.ProductName)
	console := strings.ToLower(p.ConsoleName)
	score := 0

	pts, ok := tcgNameScore(product, q.Name)
	if !ok {
		return Rejected
	}
	score += pts

	pts, ok = tcgNumberScore(product, q.CollectorNumber)
	if !ok {
		return Rejected
	}
	score += pts

	if q.SetName != "" {
		set := strings.ToLower(s.Profile.stripSetPrefix(q.SetName))
		if set != "" && (strings.Contains(console, set) ||
			strings.Contains(strings.ReplaceAll(console, " ", ""), strings.ReplaceAll(set, " ", ""))) {
			score += 25
		} else {
			for _, w := range strings.Fields(set) {
				if len(w) > 3 && strings.Contains(console, w) {
					score += 5
				}
			}
		}
	}

	if s.Profile.TracksFoil {
		hasFoil := strings.Contains(product, "foil")
		wantFoil := q.Foil || strings.EqualFold(strings.TrimSpace(q.Variant), "foil")
		switch {
		case wantFoil && hasFoil:
			score += 20
		case wantFoil:
			score -= 15
		case hasFoil:
			score -= 10
		}
	}

	if v := strings.ToLower(s.Profile.variant(q)); v != "" {
		if strings.Contains(product, v) || strings.Contains(product, "["+v+"]") {
			score += 15
		} else {
			score -= 5
		}
	}

	if q.Year != "" {
		year := yearToken(q.Year)
		if strings.Contains(console, year) || strings.Contains(product, year) {
			score += 10
		}
	}

	return score
}

// tcgNameScore gives +50 for a product that starts with the name and
// otherwise requires 80% of the name words.
func tcgNameScore(product, name string) (int, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return 0, true
	}
	if product == name || strings.HasPrefix(product, name+" ") || strings.HasPrefix(product, name+"#") {
		return 50, true
	}

	var parts []string
	for _, w := range strings.Fields(name) {
		if len([]rune(w)) > 1 {
			parts = append(parts, w)
		}
	}
	if len(parts) == 0 {
		return 0, false
	}
	matched := 0
	for _, w := range parts {
		if strings.Contains(product, w) {
			matched++
		}
	}
	if float64(matched)/float64(len(parts)) < nameMatchRatio {
		return 0, false
	}
	return matched * 10, true
}

func tcgNumberScore(product, number string) (int, bool) {
	n := tcgNumber(number)
	if n == "" {
		return 0, true
	}
	for _, f := range []string{n, matching.StripLeadingZeros(n)} {
		if containsNumberToken(product, "#"+f) ||
			strings.Contains(product, " "+f+"/") ||
			strings.Contains(product, " "+f+" ") ||
			strings.HasSuffix(product, " "+f) {
			return 40, true
		}
	}
	return 0, false
}

// containsNumberToken is strings.Contains that refuses "#1" inside "#12"
func containsNumberToken(s, sub string) bool {
	for i := 0; ; {
		idx := strings.Index(s[i:], sub)
		if idx < 0 {
			return false
		}
		end := i + idx + len(sub)
		if end == len(s) || !isAlnum(s[end]) {
			return true
		}
		i += idx + 1
	}
}

func isAlnum(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
