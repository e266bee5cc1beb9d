package matching

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/codyseavey/card-resolver/internal/models"
)

var (
	cardIDPattern     = regexp.MustCompile(`^([A-Z]+)-?(\d+)-(\d+[A-Za-z]?)$`)
	cardIDNumberSplit = regexp.MustCompile(`^(\d+)([A-Za-z]?)$`)
	leadingZeros      = regexp.MustCompile(`^0+(\d)`)
	whitespace        = regexp.MustCompile(`\s+`)
)

// NormalizeCollectorNumber strips leading zeros from purely numeric numbers
// ("007" -> "7", "000" -> "0") and lowercases everything else ("27a", "gv-12").
func NormalizeCollectorNumber(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if isDigits(s) {
		s = strings.TrimLeft(s, "0")
		if s == "" {
			return "0"
		}
		return s
	}
	return strings.ToLower(s)
}

// NormalizeSetCode lowercases and trims a set code
func NormalizeSetCode(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// NormalizeCardID canonicalizes One Piece style ids: "op01-1" -> "OP01-001",
// "ST1-5" -> "ST01-005". Inputs that don't fit the pattern are returned
// uppercased with whitespace removed.
func NormalizeCardID(raw string) string {
	s := strings.ToUpper(whitespace.ReplaceAllString(raw, ""))

	m := cardIDPattern.FindStringSubmatch(s)
	if m == nil {
		return s
	}

	setNum := m[2]
	if len(setNum) < 2 {
		setNum = strings.Repeat("0", 2-len(setNum)) + setNum
	}

	cardNum := m[3]
	if parts := cardIDNumberSplit.FindStringSubmatch(cardNum); parts != nil && len(parts[1]) < 3 {
		cardNum = strings.Repeat("0", 3-len(parts[1])) + parts[1] + parts[2]
	}

	return fmt.Sprintf("%s%s-%s", m[1], setNum, cardNum)
}

// NormalizeOCR maps the characters OCR commonly confuses with digits
func NormalizeOCR(s string) string {
	return strings.NewReplacer("o", "0", "l", "1", "i", "1").Replace(strings.ToLower(s))
}

// ParseSlashNumber returns the part before "/" ("1/204" -> "1")
func ParseSlashNumber(raw string) string {
	s := strings.TrimSpace(raw)
	if idx := strings.Index(s, "/"); idx >= 0 {
		return strings.TrimSpace(s[:idx])
	}
	return s
}

// NormalizePrintedNumber normalizes both halves of "number/total" ("004/102" -> "4/102")
func NormalizePrintedNumber(raw string) string {
	parts := strings.Split(strings.TrimSpace(raw), "/")
	for i, p := range parts {
		parts[i] = NormalizeCollectorNumber(p)
	}
	return strings.Join(parts, "/")
}

// StripLeadingZeros drops leading zeros before the first digit ("027a" -> "27a")
func StripLeadingZeros(s string) string {
	return leadingZeros.ReplaceAllString(s, "$1")
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// Normalizer bundles the per-game normalization rules applied to both query
// attributes and stored records before comparison.
type Normalizer struct {
	Number  func(string) string
	SetCode func(string) string
	CardID  func(string) string
}

// DefaultNormalizer is used by MTG
func DefaultNormalizer() Normalizer {
	return Normalizer{
		Number:  NormalizeCollectorNumber,
		SetCode: NormalizeSetCode,
		CardID:  func(s string) string { return strings.ToLower(strings.TrimSpace(s)) },
	}
}

// LorcanaNormalizer accepts "1/204" style numbers
func LorcanaNormalizer() Normalizer {
	n := DefaultNormalizer()
	n.Number = func(s string) string { return NormalizeCollectorNumber(ParseSlashNumber(s)) }
	return n
}

// OnePieceNormalizer canonicalizes card ids
func OnePieceNormalizer() Normalizer {
	n := DefaultNormalizer()
	n.CardID = NormalizeCardID
	return n
}

// PokemonNormalizer drops the printed set total from numbers
func PokemonNormalizer() Normalizer {
	n := DefaultNormalizer()
	n.Number = func(s string) string { return NormalizeCollectorNumber(ParseSlashNumber(s)) }
	return n
}

// NormalizerFor returns the rules for a game
func NormalizerFor(game models.Game) Normalizer {
	switch game {
	case models.GameLorcana:
		return LorcanaNormalizer()
	case models.GameOnePiece:
		return OnePieceNormalizer()
	case models.GamePokemon:
		return PokemonNormalizer()
	default:
		return DefaultNormalizer()
	}
}
