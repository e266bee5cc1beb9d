package pricing

import (
	"regexp"
	"strings"

	"github.com/codyseavey/card-resolver/internal/matching"
	"github.com/codyseavey/card-resolver/internal/models"
)

var (
	numberPrefixes = []*regexp.Regexp{
		regexp.MustCompile(`^#`),
		regexp.MustCompile(`(?i)^NO\.?\s*`),
		regexp.MustCompile(`(?i)^NUMBER\.?\s*`),
		regexp.MustCompile(`(?i)^NUM\.?\s*`),
	}
	leadingInitials = regexp.MustCompile(`^([A-Z])([A-Z])\s+`)
	middleInitials  = regexp.MustCompile(`\s+([A-Z])([A-Z])\s+`)
	yearPrefix      = regexp.MustCompile(`^\d{4}`)
	setSeparators   = regexp.MustCompile(`[•·●–—-]`)
	serialTotal     = regexp.MustCompile(`/\s*(\d+)\s*$`)
	bracketMarker   = regexp.MustCompile(`\[(.*?)\]`)
	playerPunct     = regexp.MustCompile(`[./]`)
)

var sportWords = map[string]bool{
	"football":   true,
	"basketball": true,
	"baseball":   true,
	"hockey":     true,
	"soccer":     true,
}

// genericVariants never narrow a search, so they are left out of the query
var genericVariants = map[string]bool{
	"insert":           true,
	"base":             true,
	"base_common":      true,
	"common":           true,
	"standard":         true,
	"regular":          true,
	"parallel":         true,
	"modern_parallel":  true,
	"parallel_variant": true,
	"sp":               true,
	"ssp":              true,
	"autographed":      true,
	"autograph":        true,
	"auto":             true,
	"rookie":           true,
	"rc":               true,
	"memorabilia":      true,
	"relic":            true,
	"patch":            true,
}

var baseVariants = map[string]bool{
	"base_common": true,
	"base":        true,
	"common":      true,
	"standard":    true,
	"regular":     true,
}

// cleanCardNumber strips printed prefixes ("#", "No.", "Number") and lowercases
func cleanCardNumber(raw string) string {
	s := strings.TrimSpace(raw)
	for _, p := range numberPrefixes {
		s = p.ReplaceAllString(s, "")
	}
	return strings.ToLower(strings.TrimSpace(s))
}

// formatInitials turns "CJ Stroud" into "C.J. Stroud", the way the catalog lists players
func formatInitials(name string) string {
	s := leadingInitials.ReplaceAllString(strings.TrimSpace(name), "$1.$2. ")
	return middleInitials.ReplaceAllString(s, " $1.$2. ")
}

// yearToken keeps the 4-digit season start ("2023-24" -> "2023")
func yearToken(year string) string {
	if m := yearPrefix.FindString(strings.TrimSpace(year)); m != "" {
		return m
	}
	return strings.TrimSpace(year)
}

func cleanSetName(set string) string {
	s := setSeparators.ReplaceAllString(set, " ")
	words := strings.Fields(s)

	// "Topps Topps Chrome" -> "Topps Chrome"
	if len(words) >= 2 && strings.EqualFold(words[0], words[1]) {
		switch strings.ToLower(words[0]) {
		case "topps", "panini":
			words = words[1:]
		}
	}

	kept := words[:0:0]
	for _, w := range words {
		if sportWords[strings.ToLower(w)] {
			continue
		}
		kept = append(kept, w)
	}
	if len(kept) > 4 {
		kept = kept[:4]
	}
	return strings.Join(kept, " ")
}

// serialDenominator returns the print run of "23/75" as "75"
func serialDenominator(serial string) string {
	s := strings.TrimSpace(serial)
	if m := serialTotal.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return ""
}

func isGenericVariant(v string) bool {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(v)), " ", "_")
	return genericVariants[key]
}

func isBaseVariant(v string) bool {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(v)), " ", "_")
	return baseVariants[key]
}

// normalizePlayer lowercases, treats dots and slashes as spaces and joins
// runs of single letters ("c. j. stroud" -> "cj stroud").
func normalizePlayer(s string) string {
	s = playerPunct.ReplaceAllString(strings.ToLower(s), " ")
	words := strings.Fields(s)

	out := make([]string, 0, len(words))
	for i := 0; i < len(words); i++ {
		w := words[i]
		if len([]rune(w)) == 1 {
			for i+1 < len(words) && len([]rune(words[i+1])) == 1 {
				i++
				w += words[i]
			}
		}
		out = append(out, w)
	}
	return strings.Join(out, " ")
}

func bracketVariant(productName string) (string, bool) {
	m := bracketMarker.FindStringSubmatch(productName)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// BuildSportsQuery assembles the SportsCardsPro search string. Field order
// matters: the catalog ranks earlier tokens higher.
func BuildSportsQuery(q models.QueryAttributes) string {
	var parts []string
	if q.Name != "" {
		parts = append(parts, formatInitials(q.Name))
	}
	if q.Year != "" {
		parts = append(parts, yearToken(q.Year))
	}
	if q.SetName != "" {
		if set := cleanSetName(q.SetName); set != "" {
			parts = append(parts, set)
		}
	}
	if q.CollectorNumber != "" {
		if n := matching.StripLeadingZeros(cleanCardNumber(q.CollectorNumber)); n != "" {
			parts = append(parts, "#"+n)
		}
	}
	if den := serialDenominator(q.SerialNumbering); den != "" {
		parts = append(parts, "/"+den)
	}
	if q.Variant != "" && !isGenericVariant(q.Variant) {
		parts = append(parts, q.Variant)
	}
	return strings.Join(parts, " ")
}

// tcgNumber is the collector number without "#" or a "/total" suffix
func tcgNumber(raw string) string {
	s := strings.TrimSpace(strings.ReplaceAll(raw, "#", ""))
	return strings.ToLower(matching.ParseSlashNumber(s))
}

// BuildTCGQuery assembles the PriceCharting search string for a trading-card game
func BuildTCGQuery(profile TCGProfile, q models.QueryAttributes) string {
	var parts []string
	if q.Name != "" {
		parts = append(parts, strings.TrimSpace(q.Name))
	}
	if q.CollectorNumber != "" {
		if n := matching.StripLeadingZeros(tcgNumber(q.CollectorNumber)); n != "" {
			parts = append(parts, "#"+n)
		}
	}
	if q.SetName != "" {
		if set := profile.stripSetPrefix(q.SetName); set != "" && len(set) <= profile.MaxSetLength {
			parts = append(parts, set)
		}
	}
	if v := profile.variant(q); v != "" {
		parts = append(parts, v)
	}
	return strings.Join(parts, " ")
}
