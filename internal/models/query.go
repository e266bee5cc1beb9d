package models

import (
	"fmt"
	"strconv"
	"strings"
)

// QueryAttributes are the noisy, partially-filled card attributes extracted
// from a scan. All fields are optional.
type QueryAttributes struct {
	Name            string `json:"name,omitempty"`
	SetCode         string `json:"set_code,omitempty"`
	SetName         string `json:"set_name,omitempty"`
	CollectorNumber string `json:"collector_number,omitempty"`
	CardID          string `json:"card_id,omitempty"`
	Rarity          string `json:"rarity,omitempty"`

	// Pricing only
	Year            string `json:"year,omitempty"`
	Variant         string `json:"variant,omitempty"`
	SerialNumbering string `json:"serial_numbering,omitempty"`
	Sport           string `json:"sport,omitempty"`
	Foil            bool   `json:"foil,omitempty"`
}

// IsEmpty reports whether none of the identifying fields are present.
func (q QueryAttributes) IsEmpty() bool {
	return q.Name == "" && q.SetCode == "" && q.SetName == "" &&
		q.CollectorNumber == "" && q.CardID == ""
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (q QueryAttributes) Trimmed() QueryAttributes {
	q.Name = strings.TrimSpace(q.Name)
	q.SetCode = strings.TrimSpace(q.SetCode)
	q.SetName = strings.TrimSpace(q.SetName)
	q.CollectorNumber = strings.TrimSpace(q.CollectorNumber)
	q.CardID = strings.TrimSpace(q.CardID)
	q.Rarity = strings.TrimSpace(q.Rarity)
	q.Year = strings.TrimSpace(q.Year)
	q.Variant = strings.TrimSpace(q.Variant)
	q.SerialNumbering = strings.TrimSpace(q.SerialNumbering)
	q.Sport = strings.TrimSpace(q.Sport)
	return q
}

// attributeAliases lists the keys the vision model has been observed to emit
// for each field, in priority order.
var attributeAliases = map[string][]string{
	"name":             {"card_name", "name", "player_name", "playerName", "cardName"},
	"set_code":         {"expansion_code", "set_code", "setCode"},
	"set_name":         {"set_name", "set", "setName", "expansion"},
	"collector_number": {"card_number", "collector_number", "number", "cardNumber", "collectorNumber"},
	"card_id":          {"card_id", "cardId"},
	"rarity":           {"rarity"},
	"year":             {"year"},
	"variant":          {"variant", "parallel_type", "parallelType"},
	"serial_numbering": {"serial_numbering", "serialNumbering", "serial_number"},
	"sport":            {"sport", "category"},
}

// ParseQueryAttributes narrows an untyped JSON object into QueryAttributes.
// Unknown keys and values of unexpected types are ignored. Returns
// ErrInvalidQuery if no identifying attribute survives.
func ParseQueryAttributes(raw map[string]any) (QueryAttributes, error) {
	var q QueryAttributes
	if raw == nil {
		return q, fmt.Errorf("%w: empty attributes", ErrInvalidQuery)
	}

	q.Name = firstString(raw, attributeAliases["name"])
	q.SetCode = firstString(raw, attributeAliases["set_code"])
	q.SetName = firstString(raw, attributeAliases["set_name"])
	q.CollectorNumber = firstString(raw, attributeAliases["collector_number"])
	q.CardID = firstString(raw, attributeAliases["card_id"])
	q.Rarity = firstString(raw, attributeAliases["rarity"])
	q.Year = firstString(raw, attributeAliases["year"])
	q.Variant = firstString(raw, attributeAliases["variant"])
	q.SerialNumbering = firstString(raw, attributeAliases["serial_numbering"])
	q.Sport = firstString(raw, attributeAliases["sport"])
	q.Foil = firstBool(raw, []string{"foil", "is_foil", "isFoil"})

	q = q.Trimmed()
	if q.IsEmpty() {
		return q, fmt.Errorf("%w: no name, set, number or card id", ErrInvalidQuery)
	}
	return q, nil
}

func firstString(raw map[string]any, keys []string) string {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok || v == nil {
			continue
		}
		if s := stringValue(v); s != "" {
			return s
		}
	}
	return ""
}

func stringValue(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		// JSON numbers: 2023, 27
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return ""
	default:
		return ""
	}
}

func firstBool(raw map[string]any, keys []string) bool {
	for _, k := range keys {
		switch t := raw[k].(type) {
		case bool:
			return t
		case string:
			if b, err := strconv.ParseBool(strings.TrimSpace(t)); err == nil {
				return b
			}
		}
	}
	return false
}
