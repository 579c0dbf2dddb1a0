package extract

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	digitRun   = regexp.MustCompile(`\d+`)
	priceNoise = regexp.MustCompile(`[^\d,.]`)
)

// propertyCategories is the fixed category set used to fold source-specific
// labels ("Apartamento Padrão", "Casa em Condomínio") into canonical types.
// Checked in order; first substring match wins.
var propertyCategories = []string{"Apartamento", "Casa", "Terreno"}

// ParsePrice normalizes a displayed price into a number. Thousands separators
// (dots) are noise; a comma is a decimal separator and becomes the canonical
// point. Unparsable or empty input yields nil, never zero.
func ParsePrice(raw string) *float64 {
	cleaned := priceNoise.ReplaceAllString(strings.TrimSpace(raw), "")
	if cleaned == "" {
		return nil
	}
	cleaned = strings.ReplaceAll(cleaned, ".", "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return &value
}

// ParseCount extracts the first run of digits as an integer count
// (bedrooms, bathrooms, parking). Unparsable input yields nil.
func ParseCount(raw string) *int {
	match := digitRun.FindString(raw)
	if match == "" {
		return nil
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return nil
	}
	return &n
}

// ParseArea extracts an area in square meters. A zero area means the source
// had no real measurement and is treated as absent.
func ParseArea(raw string) *int {
	n := ParseCount(raw)
	if n == nil || *n == 0 {
		return nil
	}
	return n
}

// NormalizeType folds a raw property-type label into the canonical category
// set. Unmatched values pass through trimmed rather than being discarded.
func NormalizeType(raw string) string {
	trimmed := strings.TrimSpace(raw)
	for _, category := range propertyCategories {
		if strings.Contains(trimmed, category) {
			return category
		}
	}
	return trimmed
}
