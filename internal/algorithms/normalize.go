package algorithms

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// one letter followed by digits, e.g. "B01"
	condensedBlockRe = regexp.MustCompile(`^[A-Za-z]\d+`)
	// optional letter, optional separator, digits, e.g. "B01", "A-53", "A 53"
	unitRe = regexp.MustCompile(`([A-Za-z])?[-\s]?(\d+)`)
)

// NormalizeText lowercases, strips diacritics and trims. Used for names.
func NormalizeText(s string) string {
	if s == "" {
		return ""
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		out = strings.ToLower(s)
	}
	return strings.TrimSpace(out)
}

// cleanBlock uppercases and keeps only A-Z and 0-9.
func cleanBlock(s string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(s) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeBlock returns the canonical block token: the first letter when the cleaned
// value starts with a letter, otherwise the cleaned value itself ("Torre 2" -> "T", "12" -> "12").
func NormalizeBlock(s string) string {
	cleaned := cleanBlock(s)
	if cleaned != "" && cleaned[0] >= 'A' && cleaned[0] <= 'Z' {
		return cleaned[:1]
	}
	return cleaned
}

// NormalizeApartment keeps digits and strips leading zeros. An all-zero value collapses to "0".
func NormalizeApartment(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return ""
	}
	trimmed := strings.TrimLeft(digits, "0")
	if trimmed == "" {
		return "0"
	}
	return trimmed
}

// RecoverUnit splits condensed block/apartment values coming from a label.
//
// A block of the form letter+digits ("B01") is split into the letter and the remainder; the
// remainder only fills the apartment when it was empty. Otherwise, with no apartment, the raw
// unit field is parsed. "12B" and "BL" are not split.
//
// Must be applied once to the raw label fields: the cleaned block is not a fixed point
// ("b-2" -> "B2", and "B2" would split again into "B" and "2").
func RecoverUnit(block, apartment, unit string) (string, string) {
	if condensedBlockRe.MatchString(block) {
		if apartment == "" {
			apartment = block[1:]
		}
		block = block[:1]
	} else if apartment == "" && unit != "" {
		if m := unitRe.FindStringSubmatch(unit); m != nil {
			if block == "" && m[1] != "" {
				block = m[1]
			}
			apartment = m[2]
		}
	}

	if apartment != "" {
		apartment = NormalizeApartment(apartment)
	}
	if block != "" {
		block = cleanBlock(block)
	}
	return block, apartment
}
