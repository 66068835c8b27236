package prism

import "strings"

var basicLands = map[string]bool{
	"island":   true,
	"mountain": true,
	"plains":   true,
	"forest":   true,
	"swamp":    true,
	"wastes":   true,
}

// NormalizeName trims a card name and collapses runs of whitespace to a single space.
// Casing and punctuation are kept so the result can be displayed.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// CardKey returns the equality key of a card name: case and whitespace insensitive,
// otherwise exact.
func CardKey(name string) string {
	return strings.ToLower(NormalizeName(name))
}

// IsBasicLand reports whether name is one of the six basic land types.
func IsBasicLand(name string) bool {
	return basicLands[CardKey(name)]
}
