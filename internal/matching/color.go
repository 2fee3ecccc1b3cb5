package matching

import (
	"sort"
	"strings"
)

type colorToken struct {
	token string
	name  string
}

var colorAbbreviations = []colorToken{
	{"BK", "BLACK"}, {"BL", "BLUE"}, {"BR", "BROWN"}, {"GY", "GRAY"},
	{"GR", "GREEN"}, {"IV", "IVORY"}, {"OR", "ORANGE"}, {"PK", "PINK"},
	{"RD", "RED"}, {"TN", "TAN"}, {"WH", "WHITE"}, {"YL", "YELLOW"},
	{"PL", "PURPLE"}, {"NV", "NAVY"}, {"CH", "CHERRY"}, {"NT", "NATURAL"},
	{"MH", "MAHOGANY"}, {"WN", "WALNUT"},
}

// colorTokens holds every abbreviation and full name, longest first. Ties
// keep declaration order, abbreviations before names.
var colorTokens = buildColorTokens()

func buildColorTokens() []colorToken {
	tokens := make([]colorToken, 0, 2*len(colorAbbreviations))
	tokens = append(tokens, colorAbbreviations...)
	for _, c := range colorAbbreviations {
		tokens = append(tokens, colorToken{token: c.name, name: c.name})
	}
	sort.SliceStable(tokens, func(i, j int) bool {
		return len(tokens[i].token) > len(tokens[j].token)
	})
	return tokens
}

// detectColor finds a trailing color token in a normalized SKU and returns
// the SKU without it along with the canonical color name.
func detectColor(sku string) (rest string, color string) {
	rest = sku
	for _, c := range colorTokens {
		if strings.HasSuffix(rest, "-"+c.token) {
			rest = rest[:len(rest)-len(c.token)-1]
			color = c.name
			break
		}
		if strings.HasSuffix(rest, c.token) {
			preceding := len(rest) - len(c.token) - 1
			// A bare two-letter code glued to an alphanumeric is part of the
			// model number, not a color.
			if preceding < 0 || !isAlphanumeric(rest[preceding]) || len(c.token) > 2 {
				rest = rest[:len(rest)-len(c.token)]
				color = c.name
				break
			}
		}
	}
	return strings.TrimSuffix(rest, "-"), color
}

func isAlphanumeric(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
