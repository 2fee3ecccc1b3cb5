package matching

import "strings"

// Grade describes a B-stock condition code embedded in a SKU.
type Grade struct {
	Type       string  `json:"type"`
	Multiplier float64 `json:"multiplier"`
	IsSpecial  bool    `json:"isSpecial"`
}

// defaultSpecialMultiplier applies to special codes without their own rate.
const defaultSpecialMultiplier = 0.85

// gradeTable is checked in order; the first code found wins.
var gradeTable = []struct {
	code       string
	multiplier float64
	special    bool
}{
	{"BA", 0.95, false},
	{"BB", 0.90, false},
	{"BC", 0.85, false},
	{"BD", 0.80, false},
	{"NOACC", 0.85, true}, // priced like BC
	{"AA", 0.98, true},
}

// GradeCodes lists the known grade codes in detection order.
func GradeCodes() []string {
	codes := make([]string, len(gradeTable))
	for i, g := range gradeTable {
		codes[i] = g.code
	}
	return codes
}

// DetectGrade reports the grade embedded in sku, or nil. A code counts when
// the uppercased SKU contains "-CODE" or starts with "CODE-".
func DetectGrade(sku string) *Grade {
	if sku == "" {
		return nil
	}
	upper := strings.ToUpper(sku)
	for _, g := range gradeTable {
		if strings.Contains(upper, "-"+g.code) || strings.HasPrefix(upper, g.code+"-") {
			multiplier := g.multiplier
			if multiplier == 0 && g.special {
				multiplier = defaultSpecialMultiplier
			}
			return &Grade{Type: g.code, Multiplier: multiplier, IsSpecial: g.special}
		}
	}
	return nil
}

// stripGradeToken removes every positional form of code from a normalized
// SKU: "-CODE-" becomes "-", a trailing "-CODE" and a leading "CODE-" go away.
func stripGradeToken(sku, code string) string {
	patterns := []struct{ find, replace string }{
		{"-" + code + "-", "-"},
		{"-" + code, ""},
		{code + "-", ""},
	}
	for _, p := range patterns {
		if strings.Contains(sku, p.find) {
			sku = strings.ReplaceAll(sku, p.find, p.replace)
		}
	}
	sku = trimOuterHyphen(sku)
	return strings.ReplaceAll(sku, "--", "-")
}

// gradeBase removes the first "-CODE" and then the first "CODE-" from sku.
func gradeBase(sku, code string) string {
	sku = strings.Replace(sku, "-"+code, "", 1)
	sku = strings.Replace(sku, code+"-", "", 1)
	return trimOuterHyphen(sku)
}
