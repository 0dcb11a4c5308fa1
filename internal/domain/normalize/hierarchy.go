package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/cidade-aberta/urbanq/internal/domain"
)

// Hierarchy units, broadest first.
var hierarchyUnits = []string{"livro", "parte", "titulo", "capitulo", "secao", "subsecao"}

var hierarchyPattern = regexp.MustCompile(
	`(?i)\b(livro|parte|t[ií]tulo|cap[ií]tulo|se[çc][ãa]o|subse[çc][ãa]o)\s+` +
		`([ivx]+|\d+|primeir[oa]|segund[oa]|terceir[oa]|quart[oa]|quint[oa]|` +
		`sext[oa]|s[ée]tim[oa]|oitav[oa]|non[oa]|d[ée]cim[oa])\b`)

var docTypePattern = regexp.MustCompile(`(?i)\b(pdus|luos|plano\s+diretor|coe)\b`)

var romanToArabic = map[string]int{
	"i": 1, "ii": 2, "iii": 3, "iv": 4, "v": 5,
	"vi": 6, "vii": 7, "viii": 8, "ix": 9, "x": 10,
}

var arabicToRoman = []string{"", "i", "ii", "iii", "iv", "v", "vi", "vii", "viii", "ix", "x"}

var ordinals = []string{
	"", "primeiro", "segundo", "terceiro", "quarto", "quinto",
	"sexto", "sétimo", "oitavo", "nono", "décimo",
}

// IsHierarchicalQuery reports whether the query names a structural
// document unit.
func IsHierarchicalQuery(query string) bool {
	return hierarchyPattern.MatchString(query)
}

// ExtractHierarchyReference detects a document hierarchy reference
// (unit keyword plus a number in arabic, roman or spelled-out form) and
// builds its search-variant set, including roman<->arabic conversion
// for 1..10 and ordinal spellings. Returns nil when absent.
func ExtractHierarchyReference(query string) *domain.HierarchyRef {
	m := hierarchyPattern.FindStringSubmatch(query)
	if m == nil {
		return nil
	}

	unit := canonicalUnit(m[1])
	numberToken := strings.ToLower(m[2])
	n := parseUnitNumber(numberToken)

	ref := &domain.HierarchyRef{
		Unit:   unit,
		Number: numberToken,
		Value:  n,
	}
	if dt := docTypePattern.FindStringSubmatch(query); dt != nil {
		ref.DocType = canonicalDocType(dt[1])
	}
	ref.Variants = hierarchyVariants(unit, numberToken, n)
	return ref
}

func canonicalUnit(u string) string {
	u = strings.ToLower(RemoveAccents(u))
	for _, known := range hierarchyUnits {
		if u == known {
			return known
		}
	}
	return u
}

func canonicalDocType(s string) string {
	s = NeighborhoodName(s)
	if s == "PLANO DIRETOR" {
		return "PDUS"
	}
	return s
}

// parseUnitNumber converts a roman, arabic or spelled-out unit number
// to its integer value; 0 when it cannot be parsed.
func parseUnitNumber(tok string) int {
	if v, err := strconv.Atoi(tok); err == nil {
		return v
	}
	if v, ok := romanToArabic[tok]; ok {
		return v
	}
	base := strings.ToLower(RemoveAccents(tok))
	base = strings.TrimSuffix(base, "a")
	base = strings.TrimSuffix(base, "o")
	for i, ord := range ordinals {
		if ord == "" {
			continue
		}
		stripped := strings.TrimSuffix(strings.ToLower(RemoveAccents(ord)), "o")
		if base == stripped {
			return i
		}
	}
	return 0
}

func hierarchyVariants(unit, raw string, n int) []string {
	variants := []string{
		fmt.Sprintf("%s %s", unit, raw),
	}
	if n >= 1 && n <= 10 {
		variants = append(variants,
			fmt.Sprintf("%s %d", unit, n),
			fmt.Sprintf("%s %s", unit, arabicToRoman[n]),
			fmt.Sprintf("%s %s", unit, strings.ToUpper(arabicToRoman[n])),
			fmt.Sprintf("%s %s", unit, ordinals[n]),
			fmt.Sprintf("%s%d", unit, n),
		)
	}
	return dedupe(variants)
}
