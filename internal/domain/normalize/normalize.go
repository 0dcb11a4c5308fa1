// Package normalize provides string normalization and domain-entity
// extraction for urban-planning queries: neighborhood names, zone codes,
// legal article references and document hierarchy references.
package normalize

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// RemoveAccents strips combining diacritical marks ("Petrópolis" -> "Petropolis").
func RemoveAccents(s string) string {
	out, _, err := transform.String(accentStripper, s)
	if err != nil {
		return s
	}
	return out
}

// CollapseWhitespace folds runs of whitespace into single spaces and trims.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// foldPunctuation turns every rune that is not a letter or digit into a
// space, so "Petrópolis?" and "passo d'areia" compare on word content
// alone.
func foldPunctuation(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, s)
}

// NeighborhoodName normalizes a neighborhood name for comparison:
// uppercase, diacritics stripped, punctuation folded to word breaks,
// whitespace collapsed. Idempotent.
func NeighborhoodName(s string) string {
	return CollapseWhitespace(foldPunctuation(RemoveAccents(strings.ToUpper(s))))
}

// ArticleNumberVariants returns the lookup variants for an article number:
// the raw form, leading zeros stripped, a 3-digit zero-padded form and the
// parsed integer string. Duplicates are removed, original order kept.
// Idempotent: applying it to any returned variant yields the same set.
func ArticleNumberVariants(n string) []string {
	n = strings.TrimSpace(n)
	if n == "" {
		return nil
	}

	variants := []string{n}
	stripped := strings.TrimLeft(n, "0")
	if stripped == "" {
		stripped = "0"
	}
	variants = append(variants, stripped)

	if v, err := strconv.Atoi(stripped); err == nil {
		padded := strconv.Itoa(v)
		for len(padded) < 3 {
			padded = "0" + padded
		}
		variants = append(variants, padded, strconv.Itoa(v))
	}

	return dedupe(variants)
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := in[:0]
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
