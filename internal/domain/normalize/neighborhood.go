package normalize

import "strings"

// partialMatchThreshold is the minimum share of a multi-word name's
// tokens that must appear in the query for a partial match.
const partialMatchThreshold = 0.8

// normalized registry, built once. Order follows the registry so that
// ties resolve deterministically; longer names are tried first so that
// "BOA VISTA DO SUL" wins over its prefix "BOA VISTA".
var normalizedRegistry = buildNormalizedRegistry()

type registryEntry struct {
	canonical  string
	normalized string
	tokens     []string
}

func buildNormalizedRegistry() []registryEntry {
	entries := make([]registryEntry, 0, len(Neighborhoods))
	for _, name := range Neighborhoods {
		n := NeighborhoodName(name)
		entries = append(entries, registryEntry{
			canonical:  name,
			normalized: n,
			tokens:     strings.Fields(n),
		})
	}
	// Stable sort by descending normalized length, preserving registry
	// order among equal lengths.
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && len(entries[j].normalized) > len(entries[j-1].normalized); j-- {
			entries[j], entries[j-1] = entries[j-1], entries[j]
		}
	}
	return entries
}

// ExtractNeighborhood finds at most one canonical neighborhood name in
// the query. Match priority: exact substring, then partial
// (>=80% of a multi-word name's tokens present), then the
// abbreviation table. The city's own name never matches.
func ExtractNeighborhood(query string) string {
	q := NeighborhoodName(query)
	if q == "" {
		return ""
	}

	if name := matchExact(q); name != "" {
		return name
	}
	if name := matchPartial(q); name != "" {
		return name
	}
	return matchAbbreviation(q)
}

func matchExact(q string) string {
	for _, e := range normalizedRegistry {
		if containsWord(q, e.normalized) {
			return e.canonical
		}
	}
	return ""
}

func matchPartial(q string) string {
	queryTokens := make(map[string]struct{})
	for _, t := range strings.Fields(q) {
		if len([]rune(t)) > 2 {
			queryTokens[t] = struct{}{}
		}
	}
	if len(queryTokens) == 0 {
		return ""
	}

	for _, e := range normalizedRegistry {
		if len(e.tokens) < 2 {
			continue
		}
		matched := 0
		for _, t := range e.tokens {
			if len([]rune(t)) <= 2 {
				continue
			}
			if _, ok := queryTokens[t]; ok {
				matched++
			}
		}
		significant := 0
		for _, t := range e.tokens {
			if len([]rune(t)) > 2 {
				significant++
			}
		}
		if significant > 0 && float64(matched)/float64(significant) >= partialMatchThreshold {
			return e.canonical
		}
	}
	return ""
}

func matchAbbreviation(q string) string {
	for _, a := range abbreviations {
		if containsWord(q, a.short) {
			return a.canonical
		}
	}
	return ""
}

// containsWord reports whether sub occurs in s on word boundaries.
func containsWord(s, sub string) bool {
	idx := 0
	for {
		i := strings.Index(s[idx:], sub)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(sub)
		beforeOK := start == 0 || s[start-1] == ' '
		afterOK := end == len(s) || s[end] == ' '
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
		if idx >= len(s) {
			return false
		}
	}
}

// ScanTokensForNeighborhood is the last-resort heuristic: check each
// query token longer than 3 characters against the registry. Used only
// when no entity was extracted up front.
func ScanTokensForNeighborhood(query string) string {
	for _, tok := range strings.Fields(NeighborhoodName(query)) {
		if len([]rune(tok)) <= 3 {
			continue
		}
		for _, e := range normalizedRegistry {
			if e.normalized == tok {
				return e.canonical
			}
		}
	}
	return ""
}
