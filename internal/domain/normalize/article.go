package normalize

import (
	"regexp"
	"strconv"

	"github.com/cidade-aberta/urbanq/internal/domain"
)

var (
	// Pass 1: article number with a co-occurring law name.
	articleWithLawPattern = regexp.MustCompile(
		`(?i)\b(?:artigo|art)\.?\s*(\d+)[º°]?(?:[^.\d]{0,40}?)\b(luos|pdus|plano\s+diretor)\b`)
	// Pass 2: bare article numbers.
	articleBarePattern = regexp.MustCompile(`(?i)\b(?:artigo|art)\.?\s*(\d+)`)
	// Ranges: "artigos 5 a 12", "arts. 5-12".
	articleRangePattern = regexp.MustCompile(
		`(?i)\b(?:artigos|arts)\.?\s*(\d+)\s*(?:a|até|-)\s*(\d+)`)
)

const maxArticleRange = 50

// ExtractArticleReferences extracts legal article references from a
// query in two passes. The first pass captures numbers with a
// co-occurring law name (recorded as LawType); the second captures bare
// numbers not already seen. Results are deduplicated by article number.
func ExtractArticleReferences(query string) []domain.ArticleRef {
	var refs []domain.ArticleRef
	seen := make(map[string]struct{})

	add := func(number, lawType string) {
		stripped := strippedNumber(number)
		if _, ok := seen[stripped]; ok {
			return
		}
		seen[stripped] = struct{}{}
		refs = append(refs, domain.ArticleRef{Number: stripped, LawType: lawType})
	}

	for _, m := range articleWithLawPattern.FindAllStringSubmatch(query, -1) {
		add(m[1], canonicalLawType(m[2]))
	}

	for _, m := range articleRangePattern.FindAllStringSubmatch(query, -1) {
		from, err1 := strconv.Atoi(m[1])
		to, err2 := strconv.Atoi(m[2])
		if err1 != nil || err2 != nil || to < from || to-from > maxArticleRange {
			continue
		}
		for n := from; n <= to; n++ {
			add(strconv.Itoa(n), "")
		}
	}

	for _, m := range articleBarePattern.FindAllStringSubmatch(query, -1) {
		add(m[1], "")
	}

	return refs
}

func strippedNumber(n string) string {
	if v, err := strconv.Atoi(n); err == nil {
		return strconv.Itoa(v)
	}
	return n
}

func canonicalLawType(s string) string {
	switch NeighborhoodName(s) {
	case "LUOS":
		return "LUOS"
	case "PDUS", "PLANO DIRETOR":
		return "PDUS"
	}
	return ""
}
