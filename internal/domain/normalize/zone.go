package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var zonePattern = regexp.MustCompile(`(?i)\b(?:zot|zona)[\s\-.]*(\d{1,2})\b`)

// ExtractZoneCode finds a zoning code in the query and canonicalizes it
// to the fixed-width form "ZOT NN". "zot 7", "zona 07" and "ZOT-7" all
// yield "ZOT 07". Empty string when no code is present.
func ExtractZoneCode(query string) string {
	m := zonePattern.FindStringSubmatch(query)
	if m == nil {
		return ""
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return ""
	}
	return fmt.Sprintf("ZOT %02d", n)
}

// ZoneSearchPatterns returns the spelling variants used when searching
// text fields for a canonical zone code ("ZOT 07" -> ZOT 7, ZOT 07,
// ZOT7, ZONA 7, ZONA 07).
func ZoneSearchPatterns(canonical string) []string {
	num := strings.TrimPrefix(canonical, "ZOT ")
	if num == canonical {
		return []string{canonical}
	}
	short := strings.TrimLeft(num, "0")
	if short == "" {
		short = "0"
	}
	return dedupe([]string{
		"ZOT " + short,
		"ZOT " + num,
		"ZOT" + short,
		"ZONA " + short,
		"ZONA " + num,
	})
}
