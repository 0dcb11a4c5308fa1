package retrieval

import (
	"fmt"

	"github.com/cidade-aberta/urbanq/internal/domain"
)

// hierarchyRanges approximates named structural units by article-number
// ranges, used when keyword search over the hierarchy yields nothing.
// True document boundaries are not derivable from any index available.
var hierarchyRanges = map[string][2]int{
	"titulo 1": {1, 10},
	"titulo 2": {11, 20},
	"parte 1":  {1, 50},
}

// hierarchyRange returns the approximate article range for a hierarchy
// reference, if one is known.
func hierarchyRange(ref *domain.HierarchyRef) (from, to int, ok bool) {
	if ref == nil || ref.Value == 0 {
		return 0, 0, false
	}
	r, ok := hierarchyRanges[fmt.Sprintf("%s %d", ref.Unit, ref.Value)]
	if !ok {
		return 0, 0, false
	}
	return r[0], r[1], true
}
