package domain

// ArticleRef is a reference to a legal article extracted from a query.
// LawType is empty when the reference carried no co-occurring law name.
type ArticleRef struct {
	Number  string
	LawType string
}

// HierarchyRef is a reference to a structural document unit
// (título, parte, capítulo, seção, subseção).
type HierarchyRef struct {
	Unit     string
	Number   string
	Value    int
	DocType  string
	Variants []string
}

// Entities holds the domain entities extracted from a query.
type Entities struct {
	Neighborhood string
	ZoneCode     string
	Articles     []ArticleRef
	Hierarchy    *HierarchyRef
	Parameters   []string
}

// HasStructured reports whether any entity usable for a tabular
// lookup was extracted.
func (e Entities) HasStructured() bool {
	return e.Neighborhood != "" || e.ZoneCode != ""
}

// NormalizedQuery is the per-request normalized view of the raw query.
// Variants always contains the original string.
type NormalizedQuery struct {
	Raw      string
	Variants []string
	Entities Entities
}
