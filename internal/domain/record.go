package domain

// Record is a single retrieved row, structured or unstructured.
type Record struct {
	ID       string
	Source   string
	Title    string
	Content  string
	Score    float64
	Metadata map[string]string
}

// StrategyResult is the output of one retrieval strategy.
type StrategyResult struct {
	Strategy string
	Records  []Record
}

// Empty reports whether the strategy produced no records.
func (r StrategyResult) Empty() bool { return len(r.Records) == 0 }

// RetrievalResult is the merged outcome of a retrieval call.
type RetrievalResult struct {
	Records    []Record
	Strategies []string
	Confidence float64
}

// Retrieval strategy tags, in fallback order.
const (
	StrategyArticleExact    = "article_exact"
	StrategyArticleFuzzy    = "article_fuzzy"
	StrategyArticleWildcard = "article_wildcard"
	StrategyStructured      = "structured"
	StrategyRegistryScan    = "registry_scan"
	StrategyKeywordFallback = "keyword_fallback"
	StrategyHierarchy       = "hierarchy"
	StrategyHierarchyRange  = "hierarchy_range"
	StrategySemantic        = "semantic"
)
