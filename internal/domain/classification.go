package domain

// Query intents.
const (
	IntentLegalArticle = "legal_article"
	IntentPredefined   = "predefined"
	IntentTabular      = "tabular"
	IntentConceptual   = "conceptual"
	IntentHybrid       = "hybrid"
)

// Query types refining the intent.
const (
	QueryTypeRegime   = "regime"
	QueryTypeRisk     = "risk"
	QueryTypeCounting = "counting"
	QueryTypeGeneral  = "general"
)

// Retrieval strategies selected by classification.
const (
	StrategyModeStructuredOnly   = "structured_only"
	StrategyModeUnstructuredOnly = "unstructured_only"
	StrategyModeHybrid           = "hybrid"
)

// Dataset identifiers requested by a classification.
const (
	DatasetRegime = "regime_urbanistico"
	DatasetZones  = "zots_bairros"
	DatasetLegal  = "legal_articles"
)

// Classification is the analyzer verdict for one query.
type Classification struct {
	Intent              string
	QueryType           string
	Strategy            string
	IsConstructionQuery bool
	Confidence          float64
	Datasets            []string
	Entities            Entities
	// ArticleHint carries a known topic-to-article mapping for legal intents.
	ArticleHint string
}
