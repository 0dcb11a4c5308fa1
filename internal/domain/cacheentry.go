package domain

import "time"

// CacheEntry is a cached response with its admission metadata.
// Entries with Confidence below the admission threshold are never stored.
type CacheEntry struct {
	Key          string        `json:"key"`
	Query        string        `json:"query"`
	Response     string        `json:"response"`
	Confidence   float64       `json:"confidence"`
	Category     string        `json:"category"`
	CreatedAt    time.Time     `json:"created_at"`
	LastAccessed time.Time     `json:"last_accessed"`
	HitCount     int64         `json:"hit_count"`
	TTL          time.Duration `json:"ttl"`
}

// Expired reports whether the entry is past its TTL at the given time.
func (e *CacheEntry) Expired(now time.Time) bool {
	return now.Sub(e.CreatedAt) > e.TTL
}

// Stale reports whether the entry has not been accessed for TTL/2.
func (e *CacheEntry) Stale(now time.Time) bool {
	return now.Sub(e.LastAccessed) > e.TTL/2
}

// Response categories used for cache TTL scaling.
const (
	CategoryLegal        = "legal"
	CategoryConstruction = "construction"
	CategoryZoning       = "zoning"
	CategoryGeneral      = "general"
	CategoryAnalysis     = "analysis"
	CategoryCalculation  = "calculation"
)
