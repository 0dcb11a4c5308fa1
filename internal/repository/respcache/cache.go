// Package respcache implements the adaptive response cache: a bounded
// in-process tier backed by a persistent store, with confidence-gated
// admission, dynamic TTL and hybrid LRU/LFU eviction.
package respcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cidade-aberta/urbanq/internal/db"
	"github.com/cidade-aberta/urbanq/internal/domain"
	"github.com/cidade-aberta/urbanq/internal/metrics"
)

// Store is the persistent cache tier.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Config holds cache tuning parameters.
type Config struct {
	MaxMemoryEntries int
	BaseTTL          time.Duration
	MinConfidence    float64
	PromoteThreshold float64
	MinResponseLen   int
	SweepInterval    time.Duration
	KeyPrefix        string
}

// evictShare is the fraction of entries dropped under capacity pressure.
const evictShare = 0.1

// categoryTTLMultipliers scale TTL by content volatility: stable legal
// and zoning text lives longer than computed output.
var categoryTTLMultipliers = map[string]float64{
	domain.CategoryLegal:        2.0,
	domain.CategoryConstruction: 1.5,
	domain.CategoryZoning:       1.5,
	domain.CategoryGeneral:      1.0,
	domain.CategoryAnalysis:     0.8,
	domain.CategoryCalculation:  0.5,
}

// nonAnswerMarkers reject known non-answer templates from admission.
var nonAnswerMarkers = []string{
	"versão beta",
	"não consigo",
	"não foi possível encontrar",
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Hits          int64
	Misses        int64
	MemoryEntries int
	AvgGetMillis  float64
}

// Cache is the two-tier adaptive response cache. Safe for concurrent use.
type Cache struct {
	store  Store
	cfg    Config
	logger *zap.Logger

	mu      sync.RWMutex
	entries map[string]*domain.CacheEntry

	statsMu sync.Mutex
	hits    int64
	misses  int64
	avgMs   float64

	stop chan struct{}
	once sync.Once

	now func() time.Time
}

// New creates a cache. store may be nil for a memory-only cache.
func New(store Store, cfg Config, logger *zap.Logger) *Cache {
	if cfg.MaxMemoryEntries <= 0 {
		cfg.MaxMemoryEntries = 200
	}
	if cfg.BaseTTL <= 0 {
		cfg.BaseTTL = 30 * time.Minute
	}
	if cfg.MinConfidence <= 0 {
		cfg.MinConfidence = 0.6
	}
	if cfg.PromoteThreshold <= 0 {
		cfg.PromoteThreshold = 0.8
	}
	if cfg.MinResponseLen <= 0 {
		cfg.MinResponseLen = 50
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "urbanq:respcache:"
	}
	return &Cache{
		store:   store,
		cfg:     cfg,
		logger:  logger,
		entries: make(map[string]*domain.CacheEntry),
		stop:    make(chan struct{}),
		now:     time.Now,
	}
}

// StartSweeper launches the periodic expiry sweep. No-op when the
// configured interval is zero.
func (c *Cache) StartSweeper() {
	if c.cfg.SweepInterval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(c.cfg.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-c.stop:
				return
			case <-ticker.C:
				removed := c.sweep()
				if removed > 0 {
					c.logger.Debug("cache sweep", zap.Int("removed", removed))
				}
			}
		}
	}()
}

// Stop terminates the sweep goroutine.
func (c *Cache) Stop() {
	c.once.Do(func() { close(c.stop) })
}

// Key derives the cache key from the normalized query and its context.
func (c *Cache) Key(query string, reqCtx map[string]string) string {
	h := sha256.New()
	h.Write([]byte(normalizeQuery(query)))
	h.Write([]byte{0})
	h.Write([]byte(canonicalContext(reqCtx)))
	return c.cfg.KeyPrefix + hex.EncodeToString(h.Sum(nil))
}

// Get looks up a cached response: in-process tier first, then the
// persistent store. A persistent hit is TTL-validated, touched and
// promoted into memory when confident enough.
func (c *Cache) Get(ctx context.Context, query string, reqCtx map[string]string) (*domain.CacheEntry, bool) {
	start := c.now()
	key := c.Key(query, reqCtx)

	if entry, ok := c.getMemory(key); ok {
		metrics.CacheTotal.WithLabelValues("memory", "hit").Inc()
		c.recordGet(start, true)
		return entry, true
	}
	metrics.CacheTotal.WithLabelValues("memory", "miss").Inc()

	if c.store == nil {
		c.recordGet(start, false)
		return nil, false
	}

	entry, ok := c.getPersistent(ctx, key)
	if !ok {
		metrics.CacheTotal.WithLabelValues("persistent", "miss").Inc()
		c.recordGet(start, false)
		return nil, false
	}
	metrics.CacheTotal.WithLabelValues("persistent", "hit").Inc()

	if entry.Confidence >= c.cfg.PromoteThreshold {
		c.putMemory(entry)
	}
	c.recordGet(start, true)
	return entry, true
}

// Set admits a response into both tiers. Low-confidence responses,
// known non-answers and too-short responses are rejected with
// domain.ErrCacheRejected.
func (c *Cache) Set(
	ctx context.Context, query, response string,
	confidence float64, category string, reqCtx map[string]string,
) error {
	if confidence < c.cfg.MinConfidence {
		return fmt.Errorf("confidence %.2f below %.2f: %w",
			confidence, c.cfg.MinConfidence, domain.ErrCacheRejected)
	}
	if len(response) < c.cfg.MinResponseLen {
		return fmt.Errorf("response too short: %w", domain.ErrCacheRejected)
	}
	lower := strings.ToLower(response)
	for _, marker := range nonAnswerMarkers {
		if strings.Contains(lower, marker) {
			return fmt.Errorf("non-answer response: %w", domain.ErrCacheRejected)
		}
	}

	now := c.now()
	entry := &domain.CacheEntry{
		Key:          c.Key(query, reqCtx),
		Query:        query,
		Response:     response,
		Confidence:   confidence,
		Category:     category,
		CreatedAt:    now,
		LastAccessed: now,
		TTL:          c.dynamicTTL(confidence, category),
	}

	c.putMemory(entry)

	if c.store != nil {
		data, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("marshal cache entry: %w", err)
		}
		if err := c.store.SetWithTTL(ctx, entry.Key, data, entry.TTL); err != nil {
			// Persistence is best-effort; the memory tier already holds the entry.
			c.logger.Warn("cache persist failed", zap.Error(err))
		}
	}
	return nil
}

// InvalidateKey removes one entry from both tiers.
func (c *Cache) InvalidateKey(ctx context.Context, query string, reqCtx map[string]string) {
	key := c.Key(query, reqCtx)
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()

	if c.store != nil {
		if err := c.store.Del(ctx, key); err != nil {
			c.logger.Warn("cache invalidate failed", zap.String("key", key), zap.Error(err))
		}
	}
}

// InvalidatePattern removes entries whose stored query contains the
// given substring (case-insensitive).
func (c *Cache) InvalidatePattern(ctx context.Context, substr string) int {
	needle := strings.ToLower(substr)
	removed := c.removeMemoryWhere(func(e *domain.CacheEntry) bool {
		return strings.Contains(strings.ToLower(e.Query), needle)
	})
	removed += c.removePersistentWhere(ctx, func(e *domain.CacheEntry) bool {
		return strings.Contains(strings.ToLower(e.Query), needle)
	})
	return removed
}

// InvalidateCategory removes all entries of one category.
func (c *Cache) InvalidateCategory(ctx context.Context, category string) int {
	removed := c.removeMemoryWhere(func(e *domain.CacheEntry) bool {
		return e.Category == category
	})
	removed += c.removePersistentWhere(ctx, func(e *domain.CacheEntry) bool {
		return e.Category == category
	})
	return removed
}

// Snapshot returns current counters.
func (c *Cache) Snapshot() Stats {
	c.mu.RLock()
	n := len(c.entries)
	c.mu.RUnlock()

	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	return Stats{
		Hits:          c.hits,
		Misses:        c.misses,
		MemoryEntries: n,
		AvgGetMillis:  c.avgMs,
	}
}

func (c *Cache) getMemory(key string) (*domain.CacheEntry, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	now := c.now()
	if entry.Expired(now) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}

	c.mu.Lock()
	entry.HitCount++
	entry.LastAccessed = now
	copied := *entry
	c.mu.Unlock()
	return &copied, true
}

func (c *Cache) getPersistent(ctx context.Context, key string) (*domain.CacheEntry, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("cache store read failed", zap.Error(err))
		}
		return nil, false
	}

	var entry domain.CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		c.logger.Warn("corrupt cache entry dropped", zap.String("key", key), zap.Error(err))
		_ = c.store.Del(ctx, key)
		return nil, false
	}

	now := c.now()
	if entry.Expired(now) {
		_ = c.store.Del(ctx, key)
		return nil, false
	}

	entry.HitCount++
	entry.LastAccessed = now
	if remaining := entry.TTL - now.Sub(entry.CreatedAt); remaining > 0 {
		if data, err := json.Marshal(&entry); err == nil {
			if err := c.store.SetWithTTL(ctx, key, data, remaining); err != nil {
				c.logger.Warn("cache touch failed", zap.Error(err))
			}
		}
	}
	return &entry, true
}

func (c *Cache) putMemory(entry *domain.CacheEntry) {
	c.mu.Lock()
	c.entries[entry.Key] = entry
	over := len(c.entries) > c.cfg.MaxMemoryEntries
	c.mu.Unlock()

	if over {
		c.evict()
	}
}

// evict drops the bottom share of entries ranked by a blended score:
// 70% normalized hit count, 30% normalized recency.
func (c *Cache) evict() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) <= c.cfg.MaxMemoryEntries {
		return
	}

	type ranked struct {
		key   string
		score float64
	}

	var maxHits int64 = 1
	oldest, newest := c.entries[firstKey(c.entries)].LastAccessed, time.Time{}
	for _, e := range c.entries {
		if e.HitCount > maxHits {
			maxHits = e.HitCount
		}
		if e.LastAccessed.Before(oldest) {
			oldest = e.LastAccessed
		}
		if e.LastAccessed.After(newest) {
			newest = e.LastAccessed
		}
	}
	window := newest.Sub(oldest)

	rankedEntries := make([]ranked, 0, len(c.entries))
	for k, e := range c.entries {
		hitScore := float64(e.HitCount) / float64(maxHits)
		recency := 1.0
		if window > 0 {
			recency = float64(e.LastAccessed.Sub(oldest)) / float64(window)
		}
		rankedEntries = append(rankedEntries, ranked{key: k, score: 0.7*hitScore + 0.3*recency})
	}
	sort.Slice(rankedEntries, func(i, j int) bool {
		return rankedEntries[i].score < rankedEntries[j].score
	})

	toEvict := int(float64(len(rankedEntries)) * evictShare)
	if toEvict < 1 {
		toEvict = 1
	}
	for _, r := range rankedEntries[:toEvict] {
		delete(c.entries, r.key)
		metrics.CacheEvictionsTotal.Inc()
	}
}

// sweep purges entries past TTL or unaccessed for TTL/2, operating on a
// snapshot of keys to keep the lock window small.
func (c *Cache) sweep() int {
	now := c.now()

	c.mu.RLock()
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	c.mu.RUnlock()

	removed := 0
	for _, k := range keys {
		c.mu.Lock()
		if e, ok := c.entries[k]; ok && (e.Expired(now) || e.Stale(now)) {
			delete(c.entries, k)
			removed++
		}
		c.mu.Unlock()
	}
	return removed
}

func (c *Cache) dynamicTTL(confidence float64, category string) time.Duration {
	ttl := float64(c.cfg.BaseTTL)
	switch {
	case confidence >= 0.9:
		ttl *= 2.0
	case confidence >= 0.8:
		ttl *= 1.5
	}
	if mult, ok := categoryTTLMultipliers[category]; ok {
		ttl *= mult
	}
	return time.Duration(ttl)
}

func (c *Cache) removeMemoryWhere(match func(*domain.CacheEntry) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for k, e := range c.entries {
		if match(e) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

func (c *Cache) removePersistentWhere(ctx context.Context, match func(*domain.CacheEntry) bool) int {
	if c.store == nil {
		return 0
	}
	keys, err := c.store.Scan(ctx, c.cfg.KeyPrefix+"*")
	if err != nil {
		c.logger.Warn("cache scan failed", zap.Error(err))
		return 0
	}
	removed := 0
	for _, k := range keys {
		data, err := c.store.Get(ctx, k)
		if err != nil {
			continue
		}
		var entry domain.CacheEntry
		if err := json.Unmarshal(data, &entry); err != nil {
			continue
		}
		if match(&entry) {
			if err := c.store.Del(ctx, k); err == nil {
				removed++
			}
		}
	}
	return removed
}

// recordGet updates hit/miss counters and the EMA get latency (alpha 0.1).
func (c *Cache) recordGet(start time.Time, hit bool) {
	elapsed := float64(c.now().Sub(start).Microseconds()) / 1000.0

	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	if hit {
		c.hits++
	} else {
		c.misses++
	}
	if c.avgMs == 0 {
		c.avgMs = elapsed
		return
	}
	c.avgMs = c.avgMs*0.9 + elapsed*0.1
}

func normalizeQuery(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}

// canonicalContext renders the request context deterministically,
// sorted by key.
func canonicalContext(reqCtx map[string]string) string {
	if len(reqCtx) == 0 {
		return ""
	}
	keys := make([]string, 0, len(reqCtx))
	for k := range reqCtx {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(reqCtx[k])
		b.WriteByte(';')
	}
	return b.String()
}

func firstKey(m map[string]*domain.CacheEntry) string {
	for k := range m {
		return k
	}
	return ""
}
