package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/techpostia/techpost/internal/models"
)

type SuggestionCache interface {
	Get(ctx context.Context, username string) ([]models.RepoSuggestion, bool)
	Put(ctx context.Context, username string, suggestions []models.RepoSuggestion) error
	Invalidate(ctx context.Context, username string)
}

// Clock lets tests move time forward.
type Clock func() time.Time

type entry struct {
	suggestions []models.RepoSuggestion
	storedAt    time.Time
}

type InMemorySuggestionCache struct {
	mu    sync.RWMutex
	cache map[string]entry
	ttl   time.Duration
	now   Clock
}

func NewInMemorySuggestionCache(ttl time.Duration, now Clock) *InMemorySuggestionCache {
	if now == nil {
		now = time.Now
	}
	return &InMemorySuggestionCache{
		cache: make(map[string]entry),
		ttl:   ttl,
		now:   now,
	}
}

func Key(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func (c *InMemorySuggestionCache) Get(ctx context.Context, username string) ([]models.RepoSuggestion, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.cache[Key(username)]
	if !ok || c.expired(e) {
		return nil, false
	}
	return cloneSuggestions(e.suggestions), true
}

func (c *InMemorySuggestionCache) Put(ctx context.Context, username string, suggestions []models.RepoSuggestion) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache[Key(username)] = entry{
		suggestions: cloneSuggestions(suggestions),
		storedAt:    c.now(),
	}
	return nil
}

func (c *InMemorySuggestionCache) Invalidate(ctx context.Context, username string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.cache, Key(username))
}

// Purge drops expired entries and returns how many were removed.
func (c *InMemorySuggestionCache) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for k, e := range c.cache {
		if c.expired(e) {
			delete(c.cache, k)
			removed++
		}
	}
	return removed
}

func (c *InMemorySuggestionCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

func (c *InMemorySuggestionCache) expired(e entry) bool {
	return c.now().Sub(e.storedAt) >= c.ttl
}

func cloneSuggestions(in []models.RepoSuggestion) []models.RepoSuggestion {
	out := make([]models.RepoSuggestion, len(in))
	for i, s := range in {
		out[i] = models.RepoSuggestion{
			RepoName: s.RepoName,
			Ideas:    append([]models.Idea(nil), s.Ideas...),
		}
	}
	return out
}
