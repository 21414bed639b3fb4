package service

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"time"

	"leasebot/internal/model"

	gocache "github.com/patrickmn/go-cache"
)

// ResponseCache memoizes generator replies keyed by prompt and recent
// history, so repeated identical turns skip the LLM round trip. Entries
// expire after the configured TTL; eviction runs on the cache's own sweeper.
type ResponseCache struct {
	store *gocache.Cache
}

// NewResponseCache creates a cache with the given entry lifetime.
func NewResponseCache(ttl time.Duration) *ResponseCache {
	return &ResponseCache{store: gocache.New(ttl, 2*ttl)}
}

// Get returns the cached reply for the key, if any.
func (c *ResponseCache) Get(key string) (string, bool) {
	if c == nil {
		return "", false
	}
	if v, found := c.store.Get(key); found {
		if reply, ok := v.(string); ok {
			return reply, true
		}
	}
	return "", false
}

// Set stores a reply under the key with the default TTL.
func (c *ResponseCache) Set(key, reply string) {
	if c == nil {
		return
	}
	c.store.SetDefault(key, reply)
}

// CacheKey hashes the sanitized prompt and the tail of the history. Only the
// last five turns participate so the key stays stable across long sessions
// with an identical recent exchange.
func CacheKey(prompt string, history []model.ChatMessage) string {
	h := fnv.New64a()
	fmt.Fprint(h, truncate(prompt, 100))
	start := 0
	if len(history) > 5 {
		start = len(history) - 5
	}
	for _, msg := range history[start:] {
		fmt.Fprintf(h, "|%s:%s", msg.Role, truncate(msg.Content, 50))
	}
	return strconv.FormatUint(h.Sum64(), 16)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
