package session

import (
	"encoding/json"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"tripwise/models"
	"tripwise/services/ledger"
)

// Store holds the per-process conversation state shared by the
// orchestrator and handlers: the travel-API response cache, the call
// ledger, and the latest classified result sets. It replaces what would
// otherwise be package-level mutable globals with one injected owner.
type Store struct {
	responses *gocache.Cache
	Ledger    *ledger.Ledger

	mu      sync.RWMutex
	results map[models.ResultCategory]models.ClassifiedResults
}

// NewStore builds a session store. A zero ttl keeps cached responses
// for the process lifetime, matching the historical behavior; a
// positive ttl bounds the known growth risk.
func NewStore(ttl time.Duration, ledgerCapacity int) *Store {
	expiration := gocache.NoExpiration
	cleanup := time.Duration(0)
	if ttl > 0 {
		expiration = ttl
		cleanup = 10 * time.Minute
	}
	return &Store{
		responses: gocache.New(expiration, cleanup),
		Ledger:    ledger.New(ledgerCapacity),
		results:   make(map[models.ResultCategory]models.ClassifiedResults),
	}
}

// CacheKey derives the canonical cache key for a tool invocation.
// json.Marshal emits map keys in sorted order, so equal argument sets
// always produce the same key regardless of their original ordering.
func CacheKey(functionName string, args map[string]any) string {
	encoded, err := json.Marshal(args)
	if err != nil {
		return functionName + ":{}"
	}
	return functionName + ":" + string(encoded)
}

// CachedResponse looks up a previously stored travel-API response.
func (s *Store) CachedResponse(key string) (json.RawMessage, bool) {
	v, ok := s.responses.Get(key)
	if !ok {
		return nil, false
	}
	raw, ok := v.(json.RawMessage)
	return raw, ok
}

// CacheResponse stores a successful travel-API response. Errors must
// never be cached; callers only store provider successes.
func (s *Store) CacheResponse(key string, response json.RawMessage) {
	s.responses.SetDefault(key, response)
}

// SetResults replaces the held result set for the given category.
func (s *Store) SetResults(results models.ClassifiedResults) {
	s.mu.Lock()
	s.results[results.Category] = results
	s.mu.Unlock()
}

// Results returns a copy of the current classified result sets.
func (s *Store) Results() map[models.ResultCategory]models.ClassifiedResults {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[models.ResultCategory]models.ClassifiedResults, len(s.results))
	for k, v := range s.results {
		out[k] = v
	}
	return out
}
