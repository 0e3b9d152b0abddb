package cache

import (
	"encoding/json"
	"time"

	"github.com/eualt/trustscore/internal/model"
)

// ResultStore keeps marshalled trust results in a Cache
type ResultStore struct {
	cache Cache
	ttl   time.Duration
}

// NewResultStore wraps c; a zero ttl uses each layer's default
func NewResultStore(c Cache, ttl time.Duration) *ResultStore {
	return &ResultStore{cache: c, ttl: ttl}
}

// Get returns the cached result for key. Undecodable entries count as misses.
func (s *ResultStore) Get(key string) (model.TrustResult, bool) {
	data, found := s.cache.Get(key)
	if !found {
		return model.TrustResult{}, false
	}

	var res model.TrustResult
	if err := json.Unmarshal(data, &res); err != nil {
		_ = s.cache.Delete(key)
		return model.TrustResult{}, false
	}
	return res, true
}

// Put stores res under key
func (s *ResultStore) Put(key string, res model.TrustResult) error {
	data, err := json.Marshal(res)
	if err != nil {
		return err
	}
	return s.cache.Set(key, data, s.ttl)
}
