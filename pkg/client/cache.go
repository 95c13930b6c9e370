package client

import (
	"encoding/json"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// FetchPolicy controls how a query interacts with the cache.
type FetchPolicy int

const (
	// CacheFirst answers from the cache when possible and fills it otherwise.
	CacheFirst FetchPolicy = iota
	// NetworkOnly always hits the network but still refreshes the cache.
	NetworkOnly
	// NoCache bypasses the cache entirely.
	NoCache
)

type queryCache struct {
	lru *expirable.LRU[string, json.RawMessage]
}

func newQueryCache(size int, ttl time.Duration) *queryCache {
	if size <= 0 {
		size = 128
	}
	return &queryCache{lru: expirable.NewLRU[string, json.RawMessage](size, nil, ttl)}
}

func (q *queryCache) get(key string) (json.RawMessage, bool) {
	return q.lru.Get(key)
}

func (q *queryCache) add(key string, raw json.RawMessage) {
	q.lru.Add(key, raw)
}

func (q *queryCache) purge() {
	q.lru.Purge()
}

// cacheKey identifies a query by operation name and encoded variables.
// encoding/json sorts map keys, so equal variables give equal keys.
func cacheKey(doc Document, vars any) (string, error) {
	b, err := json.Marshal(vars)
	if err != nil {
		return "", err
	}
	return doc.Name + ":" + string(b), nil
}
