package gateway

import (
	"context"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/patrickmn/go-cache"
)

const bodyKeyPrefix = "rebento:body:"

// BodyCache keeps fetched documents keyed by content address. Addresses
// are immutable so entries never need invalidation. The memcached tier is
// optional.
type BodyCache struct {
	local  *cache.Cache
	shared *memcache.Client
}

func NewBodyCache(mc *memcache.Client) *BodyCache {
	return &BodyCache{
		local:  cache.New(30*time.Minute, 60*time.Minute),
		shared: mc,
	}
}

func (c *BodyCache) Get(ctx context.Context, address string) (string, bool) {
	if c == nil {
		return "", false
	}
	if x, found := c.local.Get(address); found {
		return x.(string), true
	}
	if c.shared == nil {
		return "", false
	}
	item, err := c.shared.Get(bodyKeyPrefix + address)
	if err != nil {
		return "", false
	}
	body := string(item.Value)
	c.local.Set(address, body, cache.DefaultExpiration)
	return body, true
}

func (c *BodyCache) Set(ctx context.Context, address, body string) {
	if c == nil {
		return
	}
	c.local.Set(address, body, cache.DefaultExpiration)
	if c.shared == nil {
		return
	}
	// memcached rejects keys over 250 bytes; content addresses are far shorter.
	_ = c.shared.Set(&memcache.Item{
		Key:        bodyKeyPrefix + address,
		Value:      []byte(body),
		Expiration: int32((24 * time.Hour).Seconds()),
	})
}
