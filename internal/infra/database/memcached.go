package database

import (
	"strings"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
)

// NewMemcached connects to a comma separated server list. It returns nil
// when no server is configured, which callers treat as a disabled tier.
func NewMemcached(servers string) *memcache.Client {
	var list []string
	for _, s := range strings.Split(servers, ",") {
		if s = strings.TrimSpace(s); s != "" {
			list = append(list, s)
		}
	}
	if len(list) == 0 {
		return nil
	}

	mc := memcache.New(list...)
	mc.Timeout = 300 * time.Millisecond
	mc.MaxIdleConns = 8
	return mc
}
