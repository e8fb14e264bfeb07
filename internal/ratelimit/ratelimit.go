// Package ratelimit spaces out requests per key, one token bucket per key.
package ratelimit

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type KeyedLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// New allows one request per interval for each key. A non-positive
// interval disables limiting.
func New(interval time.Duration) *KeyedLimiter {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &KeyedLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    limit,
		burst:    1,
	}
}

func (k *KeyedLimiter) Wait(ctx context.Context, key string) error {
	return k.limiter(key).Wait(ctx)
}

func (k *KeyedLimiter) Allow(key string) bool {
	return k.limiter(key).Allow()
}

func (k *KeyedLimiter) limiter(key string) *rate.Limiter {
	k.mu.Lock()
	defer k.mu.Unlock()

	limiter, ok := k.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(k.limit, k.burst)
		k.limiters[key] = limiter
	}
	return limiter
}

// HostKey keys a URL by its lowercased host. Unparseable input is its own key.
func HostKey(rawURL string) string {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || parsed.Hostname() == "" {
		return rawURL
	}
	return strings.ToLower(parsed.Hostname())
}
