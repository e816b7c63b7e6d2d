// Package dns resolves remote addresses to hostnames.
package dns

import (
	"context"
	"net"
	"sync"
	"time"
)

// ResolveResult is returned by async resolution.
type ResolveResult struct {
	IP       string
	Hostname string
	Err      error
}

// ResolveAsync performs reverse DNS lookup asynchronously.
// Returns a channel that receives the result.
func ResolveAsync(ctx context.Context, ip string) <-chan ResolveResult {
	ch := make(chan ResolveResult, 1)

	go func() {
		defer close(ch)

		// Set timeout
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()

		names, err := net.DefaultResolver.LookupAddr(ctx, ip)
		if err != nil || len(names) == 0 {
			ch <- ResolveResult{IP: ip, Err: err}
			return
		}

		// Remove trailing dot from hostname
		hostname := names[0]
		if len(hostname) > 0 && hostname[len(hostname)-1] == '.' {
			hostname = hostname[:len(hostname)-1]
		}

		ch <- ResolveResult{IP: ip, Hostname: hostname}
	}()

	return ch
}

// Resolve performs synchronous reverse DNS lookup.
func Resolve(ctx context.Context, ip string) (string, error) {
	result := <-ResolveAsync(ctx, ip)
	return result.Hostname, result.Err
}

// Cache memoizes reverse lookups and resolves misses in the background.
// Failed lookups are cached as empty so an address is only queried once.
type Cache struct {
	resolve func(ctx context.Context, ip string) (string, error)

	mu       sync.Mutex
	entries  map[string]string
	pending  map[string]bool
	inflight sync.WaitGroup
}

// NewCache returns a Cache backed by the system resolver.
func NewCache() *Cache {
	return newCache(Resolve)
}

func newCache(resolve func(ctx context.Context, ip string) (string, error)) *Cache {
	return &Cache{
		resolve: resolve,
		entries: make(map[string]string),
		pending: make(map[string]bool),
	}
}

// Lookup returns the cached hostname for ip. On a miss it starts a
// background lookup and returns "". When that lookup yields a hostname,
// onResolved is called with it from the lookup goroutine.
func (c *Cache) Lookup(ctx context.Context, ip string, onResolved func(hostname string)) string {
	if ip == "" {
		return ""
	}

	c.mu.Lock()
	if host, ok := c.entries[ip]; ok {
		c.mu.Unlock()
		return host
	}
	if c.pending[ip] {
		c.mu.Unlock()
		return ""
	}
	c.pending[ip] = true
	c.inflight.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.inflight.Done()

		host, err := c.resolve(ctx, ip)
		if err != nil {
			host = ""
		}

		c.mu.Lock()
		c.entries[ip] = host
		delete(c.pending, ip)
		c.mu.Unlock()

		if host != "" && onResolved != nil {
			onResolved(host)
		}
	}()

	return ""
}

// Wait blocks until every started lookup has settled or ctx is done.
func (c *Cache) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Len returns the number of settled entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
