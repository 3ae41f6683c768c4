package server

import (
	"container/list"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	rateLimiterIdleWindow      = 5 * time.Minute
	rateLimiterCleanupInterval = time.Minute
	defaultRateLimiterEntries  = 10000
)

// RateLimiter enforces a per client IP token bucket. At most maxEntries IPs are
// tracked; the least recently seen IP is evicted to make room for a new one.
// Idle IPs are swept by a background goroutine until Stop is called.
type RateLimiter struct {
	limit      rate.Limit
	burst      int
	window     time.Duration
	maxEntries int
	mu         sync.Mutex
	clients    map[string]*list.Element // ip -> element holding *clientLimiter
	lru        *list.List               // front is most recently seen
	nowTime    func() time.Time
	stop       chan struct{}
	stopOnce   sync.Once
}

type clientLimiter struct {
	key      string
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows requestsPerSecond sustained requests per IP with bursts of up to burst.
func NewRateLimiter(requestsPerSecond, burst int) *RateLimiter {
	rl := newRateLimiter(requestsPerSecond, burst, defaultRateLimiterEntries)
	go rl.cleanupLoop(rateLimiterCleanupInterval)
	return rl
}

func newRateLimiter(requestsPerSecond, burst, maxEntries int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limit:      rate.Limit(requestsPerSecond),
		burst:      burst,
		window:     rateLimiterIdleWindow,
		maxEntries: maxEntries,
		clients:    make(map[string]*list.Element),
		lru:        list.New(),
		nowTime:    time.Now,
		stop:       make(chan struct{}),
	}
}

// Allow reports whether a request from key may proceed now.
func (rl *RateLimiter) Allow(key string) bool {
	now := rl.nowTime()
	return rl.getLimiter(key, now).AllowN(now, 1)
}

func (rl *RateLimiter) getLimiter(key string, now time.Time) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if elem, ok := rl.clients[key]; ok {
		rl.lru.MoveToFront(elem)
		entry := elem.Value.(*clientLimiter)
		entry.lastSeen = now
		return entry.limiter
	}

	if rl.maxEntries > 0 && len(rl.clients) >= rl.maxEntries {
		rl.evictOldestLocked()
	}

	entry := &clientLimiter{key: key, limiter: rate.NewLimiter(rl.limit, rl.burst), lastSeen: now}
	rl.clients[key] = rl.lru.PushFront(entry)
	return entry.limiter
}

func (rl *RateLimiter) evictOldestLocked() {
	if elem := rl.lru.Back(); elem != nil {
		delete(rl.clients, elem.Value.(*clientLimiter).key)
		rl.lru.Remove(elem)
	}
}

// Cleanup removes IPs not seen within the idle window. The LRU list is ordered
// by last use, so the sweep stops at the first entry that is still active.
func (rl *RateLimiter) Cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.nowTime()
	removed := 0
	for elem := rl.lru.Back(); elem != nil; elem = rl.lru.Back() {
		entry := elem.Value.(*clientLimiter)
		if now.Sub(entry.lastSeen) <= rl.window {
			break
		}
		delete(rl.clients, entry.key)
		rl.lru.Remove(elem)
		removed++
	}
	if removed > 0 {
		log.Debug().Int("removed", removed).Int("remaining", len(rl.clients)).Msg("rate limiter cleanup")
	}
}

func (rl *RateLimiter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.Cleanup()
		case <-rl.stop:
			return
		}
	}
}

// Stop ends the background cleanup. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// Len returns the number of tracked IPs.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

// clientIP is the remote address of the connection; forwarding headers are not trusted.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
