// Package ratelimit implements in-process fixed-window request counting
// keyed by client address.
package ratelimit

import (
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Default limiter values.
const (
	DefaultLimit         = 100
	DefaultWindow        = 15 * time.Minute
	DefaultShards        = 16
	DefaultSweepInterval = 1 * time.Minute
)

// Config configures a Limiter.
type Config struct {
	Limit         int           // maximum requests per window
	Window        time.Duration // window length
	Shards        int           // number of independently locked partitions
	SweepInterval time.Duration // how often expired entries are purged
	Now           func() time.Time
}

// Result is the outcome of a single Allow call.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration // zero when allowed
}

// entry is the window state for one client.
type entry struct {
	count   int
	resetAt time.Time
}

type shard struct {
	mu        sync.Mutex
	entries   map[string]*entry
	lastSweep time.Time
}

// Limiter counts requests per key in fixed windows. A window starts with a
// key's first request and fully resets once it has elapsed.
//
// Keys are spread over shards so concurrent clients rarely contend on the
// same lock; each read-increment-compare runs under its shard's mutex.
// Expired entries are purged from the touched shard at most once per sweep
// interval, and from every shard by a background janitor.
type Limiter struct {
	limit         int
	window        time.Duration
	sweepInterval time.Duration
	shards        []*shard
	now           func() time.Time

	stopOnce  sync.Once
	stopCh    chan struct{}
	stoppedCh chan struct{}
}

// New creates a Limiter and starts its janitor goroutine.
// Stop must be called when the limiter is no longer needed.
func New(cfg Config) *Limiter {
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultLimit
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.Shards <= 0 {
		cfg.Shards = DefaultShards
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DefaultSweepInterval
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	l := &Limiter{
		limit:         cfg.Limit,
		window:        cfg.Window,
		sweepInterval: cfg.SweepInterval,
		shards:        make([]*shard, cfg.Shards),
		now:           cfg.Now,
		stopCh:        make(chan struct{}),
		stoppedCh:     make(chan struct{}),
	}
	for i := range l.shards {
		l.shards[i] = &shard{entries: make(map[string]*entry)}
	}

	go l.janitor()

	return l
}

// Limit returns the maximum number of requests per window.
func (l *Limiter) Limit() int {
	return l.limit
}

// Window returns the window length.
func (l *Limiter) Window() time.Duration {
	return l.window
}

// Allow records a request for key and reports whether it is admitted.
// A rejected request does not change the stored count.
func (l *Limiter) Allow(key string) Result {
	now := l.now()
	s := l.shardFor(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	if now.Sub(s.lastSweep) >= l.sweepInterval {
		s.sweepLocked(now)
	}

	e, ok := s.entries[key]
	if !ok || !now.Before(e.resetAt) {
		e = &entry{count: 1, resetAt: now.Add(l.window)}
		s.entries[key] = e
		return Result{
			Allowed:   true,
			Limit:     l.limit,
			Remaining: l.limit - 1,
			ResetAt:   e.resetAt,
		}
	}

	if e.count >= l.limit {
		return Result{
			Allowed:    false,
			Limit:      l.limit,
			Remaining:  0,
			ResetAt:    e.resetAt,
			RetryAfter: e.resetAt.Sub(now),
		}
	}

	e.count++
	return Result{
		Allowed:   true,
		Limit:     l.limit,
		Remaining: l.limit - e.count,
		ResetAt:   e.resetAt,
	}
}

// Len returns the number of tracked keys, expired or not.
func (l *Limiter) Len() int {
	n := 0
	for _, s := range l.shards {
		s.mu.Lock()
		n += len(s.entries)
		s.mu.Unlock()
	}
	return n
}

// Sweep removes expired entries from every shard and returns how many
// were removed.
func (l *Limiter) Sweep() int {
	now := l.now()
	removed := 0
	for _, s := range l.shards {
		s.mu.Lock()
		removed += s.sweepLocked(now)
		s.mu.Unlock()
	}
	return removed
}

// Stop stops the janitor goroutine. It is safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() {
		close(l.stopCh)
	})
	<-l.stoppedCh
}

func (l *Limiter) shardFor(key string) *shard {
	return l.shards[xxhash.Sum64String(key)%uint64(len(l.shards))]
}

// janitor periodically sweeps all shards.
func (l *Limiter) janitor() {
	ticker := time.NewTicker(l.sweepInterval)
	defer ticker.Stop()
	defer close(l.stoppedCh)

	for {
		select {
		case <-ticker.C:
			l.Sweep()
		case <-l.stopCh:
			return
		}
	}
}

// sweepLocked deletes entries whose window has ended. Caller holds s.mu.
func (s *shard) sweepLocked(now time.Time) int {
	removed := 0
	for key, e := range s.entries {
		if !now.Before(e.resetAt) {
			delete(s.entries, key)
			removed++
		}
	}
	s.lastSweep = now
	return removed
}
