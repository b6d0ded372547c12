package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type keyedLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Keyed is a per-key token-bucket limiter with automatic stale-entry cleanup.
// Each key starts with a full bucket of `attempts` tokens which refills evenly
// over `window`, so a client that burns all attempts is blocked until the
// window has rolled past. Allow is safe for concurrent use; counts are never
// lost between in-flight requests.
type Keyed struct {
	mu       sync.Mutex
	limiters map[string]*keyedLimiter
	r        rate.Limit
	burst    int
}

// NewKeyed creates a limiter allowing `attempts` events per `window` per key.
func NewKeyed(window time.Duration, attempts int) *Keyed {
	k := &Keyed{
		limiters: make(map[string]*keyedLimiter),
		r:        rate.Every(window / time.Duration(attempts)),
		burst:    attempts,
	}
	go k.cleanup(10 * time.Minute)
	return k
}

// NewLimit creates a limiter with an explicit rate and burst per key, for
// callers that think in requests per second rather than attempts per window.
func NewLimit(r rate.Limit, burst int) *Keyed {
	k := &Keyed{
		limiters: make(map[string]*keyedLimiter),
		r:        r,
		burst:    burst,
	}
	go k.cleanup(10 * time.Minute)
	return k
}

// Allow reports whether the given key may proceed, consuming one attempt.
func (k *Keyed) Allow(key string) bool {
	return k.get(key).Allow()
}

func (k *Keyed) get(key string) *rate.Limiter {
	k.mu.Lock()
	defer k.mu.Unlock()
	if v, ok := k.limiters[key]; ok {
		v.lastSeen = time.Now()
		return v.limiter
	}
	l := rate.NewLimiter(k.r, k.burst)
	k.limiters[key] = &keyedLimiter{limiter: l, lastSeen: time.Now()}
	return l
}

// cleanup removes entries idle for longer than maxIdle every 5 minutes.
func (k *Keyed) cleanup(maxIdle time.Duration) {
	for {
		time.Sleep(5 * time.Minute)
		k.mu.Lock()
		for key, v := range k.limiters {
			if time.Since(v.lastSeen) > maxIdle {
				delete(k.limiters, key)
			}
		}
		k.mu.Unlock()
	}
}
