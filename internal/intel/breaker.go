package intel

import (
	"sync"
	"time"
)

// sourceBreaker keeps the router from probing a dead indexed source on
// every query. After threshold consecutive retryable failures the
// primary path is skipped for a cooldown window; a single success
// closes it again. Fallback semantics are unchanged either way.
type sourceBreaker struct {
	mu        sync.Mutex
	threshold int
	cooldown  time.Duration

	fails     int
	openUntil time.Time
}

func newSourceBreaker(threshold int, cooldown time.Duration) *sourceBreaker {
	if threshold <= 0 {
		threshold = 3
	}
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	return &sourceBreaker{threshold: threshold, cooldown: cooldown}
}

// allow reports whether the primary path should be attempted.
func (b *sourceBreaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return time.Now().After(b.openUntil)
}

func (b *sourceBreaker) success() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fails = 0
	b.openUntil = time.Time{}
}

func (b *sourceBreaker) failure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fails++
	if b.fails >= b.threshold {
		b.openUntil = time.Now().Add(b.cooldown)
		b.fails = 0
	}
}
