package ratelimit

import (
	"sync"
	"time"
)

// Bucket is a token-bucket limiter. Capacity tokens refill at Rate per second.
type Bucket struct {
	mu       sync.Mutex
	tokens   float64
	capacity float64
	rate     float64
	last     time.Time
}

func NewBucket(capacity, rate float64) *Bucket {
	return &Bucket{tokens: capacity, capacity: capacity, rate: rate, last: time.Now()}
}

// Allow consumes one token if available.
func (b *Bucket) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	b.tokens += now.Sub(b.last).Seconds() * b.rate
	if b.tokens > b.capacity {
		b.tokens = b.capacity
	}
	b.last = now

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// PerClient keeps one Bucket per client key (remote IP or session id),
// pruning buckets idle longer than the prune window.
type PerClient struct {
	mu       sync.Mutex
	buckets  map[string]*clientBucket
	capacity float64
	rate     float64
	pruneAge time.Duration
}

type clientBucket struct {
	bucket   *Bucket
	lastSeen time.Time
}

func NewPerClient(capacity, rate float64) *PerClient {
	return &PerClient{
		buckets:  make(map[string]*clientBucket),
		capacity: capacity,
		rate:     rate,
		pruneAge: 10 * time.Minute,
	}
}

// Allow consumes a token from the key's bucket, creating it on first use.
func (p *PerClient) Allow(key string) bool {
	p.mu.Lock()
	cb, ok := p.buckets[key]
	if !ok {
		cb = &clientBucket{bucket: NewBucket(p.capacity, p.rate)}
		p.buckets[key] = cb
		if len(p.buckets)%256 == 0 {
			p.pruneLocked()
		}
	}
	cb.lastSeen = time.Now()
	p.mu.Unlock()

	return cb.bucket.Allow()
}

func (p *PerClient) pruneLocked() {
	cutoff := time.Now().Add(-p.pruneAge)
	for k, cb := range p.buckets {
		if cb.lastSeen.Before(cutoff) {
			delete(p.buckets, k)
		}
	}
}
