// Package throttle implements per-method bandwidth admission control: a
// classic token bucket keyed by method name, refilled lazily on each
// admission check. It is hand-rolled rather than built on
// golang.org/x/time/rate (wired elsewhere in this module, see DESIGN.md)
// because the bucket here tracks bytes with an inspectable capacity and
// level snapshot — x/time/rate only exposes an event-interval limiter, not
// a byte-capacity bucket a caller can read back via getThrottleState.
package throttle

import (
	"sync"
	"time"
)

// Bucket is a single token bucket bound to one method. Capacity and
// DrainRate are immutable once constructed; level and lastRefillAt are the
// only mutable fields, and they are only ever touched under Manager's lock.
type Bucket struct {
	Capacity     int
	DrainRate    float64 // bytes per second
	level        float64
	lastRefillAt time.Time
}

func newBucket(capacity int, drainRate float64, now time.Time) *Bucket {
	return &Bucket{
		Capacity:     capacity,
		DrainRate:    drainRate,
		level:        0,
		lastRefillAt: now,
	}
}

// refill tops up the bucket for elapsed time. The level never goes
// negative and never exceeds Capacity.
func (b *Bucket) refill(now time.Time) {
	elapsed := now.Sub(b.lastRefillAt).Seconds()
	if elapsed <= 0 {
		return
	}
	b.level -= elapsed * b.DrainRate
	if b.level < 0 {
		b.level = 0
	}
	b.lastRefillAt = now
}

// tryAdmit refills, then admits n bytes if the resulting level would not
// exceed Capacity.
func (b *Bucket) tryAdmit(n int, now time.Time) bool {
	b.refill(now)
	if b.level+float64(n) > float64(b.Capacity) {
		return false
	}
	b.level += float64(n)
	return true
}

// State is the read-only snapshot returned by Manager.State.
type State struct {
	Capacity int
	Level    int
}

// Manager owns one Bucket per throttled method key. Methods with no
// configured bucket admit unconditionally. A single mutex guards the whole
// map; fine-grained per-bucket locking isn't worth it since no invariant
// spans two buckets.
type Manager struct {
	mu      sync.Mutex
	buckets map[string]*Bucket
	now     func() time.Time
}

// Config is one {capacity, drainRate} pair for a method key, as accepted
// by setBandwidthThrottle.
type Config struct {
	Capacity  int
	DrainRate float64
}

// NewManager creates a throttle manager with the given initial
// configuration. A nil or empty config means every method admits
// unconditionally until SetConfig is called.
func NewManager(initial map[string]Config) *Manager {
	m := &Manager{
		buckets: make(map[string]*Bucket, len(initial)),
		now:     time.Now,
	}
	now := m.now()
	for method, cfg := range initial {
		m.buckets[method] = newBucket(cfg.Capacity, cfg.DrainRate, now)
	}
	return m
}

// TryAdmit attempts to debit n bytes from method's bucket. A method with
// no configured bucket always admits. Returns false when the method is
// throttled and the send must fail with ThrottledError.
func (m *Manager) TryAdmit(method string, n int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.buckets[method]
	if !ok {
		return true
	}
	return b.tryAdmit(n, m.now())
}

// SetConfig atomically replaces the throttle configuration. Buckets for
// unchanged keys retain their current level; buckets for removed keys are
// dropped; new keys start at level 0.
func (m *Manager) SetConfig(config map[string]Config) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	next := make(map[string]*Bucket, len(config))
	for method, cfg := range config {
		if existing, ok := m.buckets[method]; ok && existing.Capacity == cfg.Capacity && existing.DrainRate == cfg.DrainRate {
			next[method] = existing
			continue
		}
		if existing, ok := m.buckets[method]; ok {
			existing.refill(now)
			next[method] = &Bucket{
				Capacity:     cfg.Capacity,
				DrainRate:    cfg.DrainRate,
				level:        minFloat(existing.level, float64(cfg.Capacity)),
				lastRefillAt: now,
			}
			continue
		}
		next[method] = newBucket(cfg.Capacity, cfg.DrainRate, now)
	}
	m.buckets = next
}

// State returns a snapshot of every configured bucket's capacity and
// current level, backing getThrottleState.
func (m *Manager) State() map[string]State {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	out := make(map[string]State, len(m.buckets))
	for method, b := range m.buckets {
		b.refill(now)
		out[method] = State{Capacity: b.Capacity, Level: int(b.level)}
	}
	return out
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
