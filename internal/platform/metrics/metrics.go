package metrics

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Collector keeps process-local request counters and named event counters.
type Collector struct {
	totalRequests   uint64
	errorRequests   uint64
	rateLimited     uint64
	totalDurationMs uint64

	mu     sync.RWMutex
	events map[string]*uint64
}

func New() *Collector {
	return &Collector{events: map[string]*uint64{}}
}

func (c *Collector) Record(status int, duration time.Duration) {
	atomic.AddUint64(&c.totalRequests, 1)
	if status >= 500 {
		atomic.AddUint64(&c.errorRequests, 1)
	}
	if status == 429 {
		atomic.AddUint64(&c.rateLimited, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

// Count increments the named event counter, e.g. "compensation.set".
func (c *Collector) Count(event string) {
	c.mu.RLock()
	counter, ok := c.events[event]
	c.mu.RUnlock()
	if !ok {
		c.mu.Lock()
		counter, ok = c.events[event]
		if !ok {
			counter = new(uint64)
			c.events[event] = counter
		}
		c.mu.Unlock()
	}
	atomic.AddUint64(counter, 1)
}

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}

	c.mu.RLock()
	names := make([]string, 0, len(c.events))
	for name := range c.events {
		names = append(names, name)
	}
	sort.Strings(names)
	events := make(map[string]uint64, len(names))
	for _, name := range names {
		events[name] = atomic.LoadUint64(c.events[name])
	}
	c.mu.RUnlock()

	return map[string]any{
		"requestsTotal":    total,
		"errorsTotal":      atomic.LoadUint64(&c.errorRequests),
		"rateLimitedTotal": atomic.LoadUint64(&c.rateLimited),
		"avgDurationMs":    avg,
		"totalDurationMs":  totalMs,
		"events":           events,
	}
}
